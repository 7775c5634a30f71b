package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/services/asset-service/models"
)

// EventStore persists chaincode events off-chain.
type EventStore interface {
	Record(ctx context.Context, event models.AssetEvent) error
	List(ctx context.Context, assetID string, limit int) ([]models.AssetEvent, error)
}

type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

// Record inserts the event; a replayed (tx_id, event_name) pair is ignored.
func (s *PostgresEventStore) Record(ctx context.Context, e models.AssetEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO asset_events (tx_id, event_name, asset_id, payload, block_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tx_id, event_name) DO NOTHING`,
		e.TxID, e.EventName, e.AssetID, []byte(e.Payload), int64(e.BlockNumber))
	if err != nil {
		return fmt.Errorf("failed to record event %s of tx %s: %w", e.EventName, e.TxID, err)
	}
	return nil
}

// List returns the newest events first, optionally restricted to one asset.
func (s *PostgresEventStore) List(ctx context.Context, assetID string, limit int) ([]models.AssetEvent, error) {
	query := `SELECT id, tx_id, event_name, asset_id, payload, block_number, recorded_at
		FROM asset_events`
	args := []interface{}{}
	if assetID != "" {
		query += ` WHERE asset_id = $1`
		args = append(args, assetID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []models.AssetEvent{}
	for rows.Next() {
		var (
			e           models.AssetEvent
			payload     []byte
			blockNumber int64
		)
		if err := rows.Scan(&e.ID, &e.TxID, &e.EventName, &e.AssetID, &payload, &blockNumber, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Payload = payload
		e.BlockNumber = uint64(blockNumber)
		events = append(events, e)
	}
	return events, rows.Err()
}
