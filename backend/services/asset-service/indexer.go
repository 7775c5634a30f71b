package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/services/asset-service/models"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
	"go.uber.org/zap"
)

// assetEventFilter matches every event the asset contract emits.
const assetEventFilter = `^Asset(Created|Updated|Deleted|Transferred)$`

var errEventStreamClosed = errors.New("chaincode event stream closed")

// EventSource delivers chaincode events.
type EventSource interface {
	RegisterEvent(filter string) (<-chan *fab.CCEvent, func(), error)
}

// Indexer copies asset chaincode events into the off-chain event store.
type Indexer struct {
	source  EventSource
	store   EventStore
	logger  *zap.Logger
	metrics *metrics
}

func NewIndexer(source EventSource, store EventStore, logger *zap.Logger, m *metrics) *Indexer {
	return &Indexer{source: source, store: store, logger: logger.Named("indexer"), metrics: m}
}

// Run blocks until ctx is done or the event stream ends.
func (ix *Indexer) Run(ctx context.Context) error {
	events, unregister, err := ix.source.RegisterEvent(assetEventFilter)
	if err != nil {
		return fmt.Errorf("failed to register for chaincode events: %w", err)
	}
	defer unregister()

	ix.logger.Info("listening for asset events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return errEventStreamClosed
			}
			ix.handle(ctx, ev)
		}
	}
}

func (ix *Indexer) handle(ctx context.Context, ev *fab.CCEvent) {
	var ref struct {
		ID string `json:"ID"`
	}
	if err := json.Unmarshal(ev.Payload, &ref); err != nil {
		ix.logger.Warn("skipping event with malformed payload",
			zap.String("event", ev.EventName),
			zap.String("tx_id", ev.TxID))
		ix.metrics.indexed.WithLabelValues(ev.EventName, "skipped").Inc()
		return
	}

	err := ix.store.Record(ctx, models.AssetEvent{
		TxID:        ev.TxID,
		EventName:   ev.EventName,
		AssetID:     ref.ID,
		Payload:     ev.Payload,
		BlockNumber: ev.BlockNumber,
	})
	if err != nil {
		ix.logger.Error("failed to index event",
			zap.String("event", ev.EventName),
			zap.String("tx_id", ev.TxID),
			zap.Error(err))
		ix.metrics.indexed.WithLabelValues(ev.EventName, "error").Inc()
		return
	}

	ix.logger.Debug("indexed event",
		zap.String("event", ev.EventName),
		zap.String("asset_id", ref.ID),
		zap.Uint64("block", ev.BlockNumber))
	ix.metrics.indexed.WithLabelValues(ev.EventName, "ok").Inc()
}
