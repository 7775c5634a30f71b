package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common"
	_ "github.com/lib/pq" // Postgres driver
	"go.uber.org/zap"
)

const defaultConnectAttempts = 5

// Connect establishes a connection to the database, waiting for it to come up.
func Connect(cfg common.DBConfig, logger *zap.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = defaultConnectAttempts
	}

	for i := 0; i < attempts; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		logger.Warn("waiting for database",
			zap.Int("attempt", i+1),
			zap.Int("of", attempts),
			zap.Error(err))
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	logger.Info("connected to database", zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}
