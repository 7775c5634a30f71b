package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common/db"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/common/migrations"
	"github.com/dewprince2005/Private-Blockchain-Implementation/backend/pkg/fabricclient"
	"go.uber.org/zap"
)

func main() {
	cfg := common.LoadConfig()

	logger, err := common.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Connect(cfg.DB, logger)
	if err != nil {
		logger.Fatal("failed to connect to DB", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.RunMigrations(database, cfg.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	fabric, err := fabricclient.NewClient(fabricclient.Options{
		ConfigPath:   cfg.FabricConfig,
		WalletPath:   cfg.WalletPath,
		ChannelName:  cfg.ChannelName,
		ContractName: cfg.ChaincodeName,
		MSPID:        cfg.MSP,
		CertPath:     cfg.CertPath,
		KeyPath:      cfg.KeyPath,
	})
	if err != nil {
		logger.Fatal("fabric connection failed", zap.Error(err))
	}
	defer fabric.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := NewPostgresEventStore(database)
	svc := NewService(fabric, store, logger)

	if cfg.IndexEvents {
		indexer := NewIndexer(fabric, store, logger, svc.metrics)
		go func() {
			if err := indexer.Run(ctx); err != nil {
				logger.Error("event indexer stopped", zap.Error(err))
			}
		}()
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           svc.Router([]byte(cfg.JWTSecret)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", server.Addr), zap.Error(err))
	}

	logger.Info("asset service running", zap.String("port", cfg.Port), zap.String("channel", cfg.ChannelName))
	if err := serve(ctx, server, ln, shutdownGrace, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
