package main

import (
	"context"
	"log"
	"os"

	"marketplace-service/config"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
	"marketplace-service/migrations"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	if len(os.Args) < 2 {
		logger.Fatal("Usage: migrate [up|down]")
	}
	direction := os.Args[1]

	ctx := context.Background()
	db, err := store.NewStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	n, err := migrations.Run(ctx, db.GetDB(), direction, logger)
	if err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	logger.Info("Migrations complete", zap.Int("count", n), zap.String("direction", direction))
}
