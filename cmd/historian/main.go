// cmd/historian/main.go is an asynchronous historian service that pops session
// actions from the Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/solitaire/internal/cache"
	"github.com/jason-s-yu/solitaire/internal/config"
	"github.com/jason-s-yu/solitaire/internal/database"
	"github.com/jason-s-yu/solitaire/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, logger); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.DB.Close()
	if err := database.Migrate(ctx); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}
	if err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Fatalf("%v", err)
	}
	defer cache.Rdb.Close()

	hs := historian.New(
		cache.ActionQueue{},
		database.InsertGameActions,
		cfg.HistorianBatchSize,
		cfg.HistorianFlush,
		logger.WithField("queue", cfg.QueueName),
	)
	hs.Run(ctx)
	logger.Info("historian shutdown complete")
}
