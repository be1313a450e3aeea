// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/solitaire/internal/auth"
	"github.com/jason-s-yu/solitaire/internal/cache"
	"github.com/jason-s-yu/solitaire/internal/config"
	"github.com/jason-s-yu/solitaire/internal/database"
	"github.com/jason-s-yu/solitaire/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.NewLogger()

	if priv, pub := os.Getenv("JWT_PRIVATE_KEY_PATH"), os.Getenv("JWT_PUBLIC_KEY_PATH"); priv != "" && pub != "" {
		err = auth.InitFromPath(priv, pub)
	} else {
		err = auth.Init()
	}
	if err != nil {
		logger.Fatalf("failed to init auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, logger); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.DB.Close()
	if err := database.Migrate(ctx); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional: without it actions are not logged and saves go
	// straight to Postgres.
	var snapshots handlers.SnapshotStore
	if err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Warnf("redis unavailable, running without action log or snapshots: %v", err)
		cache.Rdb = nil
	} else {
		snapshots = cache.Snapshots{}
	}

	srv := handlers.NewSessionServer(logger, cfg, database.Postgres{}, snapshots)
	go srv.RunSweeper(ctx, time.Minute, cfg.SessionIdle)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Running on %s", httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}
