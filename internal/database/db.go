// internal/database/db.go
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

var DB *pgxpool.Pool

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ConnectDB opens the pool from the POSTGRES_* and PG_* environment variables.
func ConnectDB(ctx context.Context, logger logrus.FieldLogger) error {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("db ping error: %w", err)
	}

	DB = pool
	logger.WithFields(logrus.Fields{
		"host":     config.ConnConfig.Host,
		"database": config.ConnConfig.Database,
	}).Info("connected to database")
	return nil
}
