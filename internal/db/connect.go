package db

import (
	"context"
	"time"

	"coinflip3d/internal/logger"
	"coinflip3d/internal/waitfor"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a pool and waits, bounded by attempts*interval, for the
// database to answer a ping. Postgres often comes up after the app in
// local compose setups.
func Connect(ctx context.Context, dsn string, attempts int, interval time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	err = waitfor.Poll(ctx, attempts, interval, func(ctx context.Context) bool {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database connected")
	return pool, nil
}
