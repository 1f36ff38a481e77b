// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool behind the direct library backend.
//
// The screens only read, so the pool is normally opened read-only: every
// session starts with default_transaction_read_only and a statement_timeout
// matching the backend timeout. Migrations run through their own connection
// (see internal/platform/migration).
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns   = 4
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// Options configure [Open].
type Options struct {
	// DSN is a postgres:// URL or key=value connection string.
	DSN string

	// StatementTimeout caps each statement on the server. Zero leaves the
	// server default.
	StatementTimeout time.Duration

	// ReadOnly starts every session in read-only transaction mode.
	ReadOnly bool

	// MaxConns defaults to a small pool sized for one screen query per request.
	MaxConns int32
}

// Open parses the DSN, applies the session settings and checks the database
// answers before returning.
func Open(ctx context.Context, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(options.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres_dsn_invalid: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if options.MaxConns > 0 {
		poolConfig.MaxConns = options.MaxConns
	}
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	for name, value := range RuntimeParams(options) {
		poolConfig.ConnConfig.RuntimeParams[name] = value
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres_pool_create_failed: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Bool("read_only", options.ReadOnly),
	)
	return pool, nil
}

// RuntimeParams are the session parameters sent in the startup message.
func RuntimeParams(options Options) map[string]string {
	params := map[string]string{"application_name": "gukkan"}
	if options.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(options.StatementTimeout.Milliseconds(), 10)
	}
	if options.ReadOnly {
		params["default_transaction_read_only"] = "on"
	}
	return params
}

// Ping checks the pool can reach the database.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres_ping_failed: %w", err)
	}
	return nil
}
