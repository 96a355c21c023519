// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package database provides the DuckDB-backed persistence layer for
// products, reviews, fit profiles, match results, training examples,
// and weight vectors.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// DB wraps a DuckDB connection and exposes typed accessors for the
// application's tables.
type DB struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

// New opens (or creates) the DuckDB database at the configured path,
// creates any missing tables, and seeds the initial weight vector on
// first run.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is nil")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, cfg.Threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	db := &DB{conn: conn, queryTimeout: timeout}

	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database opened")
	return db, nil
}

func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.queryTimeout)
	defer cancel()

	if err := db.createTables(ctx); err != nil {
		return err
	}
	return db.seedWeights(ctx)
}

// seedWeights inserts the default weight vector as version 1 when the
// weight_vectors table is empty, so scoring always has an active vector.
func (db *DB) seedWeights(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM weight_vectors").Scan(&count); err != nil {
		return fmt.Errorf("failed to count weight vectors: %w", err)
	}
	if count > 0 {
		return nil
	}

	wv := models.DefaultWeights()
	if _, err := db.InsertWeightVector(ctx, wv); err != nil {
		return fmt.Errorf("failed to seed default weights: %w", err)
	}
	logging.Info().Msg("Seeded default weight vector")
	return nil
}

// ensureContext returns the caller's context unchanged when it already
// carries a deadline, otherwise derives one with the configured query
// timeout.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Checkpoint forces DuckDB to flush the WAL into the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("failed to checkpoint database: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
