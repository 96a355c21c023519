// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package services wraps components that need periodic driving as
// suture services.
package services

import (
	"context"
	"time"

	"github.com/stridefit/stridefit/internal/logging"
)

const defaultCheckpointInterval = 5 * time.Minute

// Checkpointer is the part of the database the service drives.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService periodically flushes the DuckDB write-ahead log
// into the main database file so restarts replay less.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
}

// NewCheckpointService builds the service. A non-positive interval
// falls back to the default.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = defaultCheckpointInterval
	}
	return &CheckpointService{db: db, interval: interval}
}

// Serve implements suture.Service. A failed checkpoint is logged and
// retried on the next tick rather than restarting the service.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush on the way out keeps the main file current.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.db.Checkpoint(flushCtx); err != nil {
				logging.Warn().Err(err).Msg("Final checkpoint failed")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.db.Checkpoint(ctx); err != nil {
				logging.Warn().Err(err).Msg("Checkpoint failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *CheckpointService) String() string {
	return "duckdb-checkpointer"
}
