// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/models"
)

// InsertWeightVector stores a new weight vector, assigning the next
// version number. When wv.Active is set, the previously active vector
// is deactivated in the same transaction. The assigned version is
// returned and written back to wv.
func (db *DB) InsertWeightVector(ctx context.Context, wv *models.WeightVector) (int, error) {
	if wv == nil {
		return 0, fmt.Errorf("weight vector is nil")
	}
	if err := wv.Validate(); err != nil {
		return 0, fmt.Errorf("invalid weight vector: %w", err)
	}
	if !wv.Source.Valid() {
		return 0, fmt.Errorf("invalid weight source %q", wv.Source)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	factors, err := json.Marshal(wv.Factors)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal factors: %w", err)
	}

	if wv.CreatedAt.IsZero() {
		wv.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) + 1 FROM weight_vectors").Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate version: %w", err)
	}

	if wv.Active {
		if _, err := tx.ExecContext(ctx,
			"UPDATE weight_vectors SET active = FALSE WHERE active"); err != nil {
			return 0, fmt.Errorf("failed to deactivate current vector: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO weight_vectors (
			version, factors, active, source, holdout_ndcg,
			parent_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		next, string(factors), wv.Active, string(wv.Source),
		wv.HoldoutNDCG, wv.ParentVersion, wv.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert weight vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit weight vector: %w", err)
	}

	wv.Version = next
	return next, nil
}

// GetActiveWeights returns the currently active weight vector.
func (db *DB) GetActiveWeights(ctx context.Context) (*models.WeightVector, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, weightSelect+" WHERE active")
	return scanWeightVector(row)
}

// GetWeights returns a weight vector by version, or sql.ErrNoRows.
func (db *DB) GetWeights(ctx context.Context, version int) (*models.WeightVector, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, weightSelect+" WHERE version = ?", version)
	return scanWeightVector(row)
}

// ListWeightVectors returns all stored vectors, newest version first.
func (db *DB) ListWeightVectors(ctx context.Context) ([]*models.WeightVector, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, weightSelect+" ORDER BY version DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list weight vectors: %w", err)
	}
	defer rows.Close()

	var vectors []*models.WeightVector
	for rows.Next() {
		wv, err := scanWeightVector(rows)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, wv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weight vectors: %w", err)
	}
	return vectors, nil
}

// ActivateVersion flips the active flag to an existing version. Used by
// the rollback path; the target must exist.
func (db *DB) ActivateVersion(ctx context.Context, version int) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM weight_vectors WHERE version = ?", version).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check version: %w", err)
	}
	if exists == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE weight_vectors SET active = FALSE WHERE active"); err != nil {
		return fmt.Errorf("failed to deactivate current vector: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE weight_vectors SET active = TRUE WHERE version = ?", version); err != nil {
		return fmt.Errorf("failed to activate version %d: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

const weightSelect = `
	SELECT version, factors, active, source, holdout_ndcg,
		parent_version, created_at
	FROM weight_vectors`

func scanWeightVector(row rowScanner) (*models.WeightVector, error) {
	var (
		wv      models.WeightVector
		factors string
		source  string
	)
	err := row.Scan(&wv.Version, &factors, &wv.Active, &source,
		&wv.HoldoutNDCG, &wv.ParentVersion, &wv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan weight vector: %w", err)
	}
	if err := json.Unmarshal([]byte(factors), &wv.Factors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
	}
	wv.Source = models.WeightSource(source)
	return &wv, nil
}
