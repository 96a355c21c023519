// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package database

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/stridefit/stridefit/internal/models"
)

// InsertReview stores a fetched review. Duplicates, identified by
// (product_id, source, source_review_id), are silently skipped; the
// returned bool reports whether a new row was written.
func (db *DB) InsertReview(ctx context.Context, r *models.RawReview) (bool, error) {
	if r == nil {
		return false, fmt.Errorf("review is nil")
	}
	if r.ProductID == "" || r.Source == "" || r.SourceReviewID == "" {
		return false, fmt.Errorf("review is missing dedup key fields")
	}
	if !r.Type.Valid() {
		return false, fmt.Errorf("invalid review type %q", r.Type)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("failed to marshal review: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO raw_reviews (
			id, product_id, source, source_review_id, review_type,
			payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (product_id, source, source_review_id) DO NOTHING`,
		r.ID, r.ProductID, r.Source, r.SourceReviewID,
		string(r.Type), string(payload), r.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert review: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListReviewsByProduct returns all stored reviews for a product in
// insertion order.
func (db *DB) ListReviewsByProduct(ctx context.Context, productID string) ([]*models.RawReview, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT payload FROM raw_reviews
		WHERE product_id = ?
		ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.RawReview
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		var r models.RawReview
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal review: %w", err)
		}
		reviews = append(reviews, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// CountReviewsByProduct returns the number of stored reviews for a
// product.
func (db *DB) CountReviewsByProduct(ctx context.Context, productID string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM raw_reviews WHERE product_id = ?", productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
