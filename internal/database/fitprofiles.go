// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/models"
)

// UpsertFitProfile writes the fit profile for a product, replacing any
// existing row. The full profile is stored as JSON alongside the
// columns the optimizer and admin queries filter on.
func (db *DB) UpsertFitProfile(ctx context.Context, fp *models.FitProfile) error {
	if fp == nil {
		return fmt.Errorf("fit profile is nil")
	}
	if fp.ProductID == "" {
		return fmt.Errorf("fit profile product ID is empty")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if fp.UpdatedAt.IsZero() {
		fp.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(fp)
	if err != nil {
		return fmt.Errorf("failed to marshal fit profile: %w", err)
	}

	var extractedAt any
	if !fp.ExtractedAt.IsZero() {
		extractedAt = fp.ExtractedAt
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO fit_profiles (
			product_id, profile, sentiment, confidence, review_count,
			needs_review, review_set_hash, extraction_model,
			extracted_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fp.ProductID, string(payload), fp.Sentiment, fp.Confidence,
		fp.ReviewCount, fp.NeedsReview, fp.ReviewSetHash,
		fp.ExtractionModel, extractedAt, fp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert fit profile: %w", err)
	}
	return nil
}

// GetFitProfile returns the fit profile for a product, or sql.ErrNoRows
// when none has been extracted yet.
func (db *DB) GetFitProfile(ctx context.Context, productID string) (*models.FitProfile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var payload string
	err := db.conn.QueryRowContext(ctx,
		"SELECT profile FROM fit_profiles WHERE product_id = ?", productID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query fit profile: %w", err)
	}
	return decodeFitProfile(payload)
}

// ListFitProfilesByIDs returns fit profiles keyed by product ID.
// Products without a profile are absent from the map.
func (db *DB) ListFitProfilesByIDs(ctx context.Context, productIDs []string) (map[string]*models.FitProfile, error) {
	if len(productIDs) == 0 {
		return map[string]*models.FitProfile{}, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.Repeat("?, ", len(productIDs))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT profile FROM fit_profiles WHERE product_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fit profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]*models.FitProfile)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan fit profile: %w", err)
		}
		fp, err := decodeFitProfile(payload)
		if err != nil {
			return nil, err
		}
		profiles[fp.ProductID] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fit profiles: %w", err)
	}
	return profiles, nil
}

// ListFitProfilesNeedingReview returns profiles flagged for human
// attention, most recently updated first.
func (db *DB) ListFitProfilesNeedingReview(ctx context.Context, limit int) ([]*models.FitProfile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT profile FROM fit_profiles
		WHERE needs_review
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fit profiles needing review: %w", err)
	}
	defer rows.Close()

	var profiles []*models.FitProfile
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan fit profile: %w", err)
		}
		fp, err := decodeFitProfile(payload)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fit profiles: %w", err)
	}
	return profiles, nil
}

func decodeFitProfile(payload string) (*models.FitProfile, error) {
	var fp models.FitProfile
	if err := json.Unmarshal([]byte(payload), &fp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fit profile: %w", err)
	}
	return &fp, nil
}
