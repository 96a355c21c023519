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

// InsertMatchResult persists a recommendation result. The user profile
// and ranked entries are stored as JSON.
func (db *DB) InsertMatchResult(ctx context.Context, mr *models.MatchResult) error {
	if mr == nil {
		return fmt.Errorf("match result is nil")
	}
	if mr.ID == "" {
		return fmt.Errorf("match result ID is empty")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	profile, err := json.Marshal(mr.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}
	entries, err := json.Marshal(mr.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}

	if mr.CreatedAt.IsZero() {
		mr.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO match_results (
			id, profile, category, entries, weight_version,
			algorithm_version, review_status, admin_notes,
			clicks, purchases, ratings, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mr.ID, string(profile), string(mr.Profile.Category),
		string(entries), mr.WeightVersion, mr.AlgorithmVersion,
		string(mr.ReviewStatus), mr.AdminNotes,
		mr.Clicks, mr.Purchases, mr.Ratings, mr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

// GetMatchResult returns a match result by ID, or sql.ErrNoRows when it
// does not exist.
func (db *DB) GetMatchResult(ctx context.Context, id string) (*models.MatchResult, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, matchResultSelect+" WHERE id = ?", id)
	return scanMatchResult(row)
}

// ListMatchResults returns match results, newest first, optionally
// filtered by review status.
func (db *DB) ListMatchResults(ctx context.Context, status models.ReviewStatus, limit, offset int) ([]*models.MatchResult, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := matchResultSelect
	args := []any{}
	if status != "" {
		query += " WHERE review_status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	var results []*models.MatchResult
	for rows.Next() {
		mr, err := scanMatchResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, mr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match results: %w", err)
	}
	return results, nil
}

// UpdateReviewStatus records an admin decision on a match result.
func (db *DB) UpdateReviewStatus(ctx context.Context, id string, status models.ReviewStatus, notes string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid review status %q", status)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE match_results
		SET review_status = ?, admin_notes = ?, reviewed_at = ?
		WHERE id = ?`,
		string(status), notes, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementSignal bumps the engagement counter for a match result.
func (db *DB) IncrementSignal(ctx context.Context, id string, kind models.SignalKind) error {
	var column string
	switch kind {
	case models.SignalClick:
		column = "clicks"
	case models.SignalPurchase:
		column = "purchases"
	case models.SignalRating:
		column = "ratings"
	default:
		return fmt.Errorf("invalid signal kind %q", kind)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"UPDATE match_results SET "+column+" = "+column+" + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const matchResultSelect = `
	SELECT id, profile, entries, weight_version, algorithm_version,
		review_status, admin_notes, clicks, purchases, ratings,
		created_at, reviewed_at
	FROM match_results`

func scanMatchResult(row rowScanner) (*models.MatchResult, error) {
	var (
		mr               models.MatchResult
		profile, entries string
		status           string
		adminNotes       sql.NullString
		reviewedAt       sql.NullTime
	)
	err := row.Scan(&mr.ID, &profile, &entries, &mr.WeightVersion,
		&mr.AlgorithmVersion, &status, &adminNotes, &mr.Clicks,
		&mr.Purchases, &mr.Ratings, &mr.CreatedAt, &reviewedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match result: %w", err)
	}

	if err := json.Unmarshal([]byte(profile), &mr.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user profile: %w", err)
	}
	if err := json.Unmarshal([]byte(entries), &mr.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entries: %w", err)
	}
	mr.ReviewStatus = models.ReviewStatus(status)
	mr.AdminNotes = adminNotes.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		mr.ReviewedAt = &t
	}
	return &mr, nil
}
