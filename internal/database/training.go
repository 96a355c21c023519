// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/models"
)

// InsertTrainingExample stores a labeled example derived from an admin
// decision. At most one example exists per match result; a second
// insert for the same match result is rejected.
func (db *DB) InsertTrainingExample(ctx context.Context, ex *models.TrainingExample) error {
	if ex == nil {
		return fmt.Errorf("training example is nil")
	}
	if ex.ID == "" || ex.MatchResultID == "" {
		return fmt.Errorf("training example is missing identifiers")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var existing int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM training_examples WHERE match_result_id = ?",
		ex.MatchResultID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing example: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("training example already exists for match result %s", ex.MatchResultID)
	}

	profile, err := json.Marshal(ex.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}
	system, err := json.Marshal(ex.SystemRanking)
	if err != nil {
		return fmt.Errorf("failed to marshal system ranking: %w", err)
	}
	ideal, err := json.Marshal(ex.IdealRanking)
	if err != nil {
		return fmt.Errorf("failed to marshal ideal ranking: %w", err)
	}

	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO training_examples (
			id, match_result_id, profile, category, system_ranking,
			ideal_ranking, decision, label, confidence, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.MatchResultID, string(profile), string(ex.Category),
		string(system), string(ideal), string(ex.Decision),
		string(ex.Label), ex.Confidence, ex.Notes, ex.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert training example: %w", err)
	}
	return nil
}

// ListUnconsumedExamples returns examples not yet used by an optimizer
// run, oldest first.
func (db *DB) ListUnconsumedExamples(ctx context.Context, limit int) ([]*models.TrainingExample, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 1000
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, match_result_id, profile, category, system_ranking,
			ideal_ranking, decision, label, confidence, notes, created_at
		FROM training_examples
		WHERE consumed_at IS NULL
		ORDER BY created_at, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list training examples: %w", err)
	}
	defer rows.Close()

	var examples []*models.TrainingExample
	for rows.Next() {
		var (
			ex              models.TrainingExample
			profile         string
			category        string
			system, ideal   string
			decision, label string
		)
		err := rows.Scan(&ex.ID, &ex.MatchResultID, &profile, &category,
			&system, &ideal, &decision, &label, &ex.Confidence,
			&ex.Notes, &ex.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training example: %w", err)
		}
		if err := json.Unmarshal([]byte(profile), &ex.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user profile: %w", err)
		}
		if err := json.Unmarshal([]byte(system), &ex.SystemRanking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal system ranking: %w", err)
		}
		if err := json.Unmarshal([]byte(ideal), &ex.IdealRanking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ideal ranking: %w", err)
		}
		ex.Category = models.Category(category)
		ex.Decision = models.Decision(decision)
		ex.Label = models.ExampleLabel(label)
		examples = append(examples, &ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training examples: %w", err)
	}
	return examples, nil
}

// MarkExamplesConsumed stamps examples as used by an optimizer run.
func (db *DB) MarkExamplesConsumed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.Repeat("?, ", len(ids))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := db.conn.ExecContext(ctx,
		"UPDATE training_examples SET consumed_at = ? WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("failed to mark examples consumed: %w", err)
	}
	return nil
}

// CountUnconsumedExamples returns how many examples are waiting for the
// next optimizer run.
func (db *DB) CountUnconsumedExamples(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM training_examples WHERE consumed_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count training examples: %w", err)
	}
	return count, nil
}
