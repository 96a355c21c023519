// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package database

import (
	"context"
	"fmt"
)

func (db *DB) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR PRIMARY KEY,
			brand VARCHAR NOT NULL,
			model VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			subcategory VARCHAR,
			terrain VARCHAR,
			court VARCHAR,
			support VARCHAR,
			cushion VARCHAR,
			price_usd DOUBLE,
			weight_grams DOUBLE,
			drop_mm DOUBLE,
			stack_height_mm DOUBLE,
			has_wide BOOLEAN NOT NULL DEFAULT FALSE,
			has_narrow BOOLEAN NOT NULL DEFAULT FALSE,
			distances VARCHAR,
			positions VARCHAR,
			discontinued BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS raw_reviews (
			id VARCHAR PRIMARY KEY,
			product_id VARCHAR NOT NULL,
			source VARCHAR NOT NULL,
			source_review_id VARCHAR NOT NULL,
			review_type VARCHAR NOT NULL,
			payload VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (product_id, source, source_review_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fit_profiles (
			product_id VARCHAR PRIMARY KEY,
			profile VARCHAR NOT NULL,
			sentiment DOUBLE NOT NULL,
			confidence DOUBLE NOT NULL,
			review_count INTEGER NOT NULL,
			needs_review BOOLEAN NOT NULL,
			review_set_hash VARCHAR,
			extraction_model VARCHAR,
			extracted_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS match_results (
			id VARCHAR PRIMARY KEY,
			profile VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			entries VARCHAR NOT NULL,
			weight_version INTEGER NOT NULL,
			algorithm_version VARCHAR NOT NULL,
			review_status VARCHAR NOT NULL,
			admin_notes VARCHAR,
			clicks INTEGER NOT NULL DEFAULT 0,
			purchases INTEGER NOT NULL DEFAULT 0,
			ratings INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			reviewed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS training_examples (
			id VARCHAR PRIMARY KEY,
			match_result_id VARCHAR NOT NULL,
			profile VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			system_ranking VARCHAR NOT NULL,
			ideal_ranking VARCHAR NOT NULL,
			decision VARCHAR NOT NULL,
			label VARCHAR NOT NULL,
			confidence DOUBLE NOT NULL,
			notes VARCHAR,
			created_at TIMESTAMP NOT NULL,
			consumed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS weight_vectors (
			version INTEGER PRIMARY KEY,
			factors VARCHAR NOT NULL,
			active BOOLEAN NOT NULL,
			source VARCHAR NOT NULL,
			holdout_ndcg DOUBLE,
			parent_version INTEGER,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_product ON raw_reviews (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_match_results_status ON match_results (review_status)`,
		`CREATE INDEX IF NOT EXISTS idx_training_consumed ON training_examples (consumed_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
