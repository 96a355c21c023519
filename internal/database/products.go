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

// UpsertProduct inserts a product or replaces an existing row with the
// same ID.
func (db *DB) UpsertProduct(ctx context.Context, p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if p.ID == "" {
		return fmt.Errorf("product ID is empty")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	distances, err := json.Marshal(p.Distances)
	if err != nil {
		return fmt.Errorf("failed to marshal distances: %w", err)
	}
	positions, err := json.Marshal(p.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO products (
			id, brand, model, category, subcategory, terrain, court,
			support, cushion, price_usd, weight_grams, drop_mm,
			stack_height_mm, has_wide, has_narrow, distances, positions,
			discontinued, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Brand, p.Model, string(p.Category), p.Subcategory,
		string(p.Terrain), string(p.Court), string(p.Support),
		string(p.Cushion), p.PriceUSD, p.WeightGrams, p.DropMM,
		p.StackHeightMM, p.HasWide, p.HasNarrow, string(distances),
		string(positions), p.Discontinued, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// GetProduct returns the product with the given ID, or sql.ErrNoRows
// when it does not exist.
func (db *DB) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, productSelect+" WHERE id = ?", id)
	return scanProduct(row)
}

// ListProducts returns all products in a category, excluding
// discontinued models unless includeDiscontinued is set.
func (db *DB) ListProducts(ctx context.Context, category models.Category, includeDiscontinued bool) ([]*models.Product, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := productSelect + " WHERE category = ?"
	if !includeDiscontinued {
		query += " AND NOT discontinued"
	}
	query += " ORDER BY id"

	rows, err := db.conn.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListProductsByIDs returns the products matching the given IDs. Missing
// IDs are silently skipped.
func (db *DB) ListProductsByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.Repeat("?, ", len(ids))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		productSelect+" WHERE id IN ("+placeholders+") ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by IDs: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

const productSelect = `
	SELECT id, brand, model, category, subcategory, terrain, court,
		support, cushion, price_usd, weight_grams, drop_mm,
		stack_height_mm, has_wide, has_narrow, distances, positions,
		discontinued, updated_at
	FROM products`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p                    models.Product
		category             string
		subcategory          sql.NullString
		terrain              sql.NullString
		court                sql.NullString
		support              sql.NullString
		cushion              sql.NullString
		distances, positions sql.NullString
	)
	err := row.Scan(&p.ID, &p.Brand, &p.Model, &category, &subcategory,
		&terrain, &court, &support, &cushion, &p.PriceUSD,
		&p.WeightGrams, &p.DropMM, &p.StackHeightMM, &p.HasWide,
		&p.HasNarrow, &distances, &positions, &p.Discontinued,
		&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Category = models.Category(category)
	p.Subcategory = subcategory.String
	p.Terrain = models.Terrain(terrain.String)
	p.Court = models.Court(court.String)
	p.Support = models.Support(support.String)
	p.Cushion = models.Cushion(cushion.String)

	if distances.Valid && distances.String != "" {
		if err := json.Unmarshal([]byte(distances.String), &p.Distances); err != nil {
			return nil, fmt.Errorf("failed to unmarshal distances: %w", err)
		}
	}
	if positions.Valid && positions.String != "" {
		if err := json.Unmarshal([]byte(positions.String), &p.Positions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal positions: %w", err)
		}
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
