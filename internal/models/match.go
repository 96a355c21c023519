// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import (
	"fmt"
	"time"
)

// ReviewStatus tracks the admin review lifecycle of a match result.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
	StatusAdjusted ReviewStatus = "adjusted"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusAdjusted:
		return true
	}
	return false
}

// Decision is an admin verdict on a match result.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionAdjusted Decision = "adjusted"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	switch d {
	case DecisionApproved, DecisionRejected, DecisionAdjusted:
		return true
	}
	return false
}

// Status returns the review status a decision transitions the result into.
func (d Decision) Status() ReviewStatus {
	switch d {
	case DecisionApproved:
		return StatusApproved
	case DecisionRejected:
		return StatusRejected
	case DecisionAdjusted:
		return StatusAdjusted
	default:
		return StatusPending
	}
}

// SignalKind is a lightweight end-user interaction with a match result.
// Signals feed aggregate counters only, never training examples.
type SignalKind string

const (
	SignalClick    SignalKind = "click"
	SignalPurchase SignalKind = "purchase"
	SignalRating   SignalKind = "rating"
)

// Valid reports whether k is a known signal kind.
func (k SignalKind) Valid() bool {
	switch k {
	case SignalClick, SignalPurchase, SignalRating:
		return true
	}
	return false
}

// FitNotes are the rendered per-entry fit guidance lines.
type FitNotes struct {
	Sizing         string   `json:"sizing,omitempty"`
	Width          string   `json:"width,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
	Considerations []string `json:"considerations,omitempty"`
}

// MatchEntry is one ranked product in a match result.
type MatchEntry struct {
	// Rank is 1-based and gapless within a result.
	Rank int `json:"rank"`

	ProductID string `json:"product_id"`

	// Score is the weighted factor mean in [0, 1].
	Score float64 `json:"score"`

	// Factors maps factor name to its raw score in [0, 1]. Only factors
	// applicable to the request category appear.
	Factors map[string]float64 `json:"factors"`

	// Reasoning is the rendered justification built from the top
	// contributing factors.
	Reasoning string `json:"reasoning"`

	FitNotes FitNotes `json:"fit_notes"`
}

// MatchResult is one complete scoring run: the profile snapshot, the ranked
// entries, and provenance. Results are immutable except for review status,
// admin annotations, and signal counters.
type MatchResult struct {
	ID string `json:"id"`

	// Profile is the snapshot of the request profile that produced the
	// ranking.
	Profile UserProfile `json:"profile"`

	Entries []MatchEntry `json:"entries"`

	// WeightVersion is the weight vector version used for scoring.
	WeightVersion int `json:"weight_version"`

	// AlgorithmVersion identifies the scoring code generation.
	AlgorithmVersion string `json:"algorithm_version"`

	ReviewStatus ReviewStatus `json:"review_status"`

	// AdminNotes holds the reviewer's free-form notes.
	AdminNotes string `json:"admin_notes,omitempty"`

	// Signal counters. Aggregates only.
	Clicks    int `json:"clicks"`
	Purchases int `json:"purchases"`
	Ratings   int `json:"ratings"`

	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// ValidateRanking checks that entries carry strictly 1..N gapless ranks and
// no duplicate products.
func (m *MatchResult) ValidateRanking() error {
	seen := make(map[string]bool, len(m.Entries))
	for i, e := range m.Entries {
		if e.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, e.Rank, i+1)
		}
		if seen[e.ProductID] {
			return fmt.Errorf("duplicate product %s in ranking", e.ProductID)
		}
		seen[e.ProductID] = true
		if e.Score < 0 || e.Score > 1 {
			return fmt.Errorf("entry %d score %f outside [0,1]", i, e.Score)
		}
	}
	return nil
}

// ProductIDs returns the ranked product IDs in order.
func (m *MatchResult) ProductIDs() []string {
	ids := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		ids[i] = e.ProductID
	}
	return ids
}
