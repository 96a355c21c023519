// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import "time"

// ExampleLabel marks a training example as a positive or negative signal.
type ExampleLabel string

const (
	LabelPositive ExampleLabel = "positive"
	LabelNegative ExampleLabel = "negative"
)

// Valid reports whether l is a known label.
func (l ExampleLabel) Valid() bool {
	switch l {
	case LabelPositive, LabelNegative:
		return true
	}
	return false
}

// TrainingExample is one admin-reviewed ranking turned into optimizer input.
// The store is append-only: examples are never updated or deleted, only
// marked consumed by an optimizer run.
type TrainingExample struct {
	ID string `json:"id"`

	// MatchResultID links back to the reviewed result.
	MatchResultID string `json:"match_result_id"`

	// Profile is the profile snapshot the ranking was produced for.
	Profile UserProfile `json:"profile"`

	Category Category `json:"category"`

	// SystemRanking is the ranking the engine produced, in order.
	SystemRanking []string `json:"system_ranking"`

	// IdealRanking is the ranking the admin endorsed: identical to
	// SystemRanking for approvals, the full replacement for adjustments,
	// and the (negative) system ranking for rejections.
	IdealRanking []string `json:"ideal_ranking"`

	// Decision records which admin verdict produced the example.
	Decision Decision `json:"decision"`

	Label ExampleLabel `json:"label"`

	// Confidence weights the example in training. Approvals carry 1.0;
	// adjustments scale with how much the admin moved the ranking;
	// rejections carry a low fixed weight.
	Confidence float64 `json:"confidence"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// ConsumedAt is set once an optimizer run has used the example.
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
