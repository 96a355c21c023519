// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
)

// rejectedConfidence weights rejected rankings as negatives without
// letting an all-or-nothing rejection dominate training.
const rejectedConfidence = 0.2

// minAdjustedConfidence keeps a near-no-op adjustment from producing a
// zero-weight example.
const minAdjustedConfidence = 0.1

// Store is the persistence surface the collector needs.
type Store interface {
	GetMatchResult(ctx context.Context, id string) (*models.MatchResult, error)
	UpdateReviewStatus(ctx context.Context, id string, status models.ReviewStatus, notes string) error
	InsertTrainingExample(ctx context.Context, ex *models.TrainingExample) error
	IncrementSignal(ctx context.Context, id string, kind models.SignalKind) error
}

// Collector turns admin review decisions into training examples and
// accumulates end-user signals.
type Collector struct {
	store Store
}

// NewCollector creates a feedback collector.
func NewCollector(store Store) *Collector {
	return &Collector{store: store}
}

// RecordDecision applies an admin verdict to a match result and stores
// exactly one training example for it. Adjustments require a full
// replacement ranking covering the same products; partial deltas are
// rejected so ranks beyond the mentioned ones are never ambiguous.
func (c *Collector) RecordDecision(ctx context.Context, matchResultID string, decision models.Decision, replacement []string, notes string) (*models.TrainingExample, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	mr, err := c.store.GetMatchResult(ctx, matchResultID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match result: %w", err)
	}
	if mr.ReviewStatus != models.StatusPending {
		return nil, fmt.Errorf("match result %s already reviewed (%s)", matchResultID, mr.ReviewStatus)
	}

	system := mr.ProductIDs()

	ex := &models.TrainingExample{
		ID:            uuid.NewString(),
		MatchResultID: mr.ID,
		Profile:       mr.Profile,
		Category:      mr.Profile.Category,
		SystemRanking: system,
		Decision:      decision,
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}

	switch decision {
	case models.DecisionApproved:
		ex.IdealRanking = system
		ex.Label = models.LabelPositive
		ex.Confidence = 1.0

	case models.DecisionAdjusted:
		if err := validateReplacement(system, replacement); err != nil {
			return nil, err
		}
		ex.IdealRanking = replacement
		ex.Label = models.LabelPositive
		ex.Confidence = adjustedConfidence(system, replacement)

	case models.DecisionRejected:
		ex.IdealRanking = system
		ex.Label = models.LabelNegative
		ex.Confidence = rejectedConfidence
	}

	if err := c.store.InsertTrainingExample(ctx, ex); err != nil {
		return nil, fmt.Errorf("failed to store training example: %w", err)
	}
	if err := c.store.UpdateReviewStatus(ctx, mr.ID, decision.Status(), notes); err != nil {
		return nil, fmt.Errorf("failed to update review status: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("match_result_id", mr.ID).
		Str("decision", string(decision)).
		Float64("confidence", ex.Confidence).
		Msg("Review decision recorded")
	metrics.FeedbackDecisions.WithLabelValues(string(decision)).Inc()

	return ex, nil
}

// RecordSignal bumps the aggregate counter for one user interaction.
// Signals never produce training examples.
func (c *Collector) RecordSignal(ctx context.Context, matchResultID string, kind models.SignalKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown signal kind %q", kind)
	}
	if err := c.store.IncrementSignal(ctx, matchResultID, kind); err != nil {
		return fmt.Errorf("failed to record signal: %w", err)
	}
	metrics.FeedbackSignals.WithLabelValues(string(kind)).Inc()
	return nil
}

// validateReplacement checks that replacement is a full permutation of
// the system ranking.
func validateReplacement(system, replacement []string) error {
	if len(replacement) == 0 {
		return fmt.Errorf("adjusted decision requires a replacement ranking")
	}
	if len(replacement) != len(system) {
		return fmt.Errorf("replacement ranking has %d entries, want %d", len(replacement), len(system))
	}

	want := make(map[string]bool, len(system))
	for _, id := range system {
		want[id] = true
	}
	seen := make(map[string]bool, len(replacement))
	for _, id := range replacement {
		if !want[id] {
			return fmt.Errorf("replacement ranking contains unknown product %s", id)
		}
		if seen[id] {
			return fmt.Errorf("replacement ranking repeats product %s", id)
		}
		seen[id] = true
	}
	return nil
}

// adjustedConfidence scales with how far the admin moved the ranking.
// Total absolute rank displacement is normalized by the maximum
// possible displacement for the ranking length, so a swap of adjacent
// ranks carries little weight and a full reversal carries full weight.
func adjustedConfidence(system, replacement []string) float64 {
	ranks := make(map[string]int, len(system))
	for i, id := range system {
		ranks[id] = i
	}

	displacement := 0
	for i, id := range replacement {
		d := ranks[id] - i
		if d < 0 {
			d = -d
		}
		displacement += d
	}

	n := len(system)
	max := (n * n) / 2
	if max == 0 {
		return minAdjustedConfidence
	}

	conf := float64(displacement) / float64(max)
	if conf < minAdjustedConfidence {
		conf = minAdjustedConfidence
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}
