// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
)

// Store is the persistence surface the engine needs.
type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListReviewsByProduct(ctx context.Context, productID string) ([]*models.RawReview, error)
	GetFitProfile(ctx context.Context, productID string) (*models.FitProfile, error)
	UpsertFitProfile(ctx context.Context, fp *models.FitProfile) error
}

// Outcome classifies one extraction run.
type Outcome string

const (
	// OutcomeUpdated means a parsed extraction replaced the profile.
	OutcomeUpdated Outcome = "updated"
	// OutcomeRejected means the model responded but the response failed
	// validation. The prior profile is kept and flagged for review.
	OutcomeRejected Outcome = "rejected"
	// OutcomeSkipped means nothing ran: too few reviews, or the review
	// set and model are unchanged since the last extraction.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeError means the LLM call itself failed.
	OutcomeError Outcome = "error"
)

// Engine runs LLM fit extraction for one product at a time.
type Engine struct {
	cfg       *config.ExtractConfig
	store     Store
	completer Completer
}

// NewEngine creates an extraction engine backed by the given completer.
func NewEngine(cfg *config.ExtractConfig, store Store, completer Completer) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     store,
		completer: completer,
	}
}

// ExtractProduct regenerates the fit profile for a product from its
// stored reviews. The replacement is wholesale except for fields pinned
// in ManualOverrides, which survive verbatim. When the model call fails
// or its response is invalid, the prior profile is preserved and marked
// for review instead.
func (e *Engine) ExtractProduct(ctx context.Context, productID string) (Outcome, error) {
	start := time.Now()
	log := logging.Ctx(ctx).With().Str("product_id", productID).Logger()

	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to load product: %w", err)
	}

	reviews, err := e.store.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to load reviews: %w", err)
	}

	if len(reviews) < e.cfg.MinReviews {
		log.Debug().Int("reviews", len(reviews)).Int("min_reviews", e.cfg.MinReviews).
			Msg("Skipping extraction, not enough reviews")
		metrics.RecordExtraction(string(OutcomeSkipped), -1, time.Since(start))
		return OutcomeSkipped, nil
	}

	prior, err := e.store.GetFitProfile(ctx, productID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return OutcomeError, fmt.Errorf("failed to load fit profile: %w", err)
	}
	if prior == nil {
		prior = models.EmptyFitProfile(productID)
	}

	sample := sampleReviews(reviews, e.cfg.MaxReviews)
	setHash := reviewSetHash(sample, e.cfg.Model)

	if prior.ReviewSetHash == setHash && prior.ExtractionModel == e.cfg.Model {
		log.Debug().Str("review_set_hash", setHash).Msg("Skipping extraction, review set unchanged")
		metrics.RecordExtraction(string(OutcomeSkipped), -1, time.Since(start))
		return OutcomeSkipped, nil
	}

	prompt := buildPrompt(product, sample, e.cfg.MaxCharsPerReview, e.cfg.MaxTotalChars)

	completion, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.RecordExtraction(string(OutcomeError), -1, time.Since(start))
		return OutcomeError, fmt.Errorf("failed to complete extraction prompt: %w", err)
	}

	ext, parseErr := parseExtraction(completion)
	if parseErr != nil {
		log.Warn().Err(parseErr).Msg("Rejecting invalid extraction response")
		prior.NeedsReview = true
		prior.UpdatedAt = time.Now().UTC()
		if err := e.store.UpsertFitProfile(ctx, prior); err != nil {
			return OutcomeError, fmt.Errorf("failed to flag profile for review: %w", err)
		}
		metrics.RecordExtraction(string(OutcomeRejected), -1, time.Since(start))
		return OutcomeRejected, nil
	}

	profile := e.applyExtraction(prior, ext, len(reviews))
	profile.ReviewSetHash = setHash
	profile.ExtractionModel = e.cfg.Model
	profile.ExtractedAt = time.Now().UTC()
	profile.UpdatedAt = profile.ExtractedAt

	if err := e.store.UpsertFitProfile(ctx, profile); err != nil {
		return OutcomeError, fmt.Errorf("failed to store fit profile: %w", err)
	}

	log.Info().
		Float64("confidence", profile.Confidence).
		Int("review_count", profile.ReviewCount).
		Bool("needs_review", profile.NeedsReview).
		Msg("Fit profile updated")
	metrics.RecordExtraction(string(OutcomeUpdated), profile.Confidence, time.Since(start))
	return OutcomeUpdated, nil
}

// applyExtraction builds the replacement profile, carrying over any
// admin-pinned fields from the prior one.
func (e *Engine) applyExtraction(prior *models.FitProfile, ext *extraction, reviewCount int) *models.FitProfile {
	fp := &models.FitProfile{
		ProductID: prior.ProductID,
		Sizing:    ext.Sizing.Verdict,
		Width: models.WidthProfile{
			Forefoot: ext.Width.Forefoot,
			Midfoot:  ext.Width.Midfoot,
			Heel:     ext.Width.Heel,
		},
		ToeBox:             ext.ToeBox,
		ArchSupport:        ext.ArchSupport,
		Durability:         ext.Durability,
		ExpectedMileageMin: ext.ExpectedMileage.Min,
		ExpectedMileageMax: ext.ExpectedMileage.Max,
		Pros:               ext.Pros,
		Cons:               ext.Cons,
		WorksWellFor:       ext.WorksWellFor,
		AvoidIf:            ext.AvoidIf,
		NotableQuotes:      ext.NotableQuotes,
		Sentiment:          ext.OverallSentiment,
		ReviewCount:        reviewCount,
		Confidence:         ext.Sizing.Confidence,
		ManualOverrides:    prior.ManualOverrides,
	}

	for _, field := range prior.ManualOverrides {
		switch field {
		case "sizing":
			fp.Sizing = prior.Sizing
		case "width":
			fp.Width = prior.Width
		case "toe_box":
			fp.ToeBox = prior.ToeBox
		case "arch_support":
			fp.ArchSupport = prior.ArchSupport
		case "durability":
			fp.Durability = prior.Durability
		case "expected_mileage":
			fp.ExpectedMileageMin = prior.ExpectedMileageMin
			fp.ExpectedMileageMax = prior.ExpectedMileageMax
		case "pros":
			fp.Pros = prior.Pros
		case "cons":
			fp.Cons = prior.Cons
		case "works_well_for":
			fp.WorksWellFor = prior.WorksWellFor
		case "avoid_if":
			fp.AvoidIf = prior.AvoidIf
		case "notable_quotes":
			fp.NotableQuotes = prior.NotableQuotes
		case "sentiment":
			fp.Sentiment = prior.Sentiment
		}
	}

	fp.NeedsReview = !(fp.ReviewCount >= e.cfg.MinReviews && fp.Confidence >= e.cfg.MinConfidence)
	return fp
}
