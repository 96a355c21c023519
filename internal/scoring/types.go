// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import "github.com/stridefit/stridefit/internal/models"

// Candidate pairs a catalog product with its fit profile for scoring.
// A nil FitProfile is treated as an empty profile with neutral sentiment.
type Candidate struct {
	Product *models.Product
	Fit     *models.FitProfile
}

// factorScore is one factor's verdict for a candidate.
type factorScore struct {
	// Score in [0, 1]. Exactly 0 excludes the candidate.
	Score float64

	// Applicable is false when the request carries no signal for this
	// factor. Inapplicable factors are left out of the weighted mean.
	Applicable bool
}

// notApplicable is the verdict for factors the request gives no signal for.
var notApplicable = factorScore{Score: 1.0, Applicable: false}

// applicable wraps a score as an applicable factor verdict.
func applicable(score float64) factorScore {
	return factorScore{Score: score, Applicable: true}
}

// strategy is the per-category factor set. Strategies are stateless; the
// engine selects one per request from a closed registry.
type strategy interface {
	// Name returns the category the strategy serves.
	Name() models.Category

	// Factors evaluates every factor for the candidate. Keys are the
	// factor names from the models package.
	Factors(profile *models.UserProfile, c Candidate) map[string]factorScore
}

// scoredCandidate carries intermediate scoring state before ranking.
type scoredCandidate struct {
	candidate Candidate
	score     float64
	factors   map[string]float64
	sentiment float64
}
