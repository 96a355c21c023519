// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stridefit/stridefit/internal/models"
)

// Engine ranks catalog candidates for a user profile.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with validated config.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Score ranks candidates for the profile under the given weight vector.
//
// Candidates outside the profile's category and discontinued products are
// filtered before scoring. Any applicable factor scoring exactly 0 excludes
// its candidate. The returned ranking is strictly ordered: score descending,
// then fit-profile sentiment descending, then product ID ascending.
func (e *Engine) Score(profile *models.UserProfile, candidates []Candidate, weights *models.WeightVector) (*models.MatchResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("nil profile")
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if weights == nil {
		return nil, fmt.Errorf("nil weight vector")
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight vector: %w", err)
	}

	strat := strategyFor(profile.Category)
	if strat == nil {
		return nil, fmt.Errorf("no strategy for category %q", profile.Category)
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Product == nil {
			return nil, fmt.Errorf("candidate with nil product")
		}
		if c.Product.Category != profile.Category || c.Product.Discontinued {
			continue
		}

		sc, ok := scoreOne(strat, profile, c, weights)
		if !ok {
			continue
		}
		if e.cfg.MinScore > 0 && sc.score < e.cfg.MinScore {
			continue
		}
		scored = append(scored, sc)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].sentiment != scored[j].sentiment {
			return scored[i].sentiment > scored[j].sentiment
		}
		return scored[i].candidate.Product.ID < scored[j].candidate.Product.ID
	})

	if len(scored) > e.cfg.MaxResults {
		scored = scored[:e.cfg.MaxResults]
	}

	entries := make([]models.MatchEntry, len(scored))
	for i, sc := range scored {
		entries[i] = models.MatchEntry{
			Rank:      i + 1,
			ProductID: sc.candidate.Product.ID,
			Score:     sc.score,
			Factors:   sc.factors,
			Reasoning: buildReasoning(sc.candidate, sc.factors, weights),
			FitNotes:  buildFitNotes(sc.candidate),
		}
	}

	result := &models.MatchResult{
		ID:               uuid.New().String(),
		Profile:          *profile,
		Entries:          entries,
		WeightVersion:    weights.Version,
		AlgorithmVersion: AlgorithmVersion,
		ReviewStatus:     models.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := result.ValidateRanking(); err != nil {
		return nil, fmt.Errorf("ranking invariant violated: %w", err)
	}
	return result, nil
}

// scoreOne evaluates all factors for one candidate and combines the
// applicable ones into a weighted mean. Returns ok=false when an applicable
// factor verdict of exactly 0 excludes the candidate.
func scoreOne(strat strategy, profile *models.UserProfile, c Candidate, weights *models.WeightVector) (scoredCandidate, bool) {
	verdicts := strat.Factors(profile, c)

	var weightedSum, weightSum float64
	factors := make(map[string]float64, len(verdicts))
	for name, verdict := range verdicts {
		if !verdict.Applicable {
			continue
		}
		if verdict.Score == 0 {
			return scoredCandidate{}, false
		}
		factors[name] = verdict.Score
		w := weights.Factors[name]
		weightedSum += w * verdict.Score
		weightSum += w
	}
	if weightSum == 0 {
		return scoredCandidate{}, false
	}

	sentiment := 0.5
	if c.Fit != nil && c.Fit.ReviewCount > 0 {
		sentiment = c.Fit.Sentiment
	}

	return scoredCandidate{
		candidate: c,
		score:     clamp(weightedSum/weightSum, 0, 1),
		factors:   factors,
		sentiment: sentiment,
	}, true
}
