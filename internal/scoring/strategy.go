// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import "github.com/stridefit/stridefit/internal/models"

// strategies is the closed registry of category strategies. Adding a
// category means adding a strategy here; there is no dynamic registration.
var strategies = map[models.Category]strategy{
	models.CategoryRunning:    runningStrategy{},
	models.CategoryBasketball: basketballStrategy{},
}

// strategyFor returns the strategy for a category, or nil if unknown.
func strategyFor(category models.Category) strategy {
	return strategies[category]
}

// runningStrategy scores running shoes: surface, gait, and distance factors
// apply; court and position never do.
type runningStrategy struct{}

func (runningStrategy) Name() models.Category { return models.CategoryRunning }

func (runningStrategy) Factors(profile *models.UserProfile, c Candidate) map[string]factorScore {
	return map[string]factorScore{
		models.FactorTerrain:    scoreTerrain(profile, c.Product),
		models.FactorBudget:     scoreBudget(profile, c.Product),
		models.FactorPronation:  scorePronation(profile, c.Product),
		models.FactorIssues:     scoreIssues(profile, c),
		models.FactorWidth:      scoreWidth(profile, c),
		models.FactorArch:       scoreArch(profile, c.Product),
		models.FactorPriorities: scorePriorities(profile, c),
		models.FactorCushion:    scoreCushion(profile, c.Product),
		models.FactorDistance:   scoreDistance(profile, c.Product),
		models.FactorHistory:    scoreHistory(profile, c.Product),
		models.FactorSentiment:  scoreSentiment(c),
	}
}

// basketballStrategy scores basketball shoes: court and position replace
// the running-only surface and distance factors. Pronation and arch are
// gait factors for runners; here they sit out of the weighted mean.
type basketballStrategy struct{}

func (basketballStrategy) Name() models.Category { return models.CategoryBasketball }

func (basketballStrategy) Factors(profile *models.UserProfile, c Candidate) map[string]factorScore {
	return map[string]factorScore{
		models.FactorCourt:      scoreCourt(profile, c.Product),
		models.FactorBudget:     scoreBudget(profile, c.Product),
		models.FactorPronation:  notApplicable,
		models.FactorIssues:     scoreIssues(profile, c),
		models.FactorWidth:      scoreWidth(profile, c),
		models.FactorArch:       notApplicable,
		models.FactorPriorities: scorePriorities(profile, c),
		models.FactorCushion:    scoreCushion(profile, c.Product),
		models.FactorPosition:   scorePosition(profile, c.Product),
		models.FactorHistory:    scoreHistory(profile, c.Product),
		models.FactorSentiment:  scoreSentiment(c),
	}
}
