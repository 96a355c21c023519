// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package optimizer

import (
	"github.com/stridefit/stridefit/internal/models"
)

// highScoreBar marks a factor as a driver of a product's placement.
const highScoreBar = 0.7

// factorScores maps product ID to its per-factor scores for one
// example, captured by re-scoring under the current weights.
type factorScores map[string]map[string]float64

// proposeWeights runs one heuristic local-search step over the adjusted
// examples in the batch.
//
// For each product an admin moved up, every factor that product scored
// highly on accumulates upward pressure proportional to the normalized
// rank improvement and the example confidence. Pressure is applied
// once, scaled by the learning rate, and the result is clamped to the
// per-factor range.
func proposeWeights(current *models.WeightVector, examples []*models.TrainingExample, scores map[string]factorScores, learningRate float64) *models.WeightVector {
	pressure := make(map[string]float64, len(current.Factors))

	for _, ex := range examples {
		if ex.Decision != models.DecisionAdjusted {
			continue
		}
		exScores := scores[ex.ID]
		if exScores == nil {
			continue
		}

		n := len(ex.SystemRanking)
		if n < 2 {
			continue
		}

		systemRank := make(map[string]int, n)
		for i, id := range ex.SystemRanking {
			systemRank[id] = i
		}

		idealRank := make(map[string]int, len(ex.IdealRanking))
		for i, id := range ex.IdealRanking {
			idealRank[id] = i
		}

		for id, sysPos := range systemRank {
			idealPos, ok := idealRank[id]
			if !ok {
				continue
			}
			delta := sysPos - idealPos
			if delta <= 0 {
				continue
			}
			norm := float64(delta) / float64(n-1)

			for factor, score := range exScores[id] {
				if score >= highScoreBar {
					pressure[factor] += norm * ex.Confidence
				}
			}
		}
	}

	proposed := current.Clone()
	for factor, p := range pressure {
		w := proposed.Factors[factor] + learningRate*p
		if w < models.MinFactorWeight {
			w = models.MinFactorWeight
		}
		if w > models.MaxFactorWeight {
			w = models.MaxFactorWeight
		}
		proposed.Factors[factor] = w
	}
	return proposed
}
