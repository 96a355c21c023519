// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import (
	"fmt"
	"time"
)

// Factor names. The scoring engine and the optimizer agree on these keys;
// a weight vector must cover exactly this set.
const (
	FactorTerrain    = "terrain"
	FactorCourt      = "court"
	FactorBudget     = "budget"
	FactorPronation  = "pronation"
	FactorIssues     = "issues"
	FactorWidth      = "width"
	FactorArch       = "arch"
	FactorPriorities = "priorities"
	FactorCushion    = "cushion"
	FactorDistance   = "distance"
	FactorPosition   = "position"
	FactorHistory    = "history"
	FactorSentiment  = "sentiment"
)

// FactorNames lists every factor key in stable order.
func FactorNames() []string {
	return []string{
		FactorTerrain, FactorCourt, FactorBudget, FactorPronation,
		FactorIssues, FactorWidth, FactorArch, FactorPriorities,
		FactorCushion, FactorDistance, FactorPosition, FactorHistory,
		FactorSentiment,
	}
}

// WeightSource records how a weight vector version came to be.
type WeightSource string

const (
	WeightSourceSeed      WeightSource = "seed"
	WeightSourceOptimizer WeightSource = "optimizer"
	WeightSourceRollback  WeightSource = "rollback"
)

// Valid reports whether s is a known weight source.
func (s WeightSource) Valid() bool {
	switch s {
	case WeightSourceSeed, WeightSourceOptimizer, WeightSourceRollback:
		return true
	}
	return false
}

// WeightVector is one versioned set of factor weights. Exactly one version
// is active at a time; history is never deleted.
type WeightVector struct {
	// Version is a monotonically increasing integer assigned by the store.
	Version int `json:"version"`

	// Factors maps factor name to its positive weight.
	Factors map[string]float64 `json:"factors"`

	Active bool `json:"active"`

	Source WeightSource `json:"source"`

	// HoldoutNDCG is the hold-out ranking quality measured when the
	// vector was promoted. Zero for the seed vector.
	HoldoutNDCG float64 `json:"holdout_ndcg,omitempty"`

	// ParentVersion is the version this one was derived from.
	ParentVersion int `json:"parent_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Weight bounds enforced on every stored vector. The optimizer clamps
// proposals into this range before evaluation.
const (
	MinFactorWeight = 0.1
	MaxFactorWeight = 5.0
)

// Validate checks that the vector covers exactly the known factor set with
// in-bounds positive weights.
func (w *WeightVector) Validate() error {
	names := FactorNames()
	if len(w.Factors) != len(names) {
		return fmt.Errorf("weight vector has %d factors, want %d", len(w.Factors), len(names))
	}
	for _, name := range names {
		weight, ok := w.Factors[name]
		if !ok {
			return fmt.Errorf("weight vector missing factor %q", name)
		}
		if weight < MinFactorWeight || weight > MaxFactorWeight {
			return fmt.Errorf("factor %q weight %f outside [%f, %f]",
				name, weight, MinFactorWeight, MaxFactorWeight)
		}
	}
	return nil
}

// Clone returns a deep copy with the same factors.
func (w *WeightVector) Clone() *WeightVector {
	factors := make(map[string]float64, len(w.Factors))
	for k, v := range w.Factors {
		factors[k] = v
	}
	clone := *w
	clone.Factors = factors
	return &clone
}

// DefaultWeights returns the seed weight vector used before any optimizer
// run has promoted a trained one.
func DefaultWeights() *WeightVector {
	return &WeightVector{
		Version: 1,
		Factors: map[string]float64{
			FactorBudget:     2.5,
			FactorTerrain:    2.0,
			FactorCourt:      2.0,
			FactorPronation:  1.8,
			FactorIssues:     1.8,
			FactorWidth:      1.5,
			FactorArch:       1.3,
			FactorPriorities: 1.3,
			FactorCushion:    1.2,
			FactorDistance:   1.0,
			FactorPosition:   1.0,
			FactorHistory:    0.8,
			FactorSentiment:  0.5,
		},
		Active: true,
		Source: WeightSourceSeed,
	}
}
