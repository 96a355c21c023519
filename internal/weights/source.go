// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package weights holds the active weight vector for the serving path.
package weights

import (
	"sync/atomic"

	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
)

// Source publishes the active weight vector. Scoring reads it through
// an atomic pointer, so promotions and rollbacks never block a request.
type Source struct {
	active atomic.Pointer[models.WeightVector]
}

// NewSource seeds the source with the initially active vector.
func NewSource(wv *models.WeightVector) *Source {
	s := &Source{}
	s.SetActive(wv)
	return s
}

// Active returns the current vector. Callers must not mutate it.
func (s *Source) Active() *models.WeightVector {
	return s.active.Load()
}

// SetActive swaps in a new vector. Satisfies the optimizer's sink
// contract.
func (s *Source) SetActive(wv *models.WeightVector) {
	s.active.Store(wv)
	metrics.ActiveWeightVersion.Set(float64(wv.Version))
}
