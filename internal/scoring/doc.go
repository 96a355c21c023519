// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package scoring implements the deterministic multi-factor match engine.
//
// Score is a pure function of its inputs: a user profile, the candidate
// catalog with fit profiles, and a weight vector. It performs no I/O and
// holds no mutable state, so identical inputs always produce identical
// rankings. Side effects (persistence, caching, weight resolution) belong
// to the callers.
//
// Each category (running, basketball) has its own factor strategy drawn
// from a closed set. Factors score in [0, 1]; factors that do not apply to
// a request contribute a neutral 1.0 through exclusion from the weighted
// mean rather than by skewing it. A factor score of exactly 0 excludes the
// product outright.
package scoring
