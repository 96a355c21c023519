// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package optimizer tunes the scoring weight vector from accumulated
// admin feedback.
//
// The proposal step is a heuristic local search, not a gradient method:
// for products that admins ranked higher than the system did, the
// factors those products scored highly on receive upward pressure
// proportional to the rank improvement and the example's confidence.
// Proposed weights are clamped per factor.
//
// A proposed vector is promoted only when it scores at least as well as
// the active vector, within a configured tolerance, on a deterministic
// hold-out split measured with NDCG. All vectors are retained so any
// version can be rolled back to.
package optimizer
