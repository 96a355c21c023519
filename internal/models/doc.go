// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package models defines the typed domain records shared across the
// recommendation pipeline: catalog products, user profiles, aggregated fit
// profiles, raw reviews, match results, training examples, and weight
// vectors.
//
// All enumerations are closed string sets with Valid() methods. Values are
// checked at system boundaries (API decode, LLM extraction, storage reads);
// inside the pipeline an invalid enum value is a programming error.
package models
