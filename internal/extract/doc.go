// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package extract turns stored reviews into structured fit profiles.
//
// A deterministic sample of a product's reviews is assembled into a
// prompt and sent to a local language model. The completion must yield
// a strictly validated JSON document; any schema violation rejects the
// whole response and keeps the prior profile, flagged for review.
// Extraction is idempotent for an unchanged review set and model.
package extract
