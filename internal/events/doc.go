// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package events carries extraction triggers from the ingestion
// pipeline to the fit extractor over an in-process Watermill bus.
// Triggers are fire-and-forget: the consumer deduplicates repeat
// triggers for the same product inside a configurable window so a
// burst of ingest jobs produces one extraction.
package events
