// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package ingest fetches product reviews from configured external
// sources and stores them for fit extraction.
//
// Sources are config-driven JSON review endpoints behind a shared HTTP
// client with per-source rate limiting and circuit breaking. A worker
// pool drains ingestion jobs; jobs for the same product are serialized
// so two runs never interleave writes for one shoe. A run that stores
// at least one new review publishes a single extraction trigger.
package ingest
