// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package supervisor builds the suture tree that runs the long-lived
// parts of the service.
//
// The tree has three layers under one root:
//
//   - data: the DuckDB checkpointer
//   - pipeline: review ingestion, the extraction trigger consumer,
//     and the weight optimizer
//   - api: the HTTP server
//
// Layers isolate failures. A crash-looping pipeline worker backs off
// inside its own layer while the API keeps serving recommendations
// with the current fit profiles and weights.
//
// Every supervised component implements suture.Service: Serve blocks
// until its context is canceled, and String names the service in
// restart logs.
package supervisor
