// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package api exposes the recommendation and admin HTTP surface.
//
// Every endpoint answers with the APIResponse envelope. Authentication
// is mounted by the deployment in front of this router; handlers here
// assume the caller is already authorized.
package api
