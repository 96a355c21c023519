// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package api

import (
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/models"
	"github.com/stridefit/stridefit/internal/quiz"
)

// maxRequestBody caps request payloads at 1 MB.
const maxRequestBody = 1 << 20

// recommendationRequest carries either raw quiz answers or a typed
// profile. Exactly one must be present.
type recommendationRequest struct {
	Answers *quiz.Answers       `json:"answers,omitempty"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// signalRequest is an end-user interaction with a match result.
type signalRequest struct {
	Signal string `json:"signal" validate:"required,oneof=click purchase rating"`
}

// reviewRequest is an admin verdict on a match result.
type reviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected adjusted"`

	// Ranking is the full replacement ordering. Required for adjusted.
	Ranking []string `json:"ranking,omitempty"`

	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

// ingestRequest targets one product or a whole category.
type ingestRequest struct {
	ProductID string `json:"product_id,omitempty"`
	Category  string `json:"category,omitempty"`
}

// fitProfileOverrideRequest pins admin-edited fit profile fields.
// Fields named in Overrides are replaced with the values from Profile
// and survive future extractions.
type fitProfileOverrideRequest struct {
	Profile   models.FitProfile `json:"profile"`
	Overrides []string          `json:"overrides" validate:"required,min=1,dive,oneof=sizing width toe_box arch_support durability expected_mileage pros cons works_well_for avoid_if notable_quotes sentiment"`
}

// rollbackRequest selects the weight version to restore.
type rollbackRequest struct {
	Version int `json:"version" validate:"required,gte=1"`
}

// decodeJSON reads and decodes a bounded request body.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
