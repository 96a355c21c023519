// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import "time"

// ReviewType distinguishes expert publication reviews from user reviews.
type ReviewType string

const (
	ReviewUser   ReviewType = "user"
	ReviewExpert ReviewType = "expert"
)

// Valid reports whether r is a known review type.
func (r ReviewType) Valid() bool {
	switch r {
	case ReviewUser, ReviewExpert:
		return true
	}
	return false
}

// RawReview is a single scraped review as stored. Reviews are immutable once
// stored; re-ingesting the same (product, source, source review ID) is a
// no-op.
type RawReview struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`

	// Source is the registered source name the review came from.
	Source string `json:"source"`

	// SourceReviewID is the source's native identifier for the review.
	// Together with ProductID and Source it forms the dedup key.
	SourceReviewID string `json:"source_review_id"`

	SourceURL string `json:"source_url,omitempty"`

	ReviewerName string  `json:"reviewer_name,omitempty"`
	Rating       float64 `json:"rating,omitempty"` // normalized to 0-5, 0 = unrated
	Title        string  `json:"title,omitempty"`
	Body         string  `json:"body"`

	ReviewDate time.Time `json:"review_date,omitempty"`

	Type ReviewType `json:"type"`

	// ExpertCredentials carries publication or tester credentials for
	// expert reviews.
	ExpertCredentials string `json:"expert_credentials,omitempty"`

	// MilesTested is how long the reviewer ran in the shoe, when stated.
	MilesTested int `json:"miles_tested,omitempty"`

	// SizingComment and WidthComment are structured fit remarks some
	// sources expose separately from the body.
	SizingComment string `json:"sizing_comment,omitempty"`
	WidthComment  string `json:"width_comment,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}
