// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import "time"

// SizingVerdict is the consensus sizing recommendation extracted from reviews.
type SizingVerdict string

const (
	SizingTrueToSize   SizingVerdict = "true_to_size"
	SizingUpHalf       SizingVerdict = "size_up_half"
	SizingUpFull       SizingVerdict = "size_up_full"
	SizingDownHalf     SizingVerdict = "size_down_half"
	SizingUnknownValue SizingVerdict = "unknown"
)

// Valid reports whether s is a known sizing verdict.
func (s SizingVerdict) Valid() bool {
	switch s {
	case SizingTrueToSize, SizingUpHalf, SizingUpFull, SizingDownHalf, SizingUnknownValue:
		return true
	}
	return false
}

// Offset returns the verdict as a signed half-size delta.
func (s SizingVerdict) Offset() float64 {
	switch s {
	case SizingUpHalf:
		return 0.5
	case SizingUpFull:
		return 1.0
	case SizingDownHalf:
		return -0.5
	default:
		return 0
	}
}

// WidthAssessment is how a shoe zone runs relative to standard width.
type WidthAssessment string

const (
	RunsNarrow  WidthAssessment = "narrow"
	RunsNormal  WidthAssessment = "normal"
	RunsWide    WidthAssessment = "wide"
	RunsUnknown WidthAssessment = "unknown"
)

// Valid reports whether w is a known width assessment.
func (w WidthAssessment) Valid() bool {
	switch w {
	case RunsNarrow, RunsNormal, RunsWide, RunsUnknown:
		return true
	}
	return false
}

// WidthProfile assesses width per foot zone.
type WidthProfile struct {
	Forefoot WidthAssessment `json:"forefoot"`
	Midfoot  WidthAssessment `json:"midfoot"`
	Heel     WidthAssessment `json:"heel"`
}

// Valid reports whether all zones carry known assessments.
func (w WidthProfile) Valid() bool {
	return w.Forefoot.Valid() && w.Midfoot.Valid() && w.Heel.Valid()
}

// ToeBox is the reviewed toe box room.
type ToeBox string

const (
	ToeBoxNarrow  ToeBox = "narrow"
	ToeBoxMedium  ToeBox = "medium"
	ToeBoxRoomy   ToeBox = "roomy"
	ToeBoxUnknown ToeBox = "unknown"
)

// Valid reports whether t is a known toe box assessment.
func (t ToeBox) Valid() bool {
	switch t {
	case ToeBoxNarrow, ToeBoxMedium, ToeBoxRoomy, ToeBoxUnknown:
		return true
	}
	return false
}

// SupportLevel is the reviewed arch support level.
type SupportLevel string

const (
	SupportLevelLow      SupportLevel = "low"
	SupportLevelModerate SupportLevel = "moderate"
	SupportLevelHigh     SupportLevel = "high"
	SupportLevelUnknown  SupportLevel = "unknown"
)

// Valid reports whether s is a known support level.
func (s SupportLevel) Valid() bool {
	switch s {
	case SupportLevelLow, SupportLevelModerate, SupportLevelHigh, SupportLevelUnknown:
		return true
	}
	return false
}

// Durability is the reviewed durability consensus.
type Durability string

const (
	DurabilityLow     Durability = "low"
	DurabilityAverage Durability = "average"
	DurabilityHigh    Durability = "high"
	DurabilityUnknown Durability = "unknown"
)

// Valid reports whether d is a known durability rating.
func (d Durability) Valid() bool {
	switch d {
	case DurabilityLow, DurabilityAverage, DurabilityHigh, DurabilityUnknown:
		return true
	}
	return false
}

// FitProfile is the aggregated, review-derived fit knowledge for one product.
// Auto-derived fields are replaced wholesale on each successful extraction;
// fields named in ManualOverrides are preserved verbatim across extractions.
type FitProfile struct {
	ProductID string `json:"product_id"`

	Sizing SizingVerdict `json:"sizing"`
	Width  WidthProfile  `json:"width"`
	ToeBox ToeBox        `json:"toe_box"`

	ArchSupport SupportLevel `json:"arch_support"`
	Durability  Durability   `json:"durability"`

	// ExpectedMileage bounds from tester reports. Zero when unreported.
	ExpectedMileageMin int `json:"expected_mileage_min,omitempty"`
	ExpectedMileageMax int `json:"expected_mileage_max,omitempty"`

	// Pros and Cons are the top recurring points (3-5 each).
	Pros []string `json:"pros,omitempty"`
	Cons []string `json:"cons,omitempty"`

	// WorksWellFor and AvoidIf are condition keys matched against
	// UserProfile.FootIssues and gait fields.
	WorksWellFor []string `json:"works_well_for,omitempty"`
	AvoidIf      []string `json:"avoid_if,omitempty"`

	// NotableQuotes are up to three representative review excerpts.
	NotableQuotes []string `json:"notable_quotes,omitempty"`

	// Sentiment is the overall review sentiment in [0, 1].
	Sentiment float64 `json:"sentiment"`

	// ReviewCount is how many stored reviews fed the last extraction.
	ReviewCount int `json:"review_count"`

	// Confidence is the extractor's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// NeedsReview marks profiles an admin should look at before they are
	// trusted: too few reviews, low confidence, or a rejected extraction.
	NeedsReview bool `json:"needs_review"`

	// ManualOverrides lists field names an admin has pinned.
	ManualOverrides []string `json:"manual_overrides,omitempty"`

	// Extraction provenance.
	ExtractionModel string    `json:"extraction_model,omitempty"`
	ReviewSetHash   string    `json:"review_set_hash,omitempty"`
	ExtractedAt     time.Time `json:"extracted_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Overridden reports whether the named field is pinned by an admin.
func (f *FitProfile) Overridden(field string) bool {
	for _, o := range f.ManualOverrides {
		if o == field {
			return true
		}
	}
	return false
}

// EmptyFitProfile returns a profile with all enums unknown and NeedsReview
// set. Used when a product has no extraction yet.
func EmptyFitProfile(productID string) *FitProfile {
	return &FitProfile{
		ProductID: productID,
		Sizing:    SizingUnknownValue,
		Width: WidthProfile{
			Forefoot: RunsUnknown,
			Midfoot:  RunsUnknown,
			Heel:     RunsUnknown,
		},
		ToeBox:      ToeBoxUnknown,
		ArchSupport: SupportLevelUnknown,
		Durability:  DurabilityUnknown,
		Sentiment:   0.5,
		NeedsReview: true,
	}
}
