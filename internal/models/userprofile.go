// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import "fmt"

// FootWidth is the user's self-reported or inferred foot width.
type FootWidth string

const (
	WidthNarrow   FootWidth = "narrow"
	WidthStandard FootWidth = "standard"
	WidthWide     FootWidth = "wide"
	WidthUnknown  FootWidth = "unknown"
)

// Valid reports whether w is a known foot width.
func (w FootWidth) Valid() bool {
	switch w {
	case WidthNarrow, WidthStandard, WidthWide, WidthUnknown:
		return true
	}
	return false
}

// ArchType is the user's arch profile.
type ArchType string

const (
	ArchFlat    ArchType = "flat"
	ArchNeutral ArchType = "neutral"
	ArchHigh    ArchType = "high"
	ArchUnknown ArchType = "unknown"
)

// Valid reports whether a is a known arch type.
func (a ArchType) Valid() bool {
	switch a {
	case ArchFlat, ArchNeutral, ArchHigh, ArchUnknown:
		return true
	}
	return false
}

// Pronation is the user's gait pattern.
type Pronation string

const (
	PronationNeutral Pronation = "neutral"
	PronationOver    Pronation = "overpronation"
	PronationUnder   Pronation = "underpronation"
	PronationUnknown Pronation = "unknown"
)

// Valid reports whether p is a known pronation pattern.
func (p Pronation) Valid() bool {
	switch p {
	case PronationNeutral, PronationOver, PronationUnder, PronationUnknown:
		return true
	}
	return false
}

// BudgetBand is a price range selected in the questionnaire.
type BudgetBand string

const (
	BudgetUnder100 BudgetBand = "under_100"
	Budget100To150 BudgetBand = "100_150"
	Budget150To200 BudgetBand = "150_200"
	Budget150Plus  BudgetBand = "150_plus"
)

// Valid reports whether b is a known budget band.
func (b BudgetBand) Valid() bool {
	switch b {
	case BudgetUnder100, Budget100To150, Budget150To200, Budget150Plus:
		return true
	}
	return false
}

// Range returns the (min, max] price bounds of the band in USD.
func (b BudgetBand) Range() (min, max float64) {
	switch b {
	case BudgetUnder100:
		return 0, 100
	case Budget100To150:
		return 100, 150
	case Budget150To200:
		return 150, 200
	case Budget150Plus:
		return 150, 500
	default:
		return 0, 500
	}
}

// Priority is a property the user cares most about, in ranked order.
type Priority string

// MaxPriorities caps how many ranked priorities a profile may state.
const MaxPriorities = 3

const (
	PriorityCushioning    Priority = "cushioning"
	PriorityStability     Priority = "stability"
	PriorityLightness     Priority = "lightness"
	PriorityDurability    Priority = "durability"
	PriorityBreathability Priority = "breathability"
	PriorityPrice         Priority = "price"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCushioning, PriorityStability, PriorityLightness,
		PriorityDurability, PriorityBreathability, PriorityPrice:
		return true
	}
	return false
}

// PreviousShoe is a shoe the user has run or played in, with their verdict.
type PreviousShoe struct {
	// ProductID is set when the shoe was matched to the catalog.
	ProductID string `json:"product_id,omitempty"`

	Brand string `json:"brand"`
	Model string `json:"model"`

	// Liked is nil when the user gave no verdict.
	Liked *bool `json:"liked,omitempty"`
}

// UserProfile is the typed questionnaire output that drives scoring.
// Profiles are request-scoped: the engine never stores them outside the
// MatchResult snapshot.
type UserProfile struct {
	// Category selects the scoring strategy. Required.
	Category Category `json:"category"`

	// Terrain is where the user mostly runs. Running only.
	Terrain Terrain `json:"terrain,omitempty"`

	// Court is where the user mostly plays. Basketball only.
	Court Court `json:"court,omitempty"`

	// Position is the user's playing position. Basketball only.
	Position Position `json:"position,omitempty"`

	FootWidth FootWidth `json:"foot_width"`
	ArchType  ArchType  `json:"arch_type"`
	Pronation Pronation `json:"pronation"`

	// FootIssues are free-form issue keys from the questionnaire
	// (bunions, plantar_fasciitis, shin_splints, ...). Matched against
	// fit profile works_well_for / avoid_if lists.
	FootIssues []string `json:"foot_issues,omitempty"`

	// Distances the user trains for. Running only.
	Distances []Distance `json:"distances,omitempty"`

	// CushionPreference is the preferred midsole feel, if stated.
	CushionPreference Cushion `json:"cushion_preference,omitempty"`

	// Priorities in ranked order, most important first. At most
	// MaxPriorities entries.
	Priorities []Priority `json:"priorities,omitempty"`

	Budget BudgetBand `json:"budget"`

	// PreviousShoes the user has owned, for the history factor.
	PreviousShoes []PreviousShoe `json:"previous_shoes,omitempty"`
}

// Validate checks all enum fields and category-specific requirements.
func (u *UserProfile) Validate() error {
	if !u.Category.Valid() {
		return fmt.Errorf("unknown category %q", u.Category)
	}
	if !u.FootWidth.Valid() {
		return fmt.Errorf("unknown foot width %q", u.FootWidth)
	}
	if !u.ArchType.Valid() {
		return fmt.Errorf("unknown arch type %q", u.ArchType)
	}
	if !u.Pronation.Valid() {
		return fmt.Errorf("unknown pronation %q", u.Pronation)
	}
	if !u.Budget.Valid() {
		return fmt.Errorf("unknown budget band %q", u.Budget)
	}
	if u.Terrain != "" && !u.Terrain.Valid() {
		return fmt.Errorf("unknown terrain %q", u.Terrain)
	}
	if u.Court != "" && !u.Court.Valid() {
		return fmt.Errorf("unknown court %q", u.Court)
	}
	if u.Position != "" && !u.Position.Valid() {
		return fmt.Errorf("unknown position %q", u.Position)
	}
	if u.CushionPreference != "" && !u.CushionPreference.Valid() {
		return fmt.Errorf("unknown cushion preference %q", u.CushionPreference)
	}
	for _, d := range u.Distances {
		if !d.Valid() {
			return fmt.Errorf("unknown distance %q", d)
		}
	}
	if len(u.Priorities) > MaxPriorities {
		return fmt.Errorf("at most %d priorities, got %d", MaxPriorities, len(u.Priorities))
	}
	for _, p := range u.Priorities {
		if !p.Valid() {
			return fmt.Errorf("unknown priority %q", p)
		}
	}
	return nil
}
