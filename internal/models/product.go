// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package models

import "time"

// Category identifies a shoe category. Each category has its own factor set
// in the scoring engine; cross-category matches are never produced.
type Category string

const (
	CategoryRunning    Category = "running"
	CategoryBasketball Category = "basketball"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryRunning, CategoryBasketball:
		return true
	}
	return false
}

// Terrain is the primary surface a running shoe is built for.
type Terrain string

const (
	TerrainRoad      Terrain = "road"
	TerrainTrail     Terrain = "trail"
	TerrainTrack     Terrain = "track"
	TerrainTreadmill Terrain = "treadmill"
	TerrainMixed     Terrain = "mixed"
)

// Valid reports whether t is a known terrain.
func (t Terrain) Valid() bool {
	switch t {
	case TerrainRoad, TerrainTrail, TerrainTrack, TerrainTreadmill, TerrainMixed:
		return true
	}
	return false
}

// Court is the surface a basketball shoe is built for.
type Court string

const (
	CourtIndoor  Court = "indoor"
	CourtOutdoor Court = "outdoor"
	CourtAll     Court = "all"
)

// Valid reports whether c is a known court surface.
func (c Court) Valid() bool {
	switch c {
	case CourtIndoor, CourtOutdoor, CourtAll:
		return true
	}
	return false
}

// Support is the stability class of a shoe.
type Support string

const (
	SupportNeutral       Support = "neutral"
	SupportStability     Support = "stability"
	SupportMotionControl Support = "motion_control"
)

// Valid reports whether s is a known support class.
func (s Support) Valid() bool {
	switch s {
	case SupportNeutral, SupportStability, SupportMotionControl:
		return true
	}
	return false
}

// Cushion is the midsole feel of a shoe.
type Cushion string

const (
	CushionSoft     Cushion = "soft"
	CushionBalanced Cushion = "balanced"
	CushionFirm     Cushion = "firm"
)

// Valid reports whether c is a known cushion level.
func (c Cushion) Valid() bool {
	switch c {
	case CushionSoft, CushionBalanced, CushionFirm:
		return true
	}
	return false
}

// Distance is a race or training distance a running shoe targets.
type Distance string

const (
	Distance5K       Distance = "5k"
	Distance10K      Distance = "10k"
	DistanceHalf     Distance = "half_marathon"
	DistanceMarathon Distance = "marathon"
	DistanceUltra    Distance = "ultra"
)

// Valid reports whether d is a known distance.
func (d Distance) Valid() bool {
	switch d {
	case Distance5K, Distance10K, DistanceHalf, DistanceMarathon, DistanceUltra:
		return true
	}
	return false
}

// Position is a basketball playing position a shoe targets.
type Position string

const (
	PositionGuard   Position = "guard"
	PositionForward Position = "forward"
	PositionCenter  Position = "center"
)

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	switch p {
	case PositionGuard, PositionForward, PositionCenter:
		return true
	}
	return false
}

// Product is a read-only catalog view of a shoe model. The recommendation
// pipeline never mutates products; the catalog is owned by an external
// collaborator and synced into the store.
type Product struct {
	// ID is the catalog identifier.
	ID string `json:"id"`

	// Brand and Model form the display name.
	Brand string `json:"brand"`
	Model string `json:"model"`

	// Category selects the scoring strategy. Required.
	Category Category `json:"category"`

	// Subcategory refines the category (daily_trainer, racing, tempo...).
	Subcategory string `json:"subcategory,omitempty"`

	// Terrain is the primary surface. Running only.
	Terrain Terrain `json:"terrain,omitempty"`

	// Court is the target court surface. Basketball only.
	Court Court `json:"court,omitempty"`

	// Support is the stability class.
	Support Support `json:"support"`

	// Cushion is the midsole feel.
	Cushion Cushion `json:"cushion"`

	// PriceUSD is the current list price.
	PriceUSD float64 `json:"price_usd"`

	// WeightGrams is the weight of a single shoe in a reference size.
	WeightGrams float64 `json:"weight_grams,omitempty"`

	// DropMM is the heel-to-toe drop.
	DropMM float64 `json:"drop_mm,omitempty"`

	// StackHeightMM is the heel stack height.
	StackHeightMM float64 `json:"stack_height_mm,omitempty"`

	// HasWide and HasNarrow report available width variants.
	HasWide   bool `json:"has_wide"`
	HasNarrow bool `json:"has_narrow"`

	// Distances lists the distances the shoe targets. Running only.
	Distances []Distance `json:"distances,omitempty"`

	// Positions lists the playing positions the shoe targets. Basketball only.
	Positions []Position `json:"positions,omitempty"`

	// Discontinued products stay scoreable for history matching but are
	// excluded from new recommendations.
	Discontinued bool `json:"discontinued,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns "Brand Model" for reasoning templates.
func (p *Product) DisplayName() string {
	return p.Brand + " " + p.Model
}

// TargetsDistance reports whether the product lists d as a target distance.
func (p *Product) TargetsDistance(d Distance) bool {
	for _, pd := range p.Distances {
		if pd == d {
			return true
		}
	}
	return false
}

// TargetsPosition reports whether the product lists pos as a target position.
func (p *Product) TargetsPosition(pos Position) bool {
	for _, pp := range p.Positions {
		if pp == pos {
			return true
		}
	}
	return false
}
