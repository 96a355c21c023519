// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package quiz

import (
	"reflect"
	"testing"

	"github.com/stridefit/stridefit/internal/models"
)

func TestBuildBasic(t *testing.T) {
	answers := &Answers{
		Category:     "running",
		Terrain:      "road",
		FootWidth:    "wide",
		ArchType:     "flat",
		Pronation:    "overpronation",
		Budget:       "100_150",
		DistanceBand: "mid",
		Priorities:   []string{"cushioning", "durability"},
	}

	profile, err := Build(answers)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if profile.Category != models.CategoryRunning {
		t.Errorf("Category = %q", profile.Category)
	}
	if profile.FootWidth != models.WidthWide {
		t.Errorf("FootWidth = %q", profile.FootWidth)
	}
	want := []models.Distance{models.Distance5K, models.Distance10K, models.DistanceHalf}
	if !reflect.DeepEqual(profile.Distances, want) {
		t.Errorf("Distances = %v, want %v", profile.Distances, want)
	}
	if len(profile.Priorities) != 2 {
		t.Errorf("Priorities = %v", profile.Priorities)
	}
}

func TestBuildRejectsUnknownCategory(t *testing.T) {
	_, err := Build(&Answers{Category: "crossfit", Budget: "100_150"})
	if err == nil {
		t.Error("Build() = nil error for unknown category")
	}
}

func TestBuildRejectsUnknownEnumValues(t *testing.T) {
	tests := []struct {
		name    string
		answers Answers
	}{
		{"bad budget", Answers{Category: "running", Budget: "free"}},
		{"bad terrain", Answers{Category: "running", Budget: "100_150", Terrain: "beach"}},
		{"bad distance", Answers{Category: "running", Budget: "100_150", Distances: []string{"50k"}}},
		{"bad distance band", Answers{Category: "running", Budget: "100_150", DistanceBand: "epic"}},
		{"bad priority", Answers{Category: "running", Budget: "100_150", Priorities: []string{"looks"}}},
		{"too many priorities", Answers{Category: "running", Budget: "100_150",
			Priorities: []string{"cushioning", "stability", "lightness", "durability"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(&tt.answers); err == nil {
				t.Error("Build() = nil error, want rejection")
			}
		})
	}
}

func TestBuildUnansweredDefaultsToUnknown(t *testing.T) {
	profile, err := Build(&Answers{Category: "running", Budget: "under_100"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if profile.FootWidth != models.WidthUnknown {
		t.Errorf("FootWidth = %q, want unknown", profile.FootWidth)
	}
	if profile.ArchType != models.ArchUnknown {
		t.Errorf("ArchType = %q, want unknown", profile.ArchType)
	}
	if profile.Pronation != models.PronationUnknown {
		t.Errorf("Pronation = %q, want unknown", profile.Pronation)
	}
}

func TestBuildInfersFromIssues(t *testing.T) {
	t.Run("bunions imply wide feet", func(t *testing.T) {
		profile, err := Build(&Answers{
			Category:   "running",
			Budget:     "under_100",
			FootIssues: []string{"bunions"},
		})
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if profile.FootWidth != models.WidthWide {
			t.Errorf("FootWidth = %q, want wide", profile.FootWidth)
		}
	})

	t.Run("flat feet imply overpronation", func(t *testing.T) {
		profile, err := Build(&Answers{
			Category:   "running",
			Budget:     "under_100",
			FootIssues: []string{"Flat Feet"},
		})
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if profile.ArchType != models.ArchFlat {
			t.Errorf("ArchType = %q, want flat", profile.ArchType)
		}
		if profile.Pronation != models.PronationOver {
			t.Errorf("Pronation = %q, want overpronation", profile.Pronation)
		}
	})

	t.Run("explicit answer wins over inference", func(t *testing.T) {
		profile, err := Build(&Answers{
			Category:   "running",
			Budget:     "under_100",
			Pronation:  "neutral",
			FootIssues: []string{"flat_feet"},
		})
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if profile.Pronation != models.PronationNeutral {
			t.Errorf("Pronation = %q, want explicit neutral", profile.Pronation)
		}
	})
}

func TestBuildExplicitDistancesOverrideBand(t *testing.T) {
	profile, err := Build(&Answers{
		Category:     "running",
		Budget:       "under_100",
		DistanceBand: "short",
		Distances:    []string{"marathon"},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := []models.Distance{models.DistanceMarathon}
	if !reflect.DeepEqual(profile.Distances, want) {
		t.Errorf("Distances = %v, want %v", profile.Distances, want)
	}
}

func TestBuildPreviousShoes(t *testing.T) {
	liked := true
	profile, err := Build(&Answers{
		Category: "running",
		Budget:   "under_100",
		PreviousShoes: []PreviousShoeAnswer{
			{Brand: " Brooks ", Model: "Ghost 15", Liked: &liked},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(profile.PreviousShoes) != 1 {
		t.Fatalf("PreviousShoes = %v", profile.PreviousShoes)
	}
	if profile.PreviousShoes[0].Brand != "Brooks" {
		t.Errorf("Brand = %q, want trimmed Brooks", profile.PreviousShoes[0].Brand)
	}

	t.Run("missing brand rejected", func(t *testing.T) {
		_, err := Build(&Answers{
			Category:      "running",
			Budget:        "under_100",
			PreviousShoes: []PreviousShoeAnswer{{Model: "Mystery"}},
		})
		if err == nil {
			t.Error("Build() = nil error for previous shoe without brand")
		}
	})
}

func TestBuildBasketball(t *testing.T) {
	profile, err := Build(&Answers{
		Category: "basketball",
		Court:    "outdoor",
		Position: "guard",
		Budget:   "150_200",
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if profile.Court != models.CourtOutdoor || profile.Position != models.PositionGuard {
		t.Errorf("profile = %+v", profile)
	}
}
