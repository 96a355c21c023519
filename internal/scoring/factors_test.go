// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import (
	"testing"

	"github.com/stridefit/stridefit/internal/models"
)

func TestScoreTerrain(t *testing.T) {
	tests := []struct {
		name    string
		user    models.Terrain
		shoe    models.Terrain
		want    float64
		wantApp bool
	}{
		{"exact match", models.TerrainRoad, models.TerrainRoad, 1.0, true},
		{"mixed shoe", models.TerrainTrail, models.TerrainMixed, 0.8, true},
		{"road user treadmill shoe", models.TerrainRoad, models.TerrainTreadmill, 0.9, true},
		{"treadmill user road shoe", models.TerrainTreadmill, models.TerrainRoad, 0.9, true},
		{"road user track shoe", models.TerrainRoad, models.TerrainTrack, 0.7, true},
		{"trail user road shoe", models.TerrainTrail, models.TerrainRoad, 0.4, true},
		{"unrelated pair", models.TerrainTrack, models.TerrainTrail, 0.3, true},
		{"shoe terrain missing", models.TerrainRoad, "", 0.5, true},
		{"no user terrain", "", models.TerrainRoad, 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.UserProfile{Terrain: tt.user}
			product := &models.Product{Terrain: tt.shoe}
			got := scoreTerrain(profile, product)
			if got.Score != tt.want || got.Applicable != tt.wantApp {
				t.Errorf("scoreTerrain() = (%f, %v), want (%f, %v)",
					got.Score, got.Applicable, tt.want, tt.wantApp)
			}
		})
	}
}

func TestScoreWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    models.FootWidth
		hasWide  bool
		forefoot models.WidthAssessment
		want     float64
	}{
		{"wide foot with wide variant", models.WidthWide, true, models.RunsUnknown, 1.0},
		{"wide foot roomy forefoot", models.WidthWide, false, models.RunsWide, 0.8},
		{"wide foot narrow forefoot", models.WidthWide, false, models.RunsNarrow, 0.1},
		{"wide foot no signal", models.WidthWide, false, models.RunsUnknown, 0.5},
		{"narrow foot snug forefoot", models.WidthNarrow, false, models.RunsNarrow, 0.8},
		{"narrow foot roomy forefoot", models.WidthNarrow, false, models.RunsWide, 0.1},
		{"narrow foot no signal", models.WidthNarrow, false, models.RunsUnknown, 0.5},
		{"standard foot normal forefoot", models.WidthStandard, false, models.RunsNormal, 0.9},
		{"standard foot narrow forefoot", models.WidthStandard, false, models.RunsNarrow, 0.7},
		{"unknown width", models.WidthUnknown, false, models.RunsUnknown, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.UserProfile{FootWidth: tt.width}
			c := Candidate{
				Product: &models.Product{HasWide: tt.hasWide},
				Fit:     &models.FitProfile{Width: models.WidthProfile{Forefoot: tt.forefoot}},
			}
			if got := scoreWidth(profile, c); got.Score != tt.want {
				t.Errorf("scoreWidth() = %f, want %f", got.Score, tt.want)
			}
		})
	}

	t.Run("narrow foot with narrow variant", func(t *testing.T) {
		profile := &models.UserProfile{FootWidth: models.WidthNarrow}
		c := Candidate{Product: &models.Product{HasNarrow: true}}
		if got := scoreWidth(profile, c); got.Score != 1.0 {
			t.Errorf("scoreWidth() = %f, want 1.0", got.Score)
		}
	})

	t.Run("opposite extremes are symmetric", func(t *testing.T) {
		wideInNarrow := scoreWidth(
			&models.UserProfile{FootWidth: models.WidthWide},
			Candidate{
				Product: &models.Product{},
				Fit:     &models.FitProfile{Width: models.WidthProfile{Forefoot: models.RunsNarrow}},
			},
		)
		narrowInWide := scoreWidth(
			&models.UserProfile{FootWidth: models.WidthNarrow},
			Candidate{
				Product: &models.Product{},
				Fit:     &models.FitProfile{Width: models.WidthProfile{Forefoot: models.RunsWide}},
			},
		)
		if wideInNarrow.Score != narrowInWide.Score {
			t.Errorf("opposite-extreme scores differ: %f vs %f", wideInNarrow.Score, narrowInWide.Score)
		}
		if wideInNarrow.Score > 0.1 {
			t.Errorf("opposite-extreme score = %f, want <= 0.1", wideInNarrow.Score)
		}
	})
}

func TestScorePronation(t *testing.T) {
	tests := []struct {
		name      string
		pronation models.Pronation
		support   models.Support
		want      float64
	}{
		{"overpronator stability shoe", models.PronationOver, models.SupportStability, 1.0},
		{"neutral runner stability shoe", models.PronationNeutral, models.SupportStability, 0.6},
		{"underpronator stability shoe", models.PronationUnder, models.SupportStability, 0.3},
		{"overpronator motion control", models.PronationOver, models.SupportMotionControl, 0.9},
		{"neutral runner motion control", models.PronationNeutral, models.SupportMotionControl, 0.4},
		{"underpronator motion control", models.PronationUnder, models.SupportMotionControl, 0.2},
		{"neutral runner neutral shoe", models.PronationNeutral, models.SupportNeutral, 1.0},
		{"underpronator neutral shoe", models.PronationUnder, models.SupportNeutral, 0.9},
		{"overpronator neutral shoe", models.PronationOver, models.SupportNeutral, 0.3},
		{"unknown pronation", models.PronationUnknown, models.SupportStability, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.UserProfile{Pronation: tt.pronation}
			product := &models.Product{Support: tt.support}
			if got := scorePronation(profile, product); got.Score != tt.want {
				t.Errorf("scorePronation() = %f, want %f", got.Score, tt.want)
			}
		})
	}
}

func TestScoreArch(t *testing.T) {
	tests := []struct {
		name    string
		arch    models.ArchType
		support models.Support
		want    float64
	}{
		{"flat arch stability shoe", models.ArchFlat, models.SupportStability, 1.0},
		{"neutral arch stability shoe", models.ArchNeutral, models.SupportStability, 0.7},
		{"high arch stability shoe", models.ArchHigh, models.SupportStability, 0.4},
		{"neutral arch neutral shoe", models.ArchNeutral, models.SupportNeutral, 1.0},
		{"high arch neutral shoe", models.ArchHigh, models.SupportNeutral, 0.8},
		{"flat arch neutral shoe", models.ArchFlat, models.SupportNeutral, 0.5},
		{"unknown arch", models.ArchUnknown, models.SupportNeutral, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.UserProfile{ArchType: tt.arch}
			product := &models.Product{Support: tt.support}
			if got := scoreArch(profile, product); got.Score != tt.want {
				t.Errorf("scoreArch() = %f, want %f", got.Score, tt.want)
			}
		})
	}
}

func TestScoreIssues(t *testing.T) {
	t.Run("avoid_if match is dominant", func(t *testing.T) {
		profile := &models.UserProfile{Pronation: models.PronationOver}
		c := Candidate{
			Product: &models.Product{},
			Fit: &models.FitProfile{
				WorksWellFor: []string{"forefoot strikers"},
				AvoidIf:      []string{"overpronation"},
			},
		}
		got := scoreIssues(profile, c)
		if !got.Applicable || got.Score > 0.1 {
			t.Errorf("scoreIssues() = %f, want <= 0.1 for avoid_if match", got.Score)
		}
	})

	t.Run("works_well_for boosts", func(t *testing.T) {
		profile := &models.UserProfile{FootIssues: []string{"plantar_fasciitis"}}
		c := Candidate{
			Product: &models.Product{},
			Fit:     &models.FitProfile{WorksWellFor: []string{"Plantar Fasciitis"}},
		}
		got := scoreIssues(profile, c)
		if !got.Applicable || got.Score != 1.0 {
			t.Errorf("scoreIssues() = %f, want 1.0 (boost clamped)", got.Score)
		}
	})

	t.Run("no conditions not applicable", func(t *testing.T) {
		profile := &models.UserProfile{
			Pronation: models.PronationNeutral,
			FootWidth: models.WidthStandard,
			ArchType:  models.ArchNeutral,
		}
		c := Candidate{
			Product: &models.Product{},
			Fit:     &models.FitProfile{AvoidIf: []string{"overpronation"}},
		}
		if got := scoreIssues(profile, c); got.Applicable {
			t.Error("scoreIssues() applicable without user conditions")
		}
	})

	t.Run("wide feet inferred condition", func(t *testing.T) {
		profile := &models.UserProfile{FootWidth: models.WidthWide}
		c := Candidate{
			Product: &models.Product{},
			Fit:     &models.FitProfile{AvoidIf: []string{"wide feet"}},
		}
		got := scoreIssues(profile, c)
		if got.Score != 0.1 {
			t.Errorf("scoreIssues() = %f, want 0.1 for inferred wide_feet", got.Score)
		}
	})
}

func TestScoreBudget(t *testing.T) {
	tests := []struct {
		name  string
		band  models.BudgetBand
		price float64
		want  float64
	}{
		{"in band", models.Budget100To150, 130, 1.0},
		{"under band", models.Budget100To150, 80, 0.95},
		{"slightly over", models.Budget100To150, 160, 0.8 - (160.0-150.0)/150.0*2},
		{"moderately over", models.Budget100To150, 200, 0.2},
		{"far over", models.Budget100To150, 240, 0.1},
		{"price unknown", models.Budget100To150, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.UserProfile{Budget: tt.band}
			product := &models.Product{PriceUSD: tt.price}
			got := scoreBudget(profile, product)
			if diff := got.Score - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("scoreBudget(%f) = %f, want %f", tt.price, got.Score, tt.want)
			}
		})
	}
}

func TestScoreDistance(t *testing.T) {
	t.Run("full overlap", func(t *testing.T) {
		profile := &models.UserProfile{Distances: []models.Distance{models.Distance10K}}
		product := &models.Product{Distances: []models.Distance{models.Distance5K, models.Distance10K}}
		if got := scoreDistance(profile, product); got.Score != 1.0 {
			t.Errorf("scoreDistance() = %f, want 1.0", got.Score)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		profile := &models.UserProfile{Distances: []models.Distance{models.Distance10K, models.DistanceMarathon}}
		product := &models.Product{Distances: []models.Distance{models.Distance10K}}
		if got := scoreDistance(profile, product); got.Score != 0.75 {
			t.Errorf("scoreDistance() = %f, want 0.75", got.Score)
		}
	})

	t.Run("no overlap", func(t *testing.T) {
		profile := &models.UserProfile{Distances: []models.Distance{models.DistanceUltra}}
		product := &models.Product{Distances: []models.Distance{models.Distance5K}}
		if got := scoreDistance(profile, product); got.Score != 0.2 {
			t.Errorf("scoreDistance() = %f, want 0.2", got.Score)
		}
	})

	t.Run("no user distances not applicable", func(t *testing.T) {
		profile := &models.UserProfile{}
		product := &models.Product{Distances: []models.Distance{models.Distance5K}}
		if got := scoreDistance(profile, product); got.Applicable {
			t.Error("scoreDistance() applicable without user distances")
		}
	})
}

func TestScoreHistory(t *testing.T) {
	liked := true
	disliked := false

	t.Run("liked same brand", func(t *testing.T) {
		profile := &models.UserProfile{PreviousShoes: []models.PreviousShoe{
			{Brand: "Brooks", Model: "Ghost 15", Liked: &liked},
		}}
		product := &models.Product{Brand: "Brooks"}
		got := scoreHistory(profile, product)
		if !got.Applicable || got.Score != 0.8 {
			t.Errorf("scoreHistory() = %f, want 0.8", got.Score)
		}
	})

	t.Run("disliked same product", func(t *testing.T) {
		profile := &models.UserProfile{PreviousShoes: []models.PreviousShoe{
			{ProductID: "p1", Brand: "Nike", Liked: &disliked},
		}}
		product := &models.Product{ID: "p1", Brand: "Nike"}
		got := scoreHistory(profile, product)
		if got.Score != 0.1 {
			t.Errorf("scoreHistory() = %f, want 0.1", got.Score)
		}
	})

	t.Run("no verdicts not applicable", func(t *testing.T) {
		profile := &models.UserProfile{PreviousShoes: []models.PreviousShoe{
			{Brand: "Nike", Model: "Pegasus"},
		}}
		product := &models.Product{Brand: "Nike"}
		if got := scoreHistory(profile, product); got.Applicable {
			t.Error("scoreHistory() applicable without verdicts")
		}
	})
}

func TestScoreCourt(t *testing.T) {
	tests := []struct {
		name string
		user models.Court
		shoe models.Court
		want float64
	}{
		{"exact", models.CourtIndoor, models.CourtIndoor, 1.0},
		{"all-court shoe", models.CourtIndoor, models.CourtAll, 0.9},
		{"outdoor user indoor shoe", models.CourtOutdoor, models.CourtIndoor, 0.3},
		{"indoor user outdoor shoe", models.CourtIndoor, models.CourtOutdoor, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.UserProfile{Court: tt.user}
			product := &models.Product{Court: tt.shoe}
			if got := scoreCourt(profile, product); got.Score != tt.want {
				t.Errorf("scoreCourt() = %f, want %f", got.Score, tt.want)
			}
		})
	}
}

func TestScoreSentiment(t *testing.T) {
	t.Run("no profile neutral", func(t *testing.T) {
		c := Candidate{Product: &models.Product{}}
		if got := scoreSentiment(c); got.Score != 0.5 {
			t.Errorf("scoreSentiment() = %f, want 0.5", got.Score)
		}
	})

	t.Run("passes through profile sentiment", func(t *testing.T) {
		c := Candidate{
			Product: &models.Product{},
			Fit:     &models.FitProfile{Sentiment: 0.85, ReviewCount: 12},
		}
		if got := scoreSentiment(c); got.Score != 0.85 {
			t.Errorf("scoreSentiment() = %f, want 0.85", got.Score)
		}
	})
}
