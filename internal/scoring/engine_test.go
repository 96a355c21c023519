// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stridefit/stridefit/internal/models"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func runningProfile() *models.UserProfile {
	return &models.UserProfile{
		Category:  models.CategoryRunning,
		Terrain:   models.TerrainRoad,
		FootWidth: models.WidthStandard,
		ArchType:  models.ArchNeutral,
		Pronation: models.PronationNeutral,
		Budget:    models.Budget100To150,
		Distances: []models.Distance{models.Distance10K},
	}
}

func candidate(id string, support models.Support, price float64) Candidate {
	return Candidate{
		Product: &models.Product{
			ID:       id,
			Brand:    "Test",
			Model:    id,
			Category: models.CategoryRunning,
			Terrain:  models.TerrainRoad,
			Support:  support,
			Cushion:  models.CushionBalanced,
			PriceUSD: price,
			Distances: []models.Distance{
				models.Distance5K, models.Distance10K,
			},
		},
		Fit: &models.FitProfile{
			ProductID:   id,
			Sentiment:   0.7,
			ReviewCount: 10,
		},
	}
}

func TestScoreRankingInvariants(t *testing.T) {
	e := testEngine(t)

	candidates := []Candidate{
		candidate("shoe-a", models.SupportNeutral, 120),
		candidate("shoe-b", models.SupportStability, 130),
		candidate("shoe-c", models.SupportNeutral, 300),
		candidate("shoe-d", models.SupportMotionControl, 110),
	}

	result, err := e.Score(runningProfile(), candidates, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}

	if err := result.ValidateRanking(); err != nil {
		t.Errorf("ranking invariants violated: %v", err)
	}
	for i := 1; i < len(result.Entries); i++ {
		if result.Entries[i].Score > result.Entries[i-1].Score {
			t.Errorf("entries not sorted: rank %d score %f > rank %d score %f",
				i+1, result.Entries[i].Score, i, result.Entries[i-1].Score)
		}
	}
	for _, entry := range result.Entries {
		if entry.Score < 0 || entry.Score > 1 {
			t.Errorf("score %f outside [0,1]", entry.Score)
		}
		if entry.Reasoning == "" {
			t.Error("entry missing reasoning")
		}
	}
	if result.WeightVersion != 1 {
		t.Errorf("WeightVersion = %d, want 1", result.WeightVersion)
	}
	if result.AlgorithmVersion != AlgorithmVersion {
		t.Errorf("AlgorithmVersion = %q", result.AlgorithmVersion)
	}
	if result.ReviewStatus != models.StatusPending {
		t.Errorf("ReviewStatus = %q, want pending", result.ReviewStatus)
	}
}

func TestScoreCategoryFilter(t *testing.T) {
	e := testEngine(t)

	hoops := candidate("bball-1", models.SupportNeutral, 120)
	hoops.Product.Category = models.CategoryBasketball

	result, err := e.Score(runningProfile(), []Candidate{
		candidate("run-1", models.SupportNeutral, 120),
		hoops,
	}, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}

	for _, entry := range result.Entries {
		if entry.ProductID == "bball-1" {
			t.Error("cross-category product appeared in ranking")
		}
	}
	if len(result.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(result.Entries))
	}
}

func TestScoreExcludesDiscontinued(t *testing.T) {
	e := testEngine(t)

	gone := candidate("gone", models.SupportNeutral, 120)
	gone.Product.Discontinued = true

	result, err := e.Score(runningProfile(), []Candidate{gone}, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("discontinued product ranked: %v", result.Entries)
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := testEngine(t)

	candidates := []Candidate{
		candidate("shoe-a", models.SupportNeutral, 120),
		candidate("shoe-b", models.SupportStability, 130),
		candidate("shoe-c", models.SupportNeutral, 110),
	}

	first, err := e.Score(runningProfile(), candidates, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Score(runningProfile(), candidates, models.DefaultWeights())
		if err != nil {
			t.Fatalf("Score() error: %v", err)
		}
		if !reflect.DeepEqual(first.ProductIDs(), again.ProductIDs()) {
			t.Fatalf("ranking not deterministic: %v vs %v",
				first.ProductIDs(), again.ProductIDs())
		}
		for j := range first.Entries {
			if first.Entries[j].Score != again.Entries[j].Score {
				t.Fatalf("scores not deterministic at rank %d", j+1)
			}
		}
	}
}

func TestScoreTieBreak(t *testing.T) {
	e := testEngine(t)

	// Identical products except sentiment, then except ID.
	a := candidate("aaa", models.SupportNeutral, 120)
	b := candidate("bbb", models.SupportNeutral, 120)
	b.Fit.Sentiment = 0.9

	result, err := e.Score(runningProfile(), []Candidate{a, b}, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	// Sentiment is a scored factor, so b outranks a on score alone; with
	// equal sentiment the ID decides.
	if result.Entries[0].ProductID != "bbb" {
		t.Errorf("rank 1 = %s, want bbb (higher sentiment)", result.Entries[0].ProductID)
	}

	c := candidate("ccc", models.SupportNeutral, 120)
	d := candidate("ddd", models.SupportNeutral, 120)
	result, err = e.Score(runningProfile(), []Candidate{d, c}, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if result.Entries[0].ProductID != "ccc" {
		t.Errorf("rank 1 = %s, want ccc (ID tie-break)", result.Entries[0].ProductID)
	}
}

// A wide-footed overpronator must rank a stability shoe with a wide variant
// above a neutral narrow shoe whose reviews warn off overpronators, and the
// warned shoe's issue factor must collapse.
func TestScoreWideFootOverpronator(t *testing.T) {
	e := testEngine(t)

	profile := &models.UserProfile{
		Category:  models.CategoryRunning,
		Terrain:   models.TerrainRoad,
		FootWidth: models.WidthWide,
		ArchType:  models.ArchFlat,
		Pronation: models.PronationOver,
		Budget:    models.Budget100To150,
	}

	shoeA := Candidate{
		Product: &models.Product{
			ID:       "shoe-a",
			Brand:    "BrandA",
			Model:    "Stable Wide",
			Category: models.CategoryRunning,
			Terrain:  models.TerrainRoad,
			Support:  models.SupportStability,
			Cushion:  models.CushionBalanced,
			PriceUSD: 130,
			HasWide:  true,
		},
		Fit: &models.FitProfile{
			ProductID:    "shoe-a",
			Sentiment:    0.7,
			ReviewCount:  20,
			WorksWellFor: []string{"overpronation", "wide feet"},
		},
	}
	shoeB := Candidate{
		Product: &models.Product{
			ID:       "shoe-b",
			Brand:    "BrandB",
			Model:    "Neutral Narrow",
			Category: models.CategoryRunning,
			Terrain:  models.TerrainRoad,
			Support:  models.SupportNeutral,
			Cushion:  models.CushionBalanced,
			PriceUSD: 130,
		},
		Fit: &models.FitProfile{
			ProductID:   "shoe-b",
			Sentiment:   0.8,
			ReviewCount: 20,
			Width:       models.WidthProfile{Forefoot: models.RunsNarrow},
			AvoidIf:     []string{"overpronation"},
		},
	}

	result, err := e.Score(profile, []Candidate{shoeB, shoeA}, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(result.Entries))
	}
	if result.Entries[0].ProductID != "shoe-a" {
		t.Errorf("rank 1 = %s, want shoe-a", result.Entries[0].ProductID)
	}

	var issueFactor float64
	for _, entry := range result.Entries {
		if entry.ProductID == "shoe-b" {
			issueFactor = entry.Factors[models.FactorIssues]
		}
	}
	if issueFactor > 0.1 {
		t.Errorf("shoe-b issue factor = %f, want <= 0.1", issueFactor)
	}
}

func TestScoreMaxResults(t *testing.T) {
	e, err := NewEngine(Config{MaxResults: 2})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	candidates := []Candidate{
		candidate("a", models.SupportNeutral, 120),
		candidate("b", models.SupportNeutral, 125),
		candidate("c", models.SupportNeutral, 130),
	}
	result, err := e.Score(runningProfile(), candidates, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Errorf("len(Entries) = %d, want 2", len(result.Entries))
	}
	if err := result.ValidateRanking(); err != nil {
		t.Errorf("truncated ranking invalid: %v", err)
	}
}

func TestScoreEmptyCatalog(t *testing.T) {
	e := testEngine(t)

	result, err := e.Score(runningProfile(), nil, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("len(Entries) = %d, want 0", len(result.Entries))
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	e := testEngine(t)

	t.Run("invalid profile", func(t *testing.T) {
		p := runningProfile()
		p.Category = "hiking"
		if _, err := e.Score(p, nil, models.DefaultWeights()); err == nil {
			t.Error("Score() = nil error for invalid profile")
		}
	})

	t.Run("invalid weights", func(t *testing.T) {
		w := models.DefaultWeights()
		delete(w.Factors, models.FactorBudget)
		if _, err := e.Score(runningProfile(), nil, w); err == nil {
			t.Error("Score() = nil error for invalid weights")
		}
	})

	t.Run("nil weights", func(t *testing.T) {
		if _, err := e.Score(runningProfile(), nil, nil); err == nil {
			t.Error("Score() = nil error for nil weights")
		}
	})
}

func TestScoreBasketballUsesPositionFactors(t *testing.T) {
	e := testEngine(t)

	profile := &models.UserProfile{
		Category:  models.CategoryBasketball,
		Court:     models.CourtOutdoor,
		Position:  models.PositionGuard,
		FootWidth: models.WidthStandard,
		ArchType:  models.ArchNeutral,
		Pronation: models.PronationNeutral,
		Budget:    models.Budget100To150,
	}
	c := Candidate{
		Product: &models.Product{
			ID:        "bb-1",
			Brand:     "Hoop",
			Model:     "Fast Guard",
			Category:  models.CategoryBasketball,
			Court:     models.CourtOutdoor,
			Support:   models.SupportNeutral,
			Cushion:   models.CushionBalanced,
			PriceUSD:  120,
			Positions: []models.Position{models.PositionGuard},
		},
		Fit: &models.FitProfile{ProductID: "bb-1", Sentiment: 0.7, ReviewCount: 5},
	}

	result, err := e.Score(profile, []Candidate{c}, models.DefaultWeights())
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(result.Entries))
	}

	factors := result.Entries[0].Factors
	if _, ok := factors[models.FactorCourt]; !ok {
		t.Error("basketball entry missing court factor")
	}
	if _, ok := factors[models.FactorPosition]; !ok {
		t.Error("basketball entry missing position factor")
	}
	if _, ok := factors[models.FactorTerrain]; ok {
		t.Error("basketball entry carries running terrain factor")
	}
	// Gait factors are running-specific and must stay out of the mean
	// even when the profile states a pronation and arch type.
	if _, ok := factors[models.FactorPronation]; ok {
		t.Error("basketball entry carries pronation factor")
	}
	if _, ok := factors[models.FactorArch]; ok {
		t.Error("basketball entry carries arch factor")
	}
}

func TestBuildReasoning(t *testing.T) {
	c := candidate("shoe-a", models.SupportStability, 120)

	t.Run("renders top factors", func(t *testing.T) {
		factors := map[string]float64{
			models.FactorBudget:    1.0,
			models.FactorTerrain:   1.0,
			models.FactorPronation: 0.4,
		}
		got := buildReasoning(c, factors, models.DefaultWeights())
		if !strings.HasPrefix(got, "The Test shoe-a ") {
			t.Errorf("reasoning = %q, want product name prefix", got)
		}
		if !strings.Contains(got, "budget") || !strings.Contains(got, "road") {
			t.Errorf("reasoning = %q, want budget and terrain phrases", got)
		}
		if strings.Contains(got, "<") || strings.Contains(got, "%!") {
			t.Errorf("reasoning contains formatting artifacts: %q", got)
		}
	})

	t.Run("generic fallback", func(t *testing.T) {
		factors := map[string]float64{models.FactorBudget: 0.2}
		got := buildReasoning(c, factors, models.DefaultWeights())
		if !strings.Contains(got, "strong overall match") {
			t.Errorf("reasoning = %q, want generic fallback", got)
		}
	})
}

func TestBuildFitNotes(t *testing.T) {
	c := Candidate{
		Product: &models.Product{},
		Fit: &models.FitProfile{
			Sizing: models.SizingUpHalf,
			Width:  models.WidthProfile{Forefoot: models.RunsNarrow},
			Pros:   []string{"light", "responsive", "durable outsole", "good lockdown"},
			Cons:   []string{"thin tongue"},
		},
	}

	notes := buildFitNotes(c)
	if notes.Sizing != "Consider going up half a size" {
		t.Errorf("Sizing = %q", notes.Sizing)
	}
	if notes.Width != "Forefoot runs narrow" {
		t.Errorf("Width = %q", notes.Width)
	}
	if len(notes.Highlights) != 3 {
		t.Errorf("len(Highlights) = %d, want 3 (capped)", len(notes.Highlights))
	}
	if len(notes.Considerations) != 1 {
		t.Errorf("len(Considerations) = %d, want 1", len(notes.Considerations))
	}

	t.Run("nil fit profile", func(t *testing.T) {
		empty := buildFitNotes(Candidate{Product: &models.Product{}})
		if empty.Sizing != "" || len(empty.Highlights) != 0 {
			t.Errorf("nil fit profile produced notes: %+v", empty)
		}
	})
}
