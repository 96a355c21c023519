// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package quiz converts raw questionnaire answers into a typed UserProfile.
//
// The builder is the synchronous validation boundary for end-user input:
// unknown categories, enum values, and malformed answers are rejected here
// with descriptive errors before anything reaches the scoring engine.
// Missing gait and width answers are inferred from reported foot issues
// where the issue implies them.
package quiz

import (
	"fmt"
	"strings"

	"github.com/stridefit/stridefit/internal/models"
)

// Answers is the raw questionnaire payload. String fields are enum keys;
// empty means unanswered.
type Answers struct {
	Category string `json:"category" validate:"required"`

	// Running answers.
	Terrain      string   `json:"terrain,omitempty"`
	DistanceBand string   `json:"distance_band,omitempty"` // short, mid, long
	Distances    []string `json:"distances,omitempty"`     // explicit, overrides band

	// Basketball answers.
	Court    string `json:"court,omitempty"`
	Position string `json:"position,omitempty"`

	FootWidth  string   `json:"foot_width,omitempty"`
	ArchType   string   `json:"arch_type,omitempty"`
	Pronation  string   `json:"pronation,omitempty"`
	FootIssues []string `json:"foot_issues,omitempty"`

	Cushion    string   `json:"cushion,omitempty"`
	Priorities []string `json:"priorities,omitempty"`

	Budget string `json:"budget" validate:"required"`

	PreviousShoes []PreviousShoeAnswer `json:"previous_shoes,omitempty"`
}

// PreviousShoeAnswer is one shoe the user reported owning.
type PreviousShoeAnswer struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Liked *bool  `json:"liked,omitempty"`
}

// Distance bands map a rough answer to concrete target distances.
var distanceBands = map[string][]models.Distance{
	"short": {models.Distance5K},
	"mid":   {models.Distance5K, models.Distance10K, models.DistanceHalf},
	"long":  {models.DistanceMarathon, models.DistanceUltra},
}

// Issues that imply a width, arch, or gait answer when the direct question
// went unanswered.
var (
	wideIssues = map[string]bool{"bunions": true, "wide_feet": true, "morton_neuroma": true}
	flatIssues = map[string]bool{"flat_feet": true, "fallen_arches": true}
	highIssues = map[string]bool{"high_arches": true, "supination": true}
)

// Build converts answers into a validated UserProfile.
func Build(a *Answers) (*models.UserProfile, error) {
	if a == nil {
		return nil, fmt.Errorf("nil answers")
	}

	profile := &models.UserProfile{
		Category:          models.Category(a.Category),
		Terrain:           models.Terrain(a.Terrain),
		Court:             models.Court(a.Court),
		Position:          models.Position(a.Position),
		FootWidth:         widthOrUnknown(a.FootWidth),
		ArchType:          archOrUnknown(a.ArchType),
		Pronation:         pronationOrUnknown(a.Pronation),
		CushionPreference: models.Cushion(a.Cushion),
		Budget:            models.BudgetBand(a.Budget),
	}

	for _, issue := range a.FootIssues {
		profile.FootIssues = append(profile.FootIssues, normalizeKey(issue))
	}
	inferFromIssues(profile)

	distances, err := resolveDistances(a)
	if err != nil {
		return nil, err
	}
	profile.Distances = distances

	for _, p := range a.Priorities {
		profile.Priorities = append(profile.Priorities, models.Priority(normalizeKey(p)))
	}

	for _, prev := range a.PreviousShoes {
		if strings.TrimSpace(prev.Brand) == "" {
			return nil, fmt.Errorf("previous shoe missing brand")
		}
		profile.PreviousShoes = append(profile.PreviousShoes, models.PreviousShoe{
			Brand: strings.TrimSpace(prev.Brand),
			Model: strings.TrimSpace(prev.Model),
			Liked: prev.Liked,
		})
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz answers: %w", err)
	}
	return profile, nil
}

// inferFromIssues fills unanswered width, arch, and gait fields from issues
// that imply them. Explicit answers always win.
func inferFromIssues(profile *models.UserProfile) {
	for _, issue := range profile.FootIssues {
		if profile.FootWidth == models.WidthUnknown && wideIssues[issue] {
			profile.FootWidth = models.WidthWide
		}
		if flatIssues[issue] {
			if profile.ArchType == models.ArchUnknown {
				profile.ArchType = models.ArchFlat
			}
			if profile.Pronation == models.PronationUnknown {
				profile.Pronation = models.PronationOver
			}
		}
		if highIssues[issue] {
			if profile.ArchType == models.ArchUnknown {
				profile.ArchType = models.ArchHigh
			}
			if profile.Pronation == models.PronationUnknown {
				profile.Pronation = models.PronationUnder
			}
		}
	}
}

func resolveDistances(a *Answers) ([]models.Distance, error) {
	if len(a.Distances) > 0 {
		out := make([]models.Distance, 0, len(a.Distances))
		for _, d := range a.Distances {
			dist := models.Distance(normalizeKey(d))
			if !dist.Valid() {
				return nil, fmt.Errorf("unknown distance %q", d)
			}
			out = append(out, dist)
		}
		return out, nil
	}
	if a.DistanceBand == "" {
		return nil, nil
	}
	band, ok := distanceBands[normalizeKey(a.DistanceBand)]
	if !ok {
		return nil, fmt.Errorf("unknown distance band %q", a.DistanceBand)
	}
	out := make([]models.Distance, len(band))
	copy(out, band)
	return out, nil
}

func widthOrUnknown(s string) models.FootWidth {
	if s == "" {
		return models.WidthUnknown
	}
	return models.FootWidth(normalizeKey(s))
}

func archOrUnknown(s string) models.ArchType {
	if s == "" {
		return models.ArchUnknown
	}
	return models.ArchType(normalizeKey(s))
}

func pronationOrUnknown(s string) models.Pronation {
	if s == "" {
		return models.PronationUnknown
	}
	return models.Pronation(normalizeKey(s))
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
