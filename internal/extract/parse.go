// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/models"
)

// extraction is the wire shape the model is asked to produce. Any field
// outside this shape rejects the whole response.
type extraction struct {
	Sizing struct {
		Verdict    models.SizingVerdict `json:"verdict"`
		Confidence float64              `json:"confidence"`
		Notes      string               `json:"notes"`
	} `json:"sizing"`
	Width struct {
		Forefoot models.WidthAssessment `json:"forefoot"`
		Midfoot  models.WidthAssessment `json:"midfoot"`
		Heel     models.WidthAssessment `json:"heel"`
	} `json:"width"`
	ToeBox          models.ToeBox       `json:"toe_box"`
	ArchSupport     models.SupportLevel `json:"arch_support"`
	Durability      models.Durability   `json:"durability"`
	ExpectedMileage struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"expected_mileage"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	WorksWellFor     []string `json:"works_well_for"`
	AvoidIf          []string `json:"avoid_if"`
	NotableQuotes    []string `json:"notable_quotes"`
	OverallSentiment float64  `json:"overall_sentiment"`
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fencedPattern     = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// extractJSON pulls the JSON object out of a model completion. Models
// wrap output in code fences or prose despite instructions, so try
// fenced blocks first, then the outermost brace pair, then the raw
// text.
func extractJSON(completion string) string {
	if m := fencedJSONPattern.FindStringSubmatch(completion); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedPattern.FindStringSubmatch(completion); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(completion, "{")
	end := strings.LastIndex(completion, "}")
	if start >= 0 && end > start {
		return completion[start : end+1]
	}
	return strings.TrimSpace(completion)
}

const (
	maxProsAndCons = 5
	maxQuotes      = 3
)

// parseExtraction decodes and validates a model completion. A single
// invalid field rejects the entire response so a garbled extraction
// never half-updates a profile.
func parseExtraction(completion string) (*extraction, error) {
	raw := extractJSON(completion)

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var ext extraction
	if err := dec.Decode(&ext); err != nil {
		return nil, fmt.Errorf("failed to decode extraction: %w", err)
	}

	if err := validateExtraction(&ext); err != nil {
		return nil, err
	}

	ext.Pros = capList(ext.Pros, maxProsAndCons)
	ext.Cons = capList(ext.Cons, maxProsAndCons)
	ext.NotableQuotes = capList(ext.NotableQuotes, maxQuotes)

	return &ext, nil
}

func validateExtraction(ext *extraction) error {
	if !ext.Sizing.Verdict.Valid() {
		return fmt.Errorf("invalid sizing verdict %q", ext.Sizing.Verdict)
	}
	if ext.Sizing.Confidence < 0 || ext.Sizing.Confidence > 1 {
		return fmt.Errorf("sizing confidence %v out of range", ext.Sizing.Confidence)
	}
	if !ext.Width.Forefoot.Valid() {
		return fmt.Errorf("invalid forefoot width %q", ext.Width.Forefoot)
	}
	if !ext.Width.Midfoot.Valid() {
		return fmt.Errorf("invalid midfoot width %q", ext.Width.Midfoot)
	}
	if !ext.Width.Heel.Valid() {
		return fmt.Errorf("invalid heel width %q", ext.Width.Heel)
	}
	if !ext.ToeBox.Valid() {
		return fmt.Errorf("invalid toe box %q", ext.ToeBox)
	}
	if !ext.ArchSupport.Valid() {
		return fmt.Errorf("invalid arch support %q", ext.ArchSupport)
	}
	if !ext.Durability.Valid() {
		return fmt.Errorf("invalid durability %q", ext.Durability)
	}
	if ext.ExpectedMileage.Min < 0 || ext.ExpectedMileage.Max < 0 {
		return fmt.Errorf("negative expected mileage")
	}
	if ext.ExpectedMileage.Max > 0 && ext.ExpectedMileage.Min > ext.ExpectedMileage.Max {
		return fmt.Errorf("expected mileage min %d exceeds max %d", ext.ExpectedMileage.Min, ext.ExpectedMileage.Max)
	}
	if ext.OverallSentiment < 0 || ext.OverallSentiment > 1 {
		return fmt.Errorf("overall sentiment %v out of range", ext.OverallSentiment)
	}
	return nil
}

func capList(items []string, max int) []string {
	cleaned := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) > max {
		cleaned = cleaned[:max]
	}
	return cleaned
}
