// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import (
	"sort"

	"github.com/stridefit/stridefit/internal/models"
)

// reasonThreshold is the minimum factor score that may appear as a reason.
// A factor the shoe barely passed is not a selling point.
const reasonThreshold = 0.7

// buildReasoning renders a one-sentence justification from the two factors
// that contributed most to the score. Falls back to a generic sentence when
// fewer than two factors clear the threshold.
func buildReasoning(c Candidate, factors map[string]float64, weights *models.WeightVector) string {
	type contribution struct {
		name  string
		value float64
	}

	contribs := make([]contribution, 0, len(factors))
	for name, score := range factors {
		if score < reasonThreshold {
			continue
		}
		contribs = append(contribs, contribution{name: name, value: weights.Factors[name] * score})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].value != contribs[j].value {
			return contribs[i].value > contribs[j].value
		}
		return contribs[i].name < contribs[j].name
	})

	name := c.Product.DisplayName()
	if len(contribs) < 2 {
		return "The " + name + " is a strong overall match for your profile."
	}

	first := reasonPhrase(contribs[0].name, c)
	second := reasonPhrase(contribs[1].name, c)
	return "The " + name + " " + first + " and " + second + "."
}

// reasonPhrase renders the per-factor reason fragment. Phrases depend only
// on product and fit-profile fields that are known to be set; a missing
// optional field falls through to a generic fragment.
func reasonPhrase(factor string, c Candidate) string {
	switch factor {
	case models.FactorTerrain:
		if c.Product.Terrain != "" {
			return "is built for " + string(c.Product.Terrain) + " running"
		}
		return "handles your usual surfaces well"
	case models.FactorCourt:
		if c.Product.Court != "" && c.Product.Court != models.CourtAll {
			return "is made for " + string(c.Product.Court) + " courts"
		}
		return "holds up on any court"
	case models.FactorBudget:
		return "fits your budget"
	case models.FactorPronation:
		if c.Product.Support == models.SupportNeutral {
			return "keeps a natural, neutral ride"
		}
		return "provides structured support for your stride"
	case models.FactorIssues:
		return "gets strong marks from people with similar foot concerns"
	case models.FactorWidth:
		switch {
		case c.Product.HasWide:
			return "comes in a wide fit"
		case c.Product.HasNarrow:
			return "comes in a narrow fit"
		default:
			return "matches your foot width well"
		}
	case models.FactorArch:
		return "works well for your arch type"
	case models.FactorPriorities:
		return "lines up with what matters most to you"
	case models.FactorCushion:
		switch c.Product.Cushion {
		case models.CushionSoft:
			return "delivers the plush ride you prefer"
		case models.CushionFirm:
			return "delivers the firm, responsive ride you prefer"
		default:
			return "delivers a balanced ride"
		}
	case models.FactorDistance:
		return "covers the distances you train for"
	case models.FactorPosition:
		return "suits how you play your position"
	case models.FactorHistory:
		return "comes from a brand that has worked for you before"
	case models.FactorSentiment:
		return "earns consistently positive reviews"
	default:
		return "scores well across the board"
	}
}

const maxNoteItems = 3

// buildFitNotes renders the per-entry fit guidance from the fit profile.
// Unknown fields render as empty lines, never as placeholder text.
func buildFitNotes(c Candidate) models.FitNotes {
	var notes models.FitNotes
	if c.Fit == nil {
		return notes
	}

	switch c.Fit.Sizing {
	case models.SizingTrueToSize:
		notes.Sizing = "Runs true to size"
	case models.SizingUpHalf:
		notes.Sizing = "Consider going up half a size"
	case models.SizingUpFull:
		notes.Sizing = "Consider going up a full size"
	case models.SizingDownHalf:
		notes.Sizing = "Consider going down half a size"
	}

	switch c.Fit.Width.Forefoot {
	case models.RunsNarrow:
		notes.Width = "Forefoot runs narrow"
	case models.RunsWide:
		notes.Width = "Forefoot runs roomy"
	case models.RunsNormal:
		notes.Width = "Standard width through the forefoot"
	}

	notes.Highlights = firstN(c.Fit.Pros, maxNoteItems)
	notes.Considerations = firstN(c.Fit.Cons, maxNoteItems)
	return notes
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		if len(items) == 0 {
			return nil
		}
		out := make([]string, len(items))
		copy(out, items)
		return out
	}
	out := make([]string, n)
	copy(out, items[:n])
	return out
}
