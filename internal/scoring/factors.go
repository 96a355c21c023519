// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package scoring

import (
	"strings"

	"github.com/stridefit/stridefit/internal/models"
)

// terrainCross scores non-exact terrain pairs. Keys are (user, shoe);
// lookups fall back to the reversed pair, then to terrainDefault.
var terrainCross = map[[2]models.Terrain]float64{
	{models.TerrainRoad, models.TerrainTreadmill}: 0.9,
	{models.TerrainRoad, models.TerrainTrack}:     0.7,
	{models.TerrainTrail, models.TerrainRoad}:     0.4,
}

const (
	terrainMixed   = 0.8
	terrainDefault = 0.3
	terrainMissing = 0.5
)

// scoreTerrain rates surface compatibility for running shoes.
func scoreTerrain(profile *models.UserProfile, product *models.Product) factorScore {
	if profile.Terrain == "" {
		return notApplicable
	}
	if product.Terrain == "" {
		return applicable(terrainMissing)
	}
	if profile.Terrain == product.Terrain {
		return applicable(1.0)
	}
	if product.Terrain == models.TerrainMixed || profile.Terrain == models.TerrainMixed {
		return applicable(terrainMixed)
	}
	if v, ok := terrainCross[[2]models.Terrain{profile.Terrain, product.Terrain}]; ok {
		return applicable(v)
	}
	if v, ok := terrainCross[[2]models.Terrain{product.Terrain, profile.Terrain}]; ok {
		return applicable(v)
	}
	return applicable(terrainDefault)
}

// scoreCourt rates court-surface compatibility for basketball shoes.
// Outdoor players in indoor-only shoes shred outsoles, hence the asymmetry.
func scoreCourt(profile *models.UserProfile, product *models.Product) factorScore {
	if profile.Court == "" {
		return notApplicable
	}
	if product.Court == "" {
		return applicable(0.5)
	}
	if profile.Court == product.Court || product.Court == models.CourtAll {
		if product.Court == models.CourtAll && profile.Court != models.CourtAll {
			return applicable(0.9)
		}
		return applicable(1.0)
	}
	if profile.Court == models.CourtOutdoor && product.Court == models.CourtIndoor {
		return applicable(0.3)
	}
	return applicable(0.7)
}

// scoreWidth rates the fit of the shoe's width options and reviewed width
// behavior against the user's foot width. The table is symmetric: a wide
// foot in a narrow-running shoe scores the same as a narrow foot in a
// wide-running one, and both opposite-extreme pairs bottom out at 0.1.
func scoreWidth(profile *models.UserProfile, c Candidate) factorScore {
	forefoot := models.RunsUnknown
	if c.Fit != nil {
		forefoot = c.Fit.Width.Forefoot
	}

	switch profile.FootWidth {
	case models.WidthWide:
		if c.Product.HasWide {
			return applicable(1.0)
		}
		switch forefoot {
		case models.RunsWide:
			return applicable(0.8)
		case models.RunsNarrow:
			return applicable(0.1)
		default:
			return applicable(0.5)
		}
	case models.WidthNarrow:
		if c.Product.HasNarrow {
			return applicable(1.0)
		}
		switch forefoot {
		case models.RunsNarrow:
			return applicable(0.8)
		case models.RunsWide:
			return applicable(0.1)
		default:
			return applicable(0.5)
		}
	case models.WidthStandard:
		switch forefoot {
		case models.RunsNarrow, models.RunsWide:
			return applicable(0.7)
		default:
			return applicable(0.9)
		}
	default:
		return applicable(0.6)
	}
}

// scoreArch rates arch compatibility against the shoe's support class.
func scoreArch(profile *models.UserProfile, product *models.Product) factorScore {
	if profile.ArchType == models.ArchUnknown || profile.ArchType == "" {
		return applicable(0.6)
	}

	switch product.Support {
	case models.SupportStability, models.SupportMotionControl:
		switch profile.ArchType {
		case models.ArchFlat:
			return applicable(1.0)
		case models.ArchNeutral:
			return applicable(0.7)
		case models.ArchHigh:
			return applicable(0.4)
		}
	case models.SupportNeutral:
		switch profile.ArchType {
		case models.ArchNeutral:
			return applicable(1.0)
		case models.ArchHigh:
			return applicable(0.8)
		case models.ArchFlat:
			return applicable(0.5)
		}
	}
	return applicable(0.6)
}

// scorePronation rates gait compatibility against the shoe's support class.
func scorePronation(profile *models.UserProfile, product *models.Product) factorScore {
	if profile.Pronation == models.PronationUnknown || profile.Pronation == "" {
		return applicable(0.6)
	}

	switch product.Support {
	case models.SupportStability:
		switch profile.Pronation {
		case models.PronationOver:
			return applicable(1.0)
		case models.PronationNeutral:
			return applicable(0.6)
		case models.PronationUnder:
			return applicable(0.3)
		}
	case models.SupportMotionControl:
		switch profile.Pronation {
		case models.PronationOver:
			return applicable(0.9)
		case models.PronationNeutral:
			return applicable(0.4)
		case models.PronationUnder:
			return applicable(0.2)
		}
	case models.SupportNeutral:
		switch profile.Pronation {
		case models.PronationNeutral:
			return applicable(1.0)
		case models.PronationUnder:
			return applicable(0.9)
		case models.PronationOver:
			return applicable(0.3)
		}
	}
	return applicable(0.6)
}

const (
	issueFloor      = 0.1
	issueAvoidScore = 0.1
	issueBoost      = 1.2
	issuePenalty    = 0.7
)

// scoreIssues rates the shoe against the user's foot issues and gait using
// the review-derived works_well_for / avoid_if lists. An avoid_if match is
// dominant: reviewers explicitly warn this shoe off for the condition.
func scoreIssues(profile *models.UserProfile, c Candidate) factorScore {
	if c.Fit == nil {
		return notApplicable
	}
	conditions := userConditions(profile)
	if len(conditions) == 0 {
		return notApplicable
	}
	if len(c.Fit.WorksWellFor) == 0 && len(c.Fit.AvoidIf) == 0 {
		return notApplicable
	}

	for _, avoid := range c.Fit.AvoidIf {
		if conditions[normalizeCondition(avoid)] {
			return applicable(issueAvoidScore)
		}
	}

	score := 1.0
	matched := false
	for _, works := range c.Fit.WorksWellFor {
		if conditions[normalizeCondition(works)] {
			score *= issueBoost
			matched = true
		}
	}
	for _, con := range c.Fit.Cons {
		if conditions[normalizeCondition(con)] {
			score *= issuePenalty
			matched = true
		}
	}
	if !matched {
		return notApplicable
	}
	return applicable(clamp(score, issueFloor, 1.0))
}

// userConditions collects the normalized condition keys a user carries:
// explicit foot issues plus gait and width descriptors.
func userConditions(profile *models.UserProfile) map[string]bool {
	conditions := make(map[string]bool, len(profile.FootIssues)+3)
	for _, issue := range profile.FootIssues {
		conditions[normalizeCondition(issue)] = true
	}
	if profile.Pronation == models.PronationOver {
		conditions["overpronation"] = true
	}
	if profile.Pronation == models.PronationUnder {
		conditions["underpronation"] = true
	}
	if profile.FootWidth == models.WidthWide {
		conditions["wide_feet"] = true
	}
	if profile.FootWidth == models.WidthNarrow {
		conditions["narrow_feet"] = true
	}
	if profile.ArchType == models.ArchFlat {
		conditions["flat_feet"] = true
	}
	if profile.ArchType == models.ArchHigh {
		conditions["high_arches"] = true
	}
	return conditions
}

// normalizeCondition lowercases and snake_cases a condition key so that
// extracted phrases ("Plantar Fasciitis") match questionnaire keys.
func normalizeCondition(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// scoreCushion rates the midsole feel against the stated preference.
func scoreCushion(profile *models.UserProfile, product *models.Product) factorScore {
	if profile.CushionPreference == "" {
		return notApplicable
	}
	if product.Cushion == "" {
		return applicable(0.5)
	}
	if profile.CushionPreference == product.Cushion {
		return applicable(1.0)
	}
	// soft and firm are opposites; everything else is adjacent.
	opposite := (profile.CushionPreference == models.CushionSoft && product.Cushion == models.CushionFirm) ||
		(profile.CushionPreference == models.CushionFirm && product.Cushion == models.CushionSoft)
	if opposite {
		return applicable(0.4)
	}
	return applicable(0.7)
}

// Reference weights for the lightness priority, grams per shoe.
const (
	lightWeightGrams = 240
	midWeightGrams   = 280
)

// scorePriorities rates the shoe against the user's ranked priorities.
// Earlier priorities weigh 1/(rank+1) heavier.
func scorePriorities(profile *models.UserProfile, c Candidate) factorScore {
	if len(profile.Priorities) == 0 {
		return notApplicable
	}

	var sum, weightSum float64
	for i, priority := range profile.Priorities {
		w := 1.0 / float64(i+1)
		sum += w * priorityScore(priority, c)
		weightSum += w
	}
	return applicable(sum / weightSum)
}

func priorityScore(priority models.Priority, c Candidate) float64 {
	switch priority {
	case models.PriorityCushioning:
		switch c.Product.Cushion {
		case models.CushionSoft:
			return 1.0
		case models.CushionBalanced:
			return 0.7
		case models.CushionFirm:
			return 0.3
		}
		return 0.5
	case models.PriorityStability:
		if c.Product.Support != models.SupportNeutral {
			return 1.0
		}
		return 0.4
	case models.PriorityLightness:
		switch {
		case c.Product.WeightGrams == 0:
			return 0.5
		case c.Product.WeightGrams < lightWeightGrams:
			return 1.0
		case c.Product.WeightGrams < midWeightGrams:
			return 0.7
		default:
			return 0.4
		}
	case models.PriorityDurability:
		if c.Fit == nil {
			return 0.5
		}
		switch c.Fit.Durability {
		case models.DurabilityHigh:
			return 1.0
		case models.DurabilityAverage:
			return 0.7
		case models.DurabilityLow:
			return 0.2
		}
		return 0.5
	case models.PriorityBreathability:
		if c.Fit != nil && mentionsAny(c.Fit.Pros, "breathab", "ventilat") {
			return 1.0
		}
		if c.Fit != nil && mentionsAny(c.Fit.Cons, "hot", "breathab") {
			return 0.3
		}
		return 0.6
	case models.PriorityPrice:
		switch {
		case c.Product.PriceUSD == 0:
			return 0.5
		case c.Product.PriceUSD < 110:
			return 1.0
		case c.Product.PriceUSD < 150:
			return 0.7
		default:
			return 0.4
		}
	}
	return 0.5
}

func mentionsAny(entries []string, substrings ...string) bool {
	for _, entry := range entries {
		lower := strings.ToLower(entry)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				return true
			}
		}
	}
	return false
}

// scoreDistance rates use-case overlap between the user's target distances
// and the distances the shoe is built for.
func scoreDistance(profile *models.UserProfile, product *models.Product) factorScore {
	if len(profile.Distances) == 0 {
		return notApplicable
	}
	if len(product.Distances) == 0 {
		return applicable(0.5)
	}

	matches := 0
	for _, d := range profile.Distances {
		if product.TargetsDistance(d) {
			matches++
		}
	}
	if matches == 0 {
		return applicable(0.2)
	}
	frac := float64(matches) / float64(len(profile.Distances))
	return applicable(0.5 + 0.5*frac)
}

// positionAdjacent pairs share enough movement profile for partial credit.
var positionAdjacent = map[[2]models.Position]bool{
	{models.PositionGuard, models.PositionForward}:  true,
	{models.PositionForward, models.PositionCenter}: true,
}

// scorePosition rates playing-position fit for basketball shoes.
func scorePosition(profile *models.UserProfile, product *models.Product) factorScore {
	if profile.Position == "" {
		return notApplicable
	}
	if len(product.Positions) == 0 {
		return applicable(0.5)
	}
	if product.TargetsPosition(profile.Position) {
		return applicable(1.0)
	}
	for _, p := range product.Positions {
		if positionAdjacent[[2]models.Position{profile.Position, p}] ||
			positionAdjacent[[2]models.Position{p, profile.Position}] {
			return applicable(0.6)
		}
	}
	return applicable(0.3)
}

// scoreBudget rates price fit with smooth degradation above the band.
// Slightly over budget stays competitive; far over collapses.
func scoreBudget(profile *models.UserProfile, product *models.Product) factorScore {
	if !profile.Budget.Valid() {
		return notApplicable
	}
	min, max := profile.Budget.Range()
	price := product.PriceUSD

	switch {
	case price <= 0:
		return applicable(0.5)
	case price >= min && price <= max:
		return applicable(1.0)
	case price < min:
		return applicable(0.95)
	}

	overPct := (price - max) / max
	switch {
	case overPct > 0.5:
		return applicable(0.1)
	case overPct > 0.25:
		return applicable(0.2)
	default:
		return applicable(clamp(0.8-overPct*2, 0.3, 1.0))
	}
}

// scoreHistory rates the shoe against the user's verdicts on shoes they
// have owned. Brand-level signal only; no verdicts means no signal.
func scoreHistory(profile *models.UserProfile, product *models.Product) factorScore {
	var sum float64
	var n int
	for _, prev := range profile.PreviousShoes {
		if prev.Liked == nil {
			continue
		}
		sameProduct := prev.ProductID != "" && prev.ProductID == product.ID
		sameBrand := strings.EqualFold(prev.Brand, product.Brand)

		switch {
		case sameProduct && *prev.Liked:
			sum += 1.0
		case sameProduct && !*prev.Liked:
			sum += 0.1
		case sameBrand && *prev.Liked:
			sum += 0.8
		case sameBrand && !*prev.Liked:
			sum += 0.4
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return notApplicable
	}
	return applicable(sum / float64(n))
}

// scoreSentiment passes through the review-derived sentiment. Products with
// no reviewed profile sit at the neutral midpoint.
func scoreSentiment(c Candidate) factorScore {
	if c.Fit == nil || c.Fit.ReviewCount == 0 {
		return applicable(0.5)
	}
	return applicable(clamp(c.Fit.Sentiment, 0, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
