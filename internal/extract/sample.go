// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/stridefit/stridefit/internal/models"
)

// sampleReviews picks the most informative reviews deterministically:
// longest body first, then oldest review date, then source and ID for a
// total order. Returns at most max reviews.
func sampleReviews(reviews []*models.RawReview, max int) []*models.RawReview {
	sorted := make([]*models.RawReview, len(reviews))
	copy(sorted, reviews)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if len(a.Body) != len(b.Body) {
			return len(a.Body) > len(b.Body)
		}
		if !a.ReviewDate.Equal(b.ReviewDate) {
			return a.ReviewDate.Before(b.ReviewDate)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.SourceReviewID < b.SourceReviewID
	})

	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

// reviewSetHash fingerprints a review sample and the model so an
// unchanged pair never re-runs extraction. Order-insensitive over
// review identities.
func reviewSetHash(reviews []*models.RawReview, model string) string {
	keys := make([]string, len(reviews))
	for i, r := range reviews {
		keys[i] = r.Source + "|" + r.SourceReviewID
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(model))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
	}
	return hex.EncodeToString(h.Sum(nil))
}

const promptTemplate = `You are analyzing %s shoe reviews to extract a consensus fit summary.

REVIEWS FOR: %s
Number of reviews: %d

REVIEWS:
%s

Based on these reviews, extract the following information. Be concise and accurate.
Return ONLY valid JSON with no explanation.

{
  "sizing": {
    "verdict": "true_to_size" or "size_up_half" or "size_up_full" or "size_down_half" or "unknown",
    "confidence": 0.0 to 1.0 (how confident based on reviewer consensus),
    "notes": "brief note if sizing is conditional or varies"
  },
  "width": {
    "forefoot": "narrow" or "normal" or "wide" or "unknown",
    "midfoot": "narrow" or "normal" or "wide" or "unknown",
    "heel": "narrow" or "normal" or "wide" or "unknown"
  },
  "toe_box": "narrow" or "medium" or "roomy" or "unknown",
  "arch_support": "low" or "moderate" or "high" or "unknown",
  "durability": "low" or "average" or "high" or "unknown",
  "expected_mileage": {"min": 0, "max": 0},
  "pros": ["top pro 1", "top pro 2", "top pro 3"],
  "cons": ["top con 1", "top con 2", "top con 3"],
  "works_well_for": ["type of runner this shoe is ideal for"],
  "avoid_if": ["who should avoid this shoe"],
  "notable_quotes": ["a memorable quote from a review"],
  "overall_sentiment": 0.0 to 1.0 (0=negative, 1=positive)
}

JSON only:`

// buildPrompt renders the extraction prompt with per-review and total
// character caps.
func buildPrompt(product *models.Product, reviews []*models.RawReview, maxCharsPerReview, maxTotalChars int) string {
	if maxCharsPerReview <= 0 {
		maxCharsPerReview = 1500
	}
	if maxTotalChars <= 0 {
		maxTotalChars = 6000
	}

	var b strings.Builder
	total := 0
	included := 0
	for _, r := range reviews {
		body := truncateOnRune(r.Body, maxCharsPerReview)

		marker := "[USER]"
		if r.Type == models.ReviewExpert {
			marker = "[EXPERT]"
		}
		reviewer := r.ReviewerName
		if reviewer == "" {
			reviewer = "Anonymous"
		}
		rating := "N/A"
		if r.Rating > 0 {
			rating = fmt.Sprintf("%.1f", r.Rating)
		}

		text := fmt.Sprintf("\n---\n%s Review by %s (Rating: %s)\n%s\n---\n", marker, reviewer, rating, body)
		if total+len(text) > maxTotalChars {
			break
		}
		b.WriteString(text)
		total += len(text)
		included++
	}

	return fmt.Sprintf(promptTemplate, product.Category, product.DisplayName(), included, b.String())
}

// truncateOnRune cuts s to at most max bytes, backing the cut off to a
// rune boundary so a multi-byte character is never split.
func truncateOnRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
