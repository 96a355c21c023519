// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package optimizer

import "math"

// ndcgAt computes NDCG@k of a predicted ranking against an ideal one.
//
// Relevance is graded by ideal position: the ideal top item carries
// relevance n, the next n-1, and so on. Items absent from the predicted
// ranking contribute nothing. Returns 1 for a perfect prediction and 0
// for an empty or fully disjoint one.
func ndcgAt(predicted, ideal []string, k int) float64 {
	if len(ideal) == 0 {
		return 1
	}
	if k <= 0 || k > len(ideal) {
		k = len(ideal)
	}

	relevance := make(map[string]float64, len(ideal))
	for i, id := range ideal {
		relevance[id] = float64(len(ideal) - i)
	}

	dcg := 0.0
	for i, id := range predicted {
		if i >= k {
			break
		}
		dcg += relevance[id] / math.Log2(float64(i)+2)
	}

	idcg := 0.0
	for i := 0; i < k && i < len(ideal); i++ {
		idcg += float64(len(ideal)-i) / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}
