// Package resolve deduplicates Location and Organization references via
// fuzzy name matching. Source sites spell the same entity differently
// ("Chamber of Commerce" vs "Leavenworth Chamber of Commerce, Inc."), so
// exact matching would grow duplicate rows without bound.
package resolve

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the minimum token-sort-ratio score (0-100) for a
// candidate to count as a match.
const DefaultThreshold = 85

// BestMatch scores name against every candidate with a token-order-
// insensitive ratio and returns the index and score of the best candidate
// when its score reaches the threshold, else (-1, best score). Candidate
// sets are small (hundreds); the linear scan is deliberate.
func BestMatch(name string, candidates []string, threshold int) (int, int) {
	bestIdx := -1
	bestScore := 0
	for i, candidate := range candidates {
		score := fuzzy.TokenSortRatio(name, candidate)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore >= threshold {
		return bestIdx, bestScore
	}
	return -1, bestScore
}
