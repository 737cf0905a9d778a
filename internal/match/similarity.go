package match

import (
	"math"
	"sort"
	"strings"

	"github.com/dealerscope/dealerscope/internal/config"
	"github.com/dealerscope/dealerscope/internal/model"
)

// partialStringThreshold is the normalized-similarity floor at which
// two non-identical strings still earn partial attribute credit.
const partialStringThreshold = 0.8

// Partial-credit multipliers for near-miss string attributes.
const (
	makePartialCredit  = 0.8
	modelPartialCredit = 0.9
	trimPartialCredit  = 0.7
)

// Matcher scores vehicle pairs with weighted attribute comparisons and
// finds competitive matches in a market pool.
type Matcher struct {
	weights   config.MatchWeights
	threshold float64
}

// NewMatcher creates a matcher with the given attribute weights and
// match threshold.
func NewMatcher(weights config.MatchWeights, threshold float64) *Matcher {
	return &Matcher{weights: weights, threshold: threshold}
}

// Similarity computes a weighted similarity score in [0,1] between two
// vehicles. Missing attributes contribute zero to their term.
func (m *Matcher) Similarity(a, b model.VehicleRecord) float64 {
	score := 0.0

	score += m.weights.Make * scoreStringAttr(a.Make, b.Make, makePartialCredit)
	score += m.weights.Model * scoreStringAttr(a.Model, b.Model, modelPartialCredit)
	score += m.weights.Trim * scoreStringAttr(a.Trim, b.Trim, trimPartialCredit)
	score += m.weights.Year * scoreYear(a.Year, b.Year)
	score += m.weights.Mileage * scoreMileage(a.Mileage, b.Mileage)

	if a.Condition != "" && b.Condition != "" && strings.EqualFold(a.Condition, b.Condition) {
		score += m.weights.Condition
	}

	return math.Min(1.0, score)
}

// FindMatches returns the vehicles in pool whose similarity to target
// meets the threshold, sorted descending by score. It has no side effects.
func (m *Matcher) FindMatches(target model.VehicleRecord, pool []model.VehicleRecord) model.VehicleMatch {
	result := model.VehicleMatch{
		TargetVIN:    target.VIN,
		TargetDealer: target.DealerName,
	}

	for _, candidate := range pool {
		if score := m.Similarity(target, candidate); score >= m.threshold {
			result.Candidates = append(result.Candidates, model.ScoredVehicle{
				Record: candidate,
				Score:  score,
			})
		}
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Score > result.Candidates[j].Score
	})

	return result
}

// scoreStringAttr scores a string attribute pair: full credit on exact
// case-insensitive match, partialCredit when the normalized similarity
// clears the partial threshold, zero otherwise or when either is absent.
func scoreStringAttr(a, b string, partialCredit float64) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1.0
	}
	if StringSimilarity(a, b) >= partialStringThreshold {
		return partialCredit
	}
	return 0
}

func scoreYear(a, b int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	switch diff := abs(a - b); diff {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.6
	default:
		return 0
	}
}

// scoreMileage tiers by relative difference against the larger of the
// two readings; skipped when either reading is missing. Band
// boundaries are inclusive.
func scoreMileage(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	larger := math.Max(float64(a), float64(b))
	relDiff := math.Abs(float64(a)-float64(b)) / larger

	switch {
	case relDiff <= 0.10:
		return 1.0
	case relDiff <= 0.25:
		return 0.7
	case relDiff <= 0.50:
		return 0.4
	default:
		return 0
	}
}

// StringSimilarity computes a normalized similarity between two strings
// using Levenshtein distance over the longer length. Substring
// containment short-circuits to a high score so "Civic" still matches
// "Civic Touring".
func StringSimilarity(s1, s2 string) float64 {
	s1 = strings.ToLower(strings.TrimSpace(s1))
	s2 = strings.ToLower(strings.TrimSpace(s2))

	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	if strings.Contains(s2, s1) || strings.Contains(s1, s2) {
		minLen := math.Min(float64(len(s1)), float64(len(s2)))
		maxLen := math.Max(float64(len(s1)), float64(len(s2)))
		return 0.85 + 0.15*(minLen/maxLen)
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := math.Max(float64(len(s1)), float64(len(s2)))
	return math.Max(0, 1.0-float64(distance)/maxLen)
}

// levenshteinDistance calculates edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
