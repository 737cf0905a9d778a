package stats

import (
	"math"
	"sort"

	"github.com/dealerscope/dealerscope/internal/model"
)

// Calculate computes descriptive statistics over a set of comparable
// prices. The second return is false when the input is empty: there is
// no fabricated zero-statistics value, callers must branch.
func Calculate(prices []float64) (model.MarketStatistics, bool) {
	if len(prices) == 0 {
		return model.MarketStatistics{}, false
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	var sum float64
	for _, p := range sorted {
		sum += p
	}
	mean := sum / float64(len(sorted))

	return model.MarketStatistics{
		Min:          sorted[0],
		Max:          sorted[len(sorted)-1],
		Mean:         mean,
		Median:       percentile(sorted, 50),
		StdDev:       sampleStdDev(sorted, mean),
		Percentile25: percentile(sorted, 25),
		Percentile75: percentile(sorted, 75),
		SampleCount:  len(sorted),
	}, true
}

// sampleStdDev is the sample standard deviation, defined as 0 for a
// single observation.
func sampleStdDev(sorted []float64, mean float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	var sumSquares float64
	for _, p := range sorted {
		d := p - mean
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(sorted)-1))
}

// percentile computes the p-th percentile of an already sorted sample
// using linear interpolation between closest ranks. This keeps
// min <= p25 <= median <= p75 <= max for every non-empty input.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
