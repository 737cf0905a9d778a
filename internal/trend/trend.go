package trend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dealerscope/dealerscope/internal/model"
	"github.com/dealerscope/dealerscope/internal/stats"
)

// Confidence levels for snapshot-only trends. Without a historical
// time-series these summaries are descriptive, not predictive, so
// confidence never exceeds 0.5.
const (
	baseConfidence    = 0.3
	raisedConfidence  = 0.5
	raisedSampleCount = 20
)

// minBrandSamples is the minimum number of priced vehicles before a
// per-brand trend is worth emitting.
const minBrandSamples = 5

// priceBand is a fixed market segment by price.
type priceBand struct {
	name string
	min  float64
	max  float64 // 0 means unbounded
}

var priceBands = []priceBand{
	{"budget", 0, 20000},
	{"mid_range", 20000, 50000},
	{"premium", 50000, 100000},
	{"luxury", 100000, 0},
}

// Analyzer produces coarse directional trend summaries from the current
// market snapshot.
type Analyzer struct{}

// NewAnalyzer creates a trend analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze emits one overall-market trend, one per brand with enough
// priced samples, and one per fixed price band. Directions default to
// stable: a single snapshot carries no movement to measure.
func (a *Analyzer) Analyze(pool []model.VehicleRecord) []model.MarketTrend {
	var trends []model.MarketTrend

	if overall := snapshotTrend("overall_market", pricesOf(pool)); overall != nil {
		trends = append(trends, *overall)
	}

	trends = append(trends, a.brandTrends(pool)...)

	for _, band := range priceBands {
		var banded []float64
		for _, v := range pool {
			if !v.HasPrice() {
				continue
			}
			if v.Price >= band.min && (band.max == 0 || v.Price < band.max) {
				banded = append(banded, v.Price)
			}
		}
		if t := snapshotTrend("band:"+band.name, banded); t != nil {
			trends = append(trends, *t)
		}
	}

	return trends
}

func (a *Analyzer) brandTrends(pool []model.VehicleRecord) []model.MarketTrend {
	byBrand := make(map[string][]float64)
	for _, v := range pool {
		if v.Make == "" || !v.HasPrice() {
			continue
		}
		brand := strings.ToLower(v.Make)
		byBrand[brand] = append(byBrand[brand], v.Price)
	}

	brands := make([]string, 0, len(byBrand))
	for brand, prices := range byBrand {
		if len(prices) >= minBrandSamples {
			brands = append(brands, brand)
		}
	}
	sort.Strings(brands)

	var trends []model.MarketTrend
	for _, brand := range brands {
		if t := snapshotTrend("brand:"+brand, byBrand[brand]); t != nil {
			trends = append(trends, *t)
		}
	}
	return trends
}

// snapshotTrend builds a stable placeholder trend for one segment, or
// nil when the segment has no priced vehicles.
func snapshotTrend(segment string, prices []float64) *model.MarketTrend {
	market, ok := stats.Calculate(prices)
	if !ok {
		return nil
	}

	confidence := baseConfidence
	if market.SampleCount >= raisedSampleCount {
		confidence = raisedConfidence
	}

	return &model.MarketTrend{
		Segment:        segment,
		Direction:      model.TrendStable,
		PriceChangePct: 0,
		VolumeChange:   0,
		Factors: []string{
			fmt.Sprintf("%d priced vehicles, median $%.0f", market.SampleCount, market.Median),
			"single-snapshot analysis, no historical series",
		},
		Confidence: confidence,
	}
}

func pricesOf(pool []model.VehicleRecord) []float64 {
	prices := make([]float64, 0, len(pool))
	for _, v := range pool {
		if v.HasPrice() {
			prices = append(prices, v.Price)
		}
	}
	return prices
}
