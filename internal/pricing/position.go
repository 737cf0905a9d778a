package pricing

import (
	"github.com/dealerscope/dealerscope/internal/model"
	"github.com/dealerscope/dealerscope/internal/stats"
)

// VarianceFromMedian returns the percentage distance of price from the
// market median. A zero median yields 0 rather than a division blowup.
func VarianceFromMedian(price, median float64) float64 {
	if median == 0 {
		return 0
	}
	return (price - median) / median * 100
}

// ClassifyPosition maps a price and its competitive market prices onto
// an ordinal band. Boundary values belong to the inner band, so a
// vehicle exactly 5% above median is still market_competitive.
func ClassifyPosition(price float64, marketPrices []float64) model.PricingPosition {
	market, ok := stats.Calculate(marketPrices)
	if !ok || market.Median == 0 {
		return model.PositionCompetitive
	}
	return ClassifyVariance(VarianceFromMedian(price, market.Median))
}

// ClassifyVariance bands a median-relative variance percentage.
func ClassifyVariance(variance float64) model.PricingPosition {
	switch {
	case variance < -15:
		return model.PositionSignificantlyBelow
	case variance < -5:
		return model.PositionBelowMarket
	case variance <= 5:
		return model.PositionCompetitive
	case variance <= 15:
		return model.PositionAboveMarket
	default:
		return model.PositionSignificantlyAbove
	}
}
