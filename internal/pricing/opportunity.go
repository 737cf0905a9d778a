package pricing

import (
	"fmt"
	"math"

	"github.com/dealerscope/dealerscope/internal/config"
	"github.com/dealerscope/dealerscope/internal/model"
)

// Price multipliers applied to the market median when recommending an
// adjustment: reductions land just above median, increases just below,
// so the vehicle stays competitive after the move.
const (
	reductionTarget = 1.02
	increaseTarget  = 0.98
)

// anomalyMeanVariancePct is the mean-relative deviation beyond which a
// price that fits neither adjustment rule is flagged for manual review.
const anomalyMeanVariancePct = 20

// Classifier turns a vehicle's price and market statistics into a
// pricing opportunity.
type Classifier struct {
	cfg config.Analysis
}

// NewClassifier creates an opportunity classifier with the given
// analysis configuration.
func NewClassifier(cfg config.Analysis) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify evaluates one vehicle against its competitive market. It
// returns nil when there is no actionable opportunity or when the
// backing sample is below the configured minimum. Rules are evaluated
// in order: reduction, increase, anomaly — an overpriced vehicle is
// always reported as a reduction even when it would also qualify as an
// anomaly.
func (c *Classifier) Classify(vehicle model.VehicleRecord, market model.MarketStatistics, matchCount int) *model.PricingOpportunity {
	if matchCount < c.cfg.MinMarketSample || !vehicle.HasPrice() {
		return nil
	}

	price := vehicle.Price
	medianVariance := VarianceFromMedian(price, market.Median)

	switch {
	case medianVariance > 10:
		recommended := market.Median * reductionTarget
		return c.buildOpportunity(vehicle, market, matchCount, model.PricingOpportunity{
			RecommendedPrice: &recommended,
			Type:             model.OpportunityPriceReduction,
			Justification: fmt.Sprintf("priced %.1f%% above market median of $%.0f across %d comparable vehicles",
				medianVariance, market.Median, matchCount),
			ExpectedOutcome: "faster turn at a competitive price point",
			RevenueImpact:   -(price - recommended),
		})

	case medianVariance < -5:
		recommended := market.Median * increaseTarget
		increase := recommended - price
		if increase <= c.cfg.MinIncreaseUSD {
			// Trivial adjustments are noise, not opportunities.
			return nil
		}
		return c.buildOpportunity(vehicle, market, matchCount, model.PricingOpportunity{
			RecommendedPrice: &recommended,
			Type:             model.OpportunityPriceIncrease,
			Justification: fmt.Sprintf("priced %.1f%% below market median of $%.0f, margin left on the table",
				-medianVariance, market.Median),
			ExpectedOutcome: "recovered margin with minimal impact on demand",
			RevenueImpact:   increase,
		})

	case market.StdDev > 0 && math.Abs(meanVariance(price, market.Mean)) > anomalyMeanVariancePct:
		return c.buildOpportunity(vehicle, market, matchCount, model.PricingOpportunity{
			Type: model.OpportunityMarketAnomaly,
			Justification: fmt.Sprintf("price deviates %.1f%% from market mean of $%.0f without a clear adjustment path",
				meanVariance(price, market.Mean), market.Mean),
			ExpectedOutcome: "manual review",
			RevenueImpact:   0,
		})
	}

	return nil
}

func (c *Classifier) buildOpportunity(vehicle model.VehicleRecord, market model.MarketStatistics, matchCount int, opp model.PricingOpportunity) *model.PricingOpportunity {
	opp.VIN = vehicle.VIN
	opp.DealerName = vehicle.DealerName
	opp.Year = vehicle.Year
	opp.Make = vehicle.Make
	opp.Model = vehicle.Model
	opp.CurrentPrice = vehicle.Price
	opp.MarketStats = market
	opp.MatchCount = matchCount

	if opp.RecommendedPrice != nil {
		opp.PriceAdjustment = *opp.RecommendedPrice - vehicle.Price
		if vehicle.Price > 0 {
			opp.AdjustmentPct = opp.PriceAdjustment / vehicle.Price * 100
		}
	}
	return &opp
}

func meanVariance(price, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	return (price - mean) / mean * 100
}
