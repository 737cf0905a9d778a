package recommend

import (
	"fmt"
	"math"

	"github.com/dealerscope/dealerscope/internal/model"
)

// Rule thresholds for recommendation synthesis.
const (
	minCoverage         = 0.60 // analyzed/total below this triggers a data-quality note
	significantImpact   = 1000 // |revenue impact| above this counts as significant
	trendConfidenceBar  = 0.7  // trends below this confidence are not cited
	maxTrendsCited      = 3
	maxOpportunitiesSum = 5
)

// Synthesize turns the market-position summary, opportunity list, and
// trend list into ordered human-readable recommendations. It is pure
// and deterministic: same inputs, same output.
func Synthesize(position model.MarketPositionSummary, opportunities []model.PricingOpportunity, trends []model.MarketTrend) []string {
	var recs []string

	switch position.OverallPosition {
	case model.PositionSignificantlyAbove:
		recs = append(recs, fmt.Sprintf(
			"CRITICAL: inventory is priced %.1f%% above market on average; expect slower turns and lost deals without broad repricing",
			position.AvgPriceVariance))
	case model.PositionAboveMarket:
		recs = append(recs, fmt.Sprintf(
			"WARNING: inventory averages %.1f%% above market; review the vehicles driving the gap",
			position.AvgPriceVariance))
	case model.PositionSignificantlyBelow:
		recs = append(recs, fmt.Sprintf(
			"OPPORTUNITY: inventory is priced %.1f%% below market on average; margin is being left on the table",
			position.AvgPriceVariance))
	}

	if position.TotalVehicles > 0 {
		coverage := float64(position.AnalyzedVehicles) / float64(position.TotalVehicles)
		if coverage < minCoverage {
			recs = append(recs, fmt.Sprintf(
				"DATA QUALITY: only %d of %d vehicles had enough comparable listings to analyze (%.0f%% coverage); results may not represent the full lot",
				position.AnalyzedVehicles, position.TotalVehicles, coverage*100))
		}
	}

	if rec := summarizeOpportunities(opportunities); rec != "" {
		recs = append(recs, rec)
	}

	cited := 0
	for _, t := range trends {
		if cited >= maxTrendsCited {
			break
		}
		if t.Confidence > trendConfidenceBar {
			recs = append(recs, fmt.Sprintf(
				"TREND: %s segment is %s (%.1f%% price change, confidence %.2f)",
				t.Segment, t.Direction, t.PriceChangePct, t.Confidence))
			cited++
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Pricing is aligned with the market; no immediate action required")
	}

	return recs
}

func summarizeOpportunities(opportunities []model.PricingOpportunity) string {
	significant := 0
	var totalImpact float64
	for i, opp := range opportunities {
		if math.Abs(opp.RevenueImpact) > significantImpact {
			significant++
			if i < maxOpportunitiesSum {
				totalImpact += opp.RevenueImpact
			}
		}
	}
	if significant == 0 {
		return ""
	}
	return fmt.Sprintf(
		"ACTION: %d pricing opportunities exceed $%d in revenue impact; the top %d are worth a combined $%.0f",
		significant, significantImpact, minIntn(significant, maxOpportunitiesSum), totalImpact)
}

func minIntn(a, b int) int {
	if a < b {
		return a
	}
	return b
}
