package recommend

import (
	"strings"
	"testing"

	"github.com/dealerscope/dealerscope/internal/model"
)

func healthyPosition() model.MarketPositionSummary {
	return model.MarketPositionSummary{
		OverallPosition:  model.PositionCompetitive,
		AnalyzedVehicles: 90,
		TotalVehicles:    100,
	}
}

func TestSynthesize_DefaultMessage(t *testing.T) {
	recs := Synthesize(healthyPosition(), nil, nil)
	if len(recs) != 1 {
		t.Fatalf("expected exactly the default message, got %d recommendations", len(recs))
	}
	if !strings.Contains(recs[0], "aligned with the market") {
		t.Errorf("unexpected default message: %s", recs[0])
	}
}

func TestSynthesize_PositionRules(t *testing.T) {
	tests := []struct {
		position model.PricingPosition
		marker   string
	}{
		{model.PositionSignificantlyAbove, "CRITICAL"},
		{model.PositionAboveMarket, "WARNING"},
		{model.PositionSignificantlyBelow, "OPPORTUNITY"},
	}

	for _, tt := range tests {
		pos := healthyPosition()
		pos.OverallPosition = tt.position
		recs := Synthesize(pos, nil, nil)
		if len(recs) == 0 || !strings.HasPrefix(recs[0], tt.marker) {
			t.Errorf("position %s: first recommendation %v, want %s prefix", tt.position, recs, tt.marker)
		}
	}
}

func TestSynthesize_CoverageNote(t *testing.T) {
	pos := healthyPosition()
	pos.AnalyzedVehicles = 40
	pos.TotalVehicles = 100

	recs := Synthesize(pos, nil, nil)
	if !anyContains(recs, "DATA QUALITY") {
		t.Errorf("40%% coverage produced no data-quality note: %v", recs)
	}
}

func TestSynthesize_OpportunitySummary(t *testing.T) {
	opps := []model.PricingOpportunity{
		{RevenueImpact: -4000},
		{RevenueImpact: 2500},
		{RevenueImpact: -800}, // below the $1000 bar, not counted
	}

	recs := Synthesize(healthyPosition(), opps, nil)
	if !anyContains(recs, "2 pricing opportunities") {
		t.Errorf("expected a 2-opportunity summary, got %v", recs)
	}
}

func TestSynthesize_TrendNotesCappedAtThree(t *testing.T) {
	trends := make([]model.MarketTrend, 6)
	for i := range trends {
		trends[i] = model.MarketTrend{
			Segment:    "brand:x",
			Direction:  model.TrendIncreasing,
			Confidence: 0.9,
		}
	}

	recs := Synthesize(healthyPosition(), nil, trends)
	count := 0
	for _, r := range recs {
		if strings.HasPrefix(r, "TREND") {
			count++
		}
	}
	if count != 3 {
		t.Errorf("cited %d trends, want 3", count)
	}
}

func TestSynthesize_LowConfidenceTrendsIgnored(t *testing.T) {
	trends := []model.MarketTrend{
		{Segment: "overall_market", Direction: model.TrendStable, Confidence: 0.3},
	}

	recs := Synthesize(healthyPosition(), nil, trends)
	if anyContains(recs, "TREND") {
		t.Errorf("low-confidence trend was cited: %v", recs)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	pos := healthyPosition()
	pos.OverallPosition = model.PositionAboveMarket
	opps := []model.PricingOpportunity{{RevenueImpact: -5000}}

	first := Synthesize(pos, opps, nil)
	second := Synthesize(pos, opps, nil)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic output lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("recommendation %d differs between runs", i)
		}
	}
}

func anyContains(recs []string, substr string) bool {
	for _, r := range recs {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}
