package report

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dealerscope/dealerscope/internal/model"
)

func sampleDashboard() *model.CompetitiveDashboard {
	recommended := 22440.0
	return &model.CompetitiveDashboard{
		DealerName:  "Main Street Motors",
		GeneratedAt: time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
		Position: model.MarketPositionSummary{
			OverallPosition:      model.PositionSignificantlyAbove,
			PositionDistribution: map[string]int{"significantly_above": 1},
			AnalyzedVehicles:     1,
			TotalVehicles:        1,
			AvgPriceVariance:     18.2,
			OurAvgPrice:          26000,
			MarketAvgPrice:       22000,
		},
		Opportunities: []model.PricingOpportunity{{
			VIN:              "TGT1",
			DealerName:       "Main Street Motors",
			Year:             2021,
			Make:             "Honda",
			Model:            "Accord",
			CurrentPrice:     26000,
			RecommendedPrice: &recommended,
			PriceAdjustment:  -3560,
			AdjustmentPct:    -13.69,
			Type:             model.OpportunityPriceReduction,
			Justification:    "priced 18.2% above market median",
			ExpectedOutcome:  "faster turn",
			RevenueImpact:    -3560,
			MarketStats:      model.MarketStatistics{Median: 22000, Mean: 22000, Min: 20000, Max: 24000, SampleCount: 5},
			MatchCount:       5,
		}},
		Competitors: []model.CompetitorInsight{{
			DealerName:      "Riverside Auto",
			InventorySize:   3,
			PricingStrategy: "mid_market",
			BrandFocus:      model.BrandFocus{Distribution: map[string]int{"honda": 3}, PrimaryBrands: []string{"honda"}},
			ThreatLevel:     0.62,
		}},
		Trends: []model.MarketTrend{{
			Segment:    "overall_market",
			Direction:  model.TrendStable,
			Factors:    []string{"single-snapshot analysis"},
			Confidence: 0.3,
		}},
		Recommendations: []string{"CRITICAL: inventory is priced 18.2% above market"},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	original := sampleDashboard()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, original); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	parsed, err := ParseDashboard(&buf)
	if err != nil {
		t.Fatalf("ParseDashboard: %v", err)
	}

	if !reflect.DeepEqual(original, parsed) {
		t.Errorf("round trip mismatch:\noriginal: %+v\nparsed:   %+v", original, parsed)
	}
}

func TestWriteOpportunitiesCSV_FixedColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOpportunitiesCSV(&buf, sampleDashboard().Opportunities); err != nil {
		t.Fatalf("WriteOpportunitiesCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d rows", len(records))
	}

	wantHeader := []string{"VIN", "Year", "Make", "Model", "Current_Price",
		"Recommended_Price", "Adjustment", "Opportunity_Type", "Revenue_Impact"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}

	row := records[1]
	if row[0] != "TGT1" || row[1] != "2021" || row[4] != "26000.00" || row[5] != "22440.00" {
		t.Errorf("unexpected row values: %v", row)
	}
	if row[7] != "price_reduction" || row[8] != "-3560.00" {
		t.Errorf("type/impact = %s/%s, want price_reduction/-3560.00", row[7], row[8])
	}
}

func TestWriteOpportunitiesCSV_EscapesFormulaCells(t *testing.T) {
	opps := []model.PricingOpportunity{{
		VIN:          "=HYPERLINK(evil)",
		Make:         "@Honda",
		Model:        "Accord",
		CurrentPrice: 26000,
		Type:         model.OpportunityMarketAnomaly,
	}}

	var buf bytes.Buffer
	if err := WriteOpportunitiesCSV(&buf, opps); err != nil {
		t.Fatalf("WriteOpportunitiesCSV: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "\n=") || strings.Contains(out, ",=") {
		t.Errorf("formula cell not escaped:\n%s", out)
	}
	if !strings.Contains(out, "'=HYPERLINK(evil)") || !strings.Contains(out, "'@Honda") {
		t.Errorf("expected quoted formula prefixes in output:\n%s", out)
	}
}
