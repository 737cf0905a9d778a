package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dealerscope/dealerscope/internal/model"
)

// opportunityHeader is the fixed column set of the tabular export.
var opportunityHeader = []string{
	"VIN", "Year", "Make", "Model", "Current_Price",
	"Recommended_Price", "Adjustment", "Opportunity_Type", "Revenue_Impact",
}

// WriteJSON serializes a dashboard verbatim as indented JSON.
func WriteJSON(w io.Writer, dashboard *model.CompetitiveDashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dashboard); err != nil {
		return fmt.Errorf("encoding dashboard: %w", err)
	}
	return nil
}

// ParseDashboard reads back a dashboard previously written by WriteJSON.
func ParseDashboard(r io.Reader) (*model.CompetitiveDashboard, error) {
	var dashboard model.CompetitiveDashboard
	if err := json.NewDecoder(r).Decode(&dashboard); err != nil {
		return nil, fmt.Errorf("decoding dashboard: %w", err)
	}
	return &dashboard, nil
}

// WriteOpportunitiesCSV writes the pricing-opportunity list with the
// fixed column layout consumed by downstream spreadsheets.
func WriteOpportunitiesCSV(w io.Writer, opportunities []model.PricingOpportunity) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(escapeRow(opportunityHeader)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, opp := range opportunities {
		recommended := ""
		if opp.RecommendedPrice != nil {
			recommended = money(*opp.RecommendedPrice)
		}
		record := []string{
			escapeCell(opp.VIN),
			strconv.Itoa(opp.Year),
			escapeCell(opp.Make),
			escapeCell(opp.Model),
			money(opp.CurrentPrice),
			recommended,
			fmt.Sprintf("%.2f", opp.PriceAdjustment),
			string(opp.Type),
			fmt.Sprintf("%.2f", opp.RevenueImpact),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record for %s: %w", opp.VIN, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// escapeCell guards against CSV formula injection: spreadsheet apps
// execute cells starting with formula indicators.
func escapeCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '|', '%', '\t', '\r', '\n':
		return "'" + value
	}
	return value
}

func escapeRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = escapeCell(cell)
	}
	return escaped
}
