package competitor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dealerscope/dealerscope/internal/model"
	"github.com/dealerscope/dealerscope/internal/stats"
)

// primaryBrandShare is the inventory share above which a brand counts
// as a dealership's primary brand.
const primaryBrandShare = 0.20

// Threat factor caps. The three terms sum to at most 1.0.
const (
	sizeFactorWeight    = 0.2
	sizeFactorCap       = 0.3
	priceFactorWeight   = 0.4
	priceFactorCap      = 0.4
	overlapFactorWeight = 0.3
)

// Generator builds competitor insights for the dealership under analysis.
type Generator struct{}

// NewGenerator creates a competitor insight generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Analyze summarizes each competing dealership's pricing strategy,
// brand focus, and threat level relative to our inventory. The result
// is sorted descending by threat.
func (g *Generator) Analyze(ourInventory []model.VehicleRecord, competitors map[string][]model.VehicleRecord) []model.CompetitorInsight {
	ourSignatures := signatureSet(ourInventory)
	ourAvg := averagePrice(ourInventory)

	insights := make([]model.CompetitorInsight, 0, len(competitors))
	for dealer, inventory := range competitors {
		if len(inventory) == 0 {
			continue
		}

		priceStats, _ := stats.Calculate(pricesOf(inventory))
		insight := model.CompetitorInsight{
			DealerName:      dealer,
			InventorySize:   len(inventory),
			PriceStats:      priceStats,
			PricingStrategy: classifyStrategy(priceStats),
			BrandFocus:      brandFocus(inventory),
			ThreatLevel:     g.threatLevel(inventory, priceStats, len(ourInventory), ourAvg, ourSignatures),
		}
		insights = append(insights, insight)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].ThreatLevel > insights[j].ThreatLevel
	})
	return insights
}

// threatLevel sums three weighted factors: relative inventory size,
// price advantage (only when the competitor undercuts us), and
// inventory overlap. Clamped to [0,1].
func (g *Generator) threatLevel(inventory []model.VehicleRecord, priceStats model.MarketStatistics, ourCount int, ourAvg float64, ourSignatures map[string]struct{}) float64 {
	threat := 0.0

	if ourCount > 0 {
		ratio := float64(len(inventory)) / float64(ourCount)
		threat += math.Min(ratio*sizeFactorWeight, sizeFactorCap)
	}

	if ourAvg > 0 && priceStats.Mean > 0 && priceStats.Mean < ourAvg {
		advantage := (ourAvg - priceStats.Mean) / ourAvg
		threat += math.Min(advantage*priceFactorWeight, priceFactorCap)
	}

	if len(ourSignatures) > 0 {
		overlapping := 0
		seen := make(map[string]struct{})
		for _, v := range inventory {
			sig := signature(v)
			if _, dup := seen[sig]; dup {
				continue
			}
			seen[sig] = struct{}{}
			if _, ok := ourSignatures[sig]; ok {
				overlapping++
			}
		}
		threat += float64(overlapping) / float64(len(ourSignatures)) * overlapFactorWeight
	}

	return math.Min(1.0, math.Max(0.0, threat))
}

// classifyStrategy labels a competitor's aggregate pricing posture from
// its price distribution.
func classifyStrategy(s model.MarketStatistics) string {
	switch {
	case s.Mean > 50000 && s.Mean > 0 && s.Median/s.Mean > 0.9:
		return "premium_consistent"
	case s.Mean > 50000:
		return "premium_mixed"
	case s.Mean > 25000:
		return "mid_market"
	default:
		return "value_focused"
	}
}

// brandFocus computes the brand distribution and the brands holding
// more than a 20% share of the inventory.
func brandFocus(inventory []model.VehicleRecord) model.BrandFocus {
	distribution := make(map[string]int)
	counted := 0
	for _, v := range inventory {
		if v.Make == "" {
			continue
		}
		distribution[strings.ToLower(v.Make)]++
		counted++
	}

	var primary []string
	for brand, count := range distribution {
		if counted > 0 && float64(count)/float64(counted) > primaryBrandShare {
			primary = append(primary, brand)
		}
	}
	sort.Strings(primary)

	return model.BrandFocus{Distribution: distribution, PrimaryBrands: primary}
}

// signature is the simplified vehicle identity used for overlap:
// make+model+year.
func signature(v model.VehicleRecord) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(v.Make), strings.ToLower(v.Model), v.Year)
}

func signatureSet(inventory []model.VehicleRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(inventory))
	for _, v := range inventory {
		set[signature(v)] = struct{}{}
	}
	return set
}

func pricesOf(inventory []model.VehicleRecord) []float64 {
	prices := make([]float64, 0, len(inventory))
	for _, v := range inventory {
		if v.HasPrice() {
			prices = append(prices, v.Price)
		}
	}
	return prices
}

func averagePrice(inventory []model.VehicleRecord) float64 {
	prices := pricesOf(inventory)
	if len(prices) == 0 {
		return 0
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}
