package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dealerscope/dealerscope/internal/alerting"
	"github.com/dealerscope/dealerscope/internal/competitor"
	"github.com/dealerscope/dealerscope/internal/config"
	"github.com/dealerscope/dealerscope/internal/match"
	"github.com/dealerscope/dealerscope/internal/model"
	"github.com/dealerscope/dealerscope/internal/pricing"
	"github.com/dealerscope/dealerscope/internal/recommend"
	"github.com/dealerscope/dealerscope/internal/stats"
	"github.com/dealerscope/dealerscope/internal/store"
	"github.com/dealerscope/dealerscope/internal/trend"
)

// skipReason explains why a vehicle was excluded from analysis.
// Insufficient matches is a normal outcome, not an error; it only
// affects coverage.
type skipReason string

const (
	skipMissingVIN          skipReason = "missing_vin"
	skipMissingPrice        skipReason = "missing_price"
	skipInsufficientMatches skipReason = "insufficient_matches"
)

// vehicleResult is the per-vehicle outcome aggregated by the dashboard
// assembler. Failures are carried as skip reasons so one bad record
// never aborts the batch.
type vehicleResult struct {
	analyzed    bool
	skip        skipReason
	position    model.PricingPosition
	variance    float64
	opportunity *model.PricingOpportunity
}

// Engine runs one dealership's competitive pricing analysis per call.
// One call is synchronous and CPU-bound; concurrent calls for different
// dealerships are safe because the store serializes its own updates.
type Engine struct {
	cfg         config.Analysis
	store       *store.Store
	matcher     *match.Matcher
	classifier  *pricing.Classifier
	competitors *competitor.Generator
	trends      *trend.Analyzer
	dispatcher  *alerting.Dispatcher
	logger      zerolog.Logger
	now         func() time.Time
}

// New creates an engine around an injected vehicle store and alert
// dispatcher. The store outlives the engine call lifecycle; the
// dispatcher may wrap a nil notifier to disable alerting.
func New(cfg config.Analysis, vehicleStore *store.Store, dispatcher *alerting.Dispatcher, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:         cfg,
		store:       vehicleStore,
		matcher:     match.NewMatcher(cfg.Weights, cfg.SimilarityThreshold),
		classifier:  pricing.NewClassifier(cfg),
		competitors: competitor.NewGenerator(),
		trends:      trend.NewAnalyzer(),
		dispatcher:  dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// AnalyzeDealership produces the competitive dashboard for one
// dealership. inventories maps every dealership name to its current
// snapshot; the market pool is the union of all inventories except the
// analyzed one. The only error path is a structurally invalid input —
// per-vehicle problems are skipped and counted, never propagated.
func (e *Engine) AnalyzeDealership(ctx context.Context, dealer string, inventories map[string][]model.VehicleRecord) (*model.CompetitiveDashboard, error) {
	inventory, ok := inventories[dealer]
	if !ok {
		return nil, fmt.Errorf("dealership %q not present in inventories", dealer)
	}

	seenAt := e.now()
	e.updateStore(inventories, seenAt)

	pool, competitorInventories := e.splitMarket(dealer, inventories)

	results := make([]vehicleResult, 0, len(inventory))
	for _, vehicle := range inventory {
		results = append(results, e.analyzeVehicle(vehicle, pool))
	}

	summary := e.summarizePosition(inventory, pool, results)
	opportunities := collectOpportunities(results, e.cfg.MaxOpportunities)

	dashboard := &model.CompetitiveDashboard{
		DealerName:    dealer,
		GeneratedAt:   seenAt,
		Position:      summary,
		Opportunities: opportunities,
		Competitors:   e.competitors.Analyze(inventory, competitorInventories),
		Trends:        e.trends.Analyze(pool),
	}
	dashboard.Recommendations = recommend.Synthesize(summary, opportunities, dashboard.Trends)

	if alert := alerting.BuildPositionAlert(dealer, summary, opportunities, seenAt); alert != nil {
		e.dispatcher.Dispatch(ctx, *alert)
	}

	return dashboard, nil
}

// analyzeVehicle runs the matcher, statistics, and both classifiers for
// one vehicle. Every exit is a result, ready for aggregation.
func (e *Engine) analyzeVehicle(vehicle model.VehicleRecord, pool []model.VehicleRecord) vehicleResult {
	if vehicle.VIN == "" {
		e.logger.Warn().Str("dealer", vehicle.DealerName).Msg("skipping vehicle without VIN")
		return vehicleResult{skip: skipMissingVIN}
	}
	if !vehicle.HasPrice() {
		e.logger.Warn().Str("vin", vehicle.VIN).Msg("skipping vehicle without price")
		return vehicleResult{skip: skipMissingPrice}
	}

	matches := e.matcher.FindMatches(vehicle, pool)
	if len(matches.Candidates) < e.cfg.MinMarketSample {
		return vehicleResult{skip: skipInsufficientMatches}
	}

	matchPrices := make([]float64, 0, len(matches.Candidates))
	for _, c := range matches.Candidates {
		if c.Record.HasPrice() {
			matchPrices = append(matchPrices, c.Record.Price)
		}
	}

	market, ok := stats.Calculate(matchPrices)
	if !ok || len(matchPrices) < e.cfg.MinMarketSample {
		return vehicleResult{skip: skipInsufficientMatches}
	}

	variance := pricing.VarianceFromMedian(vehicle.Price, market.Median)
	return vehicleResult{
		analyzed:    true,
		position:    pricing.ClassifyVariance(variance),
		variance:    variance,
		opportunity: e.classifier.Classify(vehicle, market, len(matchPrices)),
	}
}

// summarizePosition aggregates per-vehicle results into the dashboard's
// market-position summary. An empty market pool yields the explicit
// insufficient-data marker instead of a fabricated result.
func (e *Engine) summarizePosition(inventory, pool []model.VehicleRecord, results []vehicleResult) model.MarketPositionSummary {
	summary := model.MarketPositionSummary{
		OverallPosition:      model.PositionCompetitive,
		PositionDistribution: make(map[string]int),
		TotalVehicles:        len(inventory),
		OurAvgPrice:          averagePrice(inventory),
		MarketAvgPrice:       averagePrice(pool),
	}

	if summary.MarketAvgPrice == 0 {
		summary.InsufficientData = true
		return summary
	}

	var varianceSum float64
	for _, r := range results {
		if !r.analyzed {
			continue
		}
		summary.AnalyzedVehicles++
		summary.PositionDistribution[string(r.position)]++
		varianceSum += r.variance
	}

	if summary.AnalyzedVehicles == 0 {
		summary.InsufficientData = true
		return summary
	}

	summary.AvgPriceVariance = varianceSum / float64(summary.AnalyzedVehicles)
	summary.OverallPosition = pricing.ClassifyVariance(summary.AvgPriceVariance)
	return summary
}

func (e *Engine) updateStore(inventories map[string][]model.VehicleRecord, seenAt time.Time) {
	for dealer, inventory := range inventories {
		for _, v := range inventory {
			if v.VIN == "" {
				continue
			}
			if v.DealerName == "" {
				v.DealerName = dealer
			}
			e.store.Upsert(v, seenAt)
		}
	}
}

// splitMarket builds the market pool (every inventory but the analyzed
// dealer's) and the per-competitor view used for insights.
func (e *Engine) splitMarket(dealer string, inventories map[string][]model.VehicleRecord) ([]model.VehicleRecord, map[string][]model.VehicleRecord) {
	var pool []model.VehicleRecord
	competitorInventories := make(map[string][]model.VehicleRecord)
	for name, inventory := range inventories {
		if name == dealer {
			continue
		}
		pool = append(pool, inventory...)
		competitorInventories[name] = inventory
	}
	return pool, competitorInventories
}

func collectOpportunities(results []vehicleResult, limit int) []model.PricingOpportunity {
	var opportunities []model.PricingOpportunity
	for _, r := range results {
		if r.opportunity != nil {
			opportunities = append(opportunities, *r.opportunity)
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return math.Abs(opportunities[i].RevenueImpact) > math.Abs(opportunities[j].RevenueImpact)
	})

	if limit > 0 && len(opportunities) > limit {
		opportunities = opportunities[:limit]
	}
	return opportunities
}

func averagePrice(inventory []model.VehicleRecord) float64 {
	var sum float64
	count := 0
	for _, v := range inventory {
		if v.HasPrice() {
			sum += v.Price
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
