package runner

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dealerscope/dealerscope/internal/engine"
	"github.com/dealerscope/dealerscope/internal/model"
)

// Result is the outcome of one dealership's analysis.
type Result struct {
	Dealer    string
	Dashboard *model.CompetitiveDashboard
	Err       error
}

// Runner fans dealership analyses out over a bounded worker pool. Each
// analysis is independent; the vehicle store serializes its own
// updates, so no coordination beyond the pool is needed.
type Runner struct {
	engine  *engine.Engine
	workers int
	logger  zerolog.Logger
}

// New creates a runner with the given worker count (minimum 1).
func New(eng *engine.Engine, workers int, logger zerolog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{engine: eng, workers: workers, logger: logger}
}

// AnalyzeAll runs the engine for every dealership in inventories and
// returns per-dealer results sorted by dealer name. A failed or
// abandoned dealership surfaces in its own result; the rest complete.
func (r *Runner) AnalyzeAll(ctx context.Context, inventories map[string][]model.VehicleRecord) []Result {
	dealers := make([]string, 0, len(inventories))
	for dealer := range inventories {
		dealers = append(dealers, dealer)
	}
	sort.Strings(dealers)

	jobs := make(chan string)
	results := make([]Result, 0, len(dealers))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dealer := range jobs {
				result := Result{Dealer: dealer}
				if ctx.Err() != nil {
					result.Err = ctx.Err()
				} else {
					result.Dashboard, result.Err = r.engine.AnalyzeDealership(ctx, dealer, inventories)
				}
				if result.Err != nil {
					r.logger.Error().Err(result.Err).Str("dealer", dealer).Msg("dealership analysis failed")
				}
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}()
	}

	for _, dealer := range dealers {
		jobs <- dealer
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Dealer < results[j].Dealer })
	return results
}
