package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// MatchWeights are the per-attribute weights used by the similarity
// matcher. They must sum to 1.0.
type MatchWeights struct {
	Make      float64
	Model     float64
	Year      float64
	Trim      float64
	Mileage   float64
	Condition float64
}

// Sum returns the total of all attribute weights.
func (w MatchWeights) Sum() float64 {
	return w.Make + w.Model + w.Year + w.Trim + w.Mileage + w.Condition
}

// Analysis holds the engine tuning knobs. All fields have working
// defaults; callers override only what they need.
type Analysis struct {
	SimilarityThreshold float64 // minimum score for a competitive match
	MinMarketSample     int     // minimum matches before emitting analysis
	MinIncreaseUSD      float64 // absolute floor for price-increase opportunities
	MaxOpportunities    int     // dashboard opportunity list cap

	// Reserved knobs, carried through config so callers can set them
	// before the logic that consumes them lands.
	PriceVarianceThreshold float64
	TrendWindowDays        int

	Weights MatchWeights
}

// App is the full process configuration: engine knobs plus the
// surrounding CLI concerns.
type App struct {
	Analysis Analysis

	SnapshotDir  string
	ReportDir    string
	LogLevel     string
	CronSpec     string // empty means run once and exit
	Workers      int
	AlertsPerMin float64
}

// DefaultAnalysis returns the engine defaults.
func DefaultAnalysis() Analysis {
	return Analysis{
		SimilarityThreshold:    0.85,
		MinMarketSample:        3,
		MinIncreaseUSD:         500,
		MaxOpportunities:       20,
		PriceVarianceThreshold: 0.05,
		TrendWindowDays:        30,
		Weights: MatchWeights{
			Make:      0.25,
			Model:     0.25,
			Year:      0.20,
			Trim:      0.15,
			Mileage:   0.10,
			Condition: 0.05,
		},
	}
}

// Validate checks the analysis configuration for values the engine
// cannot work with.
func (a Analysis) Validate() error {
	if a.SimilarityThreshold <= 0 || a.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold %.2f outside (0,1]", a.SimilarityThreshold)
	}
	if a.MinMarketSample < 1 {
		return fmt.Errorf("minimum market sample %d must be at least 1", a.MinMarketSample)
	}
	if sum := a.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("attribute weights sum to %.4f, want 1.0", sum)
	}
	return nil
}

// Load initializes configuration from environment variables, reading a
// .env file first when one is present.
func Load() (*App, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &App{
		Analysis:     DefaultAnalysis(),
		SnapshotDir:  getEnvWithDefault("SNAPSHOT_DIR", "snapshots"),
		ReportDir:    getEnvWithDefault("REPORT_DIR", "reports"),
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),
		CronSpec:     os.Getenv("ANALYSIS_CRON"),
		Workers:      getEnvIntWithDefault("ANALYSIS_WORKERS", 4),
		AlertsPerMin: getEnvFloatWithDefault("ALERTS_PER_MINUTE", 30),
	}

	cfg.Analysis.SimilarityThreshold = getEnvFloatWithDefault("SIMILARITY_THRESHOLD", cfg.Analysis.SimilarityThreshold)
	cfg.Analysis.MinMarketSample = getEnvIntWithDefault("MIN_MARKET_SAMPLE", cfg.Analysis.MinMarketSample)
	cfg.Analysis.MinIncreaseUSD = getEnvFloatWithDefault("MIN_INCREASE_USD", cfg.Analysis.MinIncreaseUSD)
	cfg.Analysis.MaxOpportunities = getEnvIntWithDefault("MAX_OPPORTUNITIES", cfg.Analysis.MaxOpportunities)

	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}
	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer in environment, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid float in environment, using default")
	}
	return defaultValue
}
