package model

import "time"

// Vehicle condition values as they arrive from inventory feeds.
const (
	ConditionNew       = "new"
	ConditionUsed      = "used"
	ConditionCertified = "certified"
	ConditionUnknown   = "unknown"
)

// PriceObservation is a single point in a vehicle's price history.
type PriceObservation struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// VehicleRecord is the minimal vehicle representation we need for
// matching and pricing analysis. A zero Price means the feed carried
// no price; string fields are empty when absent.
type VehicleRecord struct {
	VIN         string             `json:"vin"`
	DealerName  string             `json:"dealer_name"`
	Make        string             `json:"make"`
	Model       string             `json:"model"`
	Trim        string             `json:"trim,omitempty"`
	Year        int                `json:"year"`
	Mileage     int                `json:"mileage"`
	Condition   string             `json:"condition"`
	Price       float64            `json:"price"`
	MSRP        *float64           `json:"msrp,omitempty"`
	LastUpdated time.Time          `json:"last_updated"`
	History     []PriceObservation `json:"history,omitempty"`
}

// HasPrice reports whether the record carries a usable price.
func (v VehicleRecord) HasPrice() bool {
	return v.Price > 0
}

// ScoredVehicle pairs a candidate record with its similarity score
// against a match target.
type ScoredVehicle struct {
	Record VehicleRecord `json:"record"`
	Score  float64       `json:"score"`
}

// VehicleMatch holds the competitive matches found for one target vehicle.
type VehicleMatch struct {
	TargetVIN    string          `json:"target_vin"`
	TargetDealer string          `json:"target_dealer"`
	Candidates   []ScoredVehicle `json:"candidates"`
}

// MarketStatistics describes a set of comparable prices.
type MarketStatistics struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile75 float64 `json:"percentile_75"`
	SampleCount  int     `json:"sample_count"`
}

// PricingPosition is the ordinal band of a price relative to its market.
type PricingPosition string

const (
	PositionSignificantlyBelow PricingPosition = "significantly_below"
	PositionBelowMarket        PricingPosition = "below_market"
	PositionCompetitive        PricingPosition = "market_competitive"
	PositionAboveMarket        PricingPosition = "above_market"
	PositionSignificantlyAbove PricingPosition = "significantly_above"
)

// OpportunityType labels the recommended price action.
type OpportunityType string

const (
	OpportunityPriceReduction OpportunityType = "price_reduction"
	OpportunityPriceIncrease  OpportunityType = "price_increase"
	OpportunityMarketAnomaly  OpportunityType = "market_anomaly"
)

// PricingOpportunity is an actionable pricing recommendation for one
// vehicle. RecommendedPrice is nil for market anomalies.
type PricingOpportunity struct {
	VIN              string           `json:"vin"`
	DealerName       string           `json:"dealer_name"`
	Year             int              `json:"year"`
	Make             string           `json:"make"`
	Model            string           `json:"model"`
	CurrentPrice     float64          `json:"current_price"`
	RecommendedPrice *float64         `json:"recommended_price,omitempty"`
	PriceAdjustment  float64          `json:"price_adjustment"`
	AdjustmentPct    float64          `json:"adjustment_pct"`
	Type             OpportunityType  `json:"type"`
	Justification    string           `json:"justification"`
	ExpectedOutcome  string           `json:"expected_outcome"`
	RevenueImpact    float64          `json:"revenue_impact"`
	MarketStats      MarketStatistics `json:"market_stats"`
	MatchCount       int              `json:"match_count"`
}

// BrandFocus summarizes a dealership's brand mix.
type BrandFocus struct {
	Distribution  map[string]int `json:"distribution"`
	PrimaryBrands []string       `json:"primary_brands"`
}

// CompetitorInsight summarizes one competing dealership.
type CompetitorInsight struct {
	DealerName      string           `json:"dealer_name"`
	InventorySize   int              `json:"inventory_size"`
	PriceStats      MarketStatistics `json:"price_stats"`
	PricingStrategy string           `json:"pricing_strategy"`
	BrandFocus      BrandFocus       `json:"brand_focus"`
	ThreatLevel     float64          `json:"threat_level"`
}

// TrendDirection is the coarse direction of a market trend.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendVolatile   TrendDirection = "volatile"
)

// MarketTrend is a directional summary for one market segment.
type MarketTrend struct {
	Segment        string         `json:"segment"`
	Direction      TrendDirection `json:"direction"`
	PriceChangePct float64        `json:"price_change_pct"`
	VolumeChange   float64        `json:"volume_change"`
	Factors        []string       `json:"factors"`
	Confidence     float64        `json:"confidence"`
}

// MarketPositionSummary aggregates per-vehicle positions for one dealership.
type MarketPositionSummary struct {
	OverallPosition      PricingPosition `json:"overall_position"`
	PositionDistribution map[string]int  `json:"position_distribution"`
	AnalyzedVehicles     int             `json:"analyzed_vehicles"`
	TotalVehicles        int             `json:"total_vehicles"`
	AvgPriceVariance     float64         `json:"avg_price_variance"`
	OurAvgPrice          float64         `json:"our_avg_price"`
	MarketAvgPrice       float64         `json:"market_avg_price"`
	InsufficientData     bool            `json:"insufficient_data"`
}

// CompetitiveDashboard is the single output artifact of one analysis run.
// It is produced fresh per invocation and never mutated afterwards.
type CompetitiveDashboard struct {
	DealerName      string                `json:"dealer_name"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Position        MarketPositionSummary `json:"position"`
	Opportunities   []PricingOpportunity  `json:"opportunities"`
	Competitors     []CompetitorInsight   `json:"competitors"`
	Trends          []MarketTrend         `json:"trends"`
	Recommendations []string              `json:"recommendations"`
}
