package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dealerscope/dealerscope/internal/model"
)

// Severity of an alert.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Alert is one outbound market-position finding. Delivery is
// fire-and-forget: the engine does not retry, the notifier owns that.
type Alert struct {
	Severity   Severity     `json:"severity"`
	DealerName string       `json:"dealer_name"`
	Title      string       `json:"title"`
	Message    string       `json:"message"`
	Payload    AlertPayload `json:"payload"`
	Timestamp  time.Time    `json:"timestamp"`
}

// AlertPayload carries the evidence behind an alert.
type AlertPayload struct {
	Position         model.MarketPositionSummary `json:"position"`
	TopOpportunities []model.PricingOpportunity  `json:"top_opportunities"`
}

// Notifier is the external delivery collaborator.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Dispatcher paces and forwards alerts to a notifier.
type Dispatcher struct {
	notifier Notifier
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher that forwards at most alertsPerMin
// alerts per minute to the notifier. A nil notifier drops all alerts.
func NewDispatcher(notifier Notifier, alertsPerMin float64, logger zerolog.Logger) *Dispatcher {
	if alertsPerMin <= 0 {
		alertsPerMin = 30
	}
	return &Dispatcher{
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(alertsPerMin/60), 1),
		logger:   logger,
	}
}

// Dispatch forwards one alert. Delivery failures are logged, not
// returned: alerting must never fail an analysis run.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	if d.notifier == nil {
		return
	}
	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Warn().Err(err).Str("dealer", alert.DealerName).Msg("alert dispatch abandoned")
		return
	}
	if err := d.notifier.Notify(ctx, alert); err != nil {
		d.logger.Warn().Err(err).Str("dealer", alert.DealerName).Str("title", alert.Title).Msg("alert delivery failed")
		return
	}
	d.logger.Info().Str("dealer", alert.DealerName).Str("severity", string(alert.Severity)).Msg("alert dispatched")
}

// maxPayloadOpportunities caps the evidence attached to an alert.
const maxPayloadOpportunities = 5

// BuildPositionAlert constructs the alert for an extreme overall market
// position, or nil for the three inner bands.
func BuildPositionAlert(dealer string, position model.MarketPositionSummary, opportunities []model.PricingOpportunity, now time.Time) *Alert {
	top := opportunities
	if len(top) > maxPayloadOpportunities {
		top = top[:maxPayloadOpportunities]
	}

	switch position.OverallPosition {
	case model.PositionSignificantlyAbove:
		return &Alert{
			Severity:   SeverityHigh,
			DealerName: dealer,
			Title:      "Inventory significantly overpriced",
			Message: fmt.Sprintf("%s averages %.1f%% above market across %d analyzed vehicles",
				dealer, position.AvgPriceVariance, position.AnalyzedVehicles),
			Payload:   AlertPayload{Position: position, TopOpportunities: top},
			Timestamp: now,
		}
	case model.PositionSignificantlyBelow:
		return &Alert{
			Severity:   SeverityMedium,
			DealerName: dealer,
			Title:      "Inventory significantly underpriced",
			Message: fmt.Sprintf("%s averages %.1f%% below market across %d analyzed vehicles",
				dealer, -position.AvgPriceVariance, position.AnalyzedVehicles),
			Payload:   AlertPayload{Position: position, TopOpportunities: top},
			Timestamp: now,
		}
	default:
		return nil
	}
}
