package alerting

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier is the default delivery collaborator: it writes alerts to
// the structured log. Deployments swap in a real channel (webhook,
// email) behind the same interface.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify writes the alert to the log. It never fails.
func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.logger.Warn().
		Str("severity", string(alert.Severity)).
		Str("dealer", alert.DealerName).
		Str("title", alert.Title).
		Int("opportunities", len(alert.Payload.TopOpportunities)).
		Msg(alert.Message)
	return nil
}
