package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dealerscope/dealerscope/internal/alerting"
	"github.com/dealerscope/dealerscope/internal/config"
	"github.com/dealerscope/dealerscope/internal/engine"
	"github.com/dealerscope/dealerscope/internal/ingest"
	"github.com/dealerscope/dealerscope/internal/report"
	"github.com/dealerscope/dealerscope/internal/runner"
	"github.com/dealerscope/dealerscope/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg.LogLevel)
	log.Info().Str("snapshots", cfg.SnapshotDir).Str("reports", cfg.ReportDir).Msg("starting dealerscope")

	vehicleStore := store.New()
	dispatcher := alerting.NewDispatcher(alerting.NewLogNotifier(log.Logger), cfg.AlertsPerMin, log.Logger)
	eng := engine.New(cfg.Analysis, vehicleStore, dispatcher, log.Logger)
	run := runner.New(eng, cfg.Workers, log.Logger)

	if cfg.CronSpec == "" {
		if err := analyzeOnce(ctx, cfg, run); err != nil {
			log.Fatal().Err(err).Msg("analysis run failed")
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.CronSpec, func() {
		if err := analyzeOnce(ctx, cfg, run); err != nil {
			log.Error().Err(err).Msg("scheduled analysis run failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.CronSpec).Msg("invalid cron spec")
	}
	log.Info().Str("spec", cfg.CronSpec).Msg("running on schedule")
	c.Start()
	<-ctx.Done()
	c.Stop()
}

// analyzeOnce ingests the snapshot directory, analyzes every
// dealership, and writes one JSON dashboard and one opportunity CSV per
// dealer.
func analyzeOnce(ctx context.Context, cfg *config.App, run *runner.Runner) error {
	loader := ingest.NewLoader(log.Logger)
	inventories, err := loader.LoadDir(cfg.SnapshotDir)
	if err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}
	if len(inventories) == 0 {
		log.Warn().Str("dir", cfg.SnapshotDir).Msg("no snapshots found, nothing to analyze")
		return nil
	}

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	for _, result := range run.AnalyzeAll(ctx, inventories) {
		if result.Err != nil {
			continue // already logged by the runner
		}
		if err := writeReports(cfg.ReportDir, result); err != nil {
			log.Error().Err(err).Str("dealer", result.Dealer).Msg("writing reports failed")
			continue
		}
		log.Info().
			Str("dealer", result.Dealer).
			Int("opportunities", len(result.Dashboard.Opportunities)).
			Str("position", string(result.Dashboard.Position.OverallPosition)).
			Msg("dashboard written")
	}
	return nil
}

func writeReports(dir string, result runner.Result) error {
	base := filepath.Join(dir, sanitizeName(result.Dealer))

	jsonFile, err := os.Create(base + ".json")
	if err != nil {
		return fmt.Errorf("creating JSON report: %w", err)
	}
	defer jsonFile.Close()
	if err := report.WriteJSON(jsonFile, result.Dashboard); err != nil {
		return err
	}

	csvFile, err := os.Create(base + "_opportunities.csv")
	if err != nil {
		return fmt.Errorf("creating CSV report: %w", err)
	}
	defer csvFile.Close()
	return report.WriteOpportunitiesCSV(csvFile, result.Dashboard.Opportunities)
}

func sanitizeName(dealer string) string {
	out := make([]rune, 0, len(dealer))
	for _, r := range dealer {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("shutdown signal received")
		cancel()
	}()
}

func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
