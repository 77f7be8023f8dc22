package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avkit/avpolicy/analysis"
	"github.com/avkit/avpolicy/config"
	"github.com/avkit/avpolicy/loader"
	avmetrics "github.com/avkit/avpolicy/metrics"
	"github.com/avkit/avpolicy/policy"
	"github.com/avkit/avpolicy/report"
)

var (
	configFile  string
	metricsAddr string
)

// env bundles the ambient concerns every subcommand needs: a loaded
// config, a logger built from its log level, a registry-scoped metrics
// set, and a reporter that logs structurally and also collects for any
// caller that wants the raw messages back.
type env struct {
	cfg      *config.Config
	runID    string
	logger   *slog.Logger
	metrics  *avmetrics.Metrics
	reporter *report.MultiReporter
	collect  *report.CollectingReporter
}

func setupEnv() (*env, error) {
	config.InitViper(configFile)
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	runID := uuid.New().String()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})).With("run_id", runID)

	reg := prometheus.NewRegistry()
	m := avmetrics.New(reg)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	collect := report.NewCollectingReporter()
	reporter := report.NewMultiReporter(report.NewSlogReporter(logger), collect)

	return &env{cfg: cfg, runID: runID, logger: logger, metrics: m, reporter: reporter, collect: collect}, nil
}

// loadTextPolicy opens path and parses it as declarative-form policy
// text. The registry-driven commands only ever consume text policies;
// binary input goes through info's Sniff path instead (spec §6: the
// loader deliberately stops at capability detection for binary form).
func loadTextPolicy(path string) (*policy.Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return loader.NewTextLoader(path).Load(f)
}

func defaultRegistry() *analysis.Registry {
	return analysis.DefaultRegistry()
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
	os.Exit(1)
}
