package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"eda/internal/config"
	"eda/internal/logging"
	"eda/internal/metrics"
	"eda/internal/metrics/datadog"
	"eda/internal/metrics/prompush"
)

// Exit codes. Warn-level validation findings never fail a run; they surface
// in the report preamble instead.
const (
	exitOK            = 0
	exitRunFailed     = 1
	exitConfigInvalid = 2
)

// main is the entry point for the eda binary. It loads the run configuration,
// wires logging and metrics, and executes the report pipeline.
func main() {
	os.Exit(realMain())
}

func realMain() int {
	var (
		cfgPath        string
		outPath        string
		metricsBackend string
		validateOnly   bool
		charts         bool
		verbose        bool
	)

	flag.StringVar(&cfgPath, "config", "config.yaml", "run configuration path")
	flag.StringVar(&outPath, "out", "", "report output path (overrides report.output)")
	flag.StringVar(&metricsBackend, "metrics", "", "metrics backend: none, prometheus, datadog (overrides metrics.backend)")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&charts, "charts", false, "render chart files (overrides report.charts.enabled)")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitConfigInvalid
	}

	// Flag overrides land before validation so a broken override is reported
	// the same way a mistake in the file would be.
	if outPath != "" {
		cfg.Report.Output = outPath
	}
	if charts {
		cfg.Report.Charts.Enabled = true
	}
	if metricsBackend != "" {
		cfg.Metrics.Backend = metricsBackend
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(os.Stderr, "configuration is invalid: %s\n", cfgPath)
		return exitConfigInvalid
	}
	if validateOnly {
		fmt.Fprintf(os.Stderr, "configuration is valid: %s\n", cfgPath)
		if verbose {
			// Print the effective configuration, overrides included, so what
			// ran can be checked into place as a config file.
			b, err := config.Dump(cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				return exitConfigInvalid
			}
			_, _ = os.Stdout.Write(b)
		}
		return exitOK
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		return exitConfigInvalid
	}
	defer func() { _ = log.Sync() }()

	initMetrics(cfg, log)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}()

	if err := runPipeline(context.Background(), cfg, log); err != nil {
		log.Error("run failed", zap.String("stage", failureStage(err)), zap.Error(err))
		return exitRunFailed
	}
	return exitOK
}

// initMetrics installs the backend named by the configuration. A backend that
// cannot be built downgrades to the nop backend with a warning; a report run
// never fails because a metrics sink is down.
func initMetrics(cfg config.Config, log *zap.Logger) {
	switch cfg.Metrics.Backend {
	case "prometheus":
		b, err := prompush.NewBackend(metricsJob(cfg), cfg.Metrics.Endpoint)
		if err != nil {
			log.Warn("metrics backend unavailable", zap.String("backend", cfg.Metrics.Backend), zap.Error(err))
			return
		}
		metrics.SetBackend(b)
		log.Debug("metrics enabled", zap.String("backend", cfg.Metrics.Backend), zap.String("endpoint", cfg.Metrics.Endpoint))
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: cfg.Metrics.Endpoint, Namespace: "eda."})
		if err != nil {
			log.Warn("metrics backend unavailable", zap.String("backend", cfg.Metrics.Backend), zap.Error(err))
			return
		}
		metrics.SetBackend(b)
		log.Debug("metrics enabled", zap.String("backend", cfg.Metrics.Backend), zap.String("endpoint", cfg.Metrics.Endpoint))
	case "", "none":
		// nop backend stays in place
	default:
		log.Warn("unknown metrics backend, metrics disabled", zap.String("backend", cfg.Metrics.Backend))
	}
}
