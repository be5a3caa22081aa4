// cmd/hrplot loads a heart-rate recording, keeps its first hour, smooths it,
// flags rapid increases and shows the result as an interactive chart in the
// browser.
//
// Usage:
//
//	go run ./cmd/hrplot                       # heartrate.csv with stock settings
//	go run ./cmd/hrplot --input=session.csv --png=session.png
//	go run ./cmd/hrplot --source=sqlite --recording=<id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"hrplot/config"
	"hrplot/internal/chart"
	"hrplot/internal/loader"
	"hrplot/internal/logger"
	"hrplot/internal/metrics"
	"hrplot/internal/model"
	"hrplot/internal/pipeline"
	sqlitestore "hrplot/internal/store/sqlite"
	"hrplot/internal/viewer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("hrplot failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags default to the loaded config so they only override what they name.
	flag.StringVar(&cfg.Source, "source", cfg.Source, "Record source: csv or sqlite")
	flag.StringVar(&cfg.InputPath, "input", cfg.InputPath, "CSV file with measured_at_ms and heart_rate columns")
	flag.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "Path to SQLite recording store")
	flag.StringVar(&cfg.RecordingID, "recording", cfg.RecordingID, "Recording ID for --source=sqlite (empty = latest)")
	flag.IntVar(&cfg.SmoothWindow, "smooth", cfg.SmoothWindow, "Moving average window (samples)")
	flag.IntVar(&cfg.SpikeWindow, "spike-window", cfg.SpikeWindow, "Spike delta window (samples)")
	flag.Float64Var(&cfg.SpikeThreshold, "threshold", cfg.SpikeThreshold, "Spike threshold (bpm)")
	flag.DurationVar(&cfg.Horizon, "horizon", cfg.Horizon, "Span kept after the first sample")
	flag.BoolVar(&cfg.ShowDrops, "show-drops", cfg.ShowDrops, "Also plot rapid decreases")
	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "Viewer listen address")
	flag.BoolVar(&cfg.OpenBrowser, "browser", cfg.OpenBrowser, "Open the chart in the system browser")
	flag.BoolVar(&cfg.Once, "once", cfg.Once, "Exit after the chart has been served once")
	flag.StringVar(&cfg.PNGPath, "png", cfg.PNGPath, "Also write a static PNG to this path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	runID := logger.NewRunID()
	log := logger.Init("hrplot", logger.ParseLevel(cfg.LogLevel)).With(slog.String("run_id", runID))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log.Info("starting", cfg.LogAttrs()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRunID(ctx, runID)

	records, err := loadRecords(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	series := pipeline.NewRunner(pipeline.Params{
		SmoothWindow:   cfg.SmoothWindow,
		SpikeWindow:    cfg.SpikeWindow,
		SpikeThreshold: cfg.SpikeThreshold,
		Horizon:        cfg.Horizon,
	}, m, log).Run(records)

	summary := pipeline.Summarize(series)
	log.Info("series ready", slog.Any("summary", summary))
	if summary.Samples == 0 {
		log.Warn("no samples to plot, rendering an empty chart")
	}

	chartOpts := chart.Options{ShowDrops: cfg.ShowDrops}
	if cfg.PNGPath != "" {
		if err := writePNG(cfg.PNGPath, series, chartOpts); err != nil {
			if !errors.Is(err, chart.ErrTooFewPoints) {
				return err
			}
			log.Warn("skipping png", slog.Any("error", err))
		} else {
			log.Info("png written", slog.String("path", cfg.PNGPath))
		}
	}

	v := viewer.New(viewer.Config{
		Addr:        cfg.ListenAddr,
		Once:        cfg.Once,
		OpenBrowser: cfg.OpenBrowser,
		Chart:       chartOpts,
	}, series, prometheus.DefaultGatherer, m, log)

	if _, err := v.Start(); err != nil {
		return err
	}
	return v.Wait(ctx)
}

func loadRecords(ctx context.Context, cfg *config.Config) ([]model.Record, error) {
	if cfg.Source == config.SourceCSV {
		return loader.Load(cfg.InputPath)
	}

	reader, err := sqlitestore.NewReader(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	id := cfg.RecordingID
	if id == "" {
		latest, err := reader.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("finding latest recording: %w", err)
		}
		id = latest.ID
	}
	return reader.ReadRecords(ctx, id)
}

func writePNG(path string, series model.Series, o chart.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating png: %w", err)
	}
	if err := chart.PNG(f, series, o); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
