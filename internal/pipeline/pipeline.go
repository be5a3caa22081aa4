// Package pipeline turns loaded heart-rate records into a plotted series:
// normalize, keep the first window of time, smooth, then flag rapid changes.
//
// Every stage runs once over the whole in-memory series, in order. Empty
// input flows through all stages and produces an empty series.
package pipeline

import (
	"log/slog"
	"slices"
	"time"

	"hrplot/internal/indicator"
	"hrplot/internal/metrics"
	"hrplot/internal/model"
)

// Params holds the fixed tuning of the pipeline.
type Params struct {
	SmoothWindow   int           // samples averaged by the smoother
	SpikeWindow    int           // samples spanned by the delta window (row count, not seconds)
	SpikeThreshold float64       // delta at or above which a sample is a spike
	Horizon        time.Duration // span kept after the first sample
}

// DefaultParams returns the stock tuning: 5-sample smoothing, a 10-sample
// delta window, a 5 bpm threshold and the first hour of data.
func DefaultParams() Params {
	return Params{
		SmoothWindow:   5,
		SpikeWindow:    10,
		SpikeThreshold: 5,
		Horizon:        time.Hour,
	}
}

// Normalize returns a copy of records sorted ascending by timestamp.
// Records sharing a timestamp keep their input order.
func Normalize(records []model.Record) []model.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []model.Record{}
	}
	slices.SortStableFunc(out, func(a, b model.Record) int {
		switch {
		case a.MeasuredAtMs < b.MeasuredAtMs:
			return -1
		case a.MeasuredAtMs > b.MeasuredAtMs:
			return 1
		default:
			return 0
		}
	})
	return out
}

// FirstWindow keeps the records whose timestamp is at most horizon after the
// first record's, preserving order. sorted must already be normalized.
func FirstWindow(sorted []model.Record, horizon time.Duration) []model.Record {
	if len(sorted) == 0 {
		return []model.Record{}
	}
	end := sorted[0].MeasuredAtMs + horizon.Milliseconds()
	out := make([]model.Record, 0, len(sorted))
	for _, r := range sorted {
		if r.MeasuredAtMs <= end {
			out = append(out, r)
		}
	}
	return out
}

// Smooth builds the series with the trailing moving average of HeartRate
// over window samples.
func Smooth(records []model.Record, window int) model.Series {
	sma := indicator.NewSMA(window)
	series := make(model.Series, len(records))
	for i, r := range records {
		sma.Update(r.HeartRate)
		series[i] = model.Sample{
			Record:   r,
			TS:       r.Time(),
			Smoothed: sma.Value(),
		}
	}
	return series
}

// Detect fills WindowDelta, Spike and Drop in place. The delta window counts
// rows, so with irregular sampling it spans the last window samples rather
// than a fixed amount of time.
func Detect(series model.Series, window int, threshold float64) {
	delta := indicator.NewWindowDelta(window)
	for i := range series {
		delta.Update(series[i].Smoothed)
		d := delta.Value()
		series[i].WindowDelta = d
		series[i].Spike = d >= threshold
		series[i].Drop = d <= -threshold
	}
}

// Runner executes all stages and records their timing.
type Runner struct {
	params  Params
	metrics *metrics.Metrics // may be nil
	log     *slog.Logger
}

// NewRunner creates a Runner. m may be nil.
func NewRunner(p Params, m *metrics.Metrics, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{params: p, metrics: m, log: log}
}

// Run processes records through every stage and returns the derived series.
func (r *Runner) Run(records []model.Record) model.Series {
	r.metrics.ObserveRecordsLoaded(len(records))

	var sorted, windowed []model.Record
	var series model.Series

	r.stage("normalize", func() { sorted = Normalize(records) })
	r.stage("window", func() { windowed = FirstWindow(sorted, r.params.Horizon) })
	r.stage("smooth", func() { series = Smooth(windowed, r.params.SmoothWindow) })
	r.stage("detect", func() { Detect(series, r.params.SpikeWindow, r.params.SpikeThreshold) })

	r.metrics.ObserveSeries(len(series), series.Spikes())
	r.log.Debug("pipeline finished",
		slog.Int("records", len(records)),
		slog.Int("kept", len(windowed)),
		slog.Int("dropped_after_horizon", len(sorted)-len(windowed)),
	)
	return series
}

func (r *Runner) stage(name string, fn func()) {
	start := time.Now()
	fn()
	r.metrics.ObserveStage(name, time.Since(start))
}
