// Package metrics exposes Prometheus metrics for a pipeline run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for hrplot.
// All Observe methods are safe to call on a nil *Metrics.
type Metrics struct {
	RecordsLoaded  prometheus.Counter
	SamplesPlotted prometheus.Gauge
	SpikesFlagged  prometheus.Gauge
	StageDur       *prometheus.HistogramVec // labels: stage
	ChartRenders   prometheus.Counter
	ChartRenderDur prometheus.Histogram
}

// NewMetrics creates all metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrplot_records_loaded_total",
			Help: "Heart-rate records read from the input",
		}),
		SamplesPlotted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hrplot_samples_plotted",
			Help: "Samples kept after the horizon filter",
		}),
		SpikesFlagged: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hrplot_spikes_flagged",
			Help: "Samples flagged as rapid increases",
		}),
		StageDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrplot_stage_duration_seconds",
			Help:    "Pipeline stage latency",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"stage"}),
		ChartRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrplot_chart_renders_total",
			Help: "Chart pages rendered",
		}),
		ChartRenderDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hrplot_chart_render_duration_seconds",
			Help:    "Chart page render latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.RecordsLoaded,
		m.SamplesPlotted,
		m.SpikesFlagged,
		m.StageDur,
		m.ChartRenders,
		m.ChartRenderDur,
	)

	return m
}

// ObserveRecordsLoaded counts records handed to the pipeline.
func (m *Metrics) ObserveRecordsLoaded(n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Add(float64(n))
}

// ObserveSeries records the size of the final series.
func (m *Metrics) ObserveSeries(samples, spikes int) {
	if m == nil {
		return
	}
	m.SamplesPlotted.Set(float64(samples))
	m.SpikesFlagged.Set(float64(spikes))
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDur.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRender records one chart render.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.ChartRenders.Inc()
	m.ChartRenderDur.Observe(d.Seconds())
}
