package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrplot/internal/chart"
	"hrplot/internal/metrics"
	"hrplot/internal/model"
	"hrplot/internal/pipeline"
)

func testSeries() model.Series {
	records := make([]model.Record, 12)
	for i := range records {
		hr := 70.0
		if i >= 6 {
			hr = 90
		}
		records[i] = model.Record{MeasuredAtMs: int64(i) * 1000, HeartRate: hr}
	}
	return pipeline.NewRunner(pipeline.DefaultParams(), nil, nil).Run(records)
}

func newTestServer(t *testing.T, cfg Config, s model.Series) (*Server, *metrics.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	srv := New(cfg, s, reg, m, nil)
	srv.openURL = func(string) error { return nil }
	return srv, m
}

func TestHandler_Chart(t *testing.T) {
	srv, m := newTestServer(t, Config{}, testSeries())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), chart.SeriesSpikes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRenders))

	select {
	case <-srv.Served():
	default:
		t.Fatal("expected Served to be closed after the chart was rendered")
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	srv, _ := newTestServer(t, Config{}, testSeries())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	select {
	case <-srv.Served():
		t.Fatal("favicon must not count as the chart being served")
	default:
	}
}

func TestHandler_Summary(t *testing.T) {
	s := testSeries()
	srv, _ := newTestServer(t, Config{}, s)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got pipeline.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, len(s), got.Samples)
	assert.Equal(t, s.Spikes(), got.Spikes)
	assert.Positive(t, got.Spikes)
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, Config{}, model.Series{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
	assert.Contains(t, rec.Body.String(), `"samples":0`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hrplot_records_loaded_total")
}

func TestServer_OnceStopsAfterFirstView(t *testing.T) {
	srv, _ := newTestServer(t, Config{Addr: "127.0.0.1:0", Once: true, OpenBrowser: true}, testSeries())

	var opened string
	srv.openURL = func(u string) error { opened = u; return nil }

	url, err := srv.Start()
	require.NoError(t, err)
	assert.Equal(t, url, opened)

	waitErr := make(chan error, 1)
	go func() { waitErr <- srv.Wait(context.Background()) }()

	resp, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), chart.DefaultTitle)

	select {
	case err := <-waitErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("viewer did not stop after serving the chart")
	}
}

func TestServer_WaitHonoursContext(t *testing.T) {
	srv, _ := newTestServer(t, Config{Addr: "127.0.0.1:0"}, model.Series{})
	_, err := srv.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Wait(ctx))
}

func TestHandler_SummaryEncodeErrorLogged(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))

	// NaN never gets past the loader, but the handler must not fail silently.
	s := model.Series{{Record: model.Record{HeartRate: math.NaN()}}}
	srv := New(Config{}, s, prometheus.NewRegistry(), nil, log)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	assert.Contains(t, logs.String(), "summary encode failed")
}
