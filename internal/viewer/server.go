// Package viewer serves a rendered chart to the local browser.
//
// The server binds a loopback address, optionally opens the system browser
// on it and, in once mode, shuts down after the chart page has been served.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrplot/internal/chart"
	"hrplot/internal/metrics"
	"hrplot/internal/model"
	"hrplot/internal/pipeline"
)

// Config configures the viewer server.
type Config struct {
	Addr        string // listen address, e.g. "127.0.0.1:0"
	Once        bool   // stop after the chart page has been served once
	OpenBrowser bool
	Chart       chart.Options
}

// Server serves one processed series.
type Server struct {
	cfg     Config
	series  model.Series
	summary pipeline.Summary
	metrics *metrics.Metrics
	log     *slog.Logger

	srv       *http.Server
	ln        net.Listener
	served    chan struct{}
	servedOne sync.Once
	startedAt time.Time

	// openURL launches the browser; replaced in tests.
	openURL func(string) error
}

// New creates a viewer for series. gatherer backs /metrics; m may be nil.
func New(cfg Config, series model.Series, gatherer prometheus.Gatherer, m *metrics.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		series:  series,
		summary: pipeline.Summarize(series),
		metrics: m,
		log:     log,
		served:  make(chan struct{}),
		openURL: browser.OpenURL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleChart)
	mux.HandleFunc("/summary", s.handleSummary)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the HTTP routes without binding a socket.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start binds the listen address and serves in a goroutine.
// It returns the URL of the chart page.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return "", fmt.Errorf("viewer listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.startedAt = time.Now()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("viewer server error", slog.Any("error", err))
		}
	}()

	url := "http://" + ln.Addr().String() + "/"
	s.log.Info("viewer listening", slog.String("url", url))

	if s.cfg.OpenBrowser {
		if err := s.openURL(url); err != nil {
			// still reachable by hand
			s.log.Warn("could not open browser", slog.String("url", url), slog.Any("error", err))
		}
	}
	return url, nil
}

// Wait blocks until ctx is cancelled or, in once mode, the chart has been
// served. It then shuts the server down.
func (s *Server) Wait(ctx context.Context) error {
	var done <-chan struct{}
	if s.cfg.Once {
		done = s.served
	}

	select {
	case <-ctx.Done():
	case <-done:
		s.log.Info("chart delivered, shutting down viewer")
	}
	return s.Stop()
}

// Served is closed after the chart page has been written to a client.
func (s *Server) Served() <-chan struct{} { return s.served }

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	start := time.Now()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.RenderHTML(w, s.series, s.cfg.Chart); err != nil {
		s.log.Error("chart render failed", slog.Any("error", err))
		return
	}
	s.metrics.ObserveRender(time.Since(start))
	s.servedOne.Do(func() { close(s.served) })
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.summary); err != nil {
		s.log.Error("summary encode failed", slog.Any("error", err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Status  string `json:"status"`
		Uptime  string `json:"uptime"`
		Samples int    `json:"samples"`
		Spikes  int    `json:"spikes"`
	}{
		Status:  "healthy",
		Samples: s.summary.Samples,
		Spikes:  s.summary.Spikes,
	}
	if !s.startedAt.IsZero() {
		status.Uptime = time.Since(s.startedAt).Round(time.Second).String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.log.Error("health encode failed", slog.Any("error", err))
	}
}
