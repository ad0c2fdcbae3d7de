package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"musicbot/internal/core"
)

const shutdownTimeout = 10 * time.Second

// Server exposes health, readiness and Prometheus metrics, and records the
// bot's telemetry as core.Metrics.
type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	registry *prometheus.Registry
	metrics  *Metrics
	ready    atomic.Bool
}

type Metrics struct {
	CommandsTotal     *prometheus.CounterVec
	SearchDuration    *prometheus.HistogramVec
	SelectionsTotal   *prometheus.CounterVec
	RenderFallbacks   *prometheus.CounterVec
	FloodBlockedTotal prometheus.Counter
	DuplicatesTotal   prometheus.Counter
}

func newMetrics(registry prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicbot_commands_total",
				Help: "Total number of music commands by platform and outcome",
			},
			[]string{"platform", "outcome"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "musicbot_search_duration_seconds",
				Help:    "Time spent querying upstream music platforms",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform", "status"},
		),
		SelectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicbot_selections_total",
				Help: "Total number of candidate selections by outcome",
			},
			[]string{"outcome"},
		),
		RenderFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicbot_render_fallbacks_total",
				Help: "Total number of image lists that fell back to text",
			},
			[]string{"reason"},
		),
		FloodBlockedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "musicbot_flood_blocked_total",
				Help: "Total number of commands dropped by the flood limit",
			},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "musicbot_duplicates_total",
				Help: "Total number of redelivered messages dropped",
			},
		),
	}

	registry.MustRegister(
		metrics.CommandsTotal,
		metrics.SearchDuration,
		metrics.SelectionsTotal,
		metrics.RenderFallbacks,
		metrics.FloodBlockedTotal,
		metrics.DuplicatesTotal,
	)

	return metrics
}

// NewServer creates the server with its own metrics registry.
func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		config:   config,
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(registry),
	}
	s.server = createHTTPServer(config, setupRoutes(registry, s.ready.Load, logger))

	return s
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func setupRoutes(gatherer prometheus.Gatherer, ready func() bool, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ok","service":"musicbot"}`, logger)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !ready() {
			writeJSON(w, http.StatusServiceUnavailable, `{"status":"starting","service":"musicbot"}`, logger)
			return
		}
		writeJSON(w, http.StatusOK, `{"status":"ready","service":"musicbot"}`, logger)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", homeHandler(logger))

	return mux
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(indexPage)); err != nil {
			logger.Debug("Failed to write index page", zap.Error(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Debug("Failed to write response", zap.Error(err))
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>musicbot</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 musicbot</h1>
    <p>Song search for group chats (NetEase Cloud Music, QQ Music)</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`

// Start serves until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// SetReady flips the readiness state reported by /readyz.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

func (s *Server) RecordCommand(platform, outcome string) {
	s.metrics.CommandsTotal.WithLabelValues(platform, outcome).Inc()
}

func (s *Server) RecordSearch(platform, status string, duration time.Duration) {
	s.metrics.SearchDuration.WithLabelValues(platform, status).Observe(duration.Seconds())
}

func (s *Server) RecordSelection(outcome string) {
	s.metrics.SelectionsTotal.WithLabelValues(outcome).Inc()
}

func (s *Server) RecordRenderFallback(reason string) {
	s.metrics.RenderFallbacks.WithLabelValues(reason).Inc()
}

func (s *Server) RecordFloodBlocked() {
	s.metrics.FloodBlockedTotal.Inc()
}

func (s *Server) RecordDuplicate() {
	s.metrics.DuplicatesTotal.Inc()
}
