package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jkaninda/okapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPConfig configures the observability sidecar.
type HTTPConfig struct {
	ListenAddr      string // e.g. ":9090".
	MetricsRegistry *prometheus.Registry
	MetricsPath     string // Default: "/metrics".
}

// HTTPServer exposes /healthz, /readyz, and /metrics. It carries no
// tool traffic — MCP stays on stdio.
type HTTPServer struct {
	config HTTPConfig
	okapi  *okapi.Okapi
	server *http.Server
	logger *slog.Logger
}

// HealthResponse is the JSON body for the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewHTTPServer creates the sidecar.
func NewHTTPServer(cfg HTTPConfig, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{
		config: cfg,
		okapi:  okapi.New(),
		logger: logger,
	}
}

// Start registers routes and serves until Stop or listener failure.
func (h *HTTPServer) Start(ctx context.Context) error {
	h.okapi.Get("/healthz", h.handleLiveness)
	h.okapi.Get("/readyz", h.handleLiveness)

	if h.config.MetricsRegistry != nil {
		path := h.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		h.okapi.HandleStd("GET", path, promhttp.HandlerFor(h.config.MetricsRegistry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	h.server = &http.Server{
		Addr:              h.config.ListenAddr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	h.logger.Info("observability sidecar starting", slog.String("addr", h.config.ListenAddr))

	err := h.okapi.StartServer(h.server)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts the sidecar down.
func (h *HTTPServer) Stop(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	h.logger.Info("observability sidecar stopping")
	return h.okapi.Shutdown(h.server)
}

func (h *HTTPServer) handleLiveness(c *okapi.Context) error {
	return c.OK(&HealthResponse{Status: "ok"})
}
