// Package server wires the safety layer, sandbox, adapters, audit, and
// observability together and exposes the adapters over MCP stdio.
// No business logic lives here — only composition.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jkaninda/toolgate/internal/audit"
	"github.com/jkaninda/toolgate/internal/cmdsafe"
	"github.com/jkaninda/toolgate/internal/config"
	"github.com/jkaninda/toolgate/internal/observability"
	"github.com/jkaninda/toolgate/internal/sandbox"
	"github.com/jkaninda/toolgate/internal/tools"
	"github.com/jkaninda/toolgate/internal/tools/gitread"
	"github.com/jkaninda/toolgate/internal/tools/httpfetch"
	"github.com/jkaninda/toolgate/internal/tools/ripgrep"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Server bundles everything `toolgate serve` runs.
type Server struct {
	mcp      *mcpserver.MCPServer
	http     *HTTPServer
	recorder audit.Recorder
	tracing  *observability.TracerSetup
	metrics  *observability.MetricsCollector
	registry *tools.Registry
	logger   *slog.Logger
}

// New builds the server from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	recorder, err := audit.New(cfg.Audit, logger)
	if err != nil {
		return nil, fmt.Errorf("building audit recorder: %w", err)
	}

	var tracing *observability.TracerSetup
	metrics := observability.NewMetricsCollector()
	if cfg.Observability != nil {
		tracing, err = observability.NewTracerSetup(cfg.Observability.Tracing)
		if err != nil {
			return nil, fmt.Errorf("setting up tracing: %w", err)
		}
	}

	runner := sandbox.NewProcessSandbox(sandbox.ProcessConfig{
		DefaultTimeout: cfg.Sandbox.DefaultTimeout(),
		MaxOutputBytes: cfg.Sandbox.MaxOutputBytes,
	}, logger)

	registry := tools.NewRegistry()
	adapters := cfg.Adapters
	if adapters.Ripgrep.IsEnabled() {
		roots := cmdsafe.NewRootSet(adapters.RootsFor(adapters.Ripgrep))
		if err := registry.Register(ripgrep.New(roots, runner, logger)); err != nil {
			return nil, err
		}
	}
	if adapters.GitRead.IsEnabled() {
		roots := cmdsafe.NewRootSet(adapters.RootsFor(adapters.GitRead))
		if err := registry.Register(gitread.New(roots, runner, logger)); err != nil {
			return nil, err
		}
	}
	if adapters.HTTPFetch.IsEnabled() {
		if err := registry.Register(httpfetch.New(runner, logger)); err != nil {
			return nil, err
		}
	}

	s := &Server{
		recorder: recorder,
		tracing:  tracing,
		metrics:  metrics,
		registry: registry,
		logger:   logger,
	}

	s.mcp = mcpserver.NewMCPServer(
		"toolgate",
		Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	for _, adapter := range registry.List() {
		schema, err := json.Marshal(adapter.InputSchema())
		if err != nil {
			return nil, fmt.Errorf("marshaling schema for %s: %w", adapter.Name(), err)
		}
		def := mcp.NewToolWithRawSchema(adapter.Name(), adapter.Description(), schema)
		s.mcp.AddTool(def, s.handlerFor(adapter))
	}

	if cfg.Observability != nil && cfg.Observability.ListenAddr != "" {
		s.http = NewHTTPServer(HTTPConfig{
			ListenAddr:      cfg.Observability.ListenAddr,
			MetricsRegistry: metrics.Registry,
		}, logger)
	}

	return s, nil
}

// handlerFor wraps one adapter with tracing, metrics, and auditing.
func (s *Server) handlerFor(adapter tools.Adapter) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := s.tracing.Tracer().Start(ctx, "tool."+adapter.Name(),
			trace.WithAttributes(attribute.String("toolgate.program", adapter.Program())),
		)
		defer span.End()

		s.metrics.ActiveExecutions.Inc()
		defer s.metrics.ActiveExecutions.Dec()

		start := time.Now()
		result, err := adapter.Execute(ctx, req.GetArguments())
		duration := time.Since(start)

		if err != nil {
			outcome := "error"
			if rej, ok := cmdsafe.AsRejection(err); ok {
				outcome = rej.Kind.String()
				s.metrics.RejectionsTotal.WithLabelValues(adapter.Name(), outcome).Inc()
			}
			s.metrics.ExecutionsTotal.WithLabelValues(adapter.Name(), outcome).Inc()
			s.record(ctx, audit.NewRecord(adapter.Name(), adapter.Program(), outcome, -1, err.Error(), duration))
			span.RecordError(err)
			// Rejections surface as tool-level errors, never swallowed
			// and never a protocol failure.
			return mcp.NewToolResultError(err.Error()), nil
		}

		s.metrics.ExecutionsTotal.WithLabelValues(adapter.Name(), "ok").Inc()
		s.metrics.ExecutionDuration.WithLabelValues(adapter.Name()).Observe(duration.Seconds())
		s.record(ctx, audit.NewRecord(adapter.Name(), adapter.Program(), "ok", result.ExitCode, "", duration))

		return mcp.NewToolResultText(result.Output), nil
	}
}

func (s *Server) record(ctx context.Context, rec audit.Record) {
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "audit record failed",
			slog.String("tool", rec.Tool),
			slog.String("error", err.Error()),
		)
	}
}

// Registry exposes the adapter registry, used by tests and the CLI.
func (s *Server) Registry() *tools.Registry { return s.registry }

// Run serves MCP over stdio until the client disconnects or ctx is
// canceled. The HTTP sidecar, when configured, runs alongside.
func (s *Server) Run(ctx context.Context) error {
	if s.http != nil {
		go func() {
			if err := s.http.Start(ctx); err != nil {
				s.logger.Error("http sidecar failed", slog.String("error", err.Error()))
			}
		}()
	}
	s.logger.Info("toolgate serving MCP on stdio",
		slog.Int("adapters", len(s.registry.List())),
		slog.String("version", Version),
	)
	return mcpserver.ServeStdio(s.mcp)
}

// Shutdown flushes traces, closes the audit backend, and stops the HTTP
// sidecar.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.http != nil {
		if err := s.http.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if err := s.tracing.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.recorder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
