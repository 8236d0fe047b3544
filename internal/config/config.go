// Package config handles loading and validating toolgate configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where `toolgate serve` looks when no --config flag and
// no TOOLGATE_CONFIG are set. A missing file at the default path is not
// an error — every section has a usable zero configuration.
const DefaultPath = "~/.toolgate/config.yaml"

// Config is the root configuration for toolgate.
type Config struct {
	Sandbox       SandboxConfig        `json:"sandbox" yaml:"sandbox"`
	Adapters      AdaptersConfig       `json:"adapters" yaml:"adapters"`
	Audit         *AuditConfig         `json:"audit,omitempty" yaml:"audit,omitempty"`                 // nil = audit disabled
	Observability *ObservabilityConfig `json:"observability,omitempty" yaml:"observability,omitempty"` // nil = no metrics endpoint, no tracing
}

// SandboxConfig configures the process sandbox.
type SandboxConfig struct {
	DefaultTimeoutSeconds int `json:"default_timeout_seconds" yaml:"default_timeout_seconds"` // Default: 30.
	MaxOutputBytes        int `json:"max_output_bytes" yaml:"max_output_bytes"`               // Default: 1 MB.
}

// DefaultTimeout returns the sandbox timeout as a duration.
func (s *SandboxConfig) DefaultTimeout() time.Duration {
	if s.DefaultTimeoutSeconds > 0 {
		return time.Duration(s.DefaultTimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// AdaptersConfig holds per-adapter settings. AllowedRoots confines the
// filesystem paths an adapter's commands may target; empty = unrestricted.
type AdaptersConfig struct {
	AllowedRoots []string       `json:"allowed_roots,omitempty" yaml:"allowed_roots,omitempty"` // Shared default for all adapters.
	Ripgrep      *AdapterConfig `json:"ripgrep,omitempty" yaml:"ripgrep,omitempty"`
	GitRead      *AdapterConfig `json:"git_read,omitempty" yaml:"git_read,omitempty"`
	HTTPFetch    *AdapterConfig `json:"http_fetch,omitempty" yaml:"http_fetch,omitempty"` // AllowedRoots ignored: no filesystem surface.
}

// AdapterConfig configures one adapter.
type AdapterConfig struct {
	Enabled      *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"` // nil = enabled.
	AllowedRoots []string `json:"allowed_roots,omitempty" yaml:"allowed_roots,omitempty"`
}

// IsEnabled reports whether the adapter should be registered.
func (a *AdapterConfig) IsEnabled() bool {
	return a == nil || a.Enabled == nil || *a.Enabled
}

// RootsFor resolves the allowed roots for one adapter: adapter-specific
// roots win, then the shared default. The per-adapter environment
// variable (e.g. TOOLGATE_RIPGREP_ROOTS) is applied in Load, not here.
func (c *AdaptersConfig) RootsFor(adapter *AdapterConfig) []string {
	if adapter != nil && len(adapter.AllowedRoots) > 0 {
		return adapter.AllowedRoots
	}
	return c.AllowedRoots
}

// AuditConfig configures the invocation audit trail.
type AuditConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" (default), "postgres", or "file".

	// SQLite: database file path. Default: ~/.toolgate/audit.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Postgres DSN. Required when driver is "postgres".
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// AuditDriver returns the configured driver, defaulting to "sqlite".
func (a *AuditConfig) AuditDriver() string {
	if a != nil && a.Driver != "" {
		return a.Driver
	}
	return "sqlite"
}

// SQLitePath returns the database file path, defaulting to
// ~/.toolgate/audit.db. The parent directory is created on first open.
func (a *AuditConfig) SQLitePath() string {
	if a != nil && a.Path != "" {
		return a.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "toolgate-audit.db"
	}
	return filepath.Join(home, ".toolgate", "audit.db")
}

// ObservabilityConfig configures the metrics/health sidecar and tracing.
type ObservabilityConfig struct {
	ListenAddr string         `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"` // e.g. ":9090". Empty = no HTTP sidecar.
	Tracing    *TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`         // nil = tracing disabled.
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	ServiceName string  `json:"service_name,omitempty" yaml:"service_name,omitempty"` // Default: "toolgate".
	Endpoint    string  `json:"endpoint" yaml:"endpoint"`                             // e.g. "localhost:4317".
	Protocol    string  `json:"protocol,omitempty" yaml:"protocol,omitempty"`         // "grpc" (default) or "http".
	Insecure    bool    `json:"insecure" yaml:"insecure"`
	SampleRate  float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"` // Default: 1.0.
}

// Load reads the config file at path, applies environment overrides, and
// validates. A missing file at DefaultPath yields the zero config.
func Load(path string) (*Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}

	var cfg Config
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		switch ext := strings.ToLower(filepath.Ext(resolved)); ext {
		case ".json":
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing JSON config %s: %w", resolved, err)
			}
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing YAML config %s: %w", resolved, err)
			}
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// No config file: run with defaults.
	default:
		return nil, fmt.Errorf("reading config %s: %w", resolved, err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets environment variables take precedence over
// config file values. Root lists use the PATH-list delimiter.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TOOLGATE_ALLOWED_ROOTS"); v != "" {
		cfg.Adapters.AllowedRoots = filepath.SplitList(v)
	}
	// http_fetch has no filesystem surface, so it gets no roots variable.
	for env, adapter := range map[string]**AdapterConfig{
		"TOOLGATE_RIPGREP_ROOTS":  &cfg.Adapters.Ripgrep,
		"TOOLGATE_GIT_READ_ROOTS": &cfg.Adapters.GitRead,
	} {
		if v := os.Getenv(env); v != "" {
			if *adapter == nil {
				*adapter = &AdapterConfig{}
			}
			(*adapter).AllowedRoots = filepath.SplitList(v)
		}
	}
	if v := os.Getenv("TOOLGATE_AUDIT_DSN"); v != "" {
		if cfg.Audit == nil {
			cfg.Audit = &AuditConfig{Driver: "postgres"}
		}
		cfg.Audit.DSN = v
	}
	if v := os.Getenv("TOOLGATE_METRICS_ADDR"); v != "" {
		if cfg.Observability == nil {
			cfg.Observability = &ObservabilityConfig{}
		}
		cfg.Observability.ListenAddr = v
	}
}

// Validate checks cross-field constraints and rejects misconfiguration
// early, before any adapter is registered.
func (c *Config) Validate() error {
	if c.Audit != nil {
		switch driver := c.Audit.AuditDriver(); driver {
		case "sqlite":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit: file driver requires a path")
			}
		case "postgres":
			if c.Audit.DSN == "" {
				return fmt.Errorf("audit: postgres driver requires a dsn")
			}
		default:
			return fmt.Errorf("audit: unknown driver %q", driver)
		}
	}
	if c.Observability != nil && c.Observability.Tracing != nil && c.Observability.Tracing.Enabled {
		if c.Observability.Tracing.Endpoint == "" {
			return fmt.Errorf("observability.tracing: enabled but no endpoint")
		}
		switch p := c.Observability.Tracing.Protocol; p {
		case "", "grpc", "http":
		default:
			return fmt.Errorf("observability.tracing: unknown protocol %q", p)
		}
	}
	for _, root := range c.Adapters.AllowedRoots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("adapters.allowed_roots: %q is not absolute", root)
		}
	}
	for name, adapter := range map[string]*AdapterConfig{
		"ripgrep":  c.Adapters.Ripgrep,
		"git_read": c.Adapters.GitRead,
	} {
		if adapter == nil {
			continue
		}
		for _, root := range adapter.AllowedRoots {
			if !filepath.IsAbs(root) {
				return fmt.Errorf("adapters.%s.allowed_roots: %q is not absolute", name, root)
			}
		}
	}
	return nil
}

// resolvePath expands a leading ~ to the user's home directory.
func resolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
