package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
sandbox:
  default_timeout_seconds: 10
adapters:
  allowed_roots: ["/srv/projects"]
  git_read:
    allowed_roots: ["/srv/repos"]
  http_fetch:
    enabled: false
audit:
  driver: file
  path: /tmp/audit.jsonl
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Sandbox.DefaultTimeout(); got != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", got)
	}
	if got := cfg.Adapters.RootsFor(cfg.Adapters.GitRead); len(got) != 1 || got[0] != "/srv/repos" {
		t.Errorf("git_read roots = %v, want the adapter-specific override", got)
	}
	if got := cfg.Adapters.RootsFor(cfg.Adapters.Ripgrep); len(got) != 1 || got[0] != "/srv/projects" {
		t.Errorf("ripgrep roots = %v, want the shared default", got)
	}
	if cfg.Adapters.HTTPFetch.IsEnabled() {
		t.Error("http_fetch should be disabled")
	}
	if !cfg.Adapters.GitRead.IsEnabled() {
		t.Error("git_read should default to enabled")
	}
	if cfg.Audit.AuditDriver() != "file" {
		t.Errorf("audit driver = %q", cfg.Audit.AuditDriver())
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Sandbox.DefaultTimeout(); got != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", got)
	}
	if cfg.Audit != nil {
		t.Error("audit should default to disabled")
	}
	if !cfg.Adapters.Ripgrep.IsEnabled() {
		t.Error("adapters should default to enabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
adapters:
  allowed_roots: ["/from/file"]
`)
	t.Setenv("TOOLGATE_ALLOWED_ROOTS", "/from/env")
	t.Setenv("TOOLGATE_RIPGREP_ROOTS", "/rg/only")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Adapters.AllowedRoots; len(got) != 1 || got[0] != "/from/env" {
		t.Errorf("shared roots = %v, want env override", got)
	}
	if got := cfg.Adapters.RootsFor(cfg.Adapters.Ripgrep); len(got) != 1 || got[0] != "/rg/only" {
		t.Errorf("ripgrep roots = %v, want per-adapter env override", got)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"postgres without dsn", "audit:\n  driver: postgres\n"},
		{"file without path", "audit:\n  driver: file\n"},
		{"unknown audit driver", "audit:\n  driver: redis\n"},
		{"relative root", "adapters:\n  allowed_roots: [\"relative/path\"]\n"},
		{"relative ripgrep root", "adapters:\n  ripgrep:\n    allowed_roots: [\"relative/path\"]\n"},
		{"relative git_read root", "adapters:\n  git_read:\n    allowed_roots: [\"./repos\"]\n"},
		{"tracing without endpoint", "observability:\n  tracing:\n    enabled: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLoad_MissingDefaultIsZeroConfig(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if _, err := os.Stat(filepath.Join(home, ".toolgate", "config.yaml")); err == nil {
		t.Skip("user has a real config at the default path")
	}

	cfg, err := Load(DefaultPath)
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
}
