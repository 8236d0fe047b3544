package gitread

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jkaninda/toolgate/internal/cmdsafe"
	"github.com/jkaninda/toolgate/internal/sandbox"
)

type fakeRunner struct {
	lastSpec *cmdsafe.CommandSpec
	outcome  *sandbox.RunOutcome
}

func (f *fakeRunner) Run(_ context.Context, spec *cmdsafe.CommandSpec) (*sandbox.RunOutcome, error) {
	f.lastSpec = spec
	return f.outcome, nil
}

func newTestAdapter(t *testing.T, runner *fakeRunner) (*Adapter, string) {
	t.Helper()
	repo := filepath.Join(t.TempDir(), "repo")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return New(cmdsafe.NewRootSet([]string{repo}), runner, logger), repo
}

func TestExecute_ReadOnlySubcommand(t *testing.T) {
	runner := &fakeRunner{outcome: &sandbox.RunOutcome{ExitCode: 0, Stdout: "on branch main\n"}}
	adapter, repo := newTestAdapter(t, runner)

	result, err := adapter.Execute(context.Background(), map[string]any{
		"subcommand": "status",
		"repo_path":  repo,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("success = false, want true")
	}

	want := []string{"--no-pager", "status"}
	if !reflect.DeepEqual(runner.lastSpec.Argv(), want) {
		t.Errorf("argv = %v, want %v", runner.lastSpec.Argv(), want)
	}
	if runner.lastSpec.Dir() == "" {
		t.Error("working directory not set to the repo")
	}
	if got := runner.lastSpec.Env(); len(got) != 1 || got[0] != "GIT_TERMINAL_PROMPT=0" {
		t.Errorf("env = %v, want [GIT_TERMINAL_PROMPT=0]", got)
	}
}

func TestExecute_BlockedSubcommands(t *testing.T) {
	runner := &fakeRunner{}
	adapter, repo := newTestAdapter(t, runner)

	for _, subcmd := range []string{"push", "commit", "reset", "clone"} {
		_, err := adapter.Execute(context.Background(), map[string]any{
			"subcommand": subcmd,
			"repo_path":  repo,
		})
		if err == nil {
			t.Fatalf("subcommand %q accepted, want blocked", subcmd)
		}
		if !strings.Contains(err.Error(), "blocked") {
			t.Errorf("subcommand %q: message %q lacks blocked reason", subcmd, err.Error())
		}
	}
	if runner.lastSpec != nil {
		t.Error("sandbox was reached for a blocked subcommand")
	}
}

func TestExecute_UnknownSubcommand(t *testing.T) {
	adapter, repo := newTestAdapter(t, &fakeRunner{})
	_, err := adapter.Execute(context.Background(), map[string]any{
		"subcommand": "bisect",
		"repo_path":  repo,
	})
	if err == nil {
		t.Fatal("unknown subcommand accepted")
	}
}

func TestExecute_RepoOutsideRoots(t *testing.T) {
	adapter, _ := newTestAdapter(t, &fakeRunner{})
	_, err := adapter.Execute(context.Background(), map[string]any{
		"subcommand": "log",
		"repo_path":  "/etc",
	})
	if err == nil {
		t.Fatal("repo outside roots accepted")
	}
	if rej, ok := cmdsafe.AsRejection(err); !ok || rej.Kind != cmdsafe.KindRoot {
		t.Errorf("got %v, want root rejection", err)
	}
}

func TestExecute_InjectedExtraArgs(t *testing.T) {
	runner := &fakeRunner{outcome: &sandbox.RunOutcome{ExitCode: 0}}
	adapter, repo := newTestAdapter(t, runner)

	// Ordinary refs/paths pass.
	if _, err := adapter.Execute(context.Background(), map[string]any{
		"subcommand": "log",
		"repo_path":  repo,
		"args":       []any{"HEAD~5..HEAD"},
	}); err != nil {
		t.Fatalf("legitimate args rejected: %v", err)
	}

	// Dash-prefixed extras are refused before any spawn.
	_, err := adapter.Execute(context.Background(), map[string]any{
		"subcommand": "log",
		"repo_path":  repo,
		"args":       []any{"--output=/tmp/pwned"},
	})
	if err == nil {
		t.Fatal("injected arg accepted")
	}
	if rej, ok := cmdsafe.AsRejection(err); !ok || rej.Kind != cmdsafe.KindInjection {
		t.Errorf("got %v, want injection rejection", err)
	}
}
