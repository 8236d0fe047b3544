// Package gitread implements a read-only git adapter.
//
// Security:
//   - Only read-only subcommands allowed (log, diff, status, show, branch)
//   - All write/remote-write subcommands blocked with explicit messages
//   - Repository path confined to the adapter's allowed roots
//   - The sandbox environment is an explicit allow-set, so credential
//     helpers and SSH agent variables never reach the child
package gitread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jkaninda/toolgate/internal/cmdsafe"
	"github.com/jkaninda/toolgate/internal/sandbox"
	"github.com/jkaninda/toolgate/internal/tools"
)

const program = "git"

// Allowed read-only subcommands. Anything not in this set is blocked.
var allowedSubcommands = map[string]bool{
	"log":    true,
	"diff":   true,
	"status": true,
	"show":   true,
	"branch": true,
}

// Explicitly blocked subcommands for clear error messages.
var blockedSubcommands = map[string]bool{
	"push":     true,
	"commit":   true,
	"merge":    true,
	"rebase":   true,
	"reset":    true,
	"checkout": true,
	"fetch":    true,
	"pull":     true,
	"remote":   true,
	"init":     true,
	"clone":    true,
	"tag":      true,
	"stash":    true,
}

// Adapter runs read-only git operations through the sandbox.
type Adapter struct {
	policy cmdsafe.ProgramPolicy
	roots  cmdsafe.RootSet
	runner sandbox.Runner
	logger *slog.Logger
}

// New creates a git read adapter confined to the given roots.
func New(roots cmdsafe.RootSet, runner sandbox.Runner, logger *slog.Logger) *Adapter {
	return &Adapter{
		policy: cmdsafe.NewProgramPolicy("git_read", program),
		roots:  roots,
		runner: runner,
		logger: logger,
	}
}

func (a *Adapter) Name() string    { return "git_read" }
func (a *Adapter) Program() string { return program }
func (a *Adapter) Description() string {
	return "Run read-only git commands (log, diff, status, show, branch)"
}

func (a *Adapter) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subcommand": map[string]any{"type": "string", "enum": []string{"log", "diff", "status", "show", "branch"}, "description": "The git subcommand to run"},
			"repo_path":  map[string]any{"type": "string", "description": "Path to the git repository"},
			"args":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Additional arguments for the subcommand"},
			"timeout":    map[string]any{"type": "string", "description": "Duration string (e.g. '10s'), overrides default timeout"},
		},
		"required": []string{"subcommand", "repo_path"},
	}
}

func (a *Adapter) Validate(params map[string]any) error {
	subcmd, err := tools.RequireString(params, "subcommand")
	if err != nil {
		return err
	}
	if blockedSubcommands[subcmd] {
		return fmt.Errorf("git subcommand %q is blocked (write/remote operation)", subcmd)
	}
	if !allowedSubcommands[subcmd] {
		return fmt.Errorf("git subcommand %q is not allowed", subcmd)
	}
	if _, err := tools.RequireString(params, "repo_path"); err != nil {
		return err
	}
	if _, err := tools.OptionalStringSlice(params, "args"); err != nil {
		return err
	}
	if timeout, _ := tools.OptionalString(params, "timeout"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
	}
	return nil
}

func (a *Adapter) Execute(ctx context.Context, params map[string]any) (*tools.Result, error) {
	if err := a.Validate(params); err != nil {
		return nil, err
	}
	subcmd, _ := tools.RequireString(params, "subcommand")
	repoPath, _ := tools.RequireString(params, "repo_path")

	if err := cmdsafe.ValidateLength(repoPath, "repo_path", cmdsafe.ClassPath); err != nil {
		return nil, err
	}

	// The subcommand comes from a closed set, so it joins as a literal.
	cmd := cmdsafe.NewCommand(a.policy, program).
		Flags("--no-pager", subcmd).
		Dir(a.roots, repoPath).
		Env(cmdsafe.Flag("GIT_TERMINAL_PROMPT"), cmdsafe.Flag("0"))

	extra, err := tools.OptionalStringSlice(params, "args")
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		if err := cmdsafe.ValidateLengthAll(extra, "args", cmdsafe.ClassShortString); err != nil {
			return nil, err
		}
		extraArgs, err := cmdsafe.ValidateAll(extra, "args")
		if err != nil {
			return nil, err
		}
		cmd.Args(extraArgs...)
	}

	if timeout, _ := tools.OptionalString(params, "timeout"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
		cmd.Timeout(d)
	}

	spec, err := cmd.Build()
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "git read executing",
		slog.String("subcommand", subcmd),
		slog.String("repo", repoPath),
	)

	outcome, err := a.runner.Run(ctx, spec)
	if err != nil {
		return nil, err
	}

	output := outcome.Stdout
	if outcome.ExitCode != 0 && outcome.Stderr != "" {
		output = strings.TrimRight(outcome.Stderr, "\n")
	}

	return &tools.Result{
		Output:   tools.TruncateOutput(output, sandbox.MaxResultBytes),
		ExitCode: outcome.ExitCode,
		Success:  outcome.ExitCode == 0,
	}, nil
}
