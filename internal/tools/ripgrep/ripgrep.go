// Package ripgrep implements a file content search adapter backed by rg.
// The pattern and every glob pass the flag-injection check; the search
// path is confined to the adapter's allowed roots.
package ripgrep

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

const program = "rg"

// Adapter runs ripgrep searches through the sandbox.
type Adapter struct {
	policy cmdsafe.ProgramPolicy
	roots  cmdsafe.RootSet
	runner sandbox.Runner
	logger *slog.Logger
}

// New creates the search adapter confined to the given roots.
func New(roots cmdsafe.RootSet, runner sandbox.Runner, logger *slog.Logger) *Adapter {
	return &Adapter{
		policy: cmdsafe.NewProgramPolicy("ripgrep_search", program),
		roots:  roots,
		runner: runner,
		logger: logger,
	}
}

func (a *Adapter) Name() string    { return "ripgrep_search" }
func (a *Adapter) Program() string { return program }

func (a *Adapter) Description() string {
	return "Search file contents with ripgrep within the allowed roots"
}

func (a *Adapter) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{"type": "string", "description": "Regex pattern to search for"},
			"path":    map[string]any{"type": "string", "description": "Directory or file to search. Default: current directory"},
			"globs":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Glob filters, e.g. \"*.{ts,tsx}\""},
			"timeout": map[string]any{"type": "string", "description": "Duration string (e.g. '10s'), overrides default timeout"},
		},
		"required": []string{"pattern"},
	}
}

// Validate checks presence and shape; the injection and root checks run
// again in Execute, where their rejections become the tool error.
func (a *Adapter) Validate(params map[string]any) error {
	if _, err := tools.RequireString(params, "pattern"); err != nil {
		return err
	}
	if timeout, err := tools.OptionalString(params, "timeout"); err != nil {
		return err
	} else if timeout != "" {
		if _, err := time.ParseDuration(timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
	}
	_, err := tools.OptionalStringSlice(params, "globs")
	return err
}

func (a *Adapter) Execute(ctx context.Context, params map[string]any) (*tools.Result, error) {
	pattern, err := tools.RequireString(params, "pattern")
	if err != nil {
		return nil, err
	}
	if err := cmdsafe.ValidateLength(pattern, "pattern", cmdsafe.ClassString); err != nil {
		return nil, err
	}
	patternArg, err := cmdsafe.Validate(pattern, "pattern")
	if err != nil {
		return nil, err
	}

	cmd := cmdsafe.NewCommand(a.policy, program).
		Flags("--no-heading", "--line-number", "--color", "never").
		Arg(patternArg)

	globs, err := tools.OptionalStringSlice(params, "globs")
	if err != nil {
		return nil, err
	}
	if len(globs) > 0 {
		if err := cmdsafe.ValidateLengthAll(globs, "globs", cmdsafe.ClassShortString); err != nil {
			return nil, err
		}
		globArgs, err := cmdsafe.ValidateAll(globs, "globs")
		if err != nil {
			return nil, err
		}
		for _, g := range globArgs {
			cmd.Flags("--glob").Arg(g)
		}
	}

	path, err := tools.OptionalString(params, "path")
	if err != nil {
		return nil, err
	}
	switch {
	case path != "":
		if err := cmdsafe.ValidateLength(path, "path", cmdsafe.ClassPath); err != nil {
			return nil, err
		}
		normalized, err := a.roots.ValidateRoot(path)
		if err != nil {
			return nil, err
		}
		// Absolute normalized paths can never be dash-prefixed.
		pathArg, err := cmdsafe.Validate(normalized, "path")
		if err != nil {
			return nil, err
		}
		cmd.Arg(pathArg)
	case !a.roots.Empty():
		// No path given: search the configured roots, never the
		// server's own working directory.
		for _, root := range a.roots.Roots() {
			rootArg, err := cmdsafe.Validate(root, "path")
			if err != nil {
				return nil, err
			}
			cmd.Arg(rootArg)
		}
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

	a.logger.InfoContext(ctx, "ripgrep searching",
		slog.String("pattern", pattern),
		slog.Int("globs", len(globs)),
	)

	outcome, err := a.runner.Run(ctx, spec)
	if err != nil {
		return nil, err
	}

	// rg exits 1 when nothing matched — a result, not a failure.
	output := strings.TrimRight(outcome.Stdout, "\n")
	if outcome.ExitCode == 1 && output == "" {
		output = "no matches found"
	}
	if outcome.Stderr != "" && outcome.ExitCode > 1 {
		output = strings.TrimRight(outcome.Stderr, "\n")
	}

	return &tools.Result{
		Output:   tools.TruncateOutput(output, sandbox.MaxResultBytes),
		ExitCode: outcome.ExitCode,
		Success:  outcome.ExitCode <= 1,
	}, nil
}
