// Package httpfetch implements an HTTP fetch adapter backed by curl.
// The URL passes the flag-injection check and a scheme check; curl's
// options are adapter-owned literals, so a crafted URL cannot smuggle
// flags like --output into the argument vector.
package httpfetch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jkaninda/toolgate/internal/cmdsafe"
	"github.com/jkaninda/toolgate/internal/sandbox"
	"github.com/jkaninda/toolgate/internal/tools"
)

const program = "curl"

// maxFetchSeconds caps curl's own transfer timer, independent of the
// sandbox deadline, so a stalled transfer fails with curl's exit code
// rather than a kill.
const maxFetchSeconds = 30

// Adapter fetches URLs through the sandbox.
type Adapter struct {
	policy cmdsafe.ProgramPolicy
	runner sandbox.Runner
	logger *slog.Logger
}

// New creates the HTTP fetch adapter.
func New(runner sandbox.Runner, logger *slog.Logger) *Adapter {
	return &Adapter{
		policy: cmdsafe.NewProgramPolicy("http_fetch", program),
		runner: runner,
		logger: logger,
	}
}

func (a *Adapter) Name() string    { return "http_fetch" }
func (a *Adapter) Program() string { return program }
func (a *Adapter) Description() string {
	return "Fetch an HTTP or HTTPS URL and return the response body"
}

func (a *Adapter) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url":     map[string]any{"type": "string", "description": "The http:// or https:// URL to fetch"},
			"head":    map[string]any{"type": "boolean", "description": "Fetch headers only (HEAD request)"},
			"timeout": map[string]any{"type": "string", "description": "Duration string (e.g. '10s'), overrides default timeout"},
		},
		"required": []string{"url"},
	}
}

func (a *Adapter) Validate(params map[string]any) error {
	rawURL, err := tools.RequireString(params, "url")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return fmt.Errorf("url must start with http:// or https://")
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
	rawURL, _ := tools.RequireString(params, "url")

	if err := cmdsafe.ValidateLength(rawURL, "url", cmdsafe.ClassShortString); err != nil {
		return nil, err
	}
	urlArg, err := cmdsafe.Validate(rawURL, "url")
	if err != nil {
		return nil, err
	}

	cmd := cmdsafe.NewCommand(a.policy, program).
		Flags("-sS", "-L", "--max-time", strconv.Itoa(maxFetchSeconds))

	if head, _ := params["head"].(bool); head {
		cmd.Flags("-I")
	}
	cmd.Arg(urlArg)

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

	a.logger.InfoContext(ctx, "http fetch executing", slog.String("url", rawURL))

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
