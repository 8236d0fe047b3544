package sandbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/jkaninda/toolgate/internal/cmdsafe"
)

const defaultTimeout = 30 * time.Second

// ProcessConfig configures the process sandbox.
type ProcessConfig struct {
	DefaultTimeout time.Duration
	MaxOutputBytes int
}

// ProcessSandbox runs validated commands as OS processes.
//
// Guarantees:
//   - Spawn is argv-only: arguments are never concatenated into a
//     shell-interpreted command line
//   - Process runs in its own process group (Setpgid)
//   - Entire process group killed on timeout/cancel — no orphans
//   - stdin written then closed, so non-reading children still terminate
//   - stdout/stderr drained concurrently with wait (no pipe deadlock),
//     capped to prevent OOM
//   - No environment inheritance from the parent — only a minimal safe
//     set plus the spec's validated entries
type ProcessSandbox struct {
	defaultTimeout time.Duration
	maxOutput      int
	logger         *slog.Logger
}

// NewProcessSandbox creates a process sandbox.
func NewProcessSandbox(cfg ProcessConfig, logger *slog.Logger) *ProcessSandbox {
	timeout := cfg.DefaultTimeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxOutput := cfg.MaxOutputBytes
	if maxOutput == 0 {
		maxOutput = MaxResultBytes
	}
	return &ProcessSandbox{
		defaultTimeout: timeout,
		maxOutput:      maxOutput,
		logger:         logger,
	}
}

// Run executes the spec and returns its outcome. A non-zero exit code is
// returned as data; only "could not start the process at all" and
// "deadline exceeded" are sandbox-level failures.
func (s *ProcessSandbox) Run(ctx context.Context, spec *cmdsafe.CommandSpec) (*RunOutcome, error) {
	timeout := spec.Timeout()
	if timeout == 0 {
		timeout = s.defaultTimeout
	}
	// Caller cancellation and the deadline share one forced-kill path.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Program(), spec.Argv()...)
	cmd.Dir = spec.Dir()

	// The child runs in its own process group.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	// Kill the entire group on context cancellation so children spawned
	// by the command are terminated too. Negative PID = whole group.
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	cmd.Env = buildEnv(spec.Env())

	// strings.Reader yields EOF once drained — the pipe is closed after
	// the write, so children that never read stdin still terminate.
	cmd.Stdin = strings.NewReader(spec.Stdin())

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdoutBuf, remaining: s.maxOutput}
	cmd.Stderr = &limitedWriter{w: &stderrBuf, remaining: s.maxOutput}

	s.logger.InfoContext(ctx, "sandbox executing",
		slog.String("program", spec.Program()),
		slog.Any("args", spec.Argv()),
		slog.String("dir", cmd.Dir),
		slog.Duration("timeout", timeout),
	)

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		// Deadline first: an ExitError from the kill must not be
		// mistaken for an ordinary non-zero exit.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "sandbox execution timed out",
				slog.String("program", spec.Program()),
				slog.Duration("timeout", timeout),
			)
			return nil, &cmdsafe.Rejection{
				Kind:    cmdsafe.KindTimeout,
				Message: "execution timed out after " + timeout.String(),
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			// Non-zero exit is a result, not an error.
			exitCode = exitErr.ExitCode()
		case errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist):
			return nil, &cmdsafe.Rejection{
				Kind:    cmdsafe.KindNotFound,
				Message: notFoundMessage(spec.Program()),
			}
		case errors.Is(runErr, fs.ErrPermission):
			// Passed through verbatim so it cannot be confused with
			// "not installed".
			return nil, &cmdsafe.Rejection{
				Kind:    cmdsafe.KindPermission,
				Message: runErr.Error(),
			}
		default:
			return nil, runErr
		}
	}

	s.logger.InfoContext(ctx, "sandbox execution completed",
		slog.String("program", spec.Program()),
		slog.Int("exit_code", exitCode),
		slog.Duration("duration", duration),
		slog.Int("stdout_bytes", stdoutBuf.Len()),
		slog.Int("stderr_bytes", stderrBuf.Len()),
	)

	return &RunOutcome{
		ExitCode: exitCode,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: duration,
	}, nil
}

// buildEnv constructs a minimal safe environment plus the spec's
// validated extra entries. The parent's environment is never inherited,
// so credentials and API keys cannot leak into spawned tools.
func buildEnv(extra []string) []string {
	env := []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"LANG=en_US.UTF-8",
		"TERM=dumb",
	}
	return append(env, extra...)
}

// limitedWriter stops writing after a byte limit. Excess data is
// silently discarded, not an error — the command keeps running.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.remaining <= 0 {
		return len(p), nil
	}
	if len(p) > lw.remaining {
		n, err := lw.w.Write(p[:lw.remaining])
		lw.remaining -= n
		if err != nil {
			return n, err
		}
		return len(p), nil
	}
	n, err := lw.w.Write(p)
	lw.remaining -= n
	return n, err
}
