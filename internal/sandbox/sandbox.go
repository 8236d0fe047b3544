// Package sandbox spawns validated commands as real OS processes. It is
// the only place in the repo that starts a process, and it only accepts
// cmdsafe.CommandSpec — there is no entry point for raw strings.
//
// "Sandbox" here means controlled argument-vector spawning with no shell
// interpretation, an enforced timeout with process-group kill, and
// confined working directories — not OS-level namespace isolation.
package sandbox

import (
	"context"
	"time"

	"github.com/jkaninda/toolgate/internal/cmdsafe"
)

// MaxResultBytes is the default cap for captured output, shared with
// adapters that trim results before returning them.
const MaxResultBytes = 1 << 20 // 1 MB

// Runner executes a validated command and reports its outcome.
type Runner interface {
	Run(ctx context.Context, spec *cmdsafe.CommandSpec) (*RunOutcome, error)
}

// RunOutcome captures a completed spawn. A non-zero exit code is ordinary
// data at this layer, not an error — interpreting it is the adapter's job.
type RunOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}
