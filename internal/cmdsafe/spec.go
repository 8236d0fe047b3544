package cmdsafe

import "time"

// CommandSpec is a fully validated command, ready for the sandbox. All
// fields are unexported: the only way to obtain one is through Builder,
// which accepts validated parts exclusively. Once built it is immutable
// and needs no locking.
type CommandSpec struct {
	program string
	args    []Argument
	dir     string
	env     map[string]string
	stdin   string
	timeout time.Duration
}

func (s *CommandSpec) Program() string { return s.program }

// Argv returns the argument vector (without the program) as plain
// strings for the spawn call.
func (s *CommandSpec) Argv() []string {
	out := make([]string, len(s.args))
	for i, a := range s.args {
		out[i] = a.String()
	}
	return out
}

// Dir returns the validated working directory, empty if unset.
func (s *CommandSpec) Dir() string { return s.dir }

// Env returns extra environment entries as "KEY=VALUE" strings.
func (s *CommandSpec) Env() []string {
	out := make([]string, 0, len(s.env))
	for k, v := range s.env {
		out = append(out, k+"="+v)
	}
	return out
}

func (s *CommandSpec) Stdin() string          { return s.stdin }
func (s *CommandSpec) Timeout() time.Duration { return s.timeout }

// Builder assembles a CommandSpec from validated parts. Methods
// accumulate; the first validation failure sticks and is returned by
// Build, so call sites can chain without per-step error handling.
type Builder struct {
	spec CommandSpec
	err  error
}

// NewCommand starts a builder for program under the adapter's policy.
// The program is checked immediately: allow-list membership and no path
// qualification.
func NewCommand(policy ProgramPolicy, program string) *Builder {
	b := &Builder{}
	if err := policy.ValidateProgram(program); err != nil {
		b.err = err
		return b
	}
	b.spec.program = program
	return b
}

// Flags appends adapter-owned literal options (never inbound input).
func (b *Builder) Flags(literals ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, l := range literals {
		b.spec.args = append(b.spec.args, Flag(l))
	}
	return b
}

// Arg appends a validated argument.
func (b *Builder) Arg(a Argument) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.args = append(b.spec.args, a)
	return b
}

// Args appends validated arguments in order.
func (b *Builder) Args(args ...Argument) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.args = append(b.spec.args, args...)
	return b
}

// Dir validates path against roots and sets it as the working directory.
func (b *Builder) Dir(roots RootSet, path string) *Builder {
	if b.err != nil || path == "" {
		return b
	}
	normalized, err := roots.ValidateRoot(path)
	if err != nil {
		b.err = err
		return b
	}
	b.spec.dir = normalized
	return b
}

// Env adds one extra environment entry from validated parts.
func (b *Builder) Env(key, value Argument) *Builder {
	if b.err != nil {
		return b
	}
	if b.spec.env == nil {
		b.spec.env = make(map[string]string)
	}
	b.spec.env[key.String()] = value.String()
	return b
}

// Stdin sets the input written to the child before EOF.
func (b *Builder) Stdin(s string) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.stdin = s
	return b
}

// Timeout sets the execution deadline. Zero means the sandbox default.
func (b *Builder) Timeout(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	b.spec.timeout = d
	return b
}

// Build returns the immutable spec, or the first validation failure.
func (b *Builder) Build() (*CommandSpec, error) {
	if b.err != nil {
		return nil, b.err
	}
	spec := b.spec
	return &spec, nil
}
