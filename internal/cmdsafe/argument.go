// Package cmdsafe is the command-construction safety layer. It decides
// whether an untrusted string may become part of an argument vector passed
// to a real OS process, which programs may be invoked at all, and which
// filesystem roots a command may touch.
//
// Security model:
//   - Values derived from inbound input become Arguments only through
//     Validate, which defeats flag injection (dash-prefixed values,
//     including whitespace-laundered ones).
//   - Programs are checked against a per-adapter allow-list and must be
//     bare names, never path-qualified.
//   - Paths are resolved (symlinks and ".." collapsed) before being
//     compared against the configured root set.
//   - A CommandSpec is only constructible from already-validated parts;
//     no code path hands a raw string to the sandbox.
//
// All checks are pure functions: no side effects, same input twice yields
// the same outcome.
package cmdsafe

import "strings"

// leadingCutset is the whitespace class stripped before the dash check.
// Space and tab are the laundering characters seen in the wild; newline
// and carriage return are included because CLI parsers treat a token
// starting with them the same way after their own trimming.
const leadingCutset = " \t\n\r"

// Argument is a raw string that has passed injection checks, tagged with
// the field it came from. The zero value is a valid empty argument; a
// non-empty Argument is only constructible through Validate or Flag.
type Argument struct {
	value string
	field string
}

// String returns the validated value, byte-for-byte identical to the
// input that passed Validate.
func (a Argument) String() string { return a.value }

// Field returns the input field the value came from, for diagnostics.
func (a Argument) Field() string { return a.field }

// Validate classifies value as safe or flag-injection-like. The value is
// normalized by stripping leading whitespace, then rejected if the
// normalized form starts with "-". The rule is deliberately narrow: any
// other content passes unchanged — semantic validation is the adapter's
// job, and the sandbox never runs a shell, so metacharacters are inert.
func Validate(value, field string) (Argument, error) {
	trimmed := strings.TrimLeft(value, leadingCutset)
	if strings.HasPrefix(trimmed, "-") {
		return Argument{}, reject(KindInjection, field,
			`value %q must not start with "-" (flag injection)`, value)
	}
	return Argument{value: value, field: field}, nil
}

// ValidateAll validates every element of values under the same field name.
// The first rejection wins; on success the returned slice preserves order.
func ValidateAll(values []string, field string) ([]Argument, error) {
	args := make([]Argument, 0, len(values))
	for _, v := range values {
		a, err := Validate(v, field)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, nil
}

// Flag wraps an adapter-owned literal option (e.g. "-n", "--max-time").
// It exists so adapters can add their own fixed flags to a command;
// anything derived from inbound input must go through Validate instead.
func Flag(literal string) Argument {
	return Argument{value: literal}
}
