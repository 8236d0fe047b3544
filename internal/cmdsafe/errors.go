package cmdsafe

import (
	"errors"
	"fmt"
)

// ErrRejected is the sentinel wrapped by every Rejection, so callers can
// match the whole family with errors.Is.
var ErrRejected = errors.New("command construction rejected")

// Kind discriminates why a value, program, path, or spawn was refused.
type Kind int

const (
	KindInjection  Kind = iota // Dash-prefixed value (flag injection).
	KindSize                   // Field or array-length ceiling exceeded.
	KindCommand                // Program not allow-listed or path-qualified.
	KindRoot                   // Path escapes the configured roots.
	KindNotFound               // Binary missing at spawn time.
	KindPermission             // OS denied the spawn.
	KindTimeout                // Deadline elapsed; child force-killed.
)

func (k Kind) String() string {
	switch k {
	case KindInjection:
		return "injection"
	case KindSize:
		return "size"
	case KindCommand:
		return "command"
	case KindRoot:
		return "root"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Rejection is the typed failure surfaced to adapters. Field is the input
// field the offending value came from, empty for program/spawn failures.
type Rejection struct {
	Kind    Kind
	Field   string
	Message string
}

func (r *Rejection) Error() string {
	if r.Field != "" {
		return fmt.Sprintf("%s: %s", r.Field, r.Message)
	}
	return r.Message
}

func (r *Rejection) Unwrap() error { return ErrRejected }

// AsRejection unwraps err into a *Rejection if one is in the chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func reject(kind Kind, field, format string, args ...any) *Rejection {
	return &Rejection{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
