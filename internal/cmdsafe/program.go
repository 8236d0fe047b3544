package cmdsafe

import "strings"

// ProgramPolicy allow-lists the executables one adapter may invoke.
// One evaluator, many instances: each adapter constructs its own policy
// as configuration data rather than duplicating the check.
type ProgramPolicy struct {
	adapter string
	allowed map[string]struct{}
}

// NewProgramPolicy builds a policy for the named adapter. The program set
// is closed: anything unlisted is rejected by default.
func NewProgramPolicy(adapter string, programs ...string) ProgramPolicy {
	set := make(map[string]struct{}, len(programs))
	for _, p := range programs {
		set[p] = struct{}{}
	}
	return ProgramPolicy{adapter: adapter, allowed: set}
}

// Adapter returns the adapter name the policy belongs to.
func (p ProgramPolicy) Adapter() string { return p.adapter }

// ValidateProgram rejects path-qualified references and programs outside
// the allow-list. Path qualification is checked first: allow-listing by
// name is meaningless if the name can be redirected to an arbitrary file.
func (p ProgramPolicy) ValidateProgram(program string) error {
	if strings.ContainsAny(program, `/\`) {
		return reject(KindCommand, "",
			"program %q must be a bare executable name, not a path", program)
	}
	if _, ok := p.allowed[program]; !ok {
		return reject(KindCommand, "",
			"program %q is not allowed for adapter %q", program, p.adapter)
	}
	return nil
}
