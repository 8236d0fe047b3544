package cmdsafe

import (
	"reflect"
	"testing"
	"time"
)

func mustValidate(t *testing.T, value, field string) Argument {
	t.Helper()
	a, err := Validate(value, field)
	if err != nil {
		t.Fatalf("Validate(%q) = %v", value, err)
	}
	return a
}

func TestBuilder_AssemblesArgv(t *testing.T) {
	policy := NewProgramPolicy("ripgrep_search", "rg")

	spec, err := NewCommand(policy, "rg").
		Flags("--no-heading", "--color", "never").
		Arg(mustValidate(t, "db.users.find()", "pattern")).
		Arg(mustValidate(t, "src/lib", "path")).
		Timeout(5 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	if spec.Program() != "rg" {
		t.Errorf("program = %q, want rg", spec.Program())
	}
	want := []string{"--no-heading", "--color", "never", "db.users.find()", "src/lib"}
	if !reflect.DeepEqual(spec.Argv(), want) {
		t.Errorf("argv = %v, want %v", spec.Argv(), want)
	}
	if spec.Timeout() != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", spec.Timeout())
	}
}

func TestBuilder_ProgramRejectionSticks(t *testing.T) {
	policy := NewProgramPolicy("ripgrep_search", "rg")

	_, err := NewCommand(policy, "rm").
		Flags("-rf").
		Build()
	if err == nil {
		t.Fatal("Build() = nil for disallowed program")
	}
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != KindCommand {
		t.Fatalf("got %v, want command rejection", err)
	}
}

func TestBuilder_DirValidatesAgainstRoots(t *testing.T) {
	policy := NewProgramPolicy("git_read", "git")
	roots, safe := newTestRoots(t)

	spec, err := NewCommand(policy, "git").Dir(roots, safe).Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if spec.Dir() == "" {
		t.Error("dir not set")
	}

	_, err = NewCommand(policy, "git").Dir(roots, "/etc").Build()
	if err == nil {
		t.Fatal("Build() = nil for dir outside roots")
	}
	if rej, ok := AsRejection(err); !ok || rej.Kind != KindRoot {
		t.Errorf("got %v, want root rejection", err)
	}
}

func TestBuilder_Env(t *testing.T) {
	policy := NewProgramPolicy("git_read", "git")
	spec, err := NewCommand(policy, "git").
		Env(Flag("GIT_TERMINAL_PROMPT"), Flag("0")).
		Build()
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if got := spec.Env(); len(got) != 1 || got[0] != "GIT_TERMINAL_PROMPT=0" {
		t.Errorf("env = %v, want [GIT_TERMINAL_PROMPT=0]", got)
	}
}

func TestBuilder_SpecIsImmutableCopy(t *testing.T) {
	policy := NewProgramPolicy("ripgrep_search", "rg")
	b := NewCommand(policy, "rg").Arg(mustValidate(t, "one", "f"))

	first, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	argv := first.Argv()
	argv[0] = "mutated"
	if first.Argv()[0] != "one" {
		t.Error("Argv() exposes internal state")
	}
}
