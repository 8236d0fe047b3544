package main

import (
	"os"
	"testing"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("TOOLGATE_CONFIG", "/from/env.yaml")

	// An explicitly passed flag beats the environment.
	if got := resolveConfigPath(true, "/from/flag.yaml"); got != "/from/flag.yaml" {
		t.Errorf("flag set: got %q, want the flag value", got)
	}

	// Without the flag, the environment beats the default.
	if got := resolveConfigPath(false, "/default.yaml"); got != "/from/env.yaml" {
		t.Errorf("flag unset: got %q, want the env value", got)
	}

	// Without either, the default stands. t.Setenv above already
	// registered the restore, so unsetting here is safe.
	os.Unsetenv("TOOLGATE_CONFIG")
	if got := resolveConfigPath(false, "/default.yaml"); got != "/default.yaml" {
		t.Errorf("nothing set: got %q, want the default", got)
	}
}
