package cmdsafe

import (
	"strings"
	"testing"
)

func TestValidate_RejectsDashPrefix(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{"single dash", "-f"},
		{"double dash", "--eval"},
		{"leading space", " --eval"},
		{"many spaces", "   --host"},
		{"leading tab", "\t-f"},
		{"mixed whitespace", " \t --exec"},
		{"leading newline", "\n--force"},
		{"leading carriage return", "\r-rf"},
		{"dash only", "-"},
		{"exec injection", "--exec=rm -rf /"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.value, "pattern")
			if err == nil {
				t.Fatalf("Validate(%q) = nil error, want rejection", tc.value)
			}
			rej, ok := AsRejection(err)
			if !ok {
				t.Fatalf("error %v is not a Rejection", err)
			}
			if rej.Kind != KindInjection {
				t.Errorf("kind = %s, want injection", rej.Kind)
			}
			if !strings.Contains(err.Error(), "pattern") {
				t.Errorf("message %q does not name the field", err.Error())
			}
			if !strings.Contains(err.Error(), `must not start with "-"`) {
				t.Errorf("message %q lacks the fixed phrase", err.Error())
			}
		})
	}
}

func TestValidate_PassesContentUnchanged(t *testing.T) {
	cases := []string{
		"db.users.find()",
		"*.{ts,tsx}",
		"mongodb://localhost:27017/mydb",
		"src/lib",
		"",
		"value with - inner dash",
		"trailing dash-",
		"a; rm -rf /", // Shell metacharacters are inert: there is no shell.
	}
	for _, value := range cases {
		arg, err := Validate(value, "field")
		if err != nil {
			t.Fatalf("Validate(%q) = %v, want nil", value, err)
		}
		if arg.String() != value {
			t.Errorf("Validate(%q) returned %q, want identical value", value, arg.String())
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	for _, value := range []string{"src/lib", " --eval", "ok"} {
		a1, err1 := Validate(value, "f")
		a2, err2 := Validate(value, "f")
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("Validate(%q) not idempotent: %v vs %v", value, err1, err2)
		}
		if err1 == nil && a1.String() != a2.String() {
			t.Errorf("Validate(%q) values differ: %q vs %q", value, a1.String(), a2.String())
		}
	}
}

func TestValidateAll_FirstRejectionWins(t *testing.T) {
	_, err := ValidateAll([]string{"ok", "--bad", "also ok"}, "globs")
	if err == nil {
		t.Fatal("expected rejection for dash-prefixed element")
	}
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != KindInjection {
		t.Fatalf("got %v, want injection rejection", err)
	}

	args, err := ValidateAll([]string{"a", "b", "c"}, "globs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 3 || args[0].String() != "a" || args[2].String() != "c" {
		t.Errorf("order not preserved: %v", args)
	}
}

func TestValidateLength_Boundaries(t *testing.T) {
	cases := []struct {
		class LengthClass
		limit int
	}{
		{ClassString, StringMax},
		{ClassShortString, ShortStringMax},
		{ClassPath, PathMax},
	}
	for _, tc := range cases {
		atLimit := strings.Repeat("a", tc.limit)
		if err := ValidateLength(atLimit, "f", tc.class); err != nil {
			t.Errorf("%s: length %d rejected, want accepted", tc.class, tc.limit)
		}
		over := atLimit + "a"
		err := ValidateLength(over, "f", tc.class)
		if err == nil {
			t.Fatalf("%s: length %d accepted, want rejected", tc.class, tc.limit+1)
		}
		rej, ok := AsRejection(err)
		if !ok || rej.Kind != KindSize {
			t.Errorf("%s: got %v, want size rejection", tc.class, err)
		}
	}
}

func TestValidateLengthAll_ItemCount(t *testing.T) {
	atLimit := make([]string, ArrayMax)
	if err := ValidateLengthAll(atLimit, "f", ClassShortString); err != nil {
		t.Errorf("%d items rejected, want accepted", ArrayMax)
	}
	over := make([]string, ArrayMax+1)
	err := ValidateLengthAll(over, "f", ClassShortString)
	if err == nil {
		t.Fatalf("%d items accepted, want rejected", ArrayMax+1)
	}
	if rej, ok := AsRejection(err); !ok || rej.Kind != KindSize {
		t.Errorf("got %v, want size rejection", err)
	}
}

func TestValidateLengthAll_Elementwise(t *testing.T) {
	values := []string{"ok", strings.Repeat("x", ShortStringMax+1)}
	err := ValidateLengthAll(values, "globs", ClassShortString)
	if err == nil {
		t.Fatal("oversized element accepted, want rejected")
	}
}
