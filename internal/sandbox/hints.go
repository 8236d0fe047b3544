package sandbox

import "fmt"

// InstallHint carries per-platform install commands and a docs URL for a
// tool toolgate wraps.
type InstallHint struct {
	Brew    string
	Apt     string
	Choco   string
	DocsURL string
}

// installHints maps program names to remediation hints. Tools without an
// entry fall back to the generic not-found message.
var installHints = map[string]InstallHint{
	"rg": {
		Brew:    "brew install ripgrep",
		Apt:     "sudo apt install ripgrep",
		Choco:   "choco install ripgrep",
		DocsURL: "https://github.com/BurntSushi/ripgrep#installation",
	},
	"git": {
		Brew:    "brew install git",
		Apt:     "sudo apt install git",
		Choco:   "choco install git",
		DocsURL: "https://git-scm.com/downloads",
	},
	"curl": {
		Brew:    "brew install curl",
		Apt:     "sudo apt install curl",
		Choco:   "choco install curl",
		DocsURL: "https://curl.se/download.html",
	},
	"jq": {
		Brew:    "brew install jq",
		Apt:     "sudo apt install jq",
		Choco:   "choco install jq",
		DocsURL: "https://jqlang.github.io/jq/download/",
	},
	"kubectl": {
		Brew:    "brew install kubectl",
		Apt:     "sudo apt install kubectl",
		Choco:   "choco install kubernetes-cli",
		DocsURL: "https://kubernetes.io/docs/tasks/tools/",
	},
	"psql": {
		Brew:    "brew install libpq",
		Apt:     "sudo apt install postgresql-client",
		Choco:   "choco install postgresql",
		DocsURL: "https://www.postgresql.org/download/",
	},
	"node": {
		Brew:    "brew install node",
		Apt:     "sudo apt install nodejs",
		Choco:   "choco install nodejs",
		DocsURL: "https://nodejs.org/en/download",
	},
}

// LookupInstallHint returns the hint registered for the tool, if any.
func LookupInstallHint(tool string) (InstallHint, bool) {
	h, ok := installHints[tool]
	return h, ok
}

// notFoundMessage builds the spawn-not-found message. A registered hint
// replaces the generic guidance entirely; the two never appear together.
func notFoundMessage(program string) string {
	hint, ok := LookupInstallHint(program)
	if !ok {
		return fmt.Sprintf("command %q not found. Ensure it is installed and on your PATH", program)
	}
	return fmt.Sprintf(
		"command %q is not installed. Install it with %q (macOS), %q (Debian/Ubuntu), or %q (Windows). See %s",
		program, hint.Brew, hint.Apt, hint.Choco, hint.DocsURL,
	)
}
