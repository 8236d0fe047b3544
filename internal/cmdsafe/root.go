package cmdsafe

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// RootSet confines the filesystem paths a command may target. It is
// read-mostly configuration: built once at startup and passed explicitly
// to each check, never held as hidden global state. The empty set means
// unrestricted — confinement is opt-in.
type RootSet struct {
	roots []string
}

// NewRootSet builds a root set from absolute directory paths. Each root
// is normalized the same way candidates are, so comparison is always
// resolved-form against resolved-form.
func NewRootSet(roots []string) RootSet {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		n, err := normalizePath(r)
		if err != nil {
			// An unresolvable root can never match, keep the cleaned form.
			n = filepath.Clean(r)
		}
		out = append(out, n)
	}
	return RootSet{roots: out}
}

// RootSetFromList parses a PATH-style delimiter-separated list, as read
// from an adapter's allowed-roots environment variable. An empty value
// yields the unrestricted set.
func RootSetFromList(value string) RootSet {
	return NewRootSet(filepath.SplitList(value))
}

// Empty reports whether the set imposes no confinement.
func (s RootSet) Empty() bool { return len(s.roots) == 0 }

// Roots returns a copy of the configured roots in normalized form.
func (s RootSet) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// ValidateRoot resolves candidate to an absolute, symlink- and
// ".."-collapsed form and rejects it unless the result is equal to, or
// nested under, a configured root. Comparison happens on normalized
// paths only, so "/tmp/safe/../../etc" cannot escape confinement.
// The normalized path is returned for use as the command's cwd.
func (s RootSet) ValidateRoot(candidate string) (string, error) {
	normalized, err := normalizePath(candidate)
	if err != nil {
		return "", reject(KindRoot, "", "cannot resolve path %q: %v", candidate, err)
	}
	if s.Empty() {
		return normalized, nil
	}
	for _, root := range s.roots {
		if normalized == root || strings.HasPrefix(normalized, root+string(filepath.Separator)) {
			return normalized, nil
		}
	}
	return "", reject(KindRoot, "",
		"path %q resolves to %q, outside the allowed roots", candidate, normalized)
}

// normalizePath makes path absolute, collapses "..", and resolves
// symlinks. When the path itself does not exist yet, symlinks are
// resolved on the deepest existing ancestor and the remainder re-joined,
// so confinement checks work for to-be-created paths too.
func normalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	suffix := ""
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Clean(filepath.Join(resolved, suffix)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return filepath.Clean(abs), nil
		}
		suffix = filepath.Join(filepath.Base(cur), suffix)
		cur = parent
	}
}
