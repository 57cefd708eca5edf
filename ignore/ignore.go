// Package ignore implements the glob-style ignore-pattern matching used by
// the inspection driver (§4.4), plus [MatchGlob] as a general
// "path-match helper" (§4.6).
//
// The spec's glob grammar ("?", "*", "**", character classes, brace
// alternatives) is exactly what [github.com/bmatcuk/doublestar/v4]
// implements; stdlib path/filepath.Match has no "**" support, so it cannot
// serve here (see DESIGN.md).
package ignore

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether "pattern" matches "localpath", per §4.4: patterns
// starting with "/" are absolute (anchored at the package root, i.e.
// matched directly against localpath); other patterns are anchored
// relative to the file's directory, i.e. matched against the basename or
// any path under localpath's leading directories.
func Match(pattern, localpath string) bool {
	if pattern == "" {
		return false
	}
	if strings.HasPrefix(pattern, "/") {
		ok, err := doublestar.Match(strings.TrimPrefix(pattern, "/"), strings.TrimPrefix(localpath, "/"))
		return err == nil && ok
	}
	// Relative pattern: match against the basename, or against any
	// trailing path segment, so "*.txt" matches "/usr/share/doc/x.txt" and
	// "doc/*.txt" matches the same path's "doc/x.txt" suffix.
	trimmed := strings.TrimPrefix(localpath, "/")
	segments := strings.Split(trimmed, "/")
	for i := range segments {
		suffix := strings.Join(segments[i:], "/")
		if ok, err := doublestar.Match(pattern, suffix); err == nil && ok {
			return true
		}
	}
	return false
}

// MatchAny reports whether any pattern in "patterns" matches "localpath".
func MatchAny(patterns []string, localpath string) bool {
	for _, p := range patterns {
		if Match(p, localpath) {
			return true
		}
	}
	return false
}

// MatchGlob is the general-purpose "path-match helper" from §4.6: it
// expands "pattern" relative to an optional "root" and tests equality
// against the suffix of "candidate" past root's length. It is independent
// of [Match], which does not call it.
func MatchGlob(pattern, root, candidate string) bool {
	rel := strings.TrimPrefix(candidate, root)
	rel = strings.TrimPrefix(rel, "/")
	ok, err := doublestar.Match(strings.TrimPrefix(pattern, "/"), rel)
	return err == nil && ok
}
