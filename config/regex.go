package config

import (
	"context"
	"regexp"

	"github.com/quay/zlog"
)

// CompiledPaths holds the compiled include/exclude regexes for a
// [RegexSection] (elf, manpage, xml).
type CompiledPaths struct {
	Include *regexp.Regexp
	Exclude *regexp.Regexp
}

// Match reports whether "path" is in scope: included (or no include regex
// configured) and not excluded.
func (c CompiledPaths) Match(path string) bool {
	if c.Include != nil && !c.Include.MatchString(path) {
		return false
	}
	if c.Exclude != nil && c.Exclude.MatchString(path) {
		return false
	}
	return true
}

// CompileRegexSection compiles a [RegexSection]'s include_path/exclude_path
// patterns. On a compilation failure it logs a warning and keeps whichever
// half of "prior" already compiled successfully, per §4.1's "a compilation
// failure logs a warning and leaves the prior regex active".
func CompileRegexSection(ctx context.Context, name string, s RegexSection, prior CompiledPaths) CompiledPaths {
	out := prior
	if s.IncludePath != "" {
		if re, err := regexp.Compile(s.IncludePath); err != nil {
			zlog.Warn(ctx).Err(err).Str("section", name).Str("pattern", s.IncludePath).
				Msg("invalid include_path regex, keeping prior pattern")
		} else {
			out.Include = re
		}
	}
	if s.ExcludePath != "" {
		if re, err := regexp.Compile(s.ExcludePath); err != nil {
			zlog.Warn(ctx).Err(err).Str("section", name).Str("pattern", s.ExcludePath).
				Msg("invalid exclude_path regex, keeping prior pattern")
		} else {
			out.Exclude = re
		}
	}
	return out
}
