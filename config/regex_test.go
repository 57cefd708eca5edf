package config

import (
	"context"
	"regexp"
	"testing"
)

func TestCompiledPathsMatch(t *testing.T) {
	t.Parallel()
	c := CompiledPaths{
		Include: regexp.MustCompile(`\.so`),
		Exclude: regexp.MustCompile(`/debug/`),
	}
	tt := []struct {
		path string
		want bool
	}{
		{"/usr/lib64/libfoo.so", true},
		{"/usr/bin/foo", false},
		{"/usr/lib64/debug/libfoo.so", false},
	}
	for _, tc := range tt {
		if got := c.Match(tc.path); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestCompiledPathsMatchNoPatterns(t *testing.T) {
	t.Parallel()
	var c CompiledPaths
	if !c.Match("/anything") {
		t.Error("expected an unconfigured CompiledPaths to match everything")
	}
}

func TestCompileRegexSection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	out := CompileRegexSection(ctx, "elf", RegexSection{IncludePath: `\.so`, ExcludePath: `/debug/`}, CompiledPaths{})
	if out.Include == nil || out.Exclude == nil {
		t.Fatalf("expected both patterns to compile, got %+v", out)
	}
	if !out.Match("/usr/lib64/libfoo.so") {
		t.Error("expected the compiled include pattern to match")
	}

	t.Run("invalid pattern keeps the prior value", func(t *testing.T) {
		prior := out
		got := CompileRegexSection(ctx, "elf", RegexSection{IncludePath: `[`}, prior)
		if got.Include != prior.Include {
			t.Error("expected an invalid include_path to leave the prior pattern in place")
		}
	})
}
