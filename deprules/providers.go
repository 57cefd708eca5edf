package deprules

import (
	"regexp"
	"strings"

	"github.com/rpminspect/rpminspect"
)

// sonameRe matches a shared-library soname capability, e.g.
// "libfoo.so.0()(64bit)" or "libfoo.so.0.1.2".
var sonameRe = regexp.MustCompile(`^lib.*\.so.*$`)

// isaSuffixRe trims a trailing ISA annotation like "(x86-64)" or
// "(aarch-64)" from a capability string before comparing Provides/Requires
// names, per §4.3.
var isaSuffixRe = regexp.MustCompile(`\(([a-zA-Z0-9_-]+)\)$`)

// trimISA strips a single trailing ISA annotation.
func trimISA(name string) string {
	return isaSuffixRe.ReplaceAllString(name, "")
}

// AnalyzeProviders implements §4.3's cross-subpackage provider analysis:
// for every after-build Requires rule whose name looks like a
// shared-library soname, it scans every after-build subpackage's Provides
// rules and appends the subpackage name to the Requires rule's Providers
// list for each match (Provides and Requires names compared after trimming
// either side's ISA annotation).
func AnalyzeProviders(afterPkgs []*rpminspect.Pkg) {
	type provider struct {
		pkg  string
		name string
	}
	var allProvides []provider
	for _, p := range afterPkgs {
		for _, r := range p.DepRules() {
			if r.Kind == rpminspect.Provides {
				allProvides = append(allProvides, provider{pkg: p.Name, name: trimISA(r.Name)})
			}
		}
	}

	for _, p := range afterPkgs {
		for _, r := range p.DepRules() {
			if r.Kind != rpminspect.Requires || !sonameRe.MatchString(r.Name) {
				continue
			}
			want := trimISA(r.Name)
			seen := make(map[string]bool, len(r.Providers))
			for _, existing := range r.Providers {
				seen[existing] = true
			}
			for _, prov := range allProvides {
				if prov.name == want && !seen[prov.pkg] {
					r.Providers = append(r.Providers, prov.pkg)
					seen[prov.pkg] = true
				}
			}
		}
	}
}

// ExplicitVersionFinding is one policy/conflict violation surfaced by
// [CheckExplicitVersions].
type ExplicitVersionFinding struct {
	Rule        *rpminspect.DepRule
	Conflict    bool // true: multiple subpackages provide it, via >1 explicit requires
	Providers   []string
}

// CheckExplicitVersions implements §4.3's explicit-version check, run
// after [AnalyzeProviders]: a Requires rule with a single provider and no
// explicit package-level "Requires: <prov>" naming that subpackage is a
// policy violation; multiple providers each named by their own explicit
// "Requires: <prov>" is a conflict. "Explicit" here means a plain by-name
// requires on the provider subpackage, regardless of whether it carries a
// version comparison, per original_source/lib/inspect_rpmdeps.c's
// get_explicit_requires (which counts any Requires row whose name matches
// a provider, not just version-qualified ones).
func CheckExplicitVersions(pkg *rpminspect.Pkg, r *rpminspect.DepRule) *ExplicitVersionFinding {
	if r.Kind != rpminspect.Requires || len(r.Providers) == 0 {
		return nil
	}

	explicitFrom := make(map[string]bool)
	for _, rule := range pkg.DepRules() {
		if rule.Kind != rpminspect.Requires {
			continue
		}
		for _, prov := range r.Providers {
			if rule.Name == prov {
				explicitFrom[prov] = true
			}
		}
	}

	switch {
	case len(r.Providers) == 1:
		if !explicitFrom[r.Providers[0]] {
			return &ExplicitVersionFinding{Rule: r, Providers: r.Providers}
		}
	case len(explicitFrom) > 1:
		return &ExplicitVersionFinding{Rule: r, Providers: r.Providers, Conflict: true}
	}
	return nil
}

// matchesOwnVersion reports whether "version" equals the package's own
// version-release (or epoch-qualified version-release), with an optional
// trailing ".<arch>" or "+<suffix>" accounted for, per §4.3's expected
// change classification rule. [IsExpectedChange] is its only caller.
func matchesOwnVersion(version string, pkg *rpminspect.Pkg) bool {
	candidates := []string{pkg.VR(), pkg.EVR()}
	trimmed := version
	if i := strings.IndexByte(trimmed, '+'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.LastIndexByte(trimmed, '.'); i >= 0 && i == strings.LastIndex(trimmed, "."+pkg.Arch) {
		trimmed = trimmed[:i]
	}
	for _, c := range candidates {
		if version == c || trimmed == c {
			return true
		}
	}
	return false
}
