package deprules

import (
	"regexp"
	"strings"

	"github.com/rpminspect/rpminspect"
)

// IsExpectedChange implements §4.3's expected-change classification for a
// changed (peered, before != after in some observable way) DepRule: a
// change is "expected" when the build is a rebase, the rule is rich or
// explicit, the name matches a known subpackage of the after build, or the
// version string is the package's own version-release (with the same
// trailing-suffix accounting as [matchesOwnVersion]).
func IsExpectedChange(r *rpminspect.DepRule, isRebase bool, afterSubpackages map[string]bool) bool {
	if isRebase || r.Rich || r.Explicit {
		return true
	}
	if afterSubpackages[r.Name] {
		return true
	}
	if r.Pkg != nil && matchesOwnVersion(r.Version, r.Pkg) {
		return true
	}
	return false
}

// unexpandedMacroRe matches an rpm macro token still present in a value,
// e.g. "%{version}" or "%{?dist}".
var unexpandedMacroRe = regexp.MustCompile(`%\{[^}]*\}`)

// HasUnexpandedMacro reports whether a DepRule's version string still
// contains an unexpanded "%{...}" macro token, per §4.3's "macro
// unexpansion diagnostic".
func HasUnexpandedMacro(r *rpminspect.DepRule) bool {
	return unexpandedMacroRe.MatchString(r.Version)
}

// Changed reports whether a peered rule changed in any observable way
// (operator or version differ from its peer); unpeered rules (added or
// removed) are always reported as changed by the caller separately and
// don't go through this helper.
func Changed(r *rpminspect.DepRule) bool {
	if r.Peer == nil {
		return true
	}
	return r.Op != r.Peer.Op || strings.TrimSpace(r.Version) != strings.TrimSpace(r.Peer.Version)
}
