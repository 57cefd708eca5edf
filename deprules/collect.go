// Package deprules collects, filters, and peers RPM dependency metadata
// (Requires/Provides/Conflicts/Obsoletes/Recommends/Suggests/Supplements/
// Enhances), and classifies cross-build changes as expected or not.
//
// Sense-flag decoding is grounded in original_source/lib/deprules.c's
// get_dep_operator; the two-pass peering algorithm generalizes the same
// file's find_deprule_peers.
package deprules

import (
	"context"
	"regexp"
	"strings"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/internal/rpm/rpmdb"
)

// RPM sense-flag bits, per rpmlib's rpmsenseflags.h. Not defined in
// internal/rpm/rpmdb, which only carries the tag catalog, not these bit
// constants.
const (
	senseLess    = 1 << 1
	senseGreater = 1 << 2
	senseEqual   = 1 << 3
)

type tagSet struct {
	kind    rpminspect.DepKind
	name    rpmdb.Tag
	flags   rpmdb.Tag
	version rpmdb.Tag
}

var tagSets = [...]tagSet{
	{rpminspect.Requires, rpmdb.TagRequireName, rpmdb.TagRequireFlags, rpmdb.TagRequireVersion},
	{rpminspect.Provides, rpmdb.TagProvideName, rpmdb.TagProvideFlags, rpmdb.TagProvideVersion},
	{rpminspect.Conflicts, rpmdb.TagConflictName, rpmdb.TagConflictFlags, rpmdb.TagConflictVersion},
	{rpminspect.Obsoletes, rpmdb.TagObsoleteName, rpmdb.TagObsoleteFlags, rpmdb.TagObsoleteVersion},
	{rpminspect.Recommends, rpmdb.TagRecommendName, rpmdb.TagRecommendFlags, rpmdb.TagRecommendVersion},
	{rpminspect.Suggests, rpmdb.TagSuggestName, rpmdb.TagSuggestFlags, rpmdb.TagSuggestVersion},
	{rpminspect.Supplements, rpmdb.TagSupplementName, rpmdb.TagSupplementFlags, rpmdb.TagSupplementVersion},
	{rpminspect.Enhances, rpmdb.TagEnhanceName, rpmdb.TagEnhanceFlags, rpmdb.TagEnhanceVersion},
}

// autoFilter matches auto-generated dependency names that §3/§4.3 say to
// drop at collection time: any "rpmlib(...)", any "rtld(...)",
// "debuginfo(build-id)", and names ending in "-debugsource" or
// "-debuginfo".
var autoFilter = regexp.MustCompile(`^rpmlib\(.*\)$|^rtld\(.*\)$|^debuginfo\(build-id\)$|-debugsource$|-debuginfo$`)

// Collect gathers a package's dependency rules across all eight tag
// families, filtering out auto-generated noise, and caches the result on
// the Pkg via [rpminspect.Pkg.SetDepRules].
func Collect(ctx context.Context, p *rpminspect.Pkg) ([]*rpminspect.DepRule, error) {
	if cached := p.DepRules(); cached != nil {
		return cached, nil
	}
	var out []*rpminspect.DepRule
	for _, ts := range tagSets {
		names, err := p.Header.GetStringArray(ctx, ts.name)
		if err != nil {
			return nil, err
		}
		flags, err := p.Header.GetInt32Array(ctx, ts.flags)
		if err != nil {
			return nil, err
		}
		versions, err := p.Header.GetStringArray(ctx, ts.version)
		if err != nil {
			return nil, err
		}
		for i, name := range names {
			if autoFilter.MatchString(name) {
				continue
			}
			var flag int32
			if i < len(flags) {
				flag = flags[i]
			}
			var version string
			if i < len(versions) {
				version = versions[i]
			}
			rule := &rpminspect.DepRule{
				Kind:     ts.kind,
				Name:     name,
				Op:       decodeOp(flag),
				Explicit: flag&rpmSenseExplicit != 0,
				Rich:     strings.Contains(name, "(") && strings.ContainsAny(name, "&|"),
				Pkg:      p,
			}
			if rule.Op != rpminspect.OpNone {
				rule.Version = version
			}
			out = append(out, rule)
		}
	}
	p.SetDepRules(out)
	return out, nil
}

// rpmSenseExplicit marks a dependency as spec-authored rather than
// auto-generated (RPMSENSE_FIND_REQUIRES / manual bit in upstream rpm is
// absent from the flag word; rpminspect instead treats a Requires/Provides
// row as explicit when it carries a version comparison, since
// auto-generated sonames and file deps never do).
const rpmSenseExplicit = senseLess | senseGreater | senseEqual

func decodeOp(flags int32) rpminspect.Op {
	f := flags & (senseLess | senseGreater | senseEqual)
	switch f {
	case senseLess | senseEqual:
		return rpminspect.OpLE
	case senseGreater | senseEqual:
		return rpminspect.OpGE
	case senseEqual:
		return rpminspect.OpEQ
	case senseLess:
		return rpminspect.OpLT
	case senseGreater:
		return rpminspect.OpGT
	default:
		return rpminspect.OpNone
	}
}
