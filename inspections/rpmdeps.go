package inspections

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/deprules"
)

// RpmDeps implements the "rpmdeps" inspection (§4.3 in full): collects and
// peers every subpackage's dependency rules, runs cross-subpackage provider
// analysis and the explicit-version policy check, flags unexpanded macro
// tokens, and reports unexpected dependency changes between builds.
func RpmDeps(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	ok := true

	var afterPkgs []*rpminspect.Pkg
	afterSubpackages := make(map[string]bool)
	for _, peer := range rc.Peers {
		if peer.After != nil {
			afterPkgs = append(afterPkgs, peer.After)
			afterSubpackages[peer.After.Name] = true
		}
	}

	for _, p := range afterPkgs {
		if _, err := deprules.Collect(ctx, p); err != nil {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Diagnostic,
				Inspection: "rpmdeps",
				Message:    fmt.Sprintf("collecting dependency rules for %s: %s", p.Name, err),
			})
			continue
		}
	}
	for _, peer := range rc.Peers {
		if peer.Before != nil {
			if _, err := deprules.Collect(ctx, peer.Before); err != nil {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Diagnostic,
					Inspection: "rpmdeps",
					Message:    fmt.Sprintf("collecting dependency rules for %s: %s", peer.Before.Name, err),
				})
			}
		}
	}

	deprules.AnalyzeProviders(afterPkgs)

	for _, p := range afterPkgs {
		for _, r := range p.DepRules() {
			if finding := deprules.CheckExplicitVersions(p, r); finding != nil {
				msg := fmt.Sprintf("%s requires %s with no explicit version, provided by %d subpackage(s)", p.Name, r.Name, len(finding.Providers))
				if finding.Conflict {
					msg = fmt.Sprintf("Multiple subpackages provide '%s': [%s]", r.Name, strings.Join(finding.Providers, ", "))
				}
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Verify,
					WaiverAuth: rpminspect.Anyone,
					Inspection: "rpmdeps",
					Message:    msg,
					Verb:       "flagged",
					Noun:       r.Name,
					Arch:       p.Arch,
				})
				ok = false
			}
			if deprules.HasUnexpandedMacro(r) {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Bad,
					WaiverAuth: rpminspect.Anyone,
					Inspection: "rpmdeps",
					Message:    fmt.Sprintf("%s: %s has an unexpanded macro in its version string %q", p.Name, r.String(), r.Version),
					Remedy:     "expand the macro in the package spec's dependency version before building",
					Verb:       "flagged",
					Noun:       r.Name,
					Arch:       p.Arch,
				})
				ok = false
			}
		}
	}

	for _, peer := range rc.Peers {
		if peer.Before == nil || peer.After == nil {
			continue
		}
		deprules.PeerRules(peer.Before.DepRules(), peer.After.DepRules())
		isRebase := peer.Before.Version != peer.After.Version
		if cfg != nil && cfg.VendorData != nil && cfg.VendorData.Rebaseable[peer.Name] {
			isRebase = false
		}

		for _, r := range peer.After.DepRules() {
			if !deprules.Changed(r) {
				continue
			}
			if r.Peer == nil {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Info,
					Inspection: "rpmdeps",
					Message:    fmt.Sprintf("%s: new %s", peer.Name, r.String()),
					Verb:       "added",
					Noun:       r.Name,
					Arch:       peer.After.Arch,
				})
				continue
			}
			if deprules.IsExpectedChange(r, isRebase, afterSubpackages) {
				continue
			}
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Verify,
				WaiverAuth: rpminspect.Anyone,
				Inspection: "rpmdeps",
				Message:    fmt.Sprintf("%s: %s changed from %s", peer.Name, r.String(), r.Peer.String()),
				Verb:       "changed",
				Noun:       r.Name,
				Arch:       peer.After.Arch,
			})
			ok = false
		}
		for _, r := range peer.Before.DepRules() {
			if r.Peer == nil {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Info,
					Inspection: "rpmdeps",
					Message:    fmt.Sprintf("%s: removed %s", peer.Name, r.String()),
					Verb:       "removed",
					Noun:       r.Name,
					Arch:       peer.Before.Arch,
				})
			}
		}
	}

	return ok, nil
}
