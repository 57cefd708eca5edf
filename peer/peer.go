// Package peer matches before-build and after-build packages and files so
// inspections can reason about what changed between two builds.
//
// Grounded in the original source's pairfuncs.c matching strategy (relaxed
// localpath matching by successive version substitution) and the teacher's
// own two-pass peering style used for dependency rules (see the deprules
// package).
package peer

import (
	"strings"

	"github.com/rpminspect/rpminspect"
)

// Packages pairs each after-build [rpminspect.Pkg] with a before-build one
// sharing (name, arch), producing a half-peer for any subpackage present on
// only one side.
func Packages(before, after []*rpminspect.Pkg) []*rpminspect.Peer {
	type key struct{ name, arch string }
	beforeByKey := make(map[key]*rpminspect.Pkg, len(before))
	for _, p := range before {
		beforeByKey[key{p.Name, p.Arch}] = p
	}
	used := make(map[key]bool, len(before))

	var peers []*rpminspect.Peer
	for _, a := range after {
		k := key{a.Name, a.Arch}
		b := beforeByKey[k]
		if b != nil {
			used[k] = true
		}
		peers = append(peers, &rpminspect.Peer{Name: a.Name, Arch: a.Arch, Before: b, After: a})
	}
	for _, b := range before {
		k := key{b.Name, b.Arch}
		if used[k] {
			continue
		}
		peers = append(peers, &rpminspect.Peer{Name: b.Name, Arch: b.Arch, Before: b})
	}
	return peers
}

// Files peers every after-File in "p" against the before-Pkg's files, per
// §4.2's three successively relaxed match keys. Matched before-Files are
// marked used and cannot be reused by a later after-File; ties are broken
// by the order before-Files appear in the before-Pkg's listing.
func Files(p *rpminspect.Peer) {
	if p.Before == nil || p.After == nil {
		return
	}
	byLocalpath := make(map[string][]*rpminspect.File)
	for _, f := range p.Before.Files {
		byLocalpath[f.LocalPath] = append(byLocalpath[f.LocalPath], f)
	}
	used := make(map[*rpminspect.File]bool)

	beforeVR := p.Before.VR()
	afterVR := p.After.VR()

	take := func(localpath string) *rpminspect.File {
		for _, f := range byLocalpath[localpath] {
			if !used[f] {
				used[f] = true
				return f
			}
		}
		return nil
	}

	for _, af := range p.After.Files {
		var match *rpminspect.File

		// 1. Identical localpath.
		match = take(af.LocalPath)

		// 2. localpath with before-version substituted for after-version.
		if match == nil && p.Before.Version != p.After.Version && strings.Contains(af.LocalPath, p.After.Version) {
			candidate := strings.ReplaceAll(af.LocalPath, p.After.Version, p.Before.Version)
			match = take(candidate)
		}

		// 3. localpath with before-version-release substituted for
		// after-version-release.
		if match == nil && beforeVR != afterVR && strings.Contains(af.LocalPath, afterVR) {
			candidate := strings.ReplaceAll(af.LocalPath, afterVR, beforeVR)
			match = take(candidate)
		}

		if match != nil {
			af.PeerFile = match
			match.PeerFile = af
		}
	}
}
