package rpminspect

// Peer pairs a before-build [Pkg] with an after-build [Pkg] that represent
// the same subpackage across builds, matched by (name, arch). Either side
// may be nil: a subpackage missing from one build is a "half-peer" (new or
// removed subpackage).
type Peer struct {
	Name string
	Arch string

	Before *Pkg
	After  *Pkg
}

// HasBefore reports whether this peer has a before-build side.
func (p *Peer) HasBefore() bool { return p.Before != nil }

// HasAfter reports whether this peer has an after-build side.
func (p *Peer) HasAfter() bool { return p.After != nil }

// IsNew reports whether the subpackage only exists in the after build.
func (p *Peer) IsNew() bool { return p.Before == nil && p.After != nil }

// IsRemoved reports whether the subpackage only exists in the before build.
func (p *Peer) IsRemoved() bool { return p.Before != nil && p.After == nil }

// PeerPkg returns the other side of a package peering, given one side and
// the [Peer] it belongs to. Returns nil if "side" isn't part of "p" or has
// no counterpart. Generalizes the C source's pairfuncs.c helpers.
func PeerPkg(p *Peer, side *Pkg) *Pkg {
	switch {
	case p == nil || side == nil:
		return nil
	case p.Before == side:
		return p.After
	case p.After == side:
		return p.Before
	default:
		return nil
	}
}

// PeerFile returns the other side of a file peering, or nil if "f" has no
// counterpart. It is a thin wrapper over [File.PeerFile] for symmetry with
// [PeerPkg].
func PeerFile(f *File) *File {
	if f == nil {
		return nil
	}
	return f.PeerFile
}
