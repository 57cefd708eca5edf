package rpminspect

import (
	"strconv"

	"github.com/rpminspect/rpminspect/internal/rpm/rpmdb"
	"github.com/rpminspect/rpminspect/internal/rpmver"
)

// Pkg is an opened RPM: header metadata plus a payload-extraction root.
//
// A Pkg is created during acquisition (see the acquire package) and torn
// down with its owning [RunCtx]. Its [Header] stays valid for the entire
// run; every [File] belonging to it holds the Pkg reachable through its Pkg
// field, which keeps the header alive for as long as any file needs it.
type Pkg struct {
	Header *rpmdb.Header

	Name        string
	Epoch       int
	Version     string
	Release     string
	Arch        string
	Vendor      string
	Buildhost   string
	Summary     string
	Description string
	License     string
	SourceRPM   string
	Module      string

	Source []string // Patch/Source tag values, in tag order (Source array)
	Patch  []string

	IsSource bool // true if this is a source RPM

	// Path to the original .rpm file on disk, and the root under which its
	// payload was extracted (empty if not yet extracted).
	RPMPath       string
	PayloadOffset int64 // byte offset of the compressed payload within RPMPath
	ExtractRoot   string

	// SignerKeyID is the hex-encoded OpenPGP issuer key id decoded from the
	// embedded RPMTAG_SIGPGP packet, or "" if the package is unsigned.
	SignerKeyID string

	Files []*File

	// Dependency rules, collected lazily on first access and cached here;
	// see the deprules package.
	depRules []*DepRule
}

// NEVRA constructs a Name-Epoch-Version-Release-Architecture [rpmver.Version].
func (p *Pkg) NEVRA() rpmver.Version {
	name, arch := p.Name, p.Arch
	return rpmver.Version{
		Name:         &name,
		Architecture: &arch,
		Epoch:        strconv.Itoa(p.Epoch),
		Version:      p.Version,
		Release:      p.Release,
	}
}

// VR returns the package's "version-release" string, used by the expected
// dependency-change classification in the deprules package.
func (p *Pkg) VR() string {
	return p.Version + "-" + p.Release
}

// EVR returns the package's "epoch:version-release" string when the epoch is
// nonzero, or the plain "version-release" string otherwise.
func (p *Pkg) EVR() string {
	if p.Epoch == 0 {
		return p.VR()
	}
	return strconv.Itoa(p.Epoch) + ":" + p.VR()
}

// DepRules returns the package's cached dependency rules, or nil if
// [Pkg.SetDepRules] has not yet been called. The acquisition layer doesn't
// collect dependency rules eagerly; the deprules package populates this on
// first use per package.
func (p *Pkg) DepRules() []*DepRule { return p.depRules }

// SetDepRules caches the package's collected dependency rules.
func (p *Pkg) SetDepRules(rules []*DepRule) { p.depRules = rules }
