package peer

import (
	"testing"

	"github.com/rpminspect/rpminspect"
)

func TestPackages(t *testing.T) {
	t.Parallel()
	before := []*rpminspect.Pkg{
		{Name: "foo", Arch: "x86_64", Version: "1.0", Release: "1.fc40"},
		{Name: "foo-libs", Arch: "x86_64", Version: "1.0", Release: "1.fc40"},
		{Name: "foo-doc", Arch: "noarch", Version: "1.0", Release: "1.fc40"},
	}
	after := []*rpminspect.Pkg{
		{Name: "foo", Arch: "x86_64", Version: "1.1", Release: "1.fc40"},
		{Name: "foo-libs", Arch: "x86_64", Version: "1.1", Release: "1.fc40"},
		{Name: "foo-debuginfo", Arch: "x86_64", Version: "1.1", Release: "1.fc40"},
	}

	peers := Packages(before, after)
	byName := make(map[string]*rpminspect.Peer, len(peers))
	for _, p := range peers {
		byName[p.Name] = p
	}

	if len(peers) != 4 {
		t.Fatalf("len(peers) = %d, want 4", len(peers))
	}
	if p := byName["foo"]; p == nil || !p.HasBefore() || !p.HasAfter() {
		t.Errorf("expected foo to be fully peered, got %+v", p)
	}
	if p := byName["foo-doc"]; p == nil || !p.IsRemoved() {
		t.Errorf("expected foo-doc to be a removed half-peer, got %+v", p)
	}
	if p := byName["foo-debuginfo"]; p == nil || !p.IsNew() {
		t.Errorf("expected foo-debuginfo to be a new half-peer, got %+v", p)
	}
}

func TestFilesIdenticalLocalpath(t *testing.T) {
	t.Parallel()
	before := &rpminspect.Pkg{Name: "foo", Version: "1.0", Release: "1.fc40"}
	after := &rpminspect.Pkg{Name: "foo", Version: "1.0", Release: "1.fc40"}
	bf := &rpminspect.File{LocalPath: "/usr/bin/foo"}
	af := &rpminspect.File{LocalPath: "/usr/bin/foo"}
	before.Files = []*rpminspect.File{bf}
	after.Files = []*rpminspect.File{af}

	p := &rpminspect.Peer{Name: "foo", Before: before, After: after}
	Files(p)

	if af.PeerFile != bf || bf.PeerFile != af {
		t.Errorf("expected identical localpaths to peer directly, got after.PeerFile=%v before.PeerFile=%v", af.PeerFile, bf.PeerFile)
	}
}

func TestFilesVersionSubstitution(t *testing.T) {
	t.Parallel()
	before := &rpminspect.Pkg{Name: "foo", Version: "1.0", Release: "1.fc40"}
	after := &rpminspect.Pkg{Name: "foo", Version: "1.1", Release: "1.fc40"}
	bf := &rpminspect.File{LocalPath: "/usr/share/doc/foo-1.0/COPYING"}
	af := &rpminspect.File{LocalPath: "/usr/share/doc/foo-1.1/COPYING"}
	before.Files = []*rpminspect.File{bf}
	after.Files = []*rpminspect.File{af}

	p := &rpminspect.Peer{Name: "foo", Before: before, After: after}
	Files(p)

	if af.PeerFile != bf {
		t.Errorf("expected a version-substituted match, got %v", af.PeerFile)
	}
}

func TestFilesVersionReleaseSubstitution(t *testing.T) {
	t.Parallel()
	before := &rpminspect.Pkg{Name: "foo", Version: "1.0", Release: "1.fc40"}
	after := &rpminspect.Pkg{Name: "foo", Version: "1.1", Release: "2.fc40"}
	bf := &rpminspect.File{LocalPath: "/usr/lib/.build-id/1.0-1.fc40/foo"}
	af := &rpminspect.File{LocalPath: "/usr/lib/.build-id/1.1-2.fc40/foo"}
	before.Files = []*rpminspect.File{bf}
	after.Files = []*rpminspect.File{af}

	p := &rpminspect.Peer{Name: "foo", Before: before, After: after}
	Files(p)

	if af.PeerFile != bf {
		t.Errorf("expected a version-release-substituted match, got %v", af.PeerFile)
	}
}

func TestFilesNoMatch(t *testing.T) {
	t.Parallel()
	before := &rpminspect.Pkg{Name: "foo", Version: "1.0", Release: "1.fc40"}
	after := &rpminspect.Pkg{Name: "foo", Version: "1.1", Release: "1.fc40"}
	bf := &rpminspect.File{LocalPath: "/usr/bin/bar"}
	af := &rpminspect.File{LocalPath: "/usr/bin/baz"}
	before.Files = []*rpminspect.File{bf}
	after.Files = []*rpminspect.File{af}

	p := &rpminspect.Peer{Name: "foo", Before: before, After: after}
	Files(p)

	if af.PeerFile != nil {
		t.Errorf("expected an unrelated file to be unmatched, got %v", af.PeerFile)
	}
}

func TestFilesHalfPeerIsNoOp(t *testing.T) {
	t.Parallel()
	after := &rpminspect.Pkg{Name: "foo", Version: "1.0", Release: "1.fc40"}
	after.Files = []*rpminspect.File{{LocalPath: "/usr/bin/foo"}}
	p := &rpminspect.Peer{Name: "foo", After: after}
	Files(p) // must not panic on a nil Before
}
