package inspections

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpminspect/rpminspect"
)

func writeKmodFile(t *testing.T, dir, name, raw string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return full
}

// TestKmodAliasWildcardRelaxation covers §8 scenario 6: a module whose
// alias gains a wider wildcard between releases but keeps the same
// provider module set is not reported.
func TestKmodAliasWildcardRelaxation(t *testing.T) {
	dir := t.TempDir()

	beforeRaw := "alias=pci:v00001425d00000020sv*sd00000001bc*sc*i*\x00depends=\x00"
	afterRaw := "alias=pci:v00001425d00000020sv*sd*bc*sc*i*\x00depends=\x00"

	beforePath := writeKmodFile(t, dir, "cxgb3.ko.before", beforeRaw)
	afterPath := writeKmodFile(t, dir, "cxgb3.ko", afterRaw)

	before := &rpminspect.Pkg{Name: "kernel-modules", Version: "1.0", Release: "1", Arch: "x86_64"}
	after := &rpminspect.Pkg{Name: "kernel-modules", Version: "1.0", Release: "2", Arch: "x86_64"}

	beforeFile := &rpminspect.File{LocalPath: "/lib/modules/cxgb3.ko", FullPath: beforePath, Pkg: before}
	afterFile := &rpminspect.File{LocalPath: "/lib/modules/cxgb3.ko", FullPath: afterPath, Pkg: after}
	beforeFile.PeerFile = afterFile
	afterFile.PeerFile = beforeFile

	before.Files = []*rpminspect.File{beforeFile}
	after.Files = []*rpminspect.File{afterFile}

	rc := rpminspect.NewRunCtx("kernel-modules-1.0-1", "kernel-modules-1.0-2")
	rc.Peers = []*rpminspect.Peer{{Name: "kernel-modules", Arch: "x86_64", Before: before, After: after}}

	ok, err := Kmod(context.Background(), rc)
	if err != nil {
		t.Fatalf("Kmod: %v", err)
	}
	if !ok {
		t.Errorf("Kmod ok = false, want true (wildcard relaxation covers the alias); results: %+v", rc.Results())
	}
	for _, r := range rc.Results() {
		if r.Inspection == "kmod" && r.Verb == "lost" {
			t.Errorf("unexpected lost-alias result: %+v", r)
		}
	}
}

// TestKmodLostParameter covers the companion regression case: a module
// parameter present before and absent after is flagged.
func TestKmodLostParameter(t *testing.T) {
	dir := t.TempDir()

	beforeRaw := "alias=pci:v0000dead\x00parm=debug:Enable debug output (int)\x00"
	afterRaw := "alias=pci:v0000dead\x00"

	beforePath := writeKmodFile(t, dir, "foo.ko.before", beforeRaw)
	afterPath := writeKmodFile(t, dir, "foo.ko", afterRaw)

	before := &rpminspect.Pkg{Name: "kernel-modules", Version: "1.0", Release: "1", Arch: "x86_64"}
	after := &rpminspect.Pkg{Name: "kernel-modules", Version: "1.0", Release: "2", Arch: "x86_64"}

	beforeFile := &rpminspect.File{LocalPath: "/lib/modules/foo.ko", FullPath: beforePath, Pkg: before}
	afterFile := &rpminspect.File{LocalPath: "/lib/modules/foo.ko", FullPath: afterPath, Pkg: after}
	beforeFile.PeerFile = afterFile
	afterFile.PeerFile = beforeFile

	before.Files = []*rpminspect.File{beforeFile}
	after.Files = []*rpminspect.File{afterFile}

	rc := rpminspect.NewRunCtx("kernel-modules-1.0-1", "kernel-modules-1.0-2")
	rc.Peers = []*rpminspect.Peer{{Name: "kernel-modules", Arch: "x86_64", Before: before, After: after}}

	ok, err := Kmod(context.Background(), rc)
	if err != nil {
		t.Fatalf("Kmod: %v", err)
	}
	if ok {
		t.Error("Kmod ok = true, want false (lost module parameter)")
	}

	var found bool
	for _, r := range rc.Results() {
		if r.Inspection == "kmod" && r.Verb == "lost" && r.Noun == "debug" {
			found = true
			if r.Severity != rpminspect.Verify {
				t.Errorf("lost-parameter severity = %v, want Verify", r.Severity)
			}
		}
	}
	if !found {
		t.Errorf("no lost-parameter result for debug; results: %+v", rc.Results())
	}
}
