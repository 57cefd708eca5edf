package inspections

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpminspect/rpminspect"
)

const unifiedPatchBody = `--- a/foo.c
+++ b/foo.c
@@ -1,3 +1,3 @@
 line one
-line two
+line two changed
 line three
`

func writePatchFile(t *testing.T, dir, name, body string) *rpminspect.File {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return &rpminspect.File{LocalPath: name, FullPath: full}
}

// TestPatchesRemoved covers §8 scenario 3: a patch present before a build
// and absent after is reported informationally even though the build is
// not a rebase.
func TestPatchesRemoved(t *testing.T) {
	dir := t.TempDir()

	before := &rpminspect.Pkg{
		Name: "foo", Version: "1.0", Release: "1", Arch: "x86_64", IsSource: true,
		Patch: []string{"fix.patch"},
	}
	beforeFile := writePatchFile(t, dir, "fix.patch", unifiedPatchBody)
	beforeFile.Pkg = before
	before.Files = []*rpminspect.File{beforeFile}

	after := &rpminspect.Pkg{
		Name: "foo", Version: "1.0", Release: "2", Arch: "x86_64", IsSource: true,
		Patch: nil,
	}

	rc := rpminspect.NewRunCtx("foo-1.0-1", "foo-1.0-2")
	rc.Peers = []*rpminspect.Peer{{Name: "foo", Arch: "x86_64", Before: before, After: after}}

	ok, err := Patches(context.Background(), rc)
	if err != nil {
		t.Fatalf("Patches: %v", err)
	}
	if !ok {
		t.Errorf("Patches ok = false, want true (removal is informational)")
	}

	var found bool
	for _, r := range rc.Results() {
		if r.Inspection == "patches" && r.Verb == "removed" && r.Noun == "fix.patch" {
			found = true
			if r.Severity != rpminspect.Info {
				t.Errorf("removed-patch severity = %v, want Info", r.Severity)
			}
		}
	}
	if !found {
		t.Error("no removed-patch result for fix.patch")
	}
}

// TestPatchesNewPatch covers the complementary case: a patch present only
// after a build is reported informationally as added, and still present
// below threshold produces no Verify.
func TestPatchesNewPatch(t *testing.T) {
	dir := t.TempDir()

	after := &rpminspect.Pkg{
		Name: "foo", Version: "1.0", Release: "1", Arch: "x86_64", IsSource: true,
		Patch: []string{"new.patch"},
	}
	afterFile := writePatchFile(t, dir, "new.patch", unifiedPatchBody)
	afterFile.Pkg = after
	after.Files = []*rpminspect.File{afterFile}

	rc := rpminspect.NewRunCtx("", "foo-1.0-1")
	rc.Peers = []*rpminspect.Peer{{Name: "foo", Arch: "x86_64", After: after}}

	ok, err := Patches(context.Background(), rc)
	if err != nil {
		t.Fatalf("Patches: %v", err)
	}
	if !ok {
		t.Errorf("Patches ok = false, want true")
	}

	var found bool
	for _, r := range rc.Results() {
		if r.Inspection == "patches" && r.Verb == "added" && r.Noun == "new.patch" {
			found = true
			if r.Severity != rpminspect.Info {
				t.Errorf("new-patch severity = %v, want Info", r.Severity)
			}
		}
	}
	if !found {
		t.Error("no added-patch result for new.patch")
	}
}
