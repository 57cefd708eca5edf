package inspect

import (
	"context"
	"testing"

	"github.com/rpminspect/rpminspect"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register("emptyrpm", true, func(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
		rc.AddResult(rpminspect.Params{Severity: rpminspect.OK, Inspection: "emptyrpm"})
		return true, nil
	})
	r.Register("rpmdeps", false, func(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
		rc.AddResult(rpminspect.Params{Severity: rpminspect.Bad, Inspection: "rpmdeps"})
		return false, nil
	})
	return r
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Register did not panic on duplicate name")
		}
	}()
	r := NewRegistry()
	r.Register("elf", true, nil)
	r.Register("elf", true, nil)
}

func TestMaskDefaults(t *testing.T) {
	r := newTestRegistry()
	mask := r.Mask(map[string]bool{"rpmdeps": false}, false)
	for _, e := range r.Entries() {
		want := e.Name != "rpmdeps"
		if got := mask&e.IDBit != 0; got != want {
			t.Errorf("mask bit for %s = %v, want %v", e.Name, got, want)
		}
	}
}

// TestRunSingleBuildSkip covers §8's invariant: an inspection with
// single_build_ok == false run against a single-build RunCtx emits exactly
// one Skip result and nothing else.
func TestRunSingleBuildSkip(t *testing.T) {
	r := newTestRegistry()
	rc := rpminspect.NewRunCtx("", "after-1.0-1")
	mask := r.Mask(nil, false)
	if err := r.Run(context.Background(), rc, mask); err != nil {
		t.Fatalf("Run: %v", err)
	}
	results := rc.Results()
	var sawSkip, sawOK bool
	for _, res := range results {
		switch {
		case res.Inspection == "rpmdeps":
			if res.Severity != rpminspect.Skip {
				t.Errorf("rpmdeps result severity = %v, want Skip", res.Severity)
			}
			sawSkip = true
		case res.Inspection == "emptyrpm":
			sawOK = true
		}
	}
	if !sawSkip {
		t.Error("expected a Skip result for the single-build-only inspection")
	}
	if !sawOK {
		t.Error("expected the single_build_ok inspection to still run")
	}
	if rc.Worst().Worse(rpminspect.OK) {
		t.Errorf("Worst() = %v, want OK (Skip must not raise the watermark)", rc.Worst())
	}
}

func TestRunTwoBuildsRunsEverything(t *testing.T) {
	r := newTestRegistry()
	rc := rpminspect.NewRunCtx("before-1.0-1", "after-2.0-1")
	mask := r.Mask(nil, false)
	if err := r.Run(context.Background(), rc, mask); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rc.Worst() != rpminspect.Bad {
		t.Errorf("Worst() = %v, want Bad", rc.Worst())
	}
}

func TestCanonicalize(t *testing.T) {
	if got := Canonicalize("annocheck"); got != "annocheck" {
		t.Errorf("Canonicalize(annocheck) = %q", got)
	}
	if got := Canonicalize("unregistered-name"); got != "unregistered-name" {
		t.Errorf("Canonicalize fallback = %q, want passthrough", got)
	}
}

func TestForEachPeerFile(t *testing.T) {
	after := &rpminspect.Pkg{Name: "foo"}
	f1 := &rpminspect.File{LocalPath: "/usr/bin/foo", Pkg: after}
	f2 := &rpminspect.File{LocalPath: "/usr/share/doc/foo/README", Pkg: after}
	after.Files = []*rpminspect.File{f1, f2}

	rc := rpminspect.NewRunCtx("before", "after")
	rc.Peers = []*rpminspect.Peer{
		{Name: "foo", Arch: "x86_64", After: after},
		{Name: "bar", Arch: "x86_64"}, // removed-only peer, no After side
	}
	rc.GlobalIgnore = []string{"/usr/share/doc/**"}

	var seen []string
	ok := ForEachPeerFile(context.Background(), rc, "changedfiles", true, func(ctx context.Context, f *rpminspect.File) bool {
		seen = append(seen, f.LocalPath)
		return f.LocalPath != "/usr/bin/foo"
	})
	if len(seen) != 1 || seen[0] != "/usr/bin/foo" {
		t.Errorf("seen = %v, want only /usr/bin/foo (doc path ignored, removed-only peer skipped)", seen)
	}
	if ok {
		t.Error("ForEachPeerFile returned true, want false (checkFn failed for /usr/bin/foo)")
	}
}
