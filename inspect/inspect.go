// Package inspect is the inspection registry and driver (§4.4): a uniform
// contract every inspection implements, a registry of inspections keyed by
// name and id bit, and the for_each_peer_file fan-out helper inspections
// use to iterate peer files with ignore filtering applied.
package inspect

import (
	"context"
	"sort"
	"sync"

	"github.com/quay/zlog"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/ignore"
)

// Driver is the uniform inspection contract (§4.4). It returns false if it
// added at least one result of severity >= Verify. A Driver may spawn
// bounded concurrency (the parallel package) and must treat the extraction
// tree as read-only; it may be called at most once per run.
type Driver func(ctx context.Context, rc *rpminspect.RunCtx) (bool, error)

// Entry is one registry row: (id_bit, name, single_build_ok, driver_fn).
type Entry struct {
	IDBit         uint64
	Name          string
	SingleBuildOK bool
	Driver        Driver
}

// Registry holds every known inspection, in registration order, which is
// also dispatch order (§5: "Inspections run in the registry order").
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	byName  map[string]int
	next    uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds an inspection. Panics on a duplicate name or if more than
// 64 inspections are registered, since id bits are packed into a uint64
// enabled-mask.
func (r *Registry) Register(name string, singleBuildOK bool, d Driver) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		panic("inspect: duplicate inspection name " + name)
	}
	if r.next >= 64 {
		panic("inspect: more than 64 inspections registered")
	}
	e := Entry{IDBit: uint64(1) << r.next, Name: name, SingleBuildOK: singleBuildOK, Driver: d}
	r.next++
	r.byName[name] = len(r.entries)
	r.entries = append(r.entries, e)
	return e
}

// Entries returns every registered inspection, in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns every registered inspection name, sorted, for
// --list-inspections.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the entry registered under "name", or false.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Mask builds an enabled-mask from a set of inspection names, per the
// config's "inspections" section (name -> on/off). Names not mentioned
// default to "on" unless "defaultOff" is true.
func (r *Registry) Mask(enabled map[string]bool, defaultOff bool) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mask uint64
	for _, e := range r.entries {
		on, mentioned := enabled[e.Name]
		switch {
		case mentioned:
			if on {
				mask |= e.IDBit
			}
		case !defaultOff:
			mask |= e.IDBit
		}
	}
	return mask
}

// Run dispatches every enabled entry in registry order against rc,
// honoring single_build_ok per the invariant in §8: an inspection with
// single_build_ok == false run against a single-build RunCtx emits exactly
// one Skip result and nothing else, and does not count toward filtering
// (the "--tests"/"--exclude" CLI selection is applied by the caller when
// building "mask"; Run only knows about single-build eligibility).
func (r *Registry) Run(ctx context.Context, rc *rpminspect.RunCtx, mask uint64) error {
	for _, e := range r.Entries() {
		if mask&e.IDBit == 0 {
			continue
		}
		ictx := zlog.ContextWithValues(ctx, "inspection", e.Name)
		if rc.SingleBuild() && !e.SingleBuildOK {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Skip,
				Inspection: e.Name,
				Message:    "skipped: requires both before and after builds",
			})
			continue
		}
		zlog.Debug(ictx).Msg("running inspection")
		if _, err := e.Driver(ictx, rc); err != nil {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Diagnostic,
				Inspection: e.Name,
				Message:    err.Error(),
			})
			zlog.Warn(ictx).Err(err).Msg("inspection reported a diagnostic")
		}
	}
	return nil
}

// CanonicalSection maps a config section name to its registry inspection
// name (spec.md Design Notes: "some config blocks use group names that are
// synonymous but not identical to the inspection id"). Every entry listed
// here maps a section to the inspection of the same name.
var CanonicalSection = map[string]string{
	"annocheck":    "annocheck",
	"javabytecode": "javabytecode",
	"badfuncs":     "badfuncs",
	"runpath":      "runpath",
	"emptyrpm":     "emptyrpm",
	"files":        "files",
	"types":        "types",
}

// Canonicalize resolves a config section or group name to the registry
// inspection name it configures, falling back to the name unchanged.
func Canonicalize(name string) string {
	if n, ok := CanonicalSection[name]; ok {
		return n
	}
	return name
}

// IgnoredFor reports whether "localpath" should be skipped for
// "inspection": it matches rc's global ignore list or the per-inspection
// ignore list keyed by the canonical inspection name.
func IgnoredFor(rc *rpminspect.RunCtx, inspection, localpath string) bool {
	if ignore.MatchAny(rc.GlobalIgnore, localpath) {
		return true
	}
	return ignore.MatchAny(rc.PerInspectionIgnore[Canonicalize(inspection)], localpath)
}

// ForEachPeerFile iterates every after-File in every peer where the after
// side exists, skipping ignored files when useIgnore is true, and calls
// checkFn for each remaining file. checkFn's boolean results are AND-folded
// into the return value, but iteration continues regardless so every file
// is checked even after a failure.
func ForEachPeerFile(ctx context.Context, rc *rpminspect.RunCtx, inspection string, useIgnore bool, checkFn func(context.Context, *rpminspect.File) bool) bool {
	ok := true
	for _, peer := range rc.Peers {
		if peer.After == nil {
			continue
		}
		for _, f := range peer.After.Files {
			if useIgnore && IgnoredFor(rc, inspection, f.LocalPath) {
				continue
			}
			if !checkFn(ctx, f) {
				ok = false
			}
		}
	}
	return ok
}
