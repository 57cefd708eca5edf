package rpminspect

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RunCtx is the immutable (post-init) bundle every inspection reads: the
// configuration option tree, the before/after build identifiers, the
// extracted packages and their peers, the shared analysis caches, and the
// growing [Result] list with its severity watermark.
//
// RunCtx is created once at startup from config+profiles+CLI (see the
// config package) and mutated only to append results and raise the
// watermark; everything else is written once during acquisition and read
// thereafter. It is torn down by [RunCtx.Free] at exit.
type RunCtx struct {
	// RunID identifies this run. Extraction-root directories are not named
	// after it: the acquire package names each root "rpminspect.<uuid>"
	// with a fresh uuid, so concurrent runs sharing a workdir never collide.
	RunID uuid.UUID

	Before string // before-build specification, "" if single-build run
	After  string // after-build specification

	Peers []*Peer

	// Options is the resolved configuration tree; typed as "any" here to
	// avoid an import cycle with the config package, which imports this
	// package for Pkg/File/Peer. Callers type-assert to *config.Config.
	Options any

	Product string // resolved product-release string, e.g. "fc40"

	// Tables loaded from vendor data, opaque to the framework beyond what
	// the worked inspections consume. Typed "any" for the same reason as
	// Options; the config package's *config.VendorData is the concrete
	// type.
	VendorData any

	// GlobalIgnore is every pattern from the config's top-level "ignore"
	// sequence, applied to every inspection. PerInspectionIgnore holds the
	// additional patterns from each section's own "ignore" sub-sequence,
	// keyed by the canonical registry inspection name (see the Design
	// Notes' canonicalization open question).
	GlobalIgnore        []string
	PerInspectionIgnore map[string][]string

	// ToolPaths maps external helper tool name (abidiff, kmidiff, msgunfmt,
	// annocheck, ...) to the command to invoke, as configured under
	// "commands".
	ToolPaths map[string]string

	// EnabledMask has one bit set per enabled inspection, indexed by each
	// registry entry's IDBit (see the inspect package).
	EnabledMask uint64

	// Arches is the allowed-architecture filter from --arches; "all"
	// disables filtering.
	Arches []string

	Threshold Severity // --threshold: results below this don't affect exit status

	mu       sync.Mutex
	results  []Result
	worst    Severity
}

// NewRunCtx allocates a RunCtx for a run between "before" and "after" (after
// may be the only build supplied, in which case before is "").
func NewRunCtx(before, after string) *RunCtx {
	return &RunCtx{
		RunID:               uuid.New(),
		Before:              before,
		After:               after,
		PerInspectionIgnore: make(map[string][]string),
		ToolPaths:           make(map[string]string),
		worst:               OK,
	}
}

// SingleBuild reports whether only one build was supplied to this run.
func (rc *RunCtx) SingleBuild() bool { return rc.Before == "" || rc.After == "" }

// AddResult appends a result built from "p" and raises the watermark if its
// severity is higher on the OK<Info<Verify<Bad total order. Skip and
// Diagnostic never move the watermark. Safe for concurrent use so
// bounded-parallel inspections (§4.7) can report from multiple goroutines;
// the dispatcher itself remains single-threaded per §5.
func (rc *RunCtx) AddResult(p Params) Result {
	r := Result{
		Severity:   p.Severity,
		WaiverAuth: p.WaiverAuth,
		Inspection: p.Inspection,
		Message:    p.Message,
		Details:    p.Details,
		Remedy:     p.Remedy,
		Verb:       p.Verb,
		Noun:       p.Noun,
		Arch:       p.Arch,
		File:       p.File,
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.results = append(rc.results, r)
	if r.Severity.Worse(rc.worst) {
		rc.worst = r.Severity
	}
	return r
}

// Worst returns the run's severity watermark.
func (rc *RunCtx) Worst() Severity {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.worst
}

// Results returns the ordered result list accumulated so far. The returned
// slice is a snapshot; callers must not mutate it.
func (rc *RunCtx) Results() []Result {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]Result, len(rc.results))
	copy(out, rc.results)
	return out
}

// Suppressed reports whether no result emitted so far for "inspection" has
// severity at or above "max". Diagnostic results are excluded from this
// check: they are never suppressed and never satisfy a suppression query.
func (rc *RunCtx) Suppressed(inspection string, max Severity) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, r := range rc.results {
		if r.Inspection != inspection || r.Severity == Diagnostic {
			continue
		}
		if r.Severity.Ranked() && r.Severity >= max {
			return false
		}
	}
	return true
}

// Free tears down the RunCtx: every extracted package tree is removed, in
// reverse dependency order (peers, then packages), matching §3's Lifecycles
// note that owned tables and package trees are torn down in reverse
// dependency order. It does not remove Options/VendorData, which the
// config package owns.
func (rc *RunCtx) Free(ctx context.Context) error {
	var firstErr error
	for i := len(rc.Peers) - 1; i >= 0; i-- {
		p := rc.Peers[i]
		for _, pkg := range []*Pkg{p.After, p.Before} {
			if pkg == nil || pkg.ExtractRoot == "" {
				continue
			}
			if err := removeAll(pkg.ExtractRoot); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	rc.mu.Lock()
	rc.results = nil
	rc.mu.Unlock()
	return firstErr
}
