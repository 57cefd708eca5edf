package inspections

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/analyzers/patch"
	"github.com/rpminspect/rpminspect/config"
)

// Patches implements the "patches" inspection: for every peered source
// package, it diffs each patch's file/line counts across builds, flags
// corrupt (sub-4-byte) patches, reports newly added patches informationally,
// and flags a patch whose file or line count grew past the configured
// thresholds.
func Patches(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	ok := true
	for _, peer := range rc.Peers {
		if peer.After == nil || !peer.After.IsSource {
			continue
		}

		afterStats, afterErrs := collectPatchStats(peer.After)
		var beforeStats map[string]patch.Stats
		if peer.Before != nil && peer.Before.IsSource {
			beforeStats, _ = collectPatchStats(peer.Before)
		}

		for name, err := range afterErrs {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Bad,
				WaiverAuth: rpminspect.Anyone,
				Inspection: "patches",
				Message:    fmt.Sprintf("patch %s: %s", name, err),
				Verb:       "flagged",
				Noun:       name,
				Arch:       peer.After.Arch,
			})
			ok = false
		}

		for name, st := range afterStats {
			prior, existed := beforeStats[name]
			switch {
			case !existed:
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Info,
					Inspection: "patches",
					Message:    "new patch " + name,
					Verb:       "added",
					Noun:       name,
					Arch:       peer.After.Arch,
				})
			case significantPatchChange(cfg, prior, st):
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Verify,
					WaiverAuth: rpminspect.Anyone,
					Inspection: "patches",
					Message: fmt.Sprintf("patch %s grew from %d file(s)/%d line(s) to %d file(s)/%d line(s)",
						name, prior.Files, prior.Lines, st.Files, st.Lines),
					Verb: "changed",
					Noun: name,
					Arch: peer.After.Arch,
				})
				ok = false
			}
		}

		// §8 scenario 3: a patch present before and absent after is
		// reported informationally, even in a non-rebase, since nothing
		// in the after tree references it.
		for name := range beforeStats {
			if _, stillPresent := afterStats[name]; stillPresent {
				continue
			}
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Info,
				Inspection: "patches",
				Message:    fmt.Sprintf("Patch file `%s` removed", name),
				Verb:       "removed",
				Noun:       name,
				Arch:       peer.After.Arch,
			})
		}
	}
	return ok, nil
}

// collectPatchStats locates a source package's spec file (to resolve any
// %{name}/%{version}/macro tokens in its Patch tag values) and stats every
// resolved patch file found among the package's extracted files.
func collectPatchStats(p *rpminspect.Pkg) (map[string]patch.Stats, map[string]string) {
	stats := make(map[string]patch.Stats)
	errs := make(map[string]string)

	var macros map[string]string
	for _, f := range p.Files {
		if strings.HasSuffix(f.LocalPath, ".spec") && f.IsExtracted() {
			if m, err := patch.SpecMacros(f.FullPath); err == nil {
				macros = m
			}
			break
		}
	}

	byBasename := make(map[string]*rpminspect.File, len(p.Files))
	for _, f := range p.Files {
		byBasename[basename(f.LocalPath)] = f
	}

	for _, raw := range p.Patch {
		name := patch.ExpandName(raw, p.Name, p.Version, macros)
		name = basename(name)
		f, ok := byBasename[name]
		if !ok || !f.IsExtracted() {
			continue
		}
		st, err := patch.Stat(f.FullPath)
		if err != nil {
			errs[name] = err.Error()
			continue
		}
		stats[name] = st
	}
	return stats, errs
}

func basename(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// significantPatchChange reports whether a patch's growth between builds
// exceeds the configured file_count_threshold/line_count_threshold (§4.1's
// "patches" section); any growth is significant when a threshold is unset.
func significantPatchChange(cfg *config.Config, prior, current patch.Stats) bool {
	fileThreshold, lineThreshold := 0, 0
	if cfg != nil {
		fileThreshold = cfg.Patches.FileCountThreshold
		lineThreshold = cfg.Patches.LineCountThreshold
	}
	if current.Files > prior.Files {
		if fileThreshold == 0 || current.Files-prior.Files > fileThreshold {
			return true
		}
	}
	if current.Lines > prior.Lines {
		if lineThreshold == 0 || current.Lines-prior.Lines > lineThreshold {
			return true
		}
	}
	return false
}
