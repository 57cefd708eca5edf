package inspections

import (
	"context"

	"github.com/rpminspect/rpminspect"
)

// EmptyRPM implements the "emptyrpm" inspection (§8 boundary behavior):
// fires Verify when a subpackage that had payload before the build now has
// none (after-only emptiness), Info when both sides are, and were, empty.
func EmptyRPM(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	ok := true
	for _, peer := range rc.Peers {
		if peer.After == nil {
			continue
		}
		afterEmpty := len(peer.After.Files) == 0
		if !afterEmpty {
			continue
		}
		beforeEmpty := peer.Before == nil || len(peer.Before.Files) == 0
		switch {
		case peer.Before != nil && !beforeEmpty:
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Verify,
				WaiverAuth: rpminspect.Anyone,
				Inspection: "emptyrpm",
				Message:    "package " + peer.Name + " lost all payload between builds",
				Verb:       "lost",
				Noun:       peer.Name,
				Arch:       peer.After.Arch,
			})
			ok = false
		case peer.Before == nil:
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Info,
				Inspection: "emptyrpm",
				Message:    "new subpackage " + peer.Name + " is empty",
				Verb:       "added",
				Noun:       peer.Name,
				Arch:       peer.After.Arch,
			})
		default:
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Info,
				Inspection: "emptyrpm",
				Message:    "package " + peer.Name + " is empty, as it was before",
				Verb:       "unchanged",
				Noun:       peer.Name,
				Arch:       peer.After.Arch,
			})
		}
	}
	return ok, nil
}
