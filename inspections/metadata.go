package inspections

import (
	"context"
	"regexp"
	"strings"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/config"
)

// Metadata implements the "metadata" inspection: vendor string policy,
// buildhost-subdomain policy, and the badwords checker supplemented from
// original_source/lib/badwords.c (SPEC_FULL.md "SUPPLEMENTED FEATURES").
func Metadata(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	ok := true
	for _, peer := range rc.Peers {
		if peer.After == nil {
			continue
		}
		p := peer.After

		if cfg != nil && cfg.Metadata.Vendor != "" && p.Vendor != cfg.Metadata.Vendor {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Verify,
				WaiverAuth: rpminspect.Anyone,
				Inspection: "metadata",
				Message:    "package " + p.Name + " has vendor " + p.Vendor + ", expected " + cfg.Metadata.Vendor,
				Verb:       "changed",
				Noun:       "vendor",
				Arch:       p.Arch,
			})
			ok = false
		}

		if cfg != nil && len(cfg.Metadata.BuildhostSubdomain) > 0 && !hasAnySuffix(p.Buildhost, cfg.Metadata.BuildhostSubdomain) {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Verify,
				WaiverAuth: rpminspect.Anyone,
				Inspection: "metadata",
				Message:    "package " + p.Name + " built on unexpected host " + p.Buildhost,
				Verb:       "flagged",
				Noun:       "buildhost",
				Arch:       p.Arch,
			})
			ok = false
		}

		if cfg != nil {
			if hits := checkBadwords(p.Summary+" "+p.Description, cfg.Badwords); len(hits) > 0 {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Verify,
					WaiverAuth: rpminspect.Anyone,
					Inspection: "metadata",
					Message:    "package " + p.Name + " description/summary contains flagged words: " + strings.Join(hits, ", "),
					Verb:       "flagged",
					Noun:       "badwords",
					Arch:       p.Arch,
				})
				ok = false
			}
		}
	}
	return ok, nil
}

// checkBadwords scans "text" for any of the configured badwords,
// case-insensitively, on word boundaries, per lib/badwords.c.
func checkBadwords(text string, badwords []string) []string {
	if len(badwords) == 0 {
		return nil
	}
	var hits []string
	for _, w := range badwords {
		if w == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
		if err == nil && re.MatchString(text) {
			hits = append(hits, w)
		}
	}
	return hits
}

func hasAnySuffix(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}
