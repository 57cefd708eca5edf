package inspections

import (
	"context"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/analyzers/xmlvalid"
	"github.com/rpminspect/rpminspect/config"
)

// XML implements the "xml" inspection: every after-build file in scope
// (per the xml section's include_path/exclude_path) whose name ends in
// .xml, .xsd, .xsl, .svg or .rng is parsed and flagged Bad if not
// well-formed. Files with other names are not parsed.
func XML(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	var paths inspectPaths
	if cfg != nil {
		paths = compilePaths(ctx, "xml", cfg.XML)
	}

	ok := true
	for _, peer := range rc.Peers {
		if peer.After == nil {
			continue
		}
		for _, f := range peer.After.Files {
			if !f.IsExtracted() || f.Mode.IsDir() || !paths.inScope(f.LocalPath) {
				continue
			}
			if !looksLikeXML(f.LocalPath) {
				continue
			}
			res, err := xmlvalid.Validate(f.FullPath)
			if err != nil {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Diagnostic,
					Inspection: "xml",
					Message:    f.LocalPath + ": " + err.Error(),
					File:       f.LocalPath,
				})
				continue
			}
			if !res.WellFormed {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Bad,
					WaiverAuth: rpminspect.Anyone,
					Inspection: "xml",
					Message:    f.LocalPath + " is not well-formed XML: " + res.Err.Error(),
					Verb:       "flagged",
					Noun:       "malformed",
					Arch:       peer.After.Arch,
					File:       f.LocalPath,
				})
				ok = false
			}
		}
	}
	return ok, nil
}

func looksLikeXML(localpath string) bool {
	for _, suffix := range []string{".xml", ".xsd", ".xsl", ".svg", ".rng"} {
		if len(localpath) >= len(suffix) && localpath[len(localpath)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
