package inspections

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/inspect"
)

// ChangedFiles implements the "changedfiles" inspection: for every peered
// regular file whose content differs between builds, it reports a result;
// severity is Verify for files under a configured security path prefix and
// Info otherwise, matching §3's "security_path_prefix" top-level list.
func ChangedFiles(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	securityPrefixes := securityPathPrefixes(rc)

	ok := inspect.ForEachPeerFile(ctx, rc, "changedfiles", true, func(ctx context.Context, f *rpminspect.File) bool {
		if f.PeerFile == nil || !f.Mode.IsRegular() || !f.IsExtracted() || !f.PeerFile.IsExtracted() {
			return true
		}

		changed, err := contentDiffers(f.FullPath, f.PeerFile.FullPath)
		if err != nil {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Diagnostic,
				Inspection: "changedfiles",
				Message:    fmt.Sprintf("comparing %s: %s", f.LocalPath, err),
				File:       f.LocalPath,
			})
			return true
		}
		if !changed {
			return true
		}

		severity := rpminspect.Info
		var waiver rpminspect.WaiverAuthority
		if hasAnyPrefix(f.LocalPath, securityPrefixes) {
			severity = rpminspect.Verify
			waiver = rpminspect.Security
		}
		rc.AddResult(rpminspect.Params{
			Severity:   severity,
			WaiverAuth: waiver,
			Inspection: "changedfiles",
			Message:    f.LocalPath + " content changed",
			Verb:       "changed",
			Noun:       f.LocalPath,
			Arch:       f.Pkg.Arch,
			File:       f.LocalPath,
		})
		return severity < rpminspect.Verify
	})

	return ok, nil
}

func contentDiffers(a, b string) (bool, error) {
	ha, err := hashFile(a)
	if err != nil {
		return false, err
	}
	hb, err := hashFile(b)
	if err != nil {
		return false, err
	}
	return ha != hb, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func securityPathPrefixes(rc *rpminspect.RunCtx) []string {
	if cfg, ok := rc.Options.(*config.Config); ok {
		return cfg.SecurityPathPrefix
	}
	return nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(path) >= len(p) && path[:len(p)] == p {
			return true
		}
	}
	return false
}
