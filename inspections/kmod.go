package inspections

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/analyzers/kmod"
	"github.com/rpminspect/rpminspect/inspect"
)

// Kmod implements the "kmod" inspection: for every peered ".ko" file, it
// diffs module parameters and dependency lists, and across a whole peer's
// modules it compares pci: aliases with the glob-relaxation fallback,
// reporting when a module that used to provide an alias no longer does.
func Kmod(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	ok := true

	for _, peer := range rc.Peers {
		if peer.After == nil {
			continue
		}

		var beforeInfos, afterInfos []*kmod.Info

		for _, f := range peer.After.Files {
			if !isKernelModule(f.LocalPath) || !f.IsExtracted() {
				continue
			}
			if inspect.IgnoredFor(rc, "kmod", f.LocalPath) {
				continue
			}
			after, err := parseModule(f.FullPath, f.LocalPath)
			if err != nil {
				continue
			}
			afterInfos = append(afterInfos, after)

			if f.PeerFile == nil || !f.PeerFile.IsExtracted() {
				rc.AddResult(rpminspect.Params{
					Severity:   rpminspect.Info,
					Inspection: "kmod",
					Message:    "new kernel module " + f.LocalPath,
					Verb:       "added",
					Noun:       f.LocalPath,
					Arch:       peer.After.Arch,
					File:       f.LocalPath,
				})
				continue
			}

			before, err := parseModule(f.PeerFile.FullPath, f.PeerFile.LocalPath)
			if err != nil {
				continue
			}
			beforeInfos = append(beforeInfos, before)

			if !diffModuleParams(rc, f.LocalPath, peer.After.Arch, before, after) {
				ok = false
			}
			if !diffModuleDepends(rc, f.LocalPath, peer.After.Arch, before, after) {
				ok = false
			}
		}

		if len(beforeInfos) == 0 {
			continue
		}
		beforeAliases := kmod.AliasMap(beforeInfos)
		afterAliases := kmod.AliasMap(afterInfos)
		kmod.CompareModuleAliases(beforeAliases, afterAliases, func(alias string, beforeModules, afterModules map[string]bool) {
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Verify,
				WaiverAuth: rpminspect.Anyone,
				Inspection: "kmod",
				Message:    fmt.Sprintf("module alias %s lost provider(s) %s", alias, setKeys(beforeModules)),
				Verb:       "lost",
				Noun:       alias,
				Arch:       peer.After.Arch,
			})
			ok = false
		})
	}

	return ok, nil
}

func isKernelModule(localpath string) bool {
	return strings.HasSuffix(localpath, ".ko") || strings.Contains(localpath, ".ko.")
}

func parseModule(fullpath, localpath string) (*kmod.Info, error) {
	f, err := os.Open(fullpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return kmod.Parse(localpath, f)
}

func diffModuleParams(rc *rpminspect.RunCtx, localpath, arch string, before, after *kmod.Info) bool {
	removed, added := kmod.DiffSets(before.ParamNames(), after.ParamNames())
	ok := true
	for _, p := range removed {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Verify,
			WaiverAuth: rpminspect.Anyone,
			Inspection: "kmod",
			Message:    localpath + " lost module parameter " + p,
			Verb:       "lost",
			Noun:       p,
			Arch:       arch,
			File:       localpath,
		})
		ok = false
	}
	for _, p := range added {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Info,
			Inspection: "kmod",
			Message:    localpath + " gained module parameter " + p,
			Verb:       "added",
			Noun:       p,
			Arch:       arch,
			File:       localpath,
		})
	}
	return ok
}

func diffModuleDepends(rc *rpminspect.RunCtx, localpath, arch string, before, after *kmod.Info) bool {
	removed, added := kmod.DiffSets(before.DependsSet("depends"), after.DependsSet("depends"))
	ok := true
	for _, d := range removed {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Verify,
			WaiverAuth: rpminspect.Anyone,
			Inspection: "kmod",
			Message:    localpath + " lost module dependency " + d,
			Verb:       "lost",
			Noun:       d,
			Arch:       arch,
			File:       localpath,
		})
		ok = false
	}
	for _, d := range added {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Info,
			Inspection: "kmod",
			Message:    localpath + " gained module dependency " + d,
			Verb:       "added",
			Noun:       d,
			Arch:       arch,
			File:       localpath,
		})
	}
	return ok
}

func setKeys(m map[string]bool) string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return strings.Join(out, ", ")
}
