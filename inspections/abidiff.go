package inspections

import (
	"context"
	"fmt"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/analyzers/abitool"
	"github.com/rpminspect/rpminspect/analyzers/elf"
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/inspect"
)

// AbiDiff implements the "abidiff" inspection: for every peered ELF shared
// library or executable, it runs the external abidiff tool and flags an
// ABI-incompatible change at Bad. A compatible ABI change is flagged at
// Verify only while security_level_threshold is unset or <= 0; with a
// positive threshold, compatible ABI changes are not reported, and no
// security level is compared against the threshold.
func AbiDiff(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	return runAbiTool(ctx, rc, "abidiff", func(cfg *config.Config) (string, config.AbidiffSection) {
		return rc.ToolPaths["abidiff"], cfg.Abidiff
	})
}

// KmiDiff implements the "kmidiff" inspection: the kernel-module-interface
// analogue of abidiff, run against peered ".ko" files instead of ELF
// executables/libraries.
func KmiDiff(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	tool := rc.ToolPaths["kmidiff"]
	if cfg == nil || tool == "" {
		return true, nil
	}

	var compares []abitool.Args
	ok := inspect.ForEachPeerFile(ctx, rc, "kmidiff", true, func(ctx context.Context, f *rpminspect.File) bool {
		if f.PeerFile == nil || !isKernelModule(f.LocalPath) || !f.IsExtracted() || !f.PeerFile.IsExtracted() {
			return true
		}
		compares = append(compares, abitool.Args{
			Tool:            tool,
			Arch:            f.LocalPath,
			Before:          f.PeerFile.FullPath,
			After:           f.FullPath,
			SuppressionFile: cfg.Kmidiff.SuppressionFile,
			DebuginfoPath:   cfg.Kmidiff.DebuginfoPath,
			KabiDir:         cfg.Kmidiff.KabiDir,
			KabiFilename:    cfg.Kmidiff.KabiFilename,
			ExtraArgs:       splitArgs(cfg.Kmidiff.ExtraArgs),
		})
		return true
	})
	if !ok || len(compares) == 0 {
		return ok, nil
	}

	return reportAbiResults(ctx, rc, "kmidiff", compares, 0)
}

func runAbiTool(ctx context.Context, rc *rpminspect.RunCtx, name string, pick func(*config.Config) (string, config.AbidiffSection)) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	if cfg == nil {
		return true, nil
	}
	tool, sec := pick(cfg)
	if tool == "" {
		return true, nil
	}

	var compares []abitool.Args
	ok := inspect.ForEachPeerFile(ctx, rc, name, true, func(ctx context.Context, f *rpminspect.File) bool {
		if f.PeerFile == nil || !f.IsExtracted() || !f.PeerFile.IsExtracted() || !f.Mode.IsRegular() {
			return true
		}
		before, err := elf.Open(f.PeerFile.FullPath)
		if err != nil || before == nil {
			return true
		}
		before.Close()
		after, err := elf.Open(f.FullPath)
		if err != nil || after == nil {
			return true
		}
		after.Close()

		compares = append(compares, abitool.Args{
			Tool:            tool,
			Arch:            f.LocalPath,
			Before:          f.PeerFile.FullPath,
			After:           f.FullPath,
			SuppressionFile: sec.SuppressionFile,
			DebuginfoPath:   sec.DebuginfoPath,
			IncludePath:     sec.IncludePath,
			ExtraArgs:       splitArgs(sec.ExtraArgs),
		})
		return true
	})
	if !ok || len(compares) == 0 {
		return ok, nil
	}

	return reportAbiResults(ctx, rc, name, compares, sec.SecurityLevelThreshold)
}

func reportAbiResults(ctx context.Context, rc *rpminspect.RunCtx, name string, compares []abitool.Args, threshold int) (bool, error) {
	statuses, outputs, err := abitool.Run(ctx, 0, compares)
	if err != nil {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Diagnostic,
			Inspection: name,
			Message:    fmt.Sprintf("running %s: %s", name, err),
		})
		return true, nil
	}

	ok := true
	for label, st := range statuses {
		switch {
		case st.Error || st.UsageError:
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Diagnostic,
				Inspection: name,
				Message:    fmt.Sprintf("%s: %s reported a tool error: %s", label, name, outputs[label]),
				File:       label,
			})
		case st.ABIIncompatibleChange:
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Bad,
				WaiverAuth: rpminspect.Security,
				Inspection: name,
				Message:    label + " has an ABI-incompatible change",
				Verb:       "changed",
				Noun:       "abi",
				File:       label,
				Details:    outputs[label],
			})
			ok = false
		case st.ABIChange && threshold <= 0:
			rc.AddResult(rpminspect.Params{
				Severity:   rpminspect.Verify,
				WaiverAuth: rpminspect.Anyone,
				Inspection: name,
				Message:    label + " has an ABI change",
				Verb:       "changed",
				Noun:       "abi",
				File:       label,
				Details:    outputs[label],
			})
			ok = false
		}
	}
	return ok, nil
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
