package inspections

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/analyzers/elf"
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/inspect"
)

// fortifiableFuncs is the closed set of libc functions that gain a
// "__"-prefixed, "_chk"-suffixed fortified variant under
// -D_FORTIFY_SOURCE (e.g. "sprintf" gains "__sprintf_chk").
var fortifiableFuncs = map[string]bool{
	"memcpy": true, "memmove": true, "memset": true, "strcpy": true,
	"strncpy": true, "strcat": true, "strncat": true, "sprintf": true,
	"vsprintf": true, "snprintf": true, "vsnprintf": true, "gets": true,
	"fgets": true, "read": true, "recv": true, "recvfrom": true,
	"readlink": true, "getcwd": true, "realpath": true,
}

// isFortified reports whether sym is glibc's fortified wrapper name for a
// libc function, e.g. "__sprintf_chk". Grounded on
// original_source/src/librpminspect/inspect_elf.c:290
// (strprefix(sym, "__") && strsuffix(sym, "_chk")).
func isFortified(sym string) bool {
	return len(sym) > len("__")+len("_chk") && strings.HasPrefix(sym, "__") && strings.HasSuffix(sym, "_chk")
}

// fortifiedBase returns the plain libc function name a fortified symbol
// protects, e.g. "__sprintf_chk" -> "sprintf".
func fortifiedBase(sym string) string {
	return strings.TrimSuffix(strings.TrimPrefix(sym, "__"), "_chk")
}

// lostFortifiedSymbol pairs a fortified symbol with the plain libc name it
// protects, for a file that imported the fortified form before a build and
// now imports only the unfortified form.
type lostFortifiedSymbol struct {
	Lost   string
	Gained string
}

// diffFortifiedSymbols compares a file's dynamic symbol imports across
// builds (§8 scenario 2): a fortified symbol present before and absent
// after is only reported when the after build still links the matching
// unfortified base name, i.e. the binary still calls the function but lost
// its hardening rather than simply dropping the call entirely.
func diffFortifiedSymbols(beforeImports, afterImports []string) []lostFortifiedSymbol {
	afterSet := make(map[string]bool, len(afterImports))
	for _, n := range afterImports {
		afterSet[n] = true
	}
	var lost []lostFortifiedSymbol
	for _, sym := range beforeImports {
		if !isFortified(sym) || afterSet[sym] {
			continue
		}
		if base := fortifiedBase(sym); afterSet[base] {
			lost = append(lost, lostFortifiedSymbol{Lost: sym, Gained: base})
		}
	}
	return lost
}

// ELF implements the "elf" inspection (§8 scenario 2: lost fortified
// symbols): for every peered ELF file, it diffs the imported dynamic
// symbols and reports when a "*_chk" fortified symbol present before is
// missing after while the plain, unfortified counterpart is now linked.
func ELF(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
	cfg, _ := rc.Options.(*config.Config)
	var paths inspectPaths
	if cfg != nil {
		paths = compilePaths(ctx, "elf", cfg.Elf)
	}

	ok := inspect.ForEachPeerFile(ctx, rc, "elf", true, func(ctx context.Context, f *rpminspect.File) bool {
		if f.PeerFile == nil || !f.IsExtracted() || f.Mode.IsDir() {
			return true
		}
		if !paths.inScope(f.LocalPath) {
			return true
		}
		return checkELFPair(rc, f)
	})
	return ok, nil
}

func checkELFPair(rc *rpminspect.RunCtx, f *rpminspect.File) bool {
	after, err := elf.Open(f.FullPath)
	if err != nil || after == nil {
		return true
	}
	defer after.Close()

	before, err := elf.Open(f.PeerFile.FullPath)
	if err != nil || before == nil {
		return true
	}
	defer before.Close()

	isTracked := func(name string) bool {
		if fortifiableFuncs[name] {
			return true
		}
		return isFortified(name) && fortifiableFuncs[fortifiedBase(name)]
	}

	beforeImports, _ := before.Funcs(true, isTracked)
	afterImports, _ := after.Funcs(true, isTracked)

	ok := true
	for _, loss := range diffFortifiedSymbols(beforeImports, afterImports) {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Verify,
			WaiverAuth: rpminspect.Anyone,
			Inspection: "elf",
			Message:    fmt.Sprintf("%s lost fortified symbol %s, now links unfortified %s", f.LocalPath, loss.Lost, loss.Gained),
			Remedy:     "rebuild with -D_FORTIFY_SOURCE=2 and -O2",
			Verb:       "lost",
			Noun:       loss.Lost,
			Arch:       f.Pkg.Arch,
			File:       f.LocalPath,
			Details: map[string]string{
				"lost":   loss.Lost,
				"gained": loss.Gained,
			},
		})
		ok = false
	}

	if textrel, err := after.HasTextrel(); err == nil && textrel {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Verify,
			WaiverAuth: rpminspect.Security,
			Inspection: "elf",
			Message:    f.LocalPath + " contains text relocations (DT_TEXTREL)",
			Verb:       "found",
			Noun:       "textrel",
			Arch:       f.Pkg.Arch,
			File:       f.LocalPath,
		})
		ok = false
	}

	return ok
}

// inspectPaths is the shared regex-scoping helper used by elf and xml.
type inspectPaths struct {
	paths config.CompiledPaths
}

func compilePaths(ctx context.Context, name string, s config.RegexSection) inspectPaths {
	return inspectPaths{paths: config.CompileRegexSection(ctx, name, s, config.CompiledPaths{})}
}

func (p inspectPaths) inScope(localpath string) bool {
	if p.paths.Include == nil && p.paths.Exclude == nil {
		return true
	}
	return p.paths.Match(localpath)
}
