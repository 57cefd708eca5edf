// Package kmod is the shared kernel-module examiner (§4.6): it parses
// modinfo-style key/value lists from kernel module files, diffs
// parameters and dependency lists, and compares module aliases with a
// glob-style wildcard fallback.
//
// Grounded in the config package's loadLines-style tolerant line parser
// and the deprules package's two-pass peering idiom, generalized here to
// alias sets; fnmatch-style glob matching calls doublestar directly, the
// same glob library the ignore package is built on.
package kmod

import (
	"bufio"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Info is a parsed modinfo-style key/value listing for one kernel module.
type Info struct {
	Name    string
	Fields  map[string][]string // key -> all values, in file order (modinfo allows repeats)
	Aliases []string            // every "alias" value, in file order
}

// Parse reads a stream of NUL-separated "key=value" entries (the layout of
// a kernel module's ELF .modinfo section) into an [Info]. Entries are split
// on NUL only, and entries without "=" are skipped.
func Parse(name string, r io.Reader) (*Info, error) {
	info := &Info{Name: name, Fields: make(map[string][]string)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(splitNUL)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\x00")
		if line == "" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := kv[0], kv[1]
		info.Fields[key] = append(info.Fields[key], val)
		if key == "alias" {
			info.Aliases = append(info.Aliases, val)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return info, nil
}

// splitNUL splits on NUL bytes, the separator modinfo's raw .modinfo
// section uses between key=value entries.
func splitNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := indexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// valueDesc strips a modinfo "parm" value's trailing ":description" part
// (e.g. "debug:Enable debug output (int)" -> "debug"), per §4.6's "value
// descriptions stripped after ':'".
func valueDesc(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

// ParamNames returns the set of parameter names declared via "parm"
// fields, with any trailing description stripped.
func (i *Info) ParamNames() map[string]bool {
	out := make(map[string]bool, len(i.Fields["parm"]))
	for _, v := range i.Fields["parm"] {
		out[valueDesc(v)] = true
	}
	return out
}

// DependsSet returns the comma-split values of a "depends" or "softdep"
// style field as a set.
func (i *Info) DependsSet(field string) map[string]bool {
	out := make(map[string]bool)
	for _, v := range i.Fields[field] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out[part] = true
			}
		}
	}
	return out
}

// DiffSets reports names present in "before" but missing from "after"
// (removed) and vice versa (added), used for both ParamNames and
// DependsSet diffs.
func DiffSets(before, after map[string]bool) (removed, added []string) {
	for k := range before {
		if !after[k] {
			removed = append(removed, k)
		}
	}
	for k := range after {
		if !before[k] {
			added = append(added, k)
		}
	}
	return removed, added
}

// AliasMap gathers "pci:"-prefixed aliases across a set of modules into
// {alias -> set<module>}, per §4.6: aliases are limited to the "pci:"
// prefix since that's the family with the wildcard relaxation behavior the
// framework cares about.
func AliasMap(infos []*Info) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, info := range infos {
		for _, a := range info.Aliases {
			if !strings.HasPrefix(a, "pci:") {
				continue
			}
			if out[a] == nil {
				out[a] = make(map[string]bool)
			}
			out[a][info.Name] = true
		}
	}
	return out
}

// CompareModuleAliases compares a before/after pair of alias maps. It
// first exact-matches alias strings; for any before-alias with no exact
// after-alias, it falls back to a glob-style match in both directions
// against every after-alias (before's alias as the pattern, then the
// after-alias as the pattern, which accommodates wildcard relaxations like
// changing "sd00000001" to "sd*" between releases). cb is
// called for any alias whose provider module set shrank (a module that
// provided it before is missing from every after-alias that matches).
func CompareModuleAliases(before, after map[string]map[string]bool, cb func(alias string, beforeModules, afterModules map[string]bool)) {
	for alias, beforeModules := range before {
		afterModules, ok := after[alias]
		if !ok {
			// No exact match: fall back to glob, trying every after-alias
			// as a candidate relaxed form of "alias".
			merged := make(map[string]bool)
			matched := false
			for otherAlias, mods := range after {
				if ok, _ := doublestar.Match(globify(alias), otherAlias); ok {
					matched = true
					for m := range mods {
						merged[m] = true
					}
					continue
				}
				if ok, _ := doublestar.Match(globify(otherAlias), alias); ok {
					matched = true
					for m := range mods {
						merged[m] = true
					}
				}
			}
			if !matched {
				cb(alias, beforeModules, nil)
				continue
			}
			afterModules = merged
		}
		if shrank(beforeModules, afterModules) {
			cb(alias, beforeModules, afterModules)
		}
	}
}

// globify rewrites a PCI alias's existing '*' wildcard runs into
// doublestar-compatible glob syntax; PCI aliases already use '*' as their
// own wildcard character, which doublestar.Match also treats as
// "any run of characters within one path segment" -- since alias strings
// have no '/'  this is already compatible, so globify is the identity. It
// exists as a named hook in case a future alias family needs escaping.
func globify(alias string) string { return alias }

func shrank(before, after map[string]bool) bool {
	for m := range before {
		if !after[m] {
			return true
		}
	}
	return false
}
