// Package inspections is the concrete set of inspection drivers and the
// registry-wiring function that assembles them, in the order named by the
// closed set of inspection names.
package inspections

import "github.com/rpminspect/rpminspect/inspect"

// NewRegistry builds the full inspection registry: every worked inspection
// wired to its real driver, and every remaining name from the closed set
// wired to a Skip stub, in the fixed registration order that also governs
// dispatch order (§5).
func NewRegistry() *inspect.Registry {
	r := inspect.NewRegistry()

	r.Register("license", true, notImplemented("license"))
	r.Register("emptyrpm", true, EmptyRPM)
	r.Register("metadata", true, Metadata)
	r.Register("manpage", true, notImplemented("manpage"))
	r.Register("xml", true, XML)
	r.Register("elf", false, ELF)
	r.Register("desktop", true, notImplemented("desktop"))
	r.Register("disttag", true, notImplemented("disttag"))
	r.Register("specname", true, notImplemented("specname"))
	r.Register("modularity", true, notImplemented("modularity"))
	r.Register("javabytecode", false, notImplemented("javabytecode"))
	r.Register("changedfiles", false, ChangedFiles)
	r.Register("movedfiles", false, notImplemented("movedfiles"))
	r.Register("removedfiles", false, notImplemented("removedfiles"))
	r.Register("addedfiles", false, notImplemented("addedfiles"))
	r.Register("upstream", false, notImplemented("upstream"))
	r.Register("ownership", true, notImplemented("ownership"))
	r.Register("shellsyntax", true, notImplemented("shellsyntax"))
	r.Register("annocheck", false, notImplemented("annocheck"))
	r.Register("dsodeps", false, notImplemented("dsodeps"))
	r.Register("filesize", false, notImplemented("filesize"))
	r.Register("permissions", true, notImplemented("permissions"))
	r.Register("capabilities", true, notImplemented("capabilities"))
	r.Register("kmod", false, Kmod)
	r.Register("arch", true, notImplemented("arch"))
	r.Register("subpackages", true, notImplemented("subpackages"))
	r.Register("changelog", false, notImplemented("changelog"))
	r.Register("pathmigration", false, notImplemented("pathmigration"))
	r.Register("lto", false, notImplemented("lto"))
	r.Register("symlinks", true, notImplemented("symlinks"))
	r.Register("files", true, notImplemented("files"))
	r.Register("types", false, notImplemented("types"))
	r.Register("abidiff", false, AbiDiff)
	r.Register("kmidiff", false, KmiDiff)
	r.Register("config", true, notImplemented("config"))
	r.Register("doc", true, notImplemented("doc"))
	r.Register("patches", false, Patches)
	r.Register("virus", true, notImplemented("virus"))
	r.Register("politics", true, notImplemented("politics"))
	r.Register("badfuncs", true, notImplemented("badfuncs"))
	r.Register("runpath", true, notImplemented("runpath"))
	r.Register("unicode", true, notImplemented("unicode"))
	r.Register("rpmdeps", false, RpmDeps)

	return r
}
