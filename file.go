package rpminspect

import "io/fs"

// File is one entry in a package's payload.
//
// LocalPath is the path as recorded in the RPM header (slash-absolute,
// as the package records it). FullPath is the absolute path under the
// owning [Pkg]'s extraction root once the payload has been extracted; it is
// empty for entries that were listed but not extracted (device nodes,
// FIFOs, sockets).
type File struct {
	LocalPath string
	FullPath  string

	Mode  fs.FileMode // POSIX mode bits, decoded per §6 of the fileinfo grammar
	Size  int64
	Owner string
	Group string

	// Idx is this file's index into the RPM's per-file parallel arrays
	// (basenames/dirnames/filemodes/...).
	Idx int

	Pkg *Pkg

	// PeerFile is this file's counterpart in the other build, resolved by
	// the peer package, or nil if unmatched (added or removed).
	PeerFile *File
}

// IsExtracted reports whether the payload for this entry was written to
// disk.
func (f *File) IsExtracted() bool { return f.FullPath != "" }
