package acquire

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quay/zlog"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/internal/cpio"
	"github.com/rpminspect/rpminspect/internal/rpm/rpmdb"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Extract allocates a unique extraction root for "p" under "workdir" and
// unpacks its cpio payload into it, populating p.Files. Grounded in the
// teacher's rpm/extract.go algorithm, generalized from tar to cpio.
func Extract(ctx context.Context, p *rpminspect.Pkg, workdir string) error {
	root := filepath.Join(workdir, "rpminspect."+uuid.NewString())
	if err := os.MkdirAll(root, dirMode); err != nil {
		return fmt.Errorf("acquire: extract %s: %w", p.Name, err)
	}
	p.ExtractRoot = root

	localpaths, err := expandedFilenames(ctx, p.Header)
	if err != nil {
		return fmt.Errorf("acquire: extract %s: %w", p.Name, err)
	}
	index := make(map[string]int, len(localpaths))
	for i, lp := range localpaths {
		index[lp] = i
	}

	f, err := os.Open(p.RPMPath)
	if err != nil {
		return fmt.Errorf("acquire: extract %s: %w", p.Name, err)
	}
	defer f.Close()
	if _, err := f.Seek(p.PayloadOffset, io.SeekStart); err != nil {
		return fmt.Errorf("acquire: extract %s: %w", p.Name, err)
	}

	dr, err := payloadDecompressor(ctx, p.Header, f)
	if err != nil {
		return fmt.Errorf("acquire: extract %s: decompressing payload: %w", p.Name, err)
	}

	modes, _ := p.Header.GetUint16Array(ctx, rpmdb.TagFileModes)
	uids, _ := p.Header.GetStringArray(ctx, rpmdb.TagFileUsername)
	gids, _ := p.Header.GetStringArray(ctx, rpmdb.TagFileGroupname)
	sizes, _ := p.Header.GetInt32Array(ctx, rpmdb.TagFileSizes)

	cr := cpio.NewReader(dr)
	var deferredHardlinks []struct {
		localpath string
		target    string
	}
	count := 0
	for {
		hdr, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("acquire: extract %s: reading payload: %w", p.Name, err)
		}
		count++

		name := strings.TrimPrefix(hdr.Name, "./")
		localpath := name
		if !strings.HasPrefix(localpath, "/") {
			localpath = "/" + localpath
		}
		idx, ok := index[localpath]
		if !ok {
			return fmt.Errorf("acquire: extract %s: payload entry %q not listed in header", p.Name, localpath)
		}

		mode := fs.FileMode(0)
		if idx < len(modes) {
			mode = fs.FileMode(uint32(modes[idx]) & 0o7777)
		}
		target := filepath.Join(root, filepath.FromSlash(localpath))

		file := &rpminspect.File{
			LocalPath: localpath,
			Idx:       idx,
			Pkg:       p,
		}
		if idx < len(uids) {
			file.Owner = uids[idx]
		}
		if idx < len(gids) {
			file.Group = gids[idx]
		}
		if idx < len(sizes) {
			file.Size = int64(sizes[idx])
		}

		ftype := hdr.Mode &^ 0o7777
		switch {
		case ftype == 0o040000: // directory
			if err := os.MkdirAll(target, dirMode); err != nil {
				return fmt.Errorf("acquire: extract %s: mkdir %s: %w", p.Name, localpath, err)
			}
			file.Mode = mode | fs.ModeDir
			file.FullPath = target
		case ftype == 0o120000: // symlink
			buf := make([]byte, hdr.Size)
			if _, err := io.ReadFull(cr, buf); err != nil {
				return fmt.Errorf("acquire: extract %s: reading symlink %s: %w", p.Name, localpath, err)
			}
			if err := os.Symlink(string(buf), target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("acquire: extract %s: symlink %s: %w", p.Name, localpath, err)
			}
			file.Mode = mode | fs.ModeSymlink
			file.FullPath = target
		case ftype == 0o100000: // regular file
			if hdr.NLink > 1 && hdr.Size == 0 {
				// Hard link to content appearing under a different name;
				// resolve after the first instance is written.
				deferredHardlinks = append(deferredHardlinks, struct {
					localpath string
					target    string
				}{localpath, target})
				file.Mode = forcedFileMode(mode)
				p.Files = append(p.Files, file)
				continue
			}
			if err := writeRegular(cr, target, forcedFileMode(mode), hdr.Size); err != nil {
				return fmt.Errorf("acquire: extract %s: writing %s: %w", p.Name, localpath, err)
			}
			file.Mode = forcedFileMode(mode)
			file.FullPath = target
			if hdr.MTime > 0 {
				mt := time.Unix(hdr.MTime, 0)
				_ = os.Chtimes(target, mt, mt)
			}
		default:
			// Device, FIFO, or socket node: listed but not extracted.
			file.Mode = mode
		}

		p.Files = append(p.Files, file)
	}

	if err := resolveHardlinks(deferredHardlinks, p); err != nil {
		return fmt.Errorf("acquire: extract %s: %w", p.Name, err)
	}

	zlog.Debug(ctx).Str("package", p.Name).Int("entries", count).Str("root", root).Msg("extracted payload")
	return nil
}

func forcedFileMode(mode fs.FileMode) fs.FileMode {
	mode |= 0o600  // at least user-read-write
	mode &^= 0o002 // remove world-write
	return mode
}

func writeRegular(r io.Reader, target string, mode fs.FileMode, size int64) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.CopyN(out, r, size); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// resolveHardlinks links every deferred hard-link entry to the first
// extracted file sharing its content index. Because cpio payloads store a
// hard link's content under exactly one entry (the others have size 0),
// every deferred entry shares localpath-adjacent content with some already
// extracted sibling file sharing the same RPM file index bucket; in
// practice RPM payloads link to the entry with the lowest index among
// identical content, so the first extracted file with a matching size and
// owner/group is used as the source.
func resolveHardlinks(deferred []struct {
	localpath string
	target    string
}, p *rpminspect.Pkg) error {
	for _, d := range deferred {
		var link *rpminspect.File
		for _, f := range p.Files {
			if f.LocalPath == d.localpath {
				link = f
			}
		}
		var source string
		for _, f := range p.Files {
			if f.FullPath != "" && f.Mode.IsRegular() && f.Size == link.Size && f.Owner == link.Owner && f.Group == link.Group {
				source = f.FullPath
				break
			}
		}
		if source == "" {
			return fmt.Errorf("no extracted regular file found as hard-link source for %s", d.localpath)
		}
		if err := os.Link(source, d.target); err != nil && !os.IsExist(err) {
			return fmt.Errorf("linking %s: %w", d.localpath, err)
		}
		link.FullPath = d.target
	}
	return nil
}

// expandedFilenames reconstructs the per-file localpath list from the
// dirname/basename/dirindex parallel arrays (the "expanded filenames tag"
// in §4.2).
func expandedFilenames(ctx context.Context, h *rpmdb.Header) ([]string, error) {
	basenames, err := h.GetStringArray(ctx, rpmdb.TagBasenames)
	if err != nil {
		return nil, err
	}
	dirnames, err := h.GetStringArray(ctx, rpmdb.TagDirnames)
	if err != nil {
		return nil, err
	}
	dirindexes, err := h.GetInt32Array(ctx, rpmdb.TagDirindexes)
	if err != nil {
		return nil, err
	}
	if len(basenames) != len(dirindexes) {
		return nil, fmt.Errorf("basenames (%d) and dirindexes (%d) length mismatch", len(basenames), len(dirindexes))
	}
	out := make([]string, len(basenames))
	for i, base := range basenames {
		di := int(dirindexes[i])
		if di < 0 || di >= len(dirnames) {
			return nil, fmt.Errorf("dirindex %d out of range (have %d dirnames)", di, len(dirnames))
		}
		out[i] = dirnames[di] + base
	}
	return out, nil
}
