// Package cpio reads the "newc"/"crc" SVR4 cpio archive format used for RPM
// payloads. RPM never uses the older binary or odc cpio variants, so only
// newc/crc is implemented.
package cpio

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	magicNewc = "070701"
	magicCRC  = "070702"
	trailer   = "TRAILER!!!"
	headerLen = 110
)

// Header describes one cpio entry.
type Header struct {
	Name     string
	Mode     uint32
	UID      uint32
	GID      uint32
	NLink    uint32
	MTime    int64
	Size     int64
	DevMajor uint32
	DevMinor uint32
	RDevMajor uint32
	RDevMinor uint32
}

// Reader reads a newc/crc cpio archive, entry by entry, in the style of
// [archive/tar.Reader].
type Reader struct {
	r    *bufio.Reader
	cur  *Header
	left int64 // bytes left to read in the current entry's body
	pad  int64 // padding bytes left to skip after the current entry's body
}

// NewReader returns a [Reader] reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next advances to the next entry, returning [io.EOF] once the archive
// trailer entry is consumed.
func (cr *Reader) Next() (*Header, error) {
	if cr.left > 0 || cr.pad > 0 {
		if _, err := io.CopyN(io.Discard, cr.r, cr.left+cr.pad); err != nil {
			return nil, fmt.Errorf("cpio: skipping entry body: %w", err)
		}
		cr.left, cr.pad = 0, 0
	}

	var hdr [headerLen]byte
	if _, err := io.ReadFull(cr.r, hdr[:]); err != nil {
		return nil, fmt.Errorf("cpio: reading header: %w", err)
	}
	magic := string(hdr[0:6])
	if magic != magicNewc && magic != magicCRC {
		return nil, fmt.Errorf("cpio: unrecognized magic %q", magic)
	}

	field := func(off int) (uint32, error) {
		v, err := hex.DecodeString(string(hdr[off : off+8]))
		if err != nil {
			return 0, fmt.Errorf("cpio: malformed header field: %w", err)
		}
		var out uint32
		for _, b := range v {
			out = out<<8 | uint32(b)
		}
		return out, nil
	}

	var h Header
	var err error
	fields := []struct {
		off int
		dst *uint32
	}{
		{14, &h.Mode}, {22, &h.UID}, {30, &h.GID}, {38, &h.NLink},
	}
	var mtime, filesize, namesize uint32
	if mtime, err = field(46); err != nil {
		return nil, err
	}
	h.MTime = int64(mtime)
	if filesize, err = field(54); err != nil {
		return nil, err
	}
	if h.DevMajor, err = field(62); err != nil {
		return nil, err
	}
	if h.DevMinor, err = field(70); err != nil {
		return nil, err
	}
	if h.RDevMajor, err = field(78); err != nil {
		return nil, err
	}
	if h.RDevMinor, err = field(86); err != nil {
		return nil, err
	}
	if namesize, err = field(94); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if *f.dst, err = field(f.off); err != nil {
			return nil, err
		}
	}
	h.Size = int64(filesize)

	// Pathname, including the trailing NUL, padded to a 4-byte boundary
	// measured from the start of the header.
	nameBuf := make([]byte, namesize)
	if _, err := io.ReadFull(cr.r, nameBuf); err != nil {
		return nil, fmt.Errorf("cpio: reading name: %w", err)
	}
	if n := len(nameBuf); n > 0 && nameBuf[n-1] == 0 {
		nameBuf = nameBuf[:n-1]
	}
	h.Name = string(nameBuf)

	total := headerLen + int(namesize)
	if rem := total % 4; rem != 0 {
		if _, err := io.CopyN(io.Discard, cr.r, int64(4-rem)); err != nil {
			return nil, fmt.Errorf("cpio: skipping name padding: %w", err)
		}
	}

	if h.Name == trailer {
		return nil, io.EOF
	}

	cr.cur = &h
	cr.left = h.Size
	if rem := h.Size % 4; rem != 0 {
		cr.pad = 4 - rem
	}
	return &h, nil
}

// Read reads from the current entry's body, implementing [io.Reader].
func (cr *Reader) Read(p []byte) (int, error) {
	if cr.left == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > cr.left {
		p = p[:cr.left]
	}
	n, err := cr.r.Read(p)
	cr.left -= int64(n)
	return n, err
}
