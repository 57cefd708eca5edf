package acquire

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"golang.org/x/crypto/openpgp/packet" //nolint:staticcheck // RPM signature packets are OpenPGP, not a newer format.

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/internal/rpm/rpmdb"
)

const (
	leadSize  = 96
	leadMagic = 0xedabeedb

	headerMagicLen = 8
)

var headerMagic = [4]byte{0x8e, 0xad, 0xe8, 0x01}

// Open parses "path" as a standalone RPM file: the lead, signature header,
// and main header. It does not extract the payload; call [Extract] for
// that.
func Open(ctx context.Context, path string) (*rpminspect.Pkg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("acquire: open %q: %w", path, err)
	}
	defer f.Close()

	if err := checkLead(f); err != nil {
		return nil, fmt.Errorf("acquire: %q: %w", path, err)
	}

	sigStart, sigTotal, err := sectionExtent(f, leadSize)
	if err != nil {
		return nil, fmt.Errorf("acquire: %q: signature header: %w", path, err)
	}
	sigHdr := new(rpmdb.Header)
	if err := sigHdr.Parse(ctx, io.NewSectionReader(f, sigStart, sigTotal-headerMagicLen)); err != nil {
		return nil, fmt.Errorf("acquire: %q: signature header: %w", path, err)
	}

	mainOffset := leadSize + sigTotal
	if rem := mainOffset % 8; rem != 0 {
		mainOffset += 8 - rem
	}
	mainStart, mainTotal, err := sectionExtent(f, mainOffset)
	if err != nil {
		return nil, fmt.Errorf("acquire: %q: header: %w", path, err)
	}
	mainHdr := new(rpmdb.Header)
	if err := mainHdr.Parse(ctx, io.NewSectionReader(f, mainStart, mainTotal-headerMagicLen)); err != nil {
		return nil, fmt.Errorf("acquire: %q: header: %w", path, err)
	}

	p, err := populatePkg(ctx, mainHdr, path)
	if err != nil {
		return nil, fmt.Errorf("acquire: %q: %w", path, err)
	}
	p.PayloadOffset = mainOffset + mainTotal
	return p, nil
}

func checkLead(f *os.File) error {
	var b [leadSize]byte
	if _, err := io.ReadFull(f, b[:]); err != nil {
		return fmt.Errorf("reading lead: %w", err)
	}
	if binary.BigEndian.Uint32(b[0:4]) != leadMagic {
		return fmt.Errorf("not an RPM file (bad lead magic)")
	}
	return nil
}

// sectionExtent reads the 8-byte magic+preamble and the tag/data-count
// preamble for the header section starting at "magicOffset", returning the
// offset Header.Parse should read from (just past the magic) and the
// section's total length including the 8-byte magic.
func sectionExtent(r io.ReaderAt, magicOffset int64) (headerStart, total int64, err error) {
	var magic [headerMagicLen]byte
	if _, err := r.ReadAt(magic[:], magicOffset); err != nil {
		return 0, 0, fmt.Errorf("reading header magic: %w", err)
	}
	if !bytes.Equal(magic[0:4], headerMagic[:]) {
		return 0, 0, fmt.Errorf("bad header magic at offset %d", magicOffset)
	}
	headerStart = magicOffset + headerMagicLen

	var preamble [8]byte
	if _, err := r.ReadAt(preamble[:], headerStart); err != nil {
		return 0, 0, fmt.Errorf("reading header preamble: %w", err)
	}
	tagsCt := binary.BigEndian.Uint32(preamble[0:4])
	dataSz := binary.BigEndian.Uint32(preamble[4:8])
	bodyLen := int64(8) + int64(tagsCt)*16 + int64(dataSz)
	return headerStart, headerMagicLen + bodyLen, nil
}

// populatePkg fills a [rpminspect.Pkg] from a parsed main header.
func populatePkg(ctx context.Context, h *rpmdb.Header, rpmPath string) (*rpminspect.Pkg, error) {
	get := func(t rpmdb.Tag) string {
		s, _ := h.GetString(ctx, t)
		return s
	}
	getArr := func(t rpmdb.Tag) []string {
		a, _ := h.GetStringArray(ctx, t)
		return a
	}

	epochStr := get(rpmdb.TagEpoch)
	epoch := 0
	if epochStr != "" {
		if n, err := strconv.Atoi(epochStr); err == nil {
			epoch = n
		}
	}

	sourceRPM := get(rpmdb.TagSourceRPM)

	p := &rpminspect.Pkg{
		Header:      h,
		Name:        get(rpmdb.TagName),
		Epoch:       epoch,
		Version:     get(rpmdb.TagVersion),
		Release:     get(rpmdb.TagRelease),
		Arch:        get(rpmdb.TagArch),
		Vendor:      get(rpmdb.TagVendor),
		Buildhost:   get(rpmdb.TagBuildHost),
		Summary:     get(rpmdb.TagSummary),
		Description: get(rpmdb.TagDescription),
		License:     get(rpmdb.TagLicense),
		SourceRPM:   sourceRPM,
		Source:      getArr(rpmdb.TagSource),
		Patch:       getArr(rpmdb.TagPatch),
		IsSource:    sourceRPM == "",
		RPMPath:     rpmPath,
	}

	if sig, _ := h.GetBinary(ctx, rpmdb.TagSigPGP); len(sig) > 0 {
		if pkt, err := packet.Read(bytes.NewReader(sig)); err == nil {
			if sig, ok := pkt.(*packet.Signature); ok && sig.IssuerKeyId != nil {
				p.SignerKeyID = fmt.Sprintf("%016X", *sig.IssuerKeyId)
			}
		}
	}

	return p, nil
}

// PeekArch reads the declared architecture of "path". It parses the lead
// and both headers through [Open]; the payload is not read.
func PeekArch(ctx context.Context, path string) (string, error) {
	p, err := Open(ctx, path)
	if err != nil {
		return "", err
	}
	return p.Arch, nil
}

// payloadDecompressor returns a reader that decompresses the RPM payload
// stream per its declared payload_compressor tag ("gzip", "xz", "zstd",
// "bzip2", "lzma", or a zero value meaning "gzip").
func payloadDecompressor(ctx context.Context, h *rpmdb.Header, r io.Reader) (io.Reader, error) {
	compressor, _ := h.GetString(ctx, rpmdb.TagPayloadCompressor)
	switch compressor {
	case "", "gzip":
		return gzip.NewReader(r)
	case "xz", "lzma":
		return xz.NewReader(r)
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case "bzip2":
		return bzip2.NewReader(r), nil
	default:
		return nil, fmt.Errorf("acquire: unsupported payload compressor %q", compressor)
	}
}
