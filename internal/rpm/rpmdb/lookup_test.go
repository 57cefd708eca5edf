package rpmdb

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// dataBuilder concatenates NUL-terminated strings and big-endian int32
// words at fixed offsets into one data-section buffer, returning the byte
// offset each value starts at so tests can build matching [EntryInfo]s
// without needing a full on-disk header blob (tags preamble + index +
// region tag) the way [Header.Parse] requires.
type dataBuilder struct {
	buf bytes.Buffer
}

func (b *dataBuilder) cstring(s string) (offset int32, count uint32) {
	offset = int32(b.buf.Len())
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return offset, 1
}

func (b *dataBuilder) cstrings(ss []string) (offset int32, count uint32) {
	offset = int32(b.buf.Len())
	for _, s := range ss {
		b.buf.WriteString(s)
		b.buf.WriteByte(0)
	}
	return offset, uint32(len(ss))
}

func (b *dataBuilder) int32s(vs []int32) (offset int32, count uint32) {
	offset = int32(b.buf.Len())
	for _, v := range vs {
		var word [4]byte
		binary.BigEndian.PutUint32(word[:], uint32(v))
		b.buf.Write(word[:])
	}
	return offset, uint32(len(vs))
}

func newTestHeader(t *testing.T, entries map[Tag]EntryInfo, data *dataBuilder) *Header {
	t.Helper()
	infos := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e)
	}
	buf := data.buf.Bytes()
	return &Header{
		Infos: infos,
		data:  io.NewSectionReader(bytes.NewReader(buf), 0, int64(len(buf))),
	}
}

func entry(tag Tag, typ Kind, offset int32, count uint32) EntryInfo {
	e := EntryInfo{Tag: tag, Type: typ}
	e.offset = offset
	e.count = count
	return e
}

func TestHeaderGetString(t *testing.T) {
	ctx := t.Context()
	var data dataBuilder
	off, cnt := data.cstring("foo")
	h := newTestHeader(t, map[Tag]EntryInfo{
		TagName: entry(TagName, TypeString, off, cnt),
	}, &data)

	got, err := h.GetString(ctx, TagName)
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != "foo" {
		t.Errorf("GetString(TagName) = %q, want %q", got, "foo")
	}
	if got, err := h.GetString(ctx, TagVersion); err != nil || got != "" {
		t.Errorf("GetString(absent tag) = %q, %v, want \"\", nil", got, err)
	}
}

func TestHeaderGetStringArray(t *testing.T) {
	ctx := t.Context()
	var data dataBuilder
	want := []string{"a.patch", "b.patch", "c.patch"}
	off, cnt := data.cstrings(want)
	h := newTestHeader(t, map[Tag]EntryInfo{
		TagPatch: entry(TagPatch, TypeStringArray, off, cnt),
	}, &data)

	got, err := h.GetStringArray(ctx, TagPatch)
	if err != nil {
		t.Fatalf("GetStringArray: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("GetStringArray = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetStringArray[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if got, err := h.GetStringArray(ctx, TagSource); err != nil || got != nil {
		t.Errorf("GetStringArray(absent tag) = %v, %v, want nil, nil", got, err)
	}
}

func TestHeaderGetInt32Array(t *testing.T) {
	ctx := t.Context()
	var data dataBuilder
	want := []int32{1<<3 | 1<<2, 0, 1 << 1}
	off, cnt := data.int32s(want)
	h := newTestHeader(t, map[Tag]EntryInfo{
		TagRequireFlags: entry(TagRequireFlags, TypeInt32, off, cnt),
	}, &data)

	got, err := h.GetInt32Array(ctx, TagRequireFlags)
	if err != nil {
		t.Fatalf("GetInt32Array: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("GetInt32Array = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetInt32Array[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestHeaderGetInt64(t *testing.T) {
	ctx := t.Context()
	var data dataBuilder
	off, cnt := data.int32s([]int32{42})
	h := newTestHeader(t, map[Tag]EntryInfo{
		TagEpoch: entry(TagEpoch, TypeInt32, off, cnt),
	}, &data)

	got, err := h.GetInt64(ctx, TagEpoch)
	if err != nil {
		t.Fatalf("GetInt64: %v", err)
	}
	if got != 42 {
		t.Errorf("GetInt64(TagEpoch) = %d, want 42", got)
	}
	if got, err := h.GetInt64(ctx, TagSize); err != nil || got != 0 {
		t.Errorf("GetInt64(absent tag) = %d, %v, want 0, nil", got, err)
	}
}

func TestHeaderLookupMissing(t *testing.T) {
	h := &Header{}
	if e := h.Lookup(TagName); e != nil {
		t.Errorf("Lookup on empty header = %v, want nil", e)
	}
}
