package rpmdb

import "context"

// Lookup returns the EntryInfo for "tag", or nil if the header has no such
// entry.
func (h *Header) Lookup(tag Tag) *EntryInfo {
	for i := range h.Infos {
		if h.Infos[i].Tag == tag {
			return &h.Infos[i]
		}
	}
	return nil
}

// GetString reads a single TypeString (or the first element of a
// TypeI18nString/TypeStringArray) entry, returning "" if the tag is absent.
func (h *Header) GetString(ctx context.Context, tag Tag) (string, error) {
	e := h.Lookup(tag)
	if e == nil {
		return "", nil
	}
	v, err := h.ReadData(ctx, e)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []string:
		if len(s) == 0 {
			return "", nil
		}
		return s[0], nil
	default:
		return "", nil
	}
}

// GetStringArray reads a TypeStringArray/TypeI18nString entry, returning nil
// if the tag is absent.
func (h *Header) GetStringArray(ctx context.Context, tag Tag) ([]string, error) {
	e := h.Lookup(tag)
	if e == nil {
		return nil, nil
	}
	v, err := h.ReadData(ctx, e)
	if err != nil {
		return nil, err
	}
	s, _ := v.([]string)
	return s, nil
}

// GetInt32Array reads a TypeInt32 entry as a plain []int32, returning nil if
// the tag is absent.
func (h *Header) GetInt32Array(ctx context.Context, tag Tag) ([]int32, error) {
	e := h.Lookup(tag)
	if e == nil {
		return nil, nil
	}
	v, err := h.ReadData(ctx, e)
	if err != nil {
		return nil, err
	}
	a, _ := v.([]int32)
	return a, nil
}

// GetInt64 reads the first element of a TypeInt32 or TypeInt64 entry,
// returning 0 if the tag is absent. RPM stores most scalar integer tags
// (epoch, size, times) as TypeInt32.
func (h *Header) GetInt64(ctx context.Context, tag Tag) (int64, error) {
	e := h.Lookup(tag)
	if e == nil {
		return 0, nil
	}
	v, err := h.ReadData(ctx, e)
	if err != nil {
		return 0, err
	}
	switch a := v.(type) {
	case []int32:
		if len(a) == 0 {
			return 0, nil
		}
		return int64(a[0]), nil
	case []uint64:
		if len(a) == 0 {
			return 0, nil
		}
		return int64(a[0]), nil
	default:
		return 0, nil
	}
}

// GetUint16Array reads a TypeInt16 entry, used for FileModes/FileRDevs.
func (h *Header) GetUint16Array(ctx context.Context, tag Tag) ([]int16, error) {
	e := h.Lookup(tag)
	if e == nil {
		return nil, nil
	}
	v, err := h.ReadData(ctx, e)
	if err != nil {
		return nil, err
	}
	a, _ := v.([]int16)
	return a, nil
}

// GetBinary reads a TypeBin entry, returning nil if the tag is absent.
func (h *Header) GetBinary(ctx context.Context, tag Tag) ([]byte, error) {
	e := h.Lookup(tag)
	if e == nil {
		return nil, nil
	}
	v, err := h.ReadData(ctx, e)
	if err != nil {
		return nil, err
	}
	b, _ := v.([]byte)
	return b, nil
}
