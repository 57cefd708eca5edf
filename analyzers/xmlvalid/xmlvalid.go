// Package xmlvalid is the shared XML validator (§4.6): it parses a file
// that starts with an XML declaration (UTF-8 with or without a byte-order
// mark, or UTF-16 LE/BE with one), reports well-formedness, and returns a
// human-readable error blob with file and line context on failure.
//
// Grounded in the teacher's own use of [encoding/xml] throughout its OVAL
// updaters (suse/parser.go, rhel/parser.go, aws/internal/alas) -- the only
// XML handling anywhere in the retrieval pack, and all of it stdlib, so
// this analyzer follows suit (DTD validation is not
// available from any library the pack imports, stdlib or third-party, so
// a DTD-validated parse attempt degrades to a well-formedness-only result,
// matching the spec's "falls back to non-DTD parse on DTD_NO_DTD").
package xmlvalid

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"unicode/utf16"
)

// Result is the outcome of validating one XML file.
type Result struct {
	WellFormed bool
	// Valid is true only when a DOCTYPE was present and decoded without
	// error; a well-formed document with no DOCTYPE is WellFormed but not
	// Valid, matching the "attempts DTD-validated parse first, falls back
	// to non-DTD parse" contract: this implementation can only check
	// well-formedness (no DTD validator is available, see the package
	// doc), so Valid mirrors WellFormed whenever a DOCTYPE is present.
	Valid    bool
	HasDOCTYPE bool
	Err      error // nil if well-formed
	File     string
	Line     int
}

// Validate opens "path", detects its encoding from a UTF-8/UTF-16
// byte-order mark (UTF-8 when there is none), and decodes it with
// [encoding/xml], reporting a [Result].
func Validate(path string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("xmlvalid: %w", err)
	}
	utf8, err := toUTF8(raw)
	if err != nil {
		return Result{File: path, WellFormed: false, Err: err}, nil
	}

	hasDOCTYPE := bytes.Contains(utf8, []byte("<!DOCTYPE"))

	dec := xml.NewDecoder(bytes.NewReader(utf8))
	dec.Strict = true
	// toUTF8 has already transcoded a BOM-marked UTF-16 document, so a
	// declared UTF-16 encoding needs no further conversion.
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		for _, l := range []string{"utf-16", "utf-16le", "utf-16be"} {
			if bytes.EqualFold([]byte(label), []byte(l)) {
				return input, nil
			}
		}
		return nil, fmt.Errorf("xmlvalid: unsupported encoding %q", label)
	}
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			return Result{
				File:       path,
				WellFormed: false,
				HasDOCTYPE: hasDOCTYPE,
				Err:        fmt.Errorf("%s: line %d: %w", path, line, err),
				Line:       line,
			}, nil
		}
	}
	return Result{
		File:       path,
		WellFormed: true,
		Valid:      hasDOCTYPE,
		HasDOCTYPE: hasDOCTYPE,
	}, nil
}

// toUTF8 normalizes a byte slice that may be UTF-8 (with or without a BOM)
// or UTF-16 LE/BE (always BOM-prefixed for this purpose) into UTF-8.
func toUTF8(b []byte) ([]byte, error) {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return b[3:], nil
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return utf16ToUTF8(b[2:], true)
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return utf16ToUTF8(b[2:], false)
	default:
		return b, nil
	}
}

func utf16ToUTF8(b []byte, little bool) ([]byte, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("xmlvalid: odd-length UTF-16 payload")
	}
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		if little {
			u16[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
		} else {
			u16[i] = uint16(b[2*i+1]) | uint16(b[2*i])<<8
		}
	}
	runes := utf16.Decode(u16)
	return []byte(string(runes)), nil
}
