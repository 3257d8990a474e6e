// Package props parses SYCL property files: text files made of named
// [SectionName] sections followed by key or key|value lines. The filter
// only consumes the [SYCL/device requirements] section.
package props

import (
	"bytes"
	"encoding/binary"
	"strconv"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// RequirementsSection is the section header holding device requirements.
const RequirementsSection = "[SYCL/device requirements]"

// Recognized keys inside the requirements section. The section is the
// contiguous run of these keys immediately after the header; the first
// line that is none of them ends the section.
const (
	keyAspects          = "aspects"
	keyReqdSubGroupSize = "reqd_sub_group_size"
	keyFixedTarget      = "fixed_target"
)

// DeviceRequirements holds the declared hardware requirements of one
// device-code image. A nil Aspects slice, ReqdSubGroupSize, or
// FixedTarget means the corresponding requirement was not declared.
type DeviceRequirements struct {
	// Aspects lists the 32-bit aspect identifiers the image requires.
	Aspects []uint32

	// ReqdSubGroupSize is the exact sub-group size the image requires.
	ReqdSubGroupSize *int

	// FixedTarget names the single architecture the image is valid for.
	FixedTarget *string
}

// Empty reports whether no requirement was declared at all.
func (r *DeviceRequirements) Empty() bool {
	return r == nil || (r.Aspects == nil && r.ReqdSubGroupSize == nil && r.FixedTarget == nil)
}

// Parse extracts the device requirements section from a property file.
// It returns (nil, nil) when the section is absent: no requirements
// means no restriction, and the row is accepted by default.
func Parse(data []byte) (*DeviceRequirements, error) {
	pos := findSection(data)
	if pos < 0 {
		return nil, nil
	}

	req := &DeviceRequirements{}
	for pos < len(data) {
		key, valueStart := lineKey(data[pos:])
		switch key {
		case keyAspects:
			aspects, next, err := decodeAspects(data, pos+valueStart)
			if err != nil {
				return nil, err
			}
			req.Aspects = aspects
			pos = next
		case keyReqdSubGroupSize:
			value, next := lineValue(data, pos+valueStart)
			size, err := strconv.Atoi(value)
			if err != nil {
				return nil, ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeMalformedValue,
					"reqd_sub_group_size value %q is not an integer", value)
			}
			req.ReqdSubGroupSize = &size
			pos = next
		case keyFixedTarget:
			value, next := lineValue(data, pos+valueStart)
			if value == "" {
				return nil, ferrors.New(ferrors.ErrCategoryFormat, ferrors.CodeMalformedValue,
					"fixed_target value must not be empty")
			}
			req.FixedTarget = &value
			pos = next
		default:
			// First unrecognized line ends the section.
			return req, nil
		}
	}
	return req, nil
}

// findSection returns the offset of the first byte after the
// requirements section header line, or -1 if the header is absent.
func findSection(data []byte) int {
	pos := 0
	for pos < len(data) {
		end := bytes.IndexByte(data[pos:], '\n')
		var line []byte
		var next int
		if end < 0 {
			line = data[pos:]
			next = len(data)
		} else {
			line = data[pos : pos+end]
			next = pos + end + 1
		}
		if string(bytes.TrimRight(line, "\r")) == RequirementsSection {
			return next
		}
		pos = next
	}
	return -1
}

// lineKey returns the key of the line starting at the beginning of rest,
// plus the offset of the first byte after the key's '|' separator. A
// bare key line (no separator) yields valueStart at the line end.
func lineKey(rest []byte) (string, int) {
	i := 0
	for i < len(rest) && rest[i] != '|' && rest[i] != '\n' {
		i++
	}
	key := string(rest[:i])
	if i < len(rest) && rest[i] == '|' {
		return key, i + 1
	}
	return key, i
}

// lineValue returns the text value starting at start up to the line end,
// plus the offset of the next line.
func lineValue(data []byte, start int) (string, int) {
	end := bytes.IndexByte(data[start:], '\n')
	if end < 0 {
		return string(bytes.TrimRight(data[start:], "\r")), len(data)
	}
	return string(bytes.TrimRight(data[start:start+end], "\r")), start + end + 1
}

// decodeAspects decodes the binary aspects blob starting at start: the
// raw remainder of the line, one 32-bit little-endian identifier per 4
// bytes. The blob runs to the next newline (or EOF), so its length must
// be a multiple of 4; a bare key with no payload decodes as an empty
// identifier list. The decoded identifiers are copied into an owned
// slice, never aliased from the line buffer.
func decodeAspects(data []byte, start int) ([]uint32, int, error) {
	rest := data[start:]
	end := bytes.IndexByte(rest, '\n')
	next := len(data)
	if end < 0 {
		end = len(rest)
	} else {
		next = start + end + 1
	}

	blob := rest[:end]
	if len(blob)%4 != 0 {
		return nil, 0, ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeMalformedBlob,
			"aspects blob is %d bytes, not a multiple of 4", len(blob))
	}

	aspects := make([]uint32, len(blob)/4)
	for i := range aspects {
		aspects[i] = binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
	}
	return aspects, next, nil
}
