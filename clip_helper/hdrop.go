package clip_helper

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// DROPFILES header: 20 bytes. pFiles offset, POINT (ignored), fNC, fWide.
const dropFilesHeaderSize = 20

// EncodeDropFiles renders a CF_HDROP payload: a DROPFILES header with fWide=1
// followed by the UTF-16 path list, each path NUL-terminated, the whole list
// terminated by an extra NUL.
func EncodeDropFiles(paths []string) []byte {
	var units []uint16
	for _, p := range paths {
		units = append(units, utf16.Encode([]rune(p))...)
		units = append(units, 0)
	}
	units = append(units, 0)

	buf := make([]byte, dropFilesHeaderSize+len(units)*2)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], dropFilesHeaderSize) // pFiles
	le.PutUint32(buf[16:], 1)                  // fWide
	for i, u := range units {
		le.PutUint16(buf[dropFilesHeaderSize+i*2:], u)
	}
	return buf
}

// DecodeDropFiles parses a CF_HDROP payload back into its path list. ANSI
// (fWide=0) lists are rejected; every supported Windows writes wide lists.
func DecodeDropFiles(data []byte) ([]string, error) {
	if len(data) < dropFilesHeaderSize {
		return nil, fmt.Errorf("%w: DROPFILES header truncated", ErrDecode)
	}
	le := binary.LittleEndian
	offset := int(le.Uint32(data[0:]))
	wide := le.Uint32(data[16:]) != 0
	if !wide {
		return nil, fmt.Errorf("%w: ANSI DROPFILES not supported", ErrDecode)
	}
	if offset < dropFilesHeaderSize || offset >= len(data) {
		return nil, fmt.Errorf("%w: bad DROPFILES offset %d", ErrDecode, offset)
	}

	var paths []string
	var cur []uint16
	for i := offset; i+1 < len(data); i += 2 {
		u := le.Uint16(data[i:])
		if u == 0 {
			if len(cur) == 0 {
				break // double NUL: end of list
			}
			paths = append(paths, string(utf16.Decode(cur)))
			cur = cur[:0]
			continue
		}
		cur = append(cur, u)
	}
	return paths, nil
}
