package icns

import (
	"encoding/binary"
	"fmt"
)

// Parse splits an ICNS file into its entries. Payloads alias data.
// Unknown tags are returned as-is; NominalSize reports 0 for them.
func Parse(data []byte) ([]Entry, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("icns: file too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != Magic {
		return nil, fmt.Errorf("icns: bad magic %q", data[0:4])
	}
	total := int(binary.BigEndian.Uint32(data[4:8]))
	if total != len(data) {
		return nil, fmt.Errorf("icns: header length %d, file length %d", total, len(data))
	}

	var entries []Entry
	off := headerSize
	for off < total {
		if total-off < headerSize {
			return nil, fmt.Errorf("icns: truncated entry header at offset %d", off)
		}
		tag := string(data[off : off+4])
		n := int(binary.BigEndian.Uint32(data[off+4 : off+8]))
		if n < headerSize || n > total-off {
			return nil, fmt.Errorf("icns: entry %q at offset %d has bad length %d", tag, off, n)
		}
		entries = append(entries, Entry{Tag: tag, Data: data[off+headerSize : off+n]})
		off += n
	}
	return entries, nil
}
