package sarfile

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Header describes the members of an archive: their names and byte sizes,
// in physical layout order. InitOffset is non-zero only for headers
// produced by Shard, where it accounts for the member bytes that precede
// the shard within the original archive.
type Header struct {
	Files      []FileInfo
	InitOffset uint64
}

// Encode encodes the header to its binary form. Identical headers always
// encode to identical bytes. Encoding a header with no members fails with
// ErrEmptyArchive.
func (h *Header) Encode() ([]byte, error) {
	if len(h.Files) == 0 {
		return nil, ErrEmptyArchive
	}

	var maxSize, maxNameLen uint64
	nameBytes := 0
	for _, f := range h.Files {
		if f.Size > maxSize {
			maxSize = f.Size
		}
		if n := uint64(len(f.Name)); n > maxNameLen {
			maxNameLen = n
		}
		nameBytes += len(f.Name)
	}

	sizeWidth := intWidth(maxSize)
	nameWidth := intWidth(maxNameLen)

	buf := make([]byte, 0, 2+8+len(h.Files)*(sizeWidth+nameWidth)+nameBytes)
	buf = append(buf, byte(sizeWidth), byte(nameWidth))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(h.Files)))
	for _, f := range h.Files {
		buf = appendUint(buf, f.Size, sizeWidth)
	}
	for _, f := range h.Files {
		buf = appendUint(buf, uint64(len(f.Name)), nameWidth)
	}
	for _, f := range h.Files {
		buf = append(buf, f.Name...)
	}
	return buf, nil
}

// DecodeHeader decodes an encoded header. It fails with an error wrapping
// ErrMalformedHeader when the bytes are truncated, carry an invalid width
// selector, contain invalid UTF-8 names, or leave trailing bytes
// unconsumed.
func DecodeHeader(b []byte) (*Header, error) {
	if len(b) < 10 {
		return nil, fmt.Errorf("%w: truncated at %d bytes", ErrMalformedHeader, len(b))
	}

	sizeWidth, err := parseWidth(b[0])
	if err != nil {
		return nil, err
	}
	nameWidth, err := parseWidth(b[1])
	if err != nil {
		return nil, err
	}
	num := binary.LittleEndian.Uint64(b[2:10])
	b = b[10:]

	tableLen := num * uint64(sizeWidth+nameWidth)
	if num > uint64(len(b)) || tableLen > uint64(len(b)) {
		return nil, fmt.Errorf("%w: truncated tables for %d members", ErrMalformedHeader, num)
	}

	sizes := make([]uint64, num)
	for i := range sizes {
		sizes[i] = readUint(b, sizeWidth)
		b = b[sizeWidth:]
	}
	nameLens := make([]uint64, num)
	for i := range nameLens {
		nameLens[i] = readUint(b, nameWidth)
		b = b[nameWidth:]
	}

	files := make([]FileInfo, num)
	for i, n := range nameLens {
		if n > uint64(len(b)) {
			return nil, fmt.Errorf("%w: truncated name table", ErrMalformedHeader)
		}
		name := b[:n]
		if !utf8.Valid(name) {
			return nil, fmt.Errorf("%w: name %d is not valid UTF-8", ErrMalformedHeader, i)
		}
		files[i] = FileInfo{Name: string(name), Size: sizes[i]}
		b = b[n:]
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%w: %d bytes left over", ErrMalformedHeader, len(b))
	}
	return &Header{Files: files}, nil
}

// Offsets returns the absolute byte offset of every member, where base is
// the size of everything preceding the member bytes in the original
// archive (preamble plus encoded header). Offsets computed from a shard
// agree with offsets computed from the full header.
func (h *Header) Offsets(base uint64) []uint64 {
	offsets := make([]uint64, len(h.Files))
	pos := base + h.InitOffset
	for i, f := range h.Files {
		offsets[i] = pos
		pos += f.Size
	}
	return offsets
}

// Shard returns the header for contiguous block shardID out of
// totalShards, splitting the members into ceil(N/totalShards)-sized
// blocks. When shardID addresses past the last member the returned header
// has no members. The result shares no state with the receiver.
func (h *Header) Shard(shardID, totalShards int) *Header {
	num := len(h.Files)
	perShard := (num + totalShards - 1) / totalShards

	start := shardID * perShard
	end := start + perShard
	if start > num {
		start = num
	}
	if end > num {
		end = num
	}

	var skipped uint64
	for _, f := range h.Files[:start] {
		skipped += f.Size
	}

	files := make([]FileInfo, end-start)
	copy(files, h.Files[start:end])
	return &Header{Files: files, InitOffset: h.InitOffset + skipped}
}

// totalSize returns the combined byte size of all members.
func (h *Header) totalSize() uint64 {
	var sum uint64
	for _, f := range h.Files {
		sum += f.Size
	}
	return sum
}

// intWidth returns the smallest of {1, 2, 4, 8} bytes that can hold n.
func intWidth(n uint64) int {
	switch {
	case n < 1<<8:
		return 1
	case n < 1<<16:
		return 2
	case n < 1<<32:
		return 4
	default:
		return 8
	}
}

func parseWidth(b byte) (int, error) {
	switch b {
	case 1, 2, 4, 8:
		return int(b), nil
	default:
		return 0, fmt.Errorf("%w: invalid width selector %d", ErrMalformedHeader, b)
	}
}

func appendUint(buf []byte, n uint64, width int) []byte {
	switch width {
	case 1:
		return append(buf, byte(n))
	case 2:
		return binary.LittleEndian.AppendUint16(buf, uint16(n))
	case 4:
		return binary.LittleEndian.AppendUint32(buf, uint32(n))
	default:
		return binary.LittleEndian.AppendUint64(buf, n)
	}
}

func readUint(b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}
