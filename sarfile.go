package sarfile

import (
	"errors"
	"fmt"
)

// magic is the 4-byte preamble constant identifying a SAR archive.
var magic = []byte{'S', 'A', 'R', '\n'}

// preHeaderSize is the size of the archive preamble: the 4-byte magic
// constant followed by the 8-byte length of the encoded header.
const preHeaderSize = 4 + 8

// ErrNotFound is returned when a member lookup cannot be resolved.
var ErrNotFound = errors.New("sarfile: not found")

// ErrBadMagic is returned when the opened file is not a SAR archive.
var ErrBadMagic = errors.New("sarfile: bad magic byte sequence")

// ErrMalformedHeader is returned when the header bytes do not decode
// cleanly. Decode failures wrap this error with detail.
var ErrMalformedHeader = errors.New("sarfile: malformed header")

// ErrOutOfRange is returned when a seek lands outside a member's bounds.
var ErrOutOfRange = errors.New("sarfile: position out of range")

// ErrUnsupported is returned by write operations on read-only members.
var ErrUnsupported = errors.New("sarfile: operation not supported")

// ErrEmptyArchive is returned when a pack is requested with no members.
var ErrEmptyArchive = errors.New("sarfile: archive has no members")

var errClosed = errors.New("sarfile: is closed")

// SourceError wraps a failure to read a member's bytes during packing.
type SourceError struct {
	Name string // the offending member
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("sarfile: read source %q: %v", e.Name, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// FileInfo describes a single archive member.
type FileInfo struct {
	Name string // relative path of the member
	Size uint64 // number of bytes in the member
}
