package sarfile

import (
	"fmt"
	"io"
)

// ItemReader is a read-only, seekable view over a single member's byte
// range within a larger stream. Positions are member-local: Seek and the
// read cursor operate in [0, Size()].
//
// Seeks that compute a position outside the member's bounds fail with
// ErrOutOfRange for every whence value. Reads stop at the member end and
// return io.EOF; they never touch the bytes of a neighbouring member.
//
// The view owns its underlying stream: Close closes it. Views are not
// reference-counted, so concurrent lookups must each hold their own view.
type ItemReader struct {
	name string
	size int64
	pos  int64
	src  io.ReadSeekCloser
}

// newItemReader wraps src, which must be positioned at the member start.
func newItemReader(name string, size int64, src io.ReadSeekCloser) *ItemReader {
	return &ItemReader{name: name, size: size, src: src}
}

// Name returns the member's relative path.
func (r *ItemReader) Name() string { return r.name }

// Size returns the member's byte length.
func (r *ItemReader) Size() int64 { return r.size }

// Read reads up to len(p) bytes, never beyond the member's end. At the
// end of the member it returns 0, io.EOF.
func (r *ItemReader) Read(p []byte) (int, error) {
	if r.src == nil {
		return 0, errClosed
	}
	if r.pos >= r.size {
		return 0, io.EOF
	}
	if max := r.size - r.pos; int64(len(p)) > max {
		p = p[:max]
	}
	n, err := r.src.Read(p)
	r.pos += int64(n)
	if err == io.EOF && r.pos < r.size {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// Seek sets the member-local position and returns it. A computed position
// outside [0, Size()] fails with an error wrapping ErrOutOfRange and
// leaves the position unchanged.
func (r *ItemReader) Seek(offset int64, whence int) (int64, error) {
	if r.src == nil {
		return 0, errClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, fmt.Errorf("sarfile: invalid whence %d", whence)
	}
	if abs < 0 || abs > r.size {
		return 0, fmt.Errorf("%w: seek to %d in member of %d bytes", ErrOutOfRange, abs, r.size)
	}

	if _, err := r.src.Seek(abs-r.pos, io.SeekCurrent); err != nil {
		return 0, err
	}
	r.pos = abs
	return abs, nil
}

// Write always fails with ErrUnsupported: members are read-only.
func (r *ItemReader) Write([]byte) (int, error) { return 0, ErrUnsupported }

// Close closes the underlying stream. The view must not be used after
// this method is called.
func (r *ItemReader) Close() error {
	if r.src == nil {
		return errClosed
	}
	src := r.src
	r.src = nil
	return src.Close()
}
