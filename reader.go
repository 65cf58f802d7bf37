package sarfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader is an open archive handle: the decoded header plus the derived
// member offsets. The handle itself holds no open stream; every member
// lookup opens its own stream through the FS capability, so views can be
// read and closed independently (including from concurrent goroutines).
type Reader struct {
	fsys FS
	path string

	header  *Header
	base    uint64 // preamble + encoded header size
	offsets []uint64
	index   map[string]int
}

// Open opens a SAR archive on the local file system.
func Open(path string) (*Reader, error) {
	return OpenFS(LocalFS, path)
}

// OpenFS opens a SAR archive through the given storage capability. It
// reads and verifies the preamble, decodes the header and derives the
// member offsets. The stream used for the header is closed before
// returning; member lookups open their own.
func OpenFS(fsys FS, path string) (*Reader, error) {
	src, err := fsys.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pre := make([]byte, preHeaderSize)
	if _, err := io.ReadFull(src, pre); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrBadMagic
		}
		return nil, err
	}
	if !bytes.Equal(pre[:len(magic)], magic) {
		return nil, ErrBadMagic
	}

	headerLen := binary.LittleEndian.Uint64(pre[len(magic):])
	if headerLen > math.MaxInt32 {
		return nil, fmt.Errorf("%w: header length %d", ErrMalformedHeader, headerLen)
	}
	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(src, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	header, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}
	return newReader(fsys, path, header, uint64(preHeaderSize)+headerLen), nil
}

func newReader(fsys FS, path string, header *Header, base uint64) *Reader {
	index := make(map[string]int, len(header.Files))
	for i, f := range header.Files {
		index[f.Name] = i
	}
	return &Reader{
		fsys:    fsys,
		path:    path,
		header:  header,
		base:    base,
		offsets: header.Offsets(base),
		index:   index,
	}
}

// Len returns the number of members.
func (r *Reader) Len() int {
	return len(r.header.Files)
}

// Names returns the member names in archive order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.header.Files))
	for i, f := range r.header.Files {
		names[i] = f.Name
	}
	return names
}

// Header returns the decoded archive header.
func (r *Reader) Header() *Header {
	return r.header
}

// Index resolves a member name to its position in the archive. It may
// return an ErrNotFound error.
func (r *Reader) Index(name string) (int, error) {
	i, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return i, nil
}

// Get opens the named member as a bounded view over its own stream.
// It may return an ErrNotFound error. The caller must close the view.
func (r *Reader) Get(name string) (*ItemReader, error) {
	i, err := r.Index(name)
	if err != nil {
		return nil, err
	}
	return r.At(i)
}

// At opens the i-th member as a bounded view over its own stream.
// It may return an ErrNotFound error. The caller must close the view.
func (r *Reader) At(i int) (*ItemReader, error) {
	if i < 0 || i >= len(r.header.Files) {
		return nil, fmt.Errorf("%w: index %d of %d members", ErrNotFound, i, len(r.header.Files))
	}

	src, err := r.fsys.OpenRead(r.path)
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(int64(r.offsets[i]), io.SeekStart); err != nil {
		src.Close()
		return nil, err
	}
	f := r.header.Files[i]
	return newItemReader(f.Name, int64(f.Size), src), nil
}

// Shard returns a handle restricted to contiguous member block shardID
// out of totalShards, reading from the same underlying archive bytes.
// The returned handle may be empty; see Header.Shard.
func (r *Reader) Shard(shardID, totalShards int) *Reader {
	return newReader(r.fsys, r.path, r.header.Shard(shardID, totalShards), r.base)
}
