package sarfile

import (
	"io"
	"os"
)

// FS is the storage capability consumed by the archive: the ability to
// open a named byte source for seekable reads and a named byte sink for
// writes. Implementations back it with whatever storage they like; the
// package never references a concrete backend beyond the local-disk
// default. See the sarbfs package for a bucket-storage implementation.
type FS interface {
	OpenRead(name string) (io.ReadSeekCloser, error)
	OpenWrite(name string) (io.WriteCloser, error)
}

// LocalFS is the default FS, backed by the local file system.
var LocalFS FS = localFS{}

type localFS struct{}

func (localFS) OpenRead(name string) (io.ReadSeekCloser, error) {
	return os.Open(name)
}

func (localFS) OpenWrite(name string) (io.WriteCloser, error) {
	return os.Create(name)
}
