// Package sarbfs adapts a bfs.Bucket to the sarfile.FS storage
// capability, allowing archives to be packed to and opened from object
// storage backends.
//
// Bucket readers are sequential, but archive reads need to seek, so
// OpenRead spills the object into an unlinked temporary file first. That
// makes opening pay one full download; the bounded member reads after
// that are local. For very large archives prefer sharding the work
// across processes, each spilling its own copy.
package sarbfs

import (
	"context"
	"io"
	"os"

	"github.com/bsm/bfs"
	"github.com/bsm/sarfile"
)

// FS implements sarfile.FS on top of a bucket.
type FS struct {
	bucket bfs.Bucket
	ctx    context.Context
}

// New wraps a bucket. The context is used for all bucket operations
// issued through the returned FS.
func New(ctx context.Context, bucket bfs.Bucket) *FS {
	return &FS{bucket: bucket, ctx: ctx}
}

// Connect resolves a bucket URL (e.g. "s3://bucket/prefix?region=...")
// and wraps it. The caller remains responsible for closing the bucket
// via Close.
func Connect(ctx context.Context, url string) (*FS, error) {
	bucket, err := bfs.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	return New(ctx, bucket), nil
}

// OpenRead downloads the named object into a temporary spill file and
// returns a seekable handle on it. The spill file is removed when the
// handle is closed.
func (f *FS) OpenRead(name string) (io.ReadSeekCloser, error) {
	src, err := f.bucket.Open(f.ctx, name)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	spill, err := os.CreateTemp("", "sarbfs")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(spill, src); err != nil {
		spill.Close()
		os.Remove(spill.Name())
		return nil, err
	}
	if _, err := spill.Seek(0, io.SeekStart); err != nil {
		spill.Close()
		os.Remove(spill.Name())
		return nil, err
	}
	return &spillFile{File: spill}, nil
}

// OpenWrite creates the named object in the bucket.
func (f *FS) OpenWrite(name string) (io.WriteCloser, error) {
	return f.bucket.Create(f.ctx, name, nil)
}

// Close closes the underlying bucket.
func (f *FS) Close() error {
	return f.bucket.Close()
}

type spillFile struct {
	*os.File
}

func (s *spillFile) Close() error {
	err := s.File.Close()
	if rerr := os.Remove(s.File.Name()); err == nil {
		err = rerr
	}
	return err
}

var _ sarfile.FS = (*FS)(nil)
