package sarfile

import (
	"encoding/binary"
	"io"
)

// SourceFunc maps a member name to a readable byte source of exactly the
// declared length. Pack calls it once per member, in header order.
type SourceFunc func(name string) (io.ReadCloser, error)

// PackOptions define pack specific options.
type PackOptions struct {
	// Progress, when set, is invoked with (completed, total) after each
	// member has been written.
	Progress func(done, total int)
}

func (o *PackOptions) norm() *PackOptions {
	var oo PackOptions
	if o != nil {
		oo = *o
	}
	return &oo
}

// Pack writes a complete archive to w: magic, encoded header, then every
// member's bytes in order. The files list must be non-empty and deduped
// by the caller; an empty list fails with ErrEmptyArchive before any
// bytes are written. Any failure to open or fully read a member's source
// aborts the pack with a *SourceError naming the member, leaving w in an
// undefined partial state.
func Pack(w io.Writer, files []FileInfo, source SourceFunc, o *PackOptions) error {
	if len(files) == 0 {
		return ErrEmptyArchive
	}
	opts := o.norm()

	header := &Header{Files: files}
	encoded, err := header.Encode()
	if err != nil {
		return err
	}

	if _, err := w.Write(magic); err != nil {
		return err
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(len(encoded)))
	if _, err := w.Write(tmp[:]); err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}

	for i, f := range files {
		if err := packMember(w, f, source); err != nil {
			return err
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(files))
		}
	}
	return nil
}

// PackFS packs to a named output through the given storage capability.
func PackFS(fsys FS, out string, files []FileInfo, source SourceFunc, o *PackOptions) error {
	if len(files) == 0 {
		return ErrEmptyArchive
	}
	w, err := fsys.OpenWrite(out)
	if err != nil {
		return err
	}
	if err := Pack(w, files, source, o); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func packMember(w io.Writer, f FileInfo, source SourceFunc) error {
	rc, err := source(f.Name)
	if err != nil {
		return &SourceError{Name: f.Name, Err: err}
	}
	defer rc.Close()

	if _, err := io.CopyN(w, rc, int64(f.Size)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return &SourceError{Name: f.Name, Err: err}
	}
	return nil
}
