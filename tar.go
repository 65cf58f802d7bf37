package sarfile

import (
	"archive/tar"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// PackTar converts a tar archive (optionally gzip-compressed) into a SAR
// archive at out, written through the given storage capability. Regular
// file entries are packed in tar order; everything else is skipped. The
// tar is read twice: once to size the members, once to stream their
// bytes, so tarPath must be re-openable through fsys.
func PackTar(fsys FS, out, tarPath string, o *PackOptions) error {
	files, err := tarMembers(fsys, tarPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrEmptyArchive
	}

	src, closeSrc, err := openTar(fsys, tarPath)
	if err != nil {
		return err
	}
	defer closeSrc()

	// Pack requests members in files order, which is tar order, so the
	// source just advances to the next regular entry.
	source := func(name string) (io.ReadCloser, error) {
		for {
			hdr, err := src.Next()
			if err != nil {
				return nil, err
			}
			if hdr.Typeflag != tar.TypeReg {
				continue
			}
			if hdr.Name != name {
				return nil, fmt.Errorf("tar entry order changed: got %q, want %q", hdr.Name, name)
			}
			return io.NopCloser(src), nil
		}
	}
	return PackFS(fsys, out, files, source, o)
}

func tarMembers(fsys FS, tarPath string) ([]FileInfo, error) {
	src, closeSrc, err := openTar(fsys, tarPath)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	var files []FileInfo
	for {
		hdr, err := src.Next()
		if err == io.EOF {
			return files, nil
		} else if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg {
			files = append(files, FileInfo{Name: hdr.Name, Size: uint64(hdr.Size)})
		}
	}
}

// openTar opens tarPath for reading, transparently unwrapping gzip.
func openTar(fsys FS, tarPath string) (*tar.Reader, func() error, error) {
	f, err := fsys.OpenRead(tarPath)
	if err != nil {
		return nil, nil, err
	}

	head := make([]byte, 2)
	if _, err := io.ReadFull(f, head); err != nil {
		f.Close()
		return nil, nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, err
	}

	if head[0] == 0x1f && head[1] == 0x8b { // gzip
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		closeAll := func() error {
			zr.Close()
			return f.Close()
		}
		return tar.NewReader(zr), closeAll, nil
	}
	return tar.NewReader(f), f.Close, nil
}
