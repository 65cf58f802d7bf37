package sarfile

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
)

// DirOptions define directory packing options.
type DirOptions struct {
	PackOptions

	// Only, when non-empty, restricts packing to files whose extension
	// (including the leading dot) is in the list.
	Only []string

	// Exclude drops files whose extension is in the list. A file is
	// packed only if it passes both filters.
	Exclude []string
}

func (o *DirOptions) norm() *DirOptions {
	var oo DirOptions
	if o != nil {
		oo = *o
	}
	return &oo
}

func (o *DirOptions) include(name string) bool {
	ext := filepath.Ext(name)
	if len(o.Only) != 0 && !slices.Contains(o.Only, ext) {
		return false
	}
	return !slices.Contains(o.Exclude, ext)
}

// CollectDir walks root and returns the qualifying files as members,
// sorted lexicographically by their slash-separated relative path, plus
// a source that opens each member from disk. Regular files only.
func CollectDir(root string, o *DirOptions) ([]FileInfo, SourceFunc, error) {
	opts := o.norm()

	var files []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !opts.include(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Name: filepath.ToSlash(rel), Size: uint64(info.Size())})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	source := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(root, filepath.FromSlash(name)))
	}
	return files, source, nil
}

// PackDir packs the qualifying files under root into a new archive at
// out, written through the given storage capability. It fails with
// ErrEmptyArchive when no file passes the filters, writing no output.
func PackDir(fsys FS, out, root string, o *DirOptions) error {
	files, source, err := CollectDir(root, o)
	if err != nil {
		return err
	}
	return PackFS(fsys, out, files, source, &o.norm().PackOptions)
}
