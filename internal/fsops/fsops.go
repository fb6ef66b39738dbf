// Package fsops provides the small filesystem primitives the cleaner needs:
// sizing a directory tree and deleting it while reporting the freed bytes.
package fsops

import (
	"io/fs"

	"github.com/spf13/afero"
)

// DirSize returns the total size of all regular files under root.
func DirSize(fsys afero.Fs, root string) (uint64, error) {
	var total uint64
	err := afero.Walk(fsys, root, func(_ string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RemoveTree deletes root recursively and returns the number of bytes the
// deleted regular files occupied. The size is computed before deletion; if
// the tree changes in between, the reported count is approximate.
func RemoveTree(fsys afero.Fs, root string) (uint64, error) {
	size, err := DirSize(fsys, root)
	if err != nil {
		return 0, err
	}
	if err := fsys.RemoveAll(root); err != nil {
		return 0, err
	}
	return size, nil
}
