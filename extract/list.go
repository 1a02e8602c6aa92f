package extract

import (
	"fmt"
	"io"

	"github.com/hanamura/go-xdvdfs/xdvdfs"
)

// List prints every entry in listing order, one line per entry, and
// returns the file and directory counts. It walks the same sequence
// extraction does, so the two modes always agree on which entries
// exist.
//
//	d           Update/
//	f      1024 default.xbe
func List(w io.Writer, fsys *xdvdfs.FileSystem, skipSystemUpdate bool) (files, dirs int, err error) {
	opts := xdvdfs.WalkOptions{SkipSystemUpdate: skipSystemUpdate}
	err = fsys.Walk(opts, func(path string, node *xdvdfs.Node) error {
		if node.IsDir() {
			dirs++
			_, err := fmt.Fprintf(w, "d           %s/\n", path)
			return err
		}
		files++
		_, err := fmt.Fprintf(w, "f %9d %s\n", node.Size, path)
		return err
	})
	return files, dirs, err
}
