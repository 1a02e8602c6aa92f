package xdvdfs

import (
	"strings"
)

// WalkFunc is called once per entry with its /-separated path relative
// to the root. Returning a non-nil error stops the walk.
type WalkFunc func(path string, node *Node) error

type WalkOptions struct {
	// SkipSystemUpdate prunes the reserved update directory found as a
	// direct child of the root, subtree included.
	SkipSystemUpdate bool
}

// Walk traverses the directory tree pre-order: a directory is yielded
// before its children, so a consumer can create it before writing into
// it. The root itself is not yielded. The walk is derived from the
// immutable tree only, so it can be repeated and every run yields the
// same sequence.
func (fsys *FileSystem) Walk(opts WalkOptions, fn WalkFunc) error {
	return walkNodes("", fsys.root.Children, opts.SkipSystemUpdate, fn)
}

func walkNodes(prefix string, nodes []*Node, skipUpdate bool, fn WalkFunc) error {
	for _, n := range nodes {
		if skipUpdate && prefix == "" && strings.EqualFold(n.Name, SystemUpdateDir) {
			continue
		}
		p := n.Name
		if prefix != "" {
			p = prefix + "/" + n.Name
		}
		if err := fn(p, n); err != nil {
			return err
		}
		if n.IsDir() {
			if err := walkNodes(p, n.Children, skipUpdate, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
