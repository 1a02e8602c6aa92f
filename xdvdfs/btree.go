package xdvdfs

import (
	"golang.org/x/xerrors"
)

// Directory tables lay their records out as a binary search tree keyed
// by uppercased name. An in-order walk therefore enumerates a table in
// name order. The walk below is iterative with an explicit stack: both
// shape and offsets come straight from the image, so language-level
// recursion across records would hand call-stack depth to the input.

const noChild = -1

// walkTable visits every record of one directory table in key order.
// A visited-offset set guards against cycles wired through corrupt
// child offsets.
func walkTable(table []byte, visit func(d dirent, name string) error) error {
	if len(table) == 0 || isFill(table) {
		// Empty directory. A record with no left child also starts
		// with 0xFFFF, so only a fully filled header means empty.
		return nil
	}

	visited := make(map[int]struct{})
	var stack []int

	cur := 0
	for cur != noChild || len(stack) > 0 {
		for cur != noChild {
			if _, ok := visited[cur]; ok {
				return &FormatError{Msg: "directory records form a cycle"}
			}
			visited[cur] = struct{}{}
			stack = append(stack, cur)

			d, _, err := decodeDirent(table, cur)
			if err != nil {
				return err
			}
			cur = childOffset(d.Left)
		}

		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d, name, err := decodeDirent(table, cur)
		if err != nil {
			return err
		}
		if err := visit(d, name); err != nil {
			return err
		}
		cur = childOffset(d.Right)
	}
	return nil
}

func childOffset(v uint16) int {
	if v == noChildZero || v == noChildFill {
		return noChild
	}
	return int(v) * 4
}

func isFill(table []byte) bool {
	n := direntSize
	if len(table) < n {
		n = len(table)
	}
	for _, b := range table[:n] {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// readDirectory materializes one directory's entries, descending into
// subdirectories. Descent depth is data-controlled and capped.
func (fsys *FileSystem) readDirectory(sector uint32, size uint32, depth int) ([]*Node, error) {
	if depth >= fsys.maxDepth {
		return nil, &FormatError{Msg: "directory nesting too deep"}
	}
	if size == 0 {
		return nil, nil
	}

	// The size field is untrusted; bound it before the allocation.
	if err := fsys.img.checkExtent(sector, size); err != nil {
		return nil, xerrors.Errorf("failed to read directory table: %w", err)
	}
	table := make([]byte, size)
	if err := fsys.img.ReadAt(table, sector, 0); err != nil {
		return nil, xerrors.Errorf("failed to read directory table: %w", err)
	}

	var nodes []*Node
	err := walkTable(table, func(d dirent, name string) error {
		node := &Node{
			Name:        name,
			Attributes:  d.Attributes,
			StartSector: d.StartSector,
			Size:        d.FileSize,
		}
		if node.IsDir() {
			children, err := fsys.readDirectory(d.StartSector, d.FileSize, depth+1)
			if err != nil {
				return xerrors.Errorf("failed to parse directory %q: %w", name, err)
			}
			node.Children = children
		}
		nodes = append(nodes, node)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}
