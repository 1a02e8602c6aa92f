package xdvdfs

import (
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

var (
	_ fs.FS        = &FileSystem{}
	_ fs.ReadDirFS = &FileSystem{}
	_ fs.StatFS    = &FileSystem{}

	_ fs.File        = &File{}
	_ fs.ReadDirFile = &dir{}
	_ fs.FileInfo    = &FileInfo{}
	_ fs.DirEntry    = dirEntry{}
)

// A FormatError reports that the image is not a valid XDVDFS volume.
// It is always fatal; nothing is extracted from a malformed tree.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// DefaultMaxDepth caps directory descent for untrusted images.
const DefaultMaxDepth = 64

type Config struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// FileSystem is implemented io/fs FS interface over one XDVDFS volume.
// The directory tree is decoded once at construction; file content is
// streamed from the image on demand.
type FileSystem struct {
	img    *Image
	volume Volume
	root   *Node

	maxDepth int
}

// Check probes whether the reader looks like an XDVDFS image.
func Check(r io.ReaderAt, size int64) bool {
	_, err := parseVolume(r, size)
	return err == nil
}

func New(r *io.SectionReader) (*FileSystem, error) {
	return NewWithConfig(r, Config{})
}

func NewWithConfig(r *io.SectionReader, cfg Config) (*FileSystem, error) {
	volume, err := parseVolume(r, r.Size())
	if err != nil {
		return nil, xerrors.Errorf("failed to locate volume descriptor: %w", err)
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	fileSystem := FileSystem{
		img:      newImage(r, r.Size(), volume.Base),
		volume:   *volume,
		maxDepth: maxDepth,
	}

	children, err := fileSystem.readDirectory(volume.RootSector, volume.RootSize, 0)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse root directory: %w", err)
	}
	fileSystem.root = &Node{
		Attributes:  AttrDirectory,
		StartSector: volume.RootSector,
		Size:        volume.RootSize,
		Children:    children,
	}
	return &fileSystem, nil
}

func (fsys *FileSystem) Close() error {
	return nil
}

// Volume returns the decoded volume descriptor.
func (fsys *FileSystem) Volume() Volume {
	return fsys.volume
}

// Root returns the decoded directory tree. The tree is shared, not
// copied; callers must treat it as read-only.
func (fsys *FileSystem) Root() *Node {
	return fsys.root
}

// FileReader returns a bounds-checked streaming reader over one file
// node's content.
func (fsys *FileSystem) FileReader(n *Node) (*io.SectionReader, error) {
	if n.IsDir() {
		return nil, xerrors.Errorf("%q is a directory", n.Name)
	}
	return fsys.img.FileReader(n.StartSector, n.Size)
}

func (fsys *FileSystem) Stat(name string) (fs.FileInfo, error) {
	const op = "stat"

	node, err := fsys.resolve(name)
	if err != nil {
		return nil, fsys.wrapError(op, name, err)
	}
	info := fsys.fileInfo(node)
	return &info, nil
}

func (fsys *FileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	const op = "read directory"

	node, err := fsys.resolve(name)
	if err != nil {
		return nil, fsys.wrapError(op, name, err)
	}
	if !node.IsDir() {
		return nil, fsys.wrapError(op, name, xerrors.New("not a directory"))
	}
	return fsys.dirEntries(node), nil
}

func (fsys *FileSystem) Open(name string) (fs.File, error) {
	const op = "open"

	node, err := fsys.resolve(name)
	if err != nil {
		return nil, fsys.wrapError(op, name, err)
	}
	if node.IsDir() {
		return &dir{
			FileInfo: fsys.fileInfo(node),
			entries:  fsys.dirEntries(node),
		}, nil
	}

	r, err := fsys.FileReader(node)
	if err != nil {
		return nil, fsys.wrapError(op, name, err)
	}
	return &File{
		FileInfo: fsys.fileInfo(node),
		r:        r,
	}, nil
}

// resolve walks the decoded tree segment by segment. Lookups are
// case-insensitive, matching the on-disk sort order.
func (fsys *FileSystem) resolve(name string) (*Node, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	if name == "." {
		return fsys.root, nil
	}

	current := fsys.root
	for _, part := range strings.Split(name, "/") {
		if !current.IsDir() {
			return nil, fs.ErrNotExist
		}
		var next *Node
		for _, child := range current.Children {
			if strings.EqualFold(child.Name, part) {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fs.ErrNotExist
		}
		current = next
	}
	return current, nil
}

func (fsys *FileSystem) dirEntries(node *Node) []fs.DirEntry {
	var entries []fs.DirEntry
	for _, child := range node.Children {
		entries = append(entries, dirEntry{fsys.fileInfo(child)})
	}
	// Children sit in case-insensitive disc order; fs.ReadDirFS wants
	// entries sorted by name.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries
}

func (fsys *FileSystem) fileInfo(node *Node) FileInfo {
	name := node.Name
	if name == "" {
		name = "."
	}
	return FileInfo{
		name:    name,
		node:    node,
		created: fsys.volume.Created,
	}
}

func (fsys *FileSystem) wrapError(op, path string, err error) error {
	return &fs.PathError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// FileInfo is implemented io/fs FileInfo interface
type FileInfo struct {
	name    string
	node    *Node
	created time.Time
}

func (i FileInfo) Name() string {
	return i.name
}

func (i FileInfo) Size() int64 {
	return int64(i.node.Size)
}

func (i FileInfo) Mode() fs.FileMode {
	if i.node.IsDir() {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (i FileInfo) ModTime() time.Time {
	return i.created
}

func (i FileInfo) IsDir() bool {
	return i.node.IsDir()
}

func (i FileInfo) Sys() interface{} {
	return nil
}

// dirEntry is implemented io/fs DirEntry interface
type dirEntry struct {
	FileInfo
}

func (d dirEntry) Type() fs.FileMode { return d.FileInfo.Mode().Type() }

func (d dirEntry) Info() (fs.FileInfo, error) { return d.FileInfo, nil }

// File is implemented io/fs File interface
type File struct {
	FileInfo

	r *io.SectionReader
}

func (f *File) Stat() (fs.FileInfo, error) {
	return &f.FileInfo, nil
}

func (f *File) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.r.ReadAt(p, off)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

func (f *File) Close() error {
	return nil
}

type dir struct {
	FileInfo

	entries []fs.DirEntry
	offset  int
}

func (d *dir) Stat() (fs.FileInfo, error) {
	return &d.FileInfo, nil
}

func (d *dir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: xerrors.New("is a directory")}
}

func (d *dir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n], nil
}

func (d *dir) Close() error {
	return nil
}
