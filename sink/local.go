package sink

import (
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

var _ Sink = &Local{}

// Local writes into a directory on a local filesystem. The afero
// base-path layer confines every operation to that directory on top of
// the explicit path checks.
type Local struct {
	fs afero.Fs
}

// NewLocal creates dir if needed and returns a sink rooted there.
func NewLocal(dir string) (*Local, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, &Error{Op: "mkdir", Path: dir, Err: err}
	}
	return &Local{fs: afero.NewBasePathFs(osFs, dir)}, nil
}

// NewLocalFs roots the sink on an arbitrary afero filesystem, which is
// what tests do with an in-memory one.
func NewLocalFs(base afero.Fs) *Local {
	return &Local{fs: base}
}

func (s *Local) CreateDir(name string) error {
	cleaned, err := cleanPath(name)
	if err != nil {
		return &Error{Op: "mkdir", Path: name, Err: err}
	}
	if err := s.fs.MkdirAll(filepath.FromSlash(cleaned), 0o755); err != nil {
		return &Error{Op: "mkdir", Path: name, Err: err}
	}
	return nil
}

func (s *Local) Create(name string, size int64) (io.WriteCloser, error) {
	cleaned, err := cleanPath(name)
	if err != nil {
		return nil, &Error{Op: "create", Path: name, Err: err}
	}
	f, err := s.fs.Create(filepath.FromSlash(cleaned))
	if err != nil {
		return nil, &Error{Op: "create", Path: name, Err: err}
	}
	return f, nil
}

func (s *Local) Close() error {
	return nil
}
