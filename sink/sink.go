// Package sink abstracts extraction destinations. Implementations
// receive /-separated paths relative to a configured base and must
// reject anything that would land outside it.
package sink

import (
	"io"
	"path"
	"strings"

	"golang.org/x/xerrors"
)

// Sink receives one extraction run. CreateDir is idempotent; Create
// truncates. Close releases the destination (network sinks disconnect
// here) and is called once after the full run.
type Sink interface {
	CreateDir(path string) error
	Create(path string, size int64) (io.WriteCloser, error)
	Close() error
}

// ErrSkipExists is returned by Create when the destination already
// holds this file and the sink chose to keep it.
var ErrSkipExists = xerrors.New("destination file already matches")

// An Error reports a failed destination operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string { return "sink " + e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// cleanPath normalizes a relative destination path and rejects any
// form that could escape the sink's base.
func cleanPath(name string) (string, error) {
	if name == "" {
		return "", xerrors.New("empty path")
	}
	if strings.Contains(name, "\\") {
		return "", xerrors.Errorf("path %q contains a backslash", name)
	}
	if path.IsAbs(name) {
		return "", xerrors.Errorf("path %q is absolute", name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", xerrors.Errorf("path %q escapes the destination", name)
	}
	return cleaned, nil
}
