// Package extract copies the contents of a disc image onto a sink.
package extract

import (
	"context"
	"io"

	"github.com/hanamura/go-xdvdfs/log"
	"github.com/hanamura/go-xdvdfs/sink"
	"github.com/hanamura/go-xdvdfs/xdvdfs"
	"golang.org/x/xerrors"
)

// DefaultChunkSize is the copy unit for file contents. Reads stay
// bounded so peak memory does not depend on file size.
const DefaultChunkSize = 64 * 1024

// Progress receives per-file copy updates.
type Progress interface {
	Start(path string, size int64)
	Add(n int64)
	Done()
}

// Options adjust a Run.
type Options struct {
	// SkipSystemUpdate drops the $SystemUpdate directory.
	SkipSystemUpdate bool

	// ChunkSize overrides DefaultChunkSize when positive.
	ChunkSize int

	// Progress, when set, is told about every file copy.
	Progress Progress
}

// Run walks fsys in listing order and writes every entry to snk.
// A broken entry is recorded in the report and skipped so one bad
// file does not discard the rest of the run. The sink is closed
// before Run returns.
func Run(ctx context.Context, fsys *xdvdfs.FileSystem, snk sink.Sink, opts Options) (*Report, error) {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	report := &Report{}

	walkOpts := xdvdfs.WalkOptions{SkipSystemUpdate: opts.SkipSystemUpdate}
	walkErr := fsys.Walk(walkOpts, func(path string, node *xdvdfs.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if node.IsDir() {
			if err := snk.CreateDir(path); err != nil {
				report.record(path, err)
				return nil
			}
			report.Dirs++
			return nil
		}

		r, err := fsys.FileReader(node)
		if err != nil {
			report.record(path, err)
			return nil
		}
		size := int64(node.Size)

		w, err := snk.Create(path, size)
		if err != nil {
			if xerrors.Is(err, sink.ErrSkipExists) {
				report.Skipped++
				return nil
			}
			report.record(path, err)
			return nil
		}

		copied, err := writeFile(w, r, path, size, chunk, opts.Progress)
		if err != nil {
			report.record(path, err)
			return nil
		}
		report.Files++
		report.Bytes += copied
		return nil
	})

	closeErr := snk.Close()
	if walkErr != nil {
		if closeErr != nil {
			log.Logger.Warnf("failed to close sink: %s", closeErr)
		}
		return report, walkErr
	}
	return report, closeErr
}

// writeFile copies size bytes from r to w in chunks. w is closed on
// every exit path.
func writeFile(w io.WriteCloser, r io.Reader, path string, size int64, chunk int, progress Progress) (copied int64, err error) {
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if progress != nil {
		progress.Start(path, size)
		defer progress.Done()
	}

	buf := make([]byte, chunk)
	for copied < size {
		n := size - copied
		if n > int64(chunk) {
			n = int64(chunk)
		}
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return copied, xerrors.Errorf("failed to read file contents: %w", err)
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return copied, err
		}
		copied += n
		if progress != nil {
			progress.Add(n)
		}
	}
	return copied, nil
}

func (r *Report) record(path string, err error) {
	log.Logger.Warnf("failed to extract %s: %s", path, err)
	r.Failures = append(r.Failures, Failure{Path: path, Reason: err.Error(), Err: err})
}
