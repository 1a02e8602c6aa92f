package main

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/hanamura/go-xdvdfs/xdvdfs"
	"golang.org/x/xerrors"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: walk <image>")
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	info, err := f.Stat()
	if err != nil {
		log.Fatal(err)
	}

	filesystem, err := xdvdfs.New(io.NewSectionReader(f, 0, info.Size()))
	if err != nil {
		log.Fatal(err)
	}

	err = fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return xerrors.Errorf("file walk error: %w", err)
		}
		if d.IsDir() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return err
		}
		fmt.Printf("%9d %s\n", fileInfo.Size(), path)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}
