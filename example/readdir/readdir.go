package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hanamura/go-xdvdfs/xdvdfs"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: readdir <image>")
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

	dirs, err := filesystem.ReadDir(".")
	if err != nil {
		log.Fatal(err)
	}
	for _, dir := range dirs {
		fmt.Println(dir.Name())
	}
}
