package xdvdfs

import (
	"fmt"
	"io"
)

// Image is a random-access view of the game partition inside a disc
// image file. Redump images carry video partitions before the game
// partition, so every logical sector is offset by base.
type Image struct {
	r    io.ReaderAt
	size int64
	base int64
}

// A ReadError reports a failed or out-of-range read of the image.
type ReadError struct {
	Offset int64
	Length int64
	Err    error
}

func (e *ReadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("read %d bytes at %#x beyond image bounds", e.Length, e.Offset)
	}
	return fmt.Sprintf("read %d bytes at %#x: %v", e.Length, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func newImage(r io.ReaderAt, size int64, base int64) *Image {
	return &Image{r: r, size: size, base: base}
}

func (img *Image) Size() int64 {
	return img.size
}

// ReadAt fills p from the given sector and byte offset within it.
// Each call is independent; nothing is cached.
func (img *Image) ReadAt(p []byte, sector uint32, off uint32) error {
	pos := img.position(sector) + int64(off)
	if pos < 0 || pos+int64(len(p)) > img.size {
		return &ReadError{Offset: pos, Length: int64(len(p))}
	}
	if _, err := img.r.ReadAt(p, pos); err != nil {
		return &ReadError{Offset: pos, Length: int64(len(p)), Err: err}
	}
	return nil
}

// FileReader returns a streaming view of one file extent. The extent is
// bounds-checked here so a corrupt record surfaces before any bytes move.
func (img *Image) FileReader(sector uint32, size uint32) (*io.SectionReader, error) {
	if err := img.checkExtent(sector, size); err != nil {
		return nil, err
	}
	return io.NewSectionReader(img.r, img.position(sector), int64(size)), nil
}

// checkExtent validates a sector/size pair against the image bounds.
// Both values come straight from the image, so callers must not act on
// them (allocate, seek) before this passes.
func (img *Image) checkExtent(sector uint32, size uint32) error {
	pos := img.position(sector)
	if pos+int64(size) > img.size {
		return &ReadError{Offset: pos, Length: int64(size)}
	}
	return nil
}

func (img *Image) position(sector uint32) int64 {
	return img.base + int64(sector)*SectorSize
}
