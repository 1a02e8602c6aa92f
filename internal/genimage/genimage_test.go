package genimage_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hanamura/go-xdvdfs/internal/genimage"
)

var magic = []byte("MICROSOFT*XBOX*MEDIA")

func TestRecord(t *testing.T) {
	record := genimage.Record(3, 7, 40, 512, 0x20, "ABC")

	if len(record) != 20 {
		t.Fatalf("expected %d, actual %d", 20, len(record))
	}
	if v := binary.LittleEndian.Uint16(record[0:]); v != 3 {
		t.Errorf("expected %d, actual %d", 3, v)
	}
	if v := binary.LittleEndian.Uint16(record[2:]); v != 7 {
		t.Errorf("expected %d, actual %d", 7, v)
	}
	if v := binary.LittleEndian.Uint32(record[4:]); v != 40 {
		t.Errorf("expected %d, actual %d", 40, v)
	}
	if v := binary.LittleEndian.Uint32(record[8:]); v != 512 {
		t.Errorf("expected %d, actual %d", 512, v)
	}
	if record[12] != 0x20 {
		t.Errorf("expected %#x, actual %#x", 0x20, record[12])
	}
	if record[13] != 3 {
		t.Errorf("expected %d, actual %d", 3, record[13])
	}
	if string(record[14:17]) != "ABC" {
		t.Errorf("expected %s, actual %s", "ABC", record[14:17])
	}
	for _, b := range record[17:] {
		if b != 0xFF {
			t.Errorf("expected fill, actual %#x", b)
		}
	}
}

func TestBuild(t *testing.T) {
	img := genimage.Build(genimage.File("A", []byte("data")))

	if len(img)%2048 != 0 {
		t.Fatalf("image is %d bytes, not sector aligned", len(img))
	}

	descriptor := img[32*2048 : 33*2048]
	if !bytes.Equal(descriptor[:20], magic) {
		t.Error("missing volume signature")
	}
	if !bytes.Equal(descriptor[2048-20:], magic) {
		t.Error("missing trailing signature")
	}
	if v := binary.LittleEndian.Uint32(descriptor[20:]); v < 33 {
		t.Errorf("root sector %d overlaps the descriptor", v)
	}
	if v := binary.LittleEndian.Uint32(descriptor[24:]); v == 0 {
		t.Error("root size is zero")
	}
}

func TestBuildAt(t *testing.T) {
	base := int64(0x2080000)
	img := genimage.BuildAt(base, genimage.File("A", []byte("data")))

	if !bytes.Equal(img[base+32*2048:base+32*2048+20], magic) {
		t.Error("missing volume signature at base")
	}
}
