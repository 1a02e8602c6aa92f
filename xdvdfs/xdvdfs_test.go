package xdvdfs_test

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/hanamura/go-xdvdfs/internal/genimage"
	"github.com/hanamura/go-xdvdfs/xdvdfs"
)

func newFileSystem(t *testing.T, img []byte) *xdvdfs.FileSystem {
	t.Helper()

	fileSystem, err := xdvdfs.New(io.NewSectionReader(bytes.NewReader(img), 0, int64(len(img))))
	if err != nil {
		t.Fatal(err)
	}
	return fileSystem
}

func TestCheck(t *testing.T) {
	img := genimage.Build(genimage.File("default.xbe", []byte("xbe")))

	if !xdvdfs.Check(bytes.NewReader(img), int64(len(img))) {
		t.Error("expected true, actual false")
	}

	corrupted := append([]byte{}, img...)
	corrupted[32*2048+5] ^= 0xFF
	if xdvdfs.Check(bytes.NewReader(corrupted), int64(len(corrupted))) {
		t.Error("expected false, actual true")
	}

	if xdvdfs.Check(bytes.NewReader(img[:2048]), 2048) {
		t.Error("expected false, actual true")
	}
}

func TestNewVolume(t *testing.T) {
	testVolumeCases := []struct {
		name            string
		base            int64
		expectedVariant string
	}{
		{
			name:            "plain",
			base:            0,
			expectedVariant: "XISO",
		},
		{
			name:            "redump",
			base:            0x2080000,
			expectedVariant: "XGD3",
		},
	}

	for _, tt := range testVolumeCases {
		t.Run(fmt.Sprintf("test %s image", tt.name), func(t *testing.T) {
			img := genimage.BuildAt(tt.base, genimage.File("default.xbe", []byte("xbe")))
			fileSystem := newFileSystem(t, img)

			volume := fileSystem.Volume()
			if volume.Base != tt.base {
				t.Errorf("expected %d, actual %d", tt.base, volume.Base)
			}
			if volume.Variant() != tt.expectedVariant {
				t.Errorf("expected %s, actual %s", tt.expectedVariant, volume.Variant())
			}
			if !volume.Created.Equal(genimage.Created) {
				t.Errorf("expected %v, actual %v", genimage.Created, volume.Created)
			}
		})
	}
}

func TestVolumeVariant(t *testing.T) {
	testVariantCases := []struct {
		base     int64
		expected string
	}{
		{base: 0, expected: "XISO"},
		{base: 0x2080000, expected: "XGD3"},
		{base: 0xFD90000, expected: "XGD2"},
	}

	for _, tt := range testVariantCases {
		volume := xdvdfs.Volume{Base: tt.base}
		if volume.Variant() != tt.expected {
			t.Errorf("expected %s, actual %s", tt.expected, volume.Variant())
		}
	}
}

func TestFileSystemOpen(t *testing.T) {
	img := genimage.Build(
		genimage.File("README.TXT", []byte("hello xbox")),
		genimage.Dir("DATA",
			genimage.File("BLOB.BIN", bytes.Repeat([]byte{0xAA}, 3000)),
			genimage.File("EMPTY.BIN", nil),
		),
	)
	fileSystem := newFileSystem(t, img)

	testFileCases := []struct {
		name         string
		expectedName string
		expectedSize int
		expectedData []byte
		mode         fs.FileMode
	}{
		{
			name:         "README.TXT",
			expectedName: "README.TXT",
			expectedSize: 10,
			expectedData: []byte("hello xbox"),
			mode:         0o444,
		},
		{
			name:         "DATA/BLOB.BIN",
			expectedName: "BLOB.BIN",
			expectedSize: 3000,
			expectedData: bytes.Repeat([]byte{0xAA}, 3000),
			mode:         0o444,
		},
		{
			name:         "DATA/EMPTY.BIN",
			expectedName: "EMPTY.BIN",
			expectedSize: 0,
			expectedData: nil,
			mode:         0o444,
		},
	}

	for _, tt := range testFileCases {
		t.Run(fmt.Sprintf("test %s read", tt.name), func(t *testing.T) {
			testFile, err := fileSystem.Open(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			stat, err := testFile.Stat()
			if err != nil {
				t.Fatal(err)
			}

			if stat.Name() != tt.expectedName {
				t.Errorf("expected %s, actual %s", tt.expectedName, stat.Name())
			}
			if stat.Size() != int64(tt.expectedSize) {
				t.Errorf("expected %d, actual %d", tt.expectedSize, stat.Size())
			}
			if stat.Mode() != tt.mode {
				t.Errorf("expected %s, actual %s", tt.mode, stat.Mode())
			}
			if !stat.ModTime().Equal(genimage.Created) {
				t.Errorf("expected %v, actual %v", genimage.Created, stat.ModTime())
			}

			data, err := io.ReadAll(testFile)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(data, tt.expectedData) {
				t.Errorf("expected %d bytes, actual %d bytes", len(tt.expectedData), len(data))
			}
		})
	}
}

func TestFileSystemOpenCaseInsensitive(t *testing.T) {
	img := genimage.Build(
		genimage.Dir("Media",
			genimage.File("intro.wav", []byte("wav")),
		),
	)
	fileSystem := newFileSystem(t, img)

	testFile, err := fileSystem.Open("MEDIA/INTRO.WAV")
	if err != nil {
		t.Fatal(err)
	}
	stat, err := testFile.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if stat.Name() != "intro.wav" {
		t.Errorf("expected %s, actual %s", "intro.wav", stat.Name())
	}
}

func TestFileSystemStat(t *testing.T) {
	img := genimage.Build(
		genimage.Dir("GAME", genimage.File("default.xbe", []byte("xbe"))),
	)
	fileSystem := newFileSystem(t, img)

	stat, err := fileSystem.Stat("GAME")
	if err != nil {
		t.Fatal(err)
	}
	if !stat.IsDir() {
		t.Error("expected directory")
	}
	if stat.Mode() != fs.ModeDir|0o555 {
		t.Errorf("expected %s, actual %s", fs.ModeDir|0o555, stat.Mode())
	}

	if _, err := fileSystem.Stat("MISSING"); err == nil {
		t.Error("expected error, actual nil")
	}
}

func TestFileSystemReadDir(t *testing.T) {
	var many []genimage.Node
	for i := 0; i < 200; i++ {
		many = append(many, genimage.File(fmt.Sprintf("FILE%03d.DAT", i), []byte{byte(i)}))
	}
	img := genimage.Build(
		genimage.Dir("BIG", many...),
		genimage.Dir("EMPTY"),
		genimage.RawDir("ZERO", []byte{}),
		genimage.File("default.xbe", []byte("xbe")),
	)
	fileSystem := newFileSystem(t, img)

	testDirectoryCases := []struct {
		name       string
		entriesLen int
	}{
		{
			name:       ".",
			entriesLen: 4,
		},
		{
			name:       "BIG",
			entriesLen: 200,
		},
		{
			name:       "EMPTY",
			entriesLen: 0,
		},
		{
			name:       "ZERO",
			entriesLen: 0,
		},
	}

	for _, tt := range testDirectoryCases {
		t.Run(fmt.Sprintf("test %s read", tt.name), func(t *testing.T) {
			dirEntries, err := fileSystem.ReadDir(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if len(dirEntries) != tt.entriesLen {
				t.Errorf("expected %d, actual %d", tt.entriesLen, len(dirEntries))
			}
		})
	}

	t.Run("test BIG order", func(t *testing.T) {
		dirEntries, err := fileSystem.ReadDir("BIG")
		if err != nil {
			t.Fatal(err)
		}
		if dirEntries[0].Name() != "FILE000.DAT" {
			t.Errorf("expected %s, actual %s", "FILE000.DAT", dirEntries[0].Name())
		}
		if dirEntries[199].Name() != "FILE199.DAT" {
			t.Errorf("expected %s, actual %s", "FILE199.DAT", dirEntries[199].Name())
		}
	})
}

func TestFileSystemReadDirSorted(t *testing.T) {
	// Disc order is case-insensitive, so default.xbe precedes Media on
	// disk; ReadDir must still come back sorted by name.
	img := genimage.Build(
		genimage.File("default.xbe", []byte("xbe")),
		genimage.Dir("Media"),
		genimage.File("ATTRACT.XMV", []byte("xmv")),
	)
	fileSystem := newFileSystem(t, img)

	dirEntries, err := fileSystem.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"ATTRACT.XMV", "Media", "default.xbe"}
	if len(dirEntries) != len(expected) {
		t.Fatalf("expected %d, actual %d", len(expected), len(dirEntries))
	}
	for i, name := range expected {
		if dirEntries[i].Name() != name {
			t.Errorf("expected %s, actual %s", name, dirEntries[i].Name())
		}
	}
}

func TestDirReadDirPaging(t *testing.T) {
	img := genimage.Build(
		genimage.File("AA", nil),
		genimage.File("BB", nil),
		genimage.File("CC", nil),
	)
	fileSystem := newFileSystem(t, img)

	testFile, err := fileSystem.Open(".")
	if err != nil {
		t.Fatal(err)
	}
	testDir, ok := testFile.(fs.ReadDirFile)
	if !ok {
		t.Fatal("expected fs.ReadDirFile")
	}

	first, err := testDir.ReadDir(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Errorf("expected %d, actual %d", 2, len(first))
	}

	rest, err := testDir.ReadDir(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 {
		t.Errorf("expected %d, actual %d", 1, len(rest))
	}

	if _, err := testDir.ReadDir(2); err != io.EOF {
		t.Errorf("expected %v, actual %v", io.EOF, err)
	}
}
