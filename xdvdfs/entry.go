package xdvdfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Attribute flags carried by each directory record.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrNormal    = 0x80
)

// SystemUpdateDir is the reserved dashboard-update directory found at
// the root of retail discs, matched case-insensitively.
const SystemUpdateDir = "$SystemUpdate"

// https://xboxdevwiki.net/Xbox_Game_Disc#Directory_Entries
type dirent struct {
	Left        uint16
	Right       uint16
	StartSector uint32
	FileSize    uint32
	Attributes  uint8
	NameLength  uint8
}

// direntSize is the fixed header length before the name bytes.
const direntSize = 14

// Child offset sentinels, in 4-byte units from the start of the
// directory table. Offset 0 holds the table's root record, so both
// values mark an absent child; empty tables are 0xFF fill.
const (
	noChildZero = 0x0000
	noChildFill = 0xFFFF
)

// Node is one decoded directory entry. The tree is immutable once
// built; Children is populated for directories only, in on-disk
// (case-insensitive name) order.
type Node struct {
	Name        string
	Attributes  uint8
	StartSector uint32
	Size        uint32
	Children    []*Node
}

func (n *Node) IsDir() bool {
	return n.Attributes&AttrDirectory != 0
}

func (n *Node) Hidden() bool {
	return n.Attributes&AttrHidden != 0
}

func (n *Node) System() bool {
	return n.Attributes&AttrSystem != 0
}

func (n *Node) String() string {
	kind := "f"
	if n.IsDir() {
		kind = "d"
	}
	return fmt.Sprintf("%s %s (sector: %d, size: %d)", kind, n.Name, n.StartSector, n.Size)
}

// decodeDirent reads the record at the given byte offset of a
// directory table, returning the fixed header and the name.
func decodeDirent(table []byte, off int) (dirent, string, error) {
	if off+direntSize > len(table) {
		return dirent{}, "", &FormatError{Msg: fmt.Sprintf("record at offset %#x out of range", off)}
	}
	var d dirent
	if err := binary.Read(bytes.NewReader(table[off:off+direntSize]), binary.LittleEndian, &d); err != nil {
		return dirent{}, "", &FormatError{Msg: "short directory record", Err: err}
	}
	end := off + direntSize + int(d.NameLength)
	if end > len(table) {
		return dirent{}, "", &FormatError{Msg: fmt.Sprintf("record name at offset %#x out of range", off)}
	}
	name := string(table[off+direntSize : end])
	if err := validateName(name); err != nil {
		return dirent{}, "", err
	}
	return d, name, nil
}

// validateName rejects names that would corrupt destination path
// construction before any sink ever sees them.
func validateName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return &FormatError{Msg: fmt.Sprintf("invalid entry name %q", name)}
	case strings.ContainsAny(name, "/\\\x00"):
		return &FormatError{Msg: fmt.Sprintf("invalid entry name %q", name)}
	}
	return nil
}
