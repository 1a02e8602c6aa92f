// Package genimage builds small XDVDFS images in memory for tests.
// The generator carries its own layout constants on purpose: fixtures
// should not be derived from the parser they exercise.
package genimage

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strings"
	"time"
)

const (
	sectorSize       = 2048
	descriptorSector = 32
	firstDataSector  = 33

	attrDirectory = 0x10
	attrArchive   = 0x20

	recordHeaderSize = 14
)

const magic = "MICROSOFT*XBOX*MEDIA"

// Created is the volume timestamp stamped into every generated image.
var Created = time.Date(2004, time.September, 30, 12, 0, 0, 0, time.UTC)

// Node describes one entry of a generated image tree.
type Node struct {
	Name     string
	Attr     uint8
	Data     []byte
	Children []Node

	dir bool
	raw []byte
}

// File places a regular file with the given content.
func File(name string, data []byte) Node {
	return Node{Name: name, Attr: attrArchive, Data: data}
}

// Dir places a directory. Without children it becomes a real empty
// directory: one sector of 0xFF fill.
func Dir(name string, children ...Node) Node {
	return Node{Name: name, Attr: attrDirectory, Children: children, dir: true}
}

// RawDir places a directory whose table bytes are written verbatim,
// with the size field set to len(table). Tests use it to craft shapes
// the generator would never produce.
func RawDir(name string, table []byte) Node {
	return Node{Name: name, Attr: attrDirectory, dir: true, raw: table}
}

// Record serializes one directory record, padded to 4-byte alignment
// so records can be concatenated. Left and right are in 4-byte units.
func Record(left, right uint16, sector, size uint32, attr uint8, name string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, left)
	binary.Write(&buf, binary.LittleEndian, right)
	binary.Write(&buf, binary.LittleEndian, sector)
	binary.Write(&buf, binary.LittleEndian, size)
	buf.WriteByte(attr)
	buf.WriteByte(uint8(len(name)))
	buf.WriteString(name)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0xFF)
	}
	return buf.Bytes()
}

// Build assembles an image with the volume at base offset 0.
func Build(entries ...Node) []byte {
	return BuildAt(0, entries...)
}

// BuildAt assembles an image whose game partition starts at base,
// mimicking the redump layouts when base is nonzero.
func BuildAt(base int64, entries ...Node) []byte {
	b := &builder{next: firstDataSector}
	rootSector, rootSize := b.layoutDir(entries)

	img := make([]byte, base+int64(b.next)*sectorSize)
	for _, w := range b.writes {
		copy(img[base+int64(w.sector)*sectorSize:], w.data)
	}

	desc := img[base+descriptorSector*sectorSize:]
	copy(desc, magic)
	binary.LittleEndian.PutUint32(desc[20:], rootSector)
	binary.LittleEndian.PutUint32(desc[24:], rootSize)
	binary.LittleEndian.PutUint64(desc[28:], filetime(Created))
	copy(desc[sectorSize-len(magic):], magic)
	return img
}

type write struct {
	sector uint32
	data   []byte
}

type builder struct {
	next   uint32
	writes []write
}

func (b *builder) alloc(size int) uint32 {
	sector := b.next
	b.next += uint32((size + sectorSize - 1) / sectorSize)
	return sector
}

func (b *builder) place(data []byte) uint32 {
	sector := b.alloc(len(data))
	if len(data) > 0 {
		b.writes = append(b.writes, write{sector: sector, data: data})
	}
	return sector
}

// layoutDir materializes children bottom-up, then serializes this
// directory's table as a balanced search tree over the uppercased
// names, the way mastering tools lay discs out.
func (b *builder) layoutDir(children []Node) (uint32, uint32) {
	slots := make([]*slot, 0, len(children))
	for i := range children {
		c := &children[i]
		s := &slot{node: c}
		switch {
		case c.raw != nil || (c.dir && len(c.Children) == 0 && c.raw == nil):
			table := c.raw
			if table == nil {
				table = bytes.Repeat([]byte{0xFF}, sectorSize)
			}
			s.size = uint32(len(table))
			s.sector = b.place(pad(table))
		case c.dir:
			s.sector, s.size = b.layoutDir(c.Children)
		default:
			s.size = uint32(len(c.Data))
			s.sector = b.place(pad(c.Data))
		}
		slots = append(slots, s)
	}
	if len(slots) == 0 {
		table := bytes.Repeat([]byte{0xFF}, sectorSize)
		return b.place(table), uint32(len(table))
	}

	sort.Slice(slots, func(i, j int) bool {
		return strings.ToUpper(slots[i].node.Name) < strings.ToUpper(slots[j].node.Name)
	})
	root := buildTree(slots)

	var order []*slot
	offset := 0
	var assign func(*slot)
	assign = func(s *slot) {
		if s == nil {
			return
		}
		length := recordLen(s.node.Name)
		if offset%sectorSize+length > sectorSize {
			// Records never straddle a sector boundary.
			offset += sectorSize - offset%sectorSize
		}
		s.offset = offset
		offset += length
		order = append(order, s)
		assign(s.left)
		assign(s.right)
	}
	assign(root)

	table := bytes.Repeat([]byte{0xFF}, roundUp(offset, sectorSize))
	for _, s := range order {
		var left, right uint16
		if s.left != nil {
			left = uint16(s.left.offset / 4)
		}
		if s.right != nil {
			right = uint16(s.right.offset / 4)
		}
		copy(table[s.offset:], Record(left, right, s.sector, s.size, s.node.Attr, s.node.Name))
	}
	return b.place(table), uint32(len(table))
}

type slot struct {
	node        *Node
	sector      uint32
	size        uint32
	offset      int
	left, right *slot
}

func buildTree(slots []*slot) *slot {
	if len(slots) == 0 {
		return nil
	}
	mid := len(slots) / 2
	root := slots[mid]
	root.left = buildTree(slots[:mid])
	root.right = buildTree(slots[mid+1:])
	return root
}

func recordLen(name string) int {
	return roundUp(recordHeaderSize+len(name), 4)
}

func roundUp(n, align int) int {
	return (n + align - 1) / align * align
}

func pad(data []byte) []byte {
	if len(data)%sectorSize == 0 {
		return data
	}
	padded := make([]byte, roundUp(len(data), sectorSize))
	copy(padded, data)
	return padded
}

func filetime(t time.Time) uint64 {
	const unixEpoch = 116444736000000000
	return uint64(t.UnixNano()/100 + unixEpoch)
}
