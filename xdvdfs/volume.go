package xdvdfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"golang.org/x/xerrors"

	"github.com/hanamura/go-xdvdfs/log"
)

const (
	// SectorSize is fixed for the whole image.
	SectorSize = 2048

	// VolumeDescriptorSector is the logical sector holding the volume
	// descriptor, relative to the partition base.
	VolumeDescriptorSector = 32
)

const volumeMagic = "MICROSOFT*XBOX*MEDIA"

// ErrNotXDVDFS reports that no volume descriptor was found at any of
// the known partition bases.
var ErrNotXDVDFS = &FormatError{Msg: "not a recognized disc image"}

// Candidate partition bases, probed in order: plain extracted images,
// then the XGD3 and XGD2 redump layouts.
var baseOffsets = []int64{0, 0x2080000, 0xFD90000}

// https://xboxdevwiki.net/Xbox_Game_Disc#Volume_Descriptor
type volumeHeader struct {
	Magic      [20]byte
	RootSector uint32
	RootSize   uint32
	Created    uint64
}

// Volume describes the filesystem found behind one of the candidate
// partition bases.
type Volume struct {
	Base       int64
	RootSector uint32
	RootSize   uint32
	Created    time.Time
}

// Variant names the disc layout the volume was found in.
func (v Volume) Variant() string {
	switch v.Base {
	case 0x2080000:
		return "XGD3"
	case 0xFD90000:
		return "XGD2"
	default:
		return "XISO"
	}
}

func parseVolume(r io.ReaderAt, size int64) (*Volume, error) {
	if size%SectorSize != 0 {
		log.Logger.Warnf("image size %d is not a multiple of the sector size", size)
	}

	buf := make([]byte, SectorSize)
	for _, base := range baseOffsets {
		pos := base + VolumeDescriptorSector*SectorSize
		if pos+SectorSize > size {
			continue
		}
		if _, err := r.ReadAt(buf, pos); err != nil {
			return nil, &ReadError{Offset: pos, Length: SectorSize, Err: err}
		}
		if !bytes.Equal(buf[:len(volumeMagic)], []byte(volumeMagic)) {
			continue
		}

		var hdr volumeHeader
		if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
			return nil, xerrors.Errorf("failed to read volume descriptor: %w", err)
		}
		if !bytes.Equal(buf[SectorSize-len(volumeMagic):], []byte(volumeMagic)) {
			log.Logger.Warnf("volume descriptor at %#x has no trailing signature", pos)
		}
		return &Volume{
			Base:       base,
			RootSector: hdr.RootSector,
			RootSize:   hdr.RootSize,
			Created:    filetime(hdr.Created),
		}, nil
	}
	return nil, ErrNotXDVDFS
}

// filetime converts a Windows FILETIME (100ns ticks since 1601-01-01)
// to a time.Time.
func filetime(t uint64) time.Time {
	if t == 0 {
		return time.Time{}
	}
	const unixEpoch = 116444736000000000
	return time.Unix(0, (int64(t)-unixEpoch)*100).UTC()
}
