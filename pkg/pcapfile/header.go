// Package pcapfile reads and writes classic libpcap capture files.
//
// Files are written big-endian. On read the byte order is detected from the
// magic number, so files produced by little-endian writers are accepted too.
// Payloads are opaque byte blobs; no packet decoding happens here.
package pcapfile

import (
	"encoding/binary"
	"errors"

	"github.com/google/gopacket/layers"
)

const (
	// MagicNumber is the canonical magic of a microsecond-resolution file.
	MagicNumber uint32 = 0xa1b2c3d4
	// MagicNumberSwapped is MagicNumber as seen when the byte order differs.
	MagicNumberSwapped uint32 = 0xd4c3b2a1

	VersionMajor uint16 = 2
	VersionMinor uint16 = 4

	// LinkType is the only supported network value.
	LinkType = layers.LinkTypeEthernet

	// DefaultSnapLen is the per-record capture limit used by writers.
	DefaultSnapLen uint32 = 65549

	FileHeaderLen   = 24
	RecordHeaderLen = 16
)

var (
	ErrFormat   = errors.New("unknown pcap file format")
	ErrVersion  = errors.New("unsupported pcap version")
	ErrLinkType = errors.New("unsupported pcap link type")
	ErrSize     = errors.New("payload exceeds snaplen")
	ErrClosed   = errors.New("pcap file is closed")
	ErrMode     = errors.New("operation not permitted in current mode")
)

// FileHeader is the 24-byte global header.
//
//	offset  size  field
//	0       4     magic number
//	4       2     major version
//	6       2     minor version
//	8       4     GMT to local correction (always 0)
//	12      4     timestamp accuracy (always 0)
//	16      4     snaplen
//	20      4     link-layer type
type FileHeader struct {
	MagicNumber  uint32
	VersionMajor uint16
	VersionMinor uint16
	ThisZone     int32
	SigFigs      uint32
	SnapLen      uint32
	Network      uint32
}

func newFileHeader(snaplen uint32) FileHeader {
	return FileHeader{
		MagicNumber:  MagicNumber,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		SnapLen:      snaplen,
		Network:      uint32(LinkType),
	}
}

func (h *FileHeader) encode(order binary.ByteOrder, buf []byte) {
	order.PutUint32(buf[0:4], h.MagicNumber)
	order.PutUint16(buf[4:6], h.VersionMajor)
	order.PutUint16(buf[6:8], h.VersionMinor)
	order.PutUint32(buf[8:12], uint32(h.ThisZone))
	order.PutUint32(buf[12:16], h.SigFigs)
	order.PutUint32(buf[16:20], h.SnapLen)
	order.PutUint32(buf[20:24], h.Network)
}

// detectByteOrder maps the first four bytes of a file to its byte order.
func detectByteOrder(magic []byte) (binary.ByteOrder, bool) {
	switch binary.BigEndian.Uint32(magic) {
	case MagicNumber:
		return binary.BigEndian, true
	case MagicNumberSwapped:
		return binary.LittleEndian, true
	default:
		return nil, false
	}
}
