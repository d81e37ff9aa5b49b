package pcapfile

import (
	"encoding/binary"
	"time"

	"github.com/google/gopacket"
)

// Record is one captured packet.
type Record struct {
	TsSec   uint32
	TsUsec  uint32
	InclLen uint32
	OrigLen uint32
	Data    []byte
	// Truncated is set when the file ended before InclLen payload bytes
	// could be read. InclLen then reflects the bytes actually returned and
	// the declared length is lost, so callers decide whether a damaged
	// trailing record is acceptable.
	Truncated bool
}

// Timestamp returns the record time.
func (r *Record) Timestamp() time.Time {
	return time.Unix(int64(r.TsSec), int64(r.TsUsec)*int64(time.Microsecond)).UTC()
}

// CaptureInfo converts the record metadata to gopacket's representation.
func (r *Record) CaptureInfo() gopacket.CaptureInfo {
	return gopacket.CaptureInfo{
		Timestamp:     r.Timestamp(),
		CaptureLength: len(r.Data),
		Length:        int(r.OrigLen),
	}
}

func encodeRecordHeader(order binary.ByteOrder, buf []byte, tsSec, tsUsec, inclLen, origLen uint32) {
	order.PutUint32(buf[0:4], tsSec)
	order.PutUint32(buf[4:8], tsUsec)
	order.PutUint32(buf[8:12], inclLen)
	order.PutUint32(buf[12:16], origLen)
}
