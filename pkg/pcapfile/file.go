package pcapfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Mode selects how a capture file is opened.
type Mode int

const (
	// ModeRead opens an existing file and validates its header.
	ModeRead Mode = iota
	// ModeWrite creates or truncates a file and writes a fresh header.
	ModeWrite
	// ModeAppend validates the header of an existing file and adds records
	// at its end in the file's own byte order. Empty or missing files get a
	// fresh header.
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "r", "w", "a" and their long names.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "r", "read":
		return ModeRead, nil
	case "w", "write":
		return ModeWrite, nil
	case "a", "append":
		return ModeAppend, nil
	default:
		return 0, fmt.Errorf("%w: unknown file mode %q", ErrMode, s)
	}
}

// State is the lifecycle state of a File.
type State int

const (
	StateClosed State = iota
	StateOpenForRead
	StateOpenForWrite
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenForRead:
		return "open-for-read"
	case StateOpenForWrite:
		return "open-for-write"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// File is a capture file handle. It is owned by a single goroutine.
type File struct {
	snaplen uint32

	f      *os.File
	r      *bufio.Reader
	path   string
	state  State
	order  binary.ByteOrder
	header FileHeader
}

// New returns a closed handle that writes with the given snaplen.
// A zero snaplen selects DefaultSnapLen.
func New(snaplen uint32) *File {
	if snaplen == 0 {
		snaplen = DefaultSnapLen
	}
	return &File{snaplen: snaplen, order: binary.BigEndian}
}

// Open is shorthand for New(DefaultSnapLen) followed by Open.
func Open(path string, mode Mode) (*File, error) {
	f := New(DefaultSnapLen)
	if err := f.Open(path, mode); err != nil {
		return nil, err
	}
	return f, nil
}

// Create opens path for writing with the given snaplen.
func Create(path string, snaplen uint32) (*File, error) {
	f := New(snaplen)
	if err := f.Open(path, ModeWrite); err != nil {
		return nil, err
	}
	return f, nil
}

// Open opens path in the given mode, closing any file already held.
// Header validation failures leave the handle closed.
func (f *File) Open(path string, mode Mode) error {
	if err := f.Close(); err != nil {
		return err
	}

	var err error
	switch mode {
	case ModeRead:
		err = f.openRead(path)
	case ModeWrite:
		err = f.openWrite(path)
	case ModeAppend:
		err = f.openAppend(path)
	default:
		err = fmt.Errorf("%w: unknown file mode %v", ErrMode, mode)
	}
	if err != nil {
		return err
	}
	f.path = path
	return nil
}

func (f *File) openWrite(path string) error {
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pcap file %s: %w", path, err)
	}
	f.f = fd
	f.order = binary.BigEndian
	if err := f.writeHeader(); err != nil {
		f.Close()
		return err
	}
	f.state = StateOpenForWrite
	return nil
}

func (f *File) openRead(path string) error {
	fd, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pcap file %s: %w", path, err)
	}
	f.f = fd
	f.r = bufio.NewReader(fd)
	if err := f.readHeader(f.r); err != nil {
		f.Close()
		return err
	}
	f.state = StateOpenForRead
	return nil
}

func (f *File) openAppend(path string) error {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open pcap file %s for append: %w", path, err)
	}
	f.f = fd
	info, err := fd.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat pcap file %s: %w", path, err)
	}
	if info.Size() == 0 {
		f.order = binary.BigEndian
		err = f.writeHeader()
	} else {
		err = f.readHeader(fd)
	}
	if err != nil {
		f.Close()
		return err
	}
	f.state = StateOpenForWrite
	return nil
}

func (f *File) writeHeader() error {
	f.header = newFileHeader(f.snaplen)
	var buf [FileHeaderLen]byte
	f.header.encode(f.order, buf[:])
	if _, err := f.f.Write(buf[:]); err != nil {
		return fmt.Errorf("write pcap file header: %w", err)
	}
	return nil
}

// readHeader validates the global header and resolves the byte order.
// The snaplen stored in the file is kept but never checked on read; append
// mode bounds new payloads by it (see MaxPayload).
func (f *File) readHeader(r io.Reader) error {
	var buf [FileHeaderLen]byte

	if _, err := io.ReadFull(r, buf[0:4]); err != nil {
		return fmt.Errorf("%w: read magic number: %v", ErrFormat, err)
	}
	order, ok := detectByteOrder(buf[0:4])
	if !ok {
		return fmt.Errorf("%w: magic number 0x%08x", ErrFormat, binary.BigEndian.Uint32(buf[0:4]))
	}

	if _, err := io.ReadFull(r, buf[4:8]); err != nil {
		return fmt.Errorf("%w: read version: %v", ErrFormat, err)
	}
	major := order.Uint16(buf[4:6])
	minor := order.Uint16(buf[6:8])
	if major != VersionMajor || minor != VersionMinor {
		return fmt.Errorf("%w: %d.%d", ErrVersion, major, minor)
	}

	if _, err := io.ReadFull(r, buf[8:24]); err != nil {
		return fmt.Errorf("%w: read header: %v", ErrFormat, err)
	}
	h := FileHeader{
		MagicNumber:  MagicNumber,
		VersionMajor: major,
		VersionMinor: minor,
		ThisZone:     int32(order.Uint32(buf[8:12])),
		SigFigs:      order.Uint32(buf[12:16]),
		SnapLen:      order.Uint32(buf[16:20]),
		Network:      order.Uint32(buf[20:24]),
	}
	if h.Network != uint32(LinkType) {
		return fmt.Errorf("%w: %d", ErrLinkType, h.Network)
	}

	f.order = order
	f.header = h
	return nil
}

// Write appends one record and returns the number of bytes written.
// origLen is raised to len(data) when smaller, so passing 0 records the
// payload length. Payloads longer than the snaplen are rejected before
// anything is written.
func (f *File) Write(data []byte, tsSec, tsUsec, origLen uint32) (int, error) {
	if f.state == StateClosed {
		return 0, ErrClosed
	}
	if f.state != StateOpenForWrite {
		return 0, fmt.Errorf("%w: write on file opened for read", ErrMode)
	}
	if limit := f.MaxPayload(); uint64(len(data)) > uint64(limit) {
		return 0, fmt.Errorf("%w: %d > %d", ErrSize, len(data), limit)
	}

	inclLen := uint32(len(data))
	if origLen < inclLen {
		origLen = inclLen
	}

	buf := make([]byte, RecordHeaderLen+len(data))
	encodeRecordHeader(f.order, buf, tsSec, tsUsec, inclLen, origLen)
	copy(buf[RecordHeaderLen:], data)

	n, err := f.f.Write(buf)
	if err != nil {
		return n, fmt.Errorf("write pcap record: %w", err)
	}
	return n, nil
}

// WriteRecord writes r.Data with the record's timestamps and original length.
func (f *File) WriteRecord(r *Record) (int, error) {
	return f.Write(r.Data, r.TsSec, r.TsUsec, r.OrigLen)
}

// Read returns the next record, or io.EOF when no complete record header
// remains. A record whose payload is cut short by the end of the file is
// returned with Truncated set.
func (f *File) Read() (*Record, error) {
	if f.state == StateClosed {
		return nil, ErrClosed
	}
	if f.state != StateOpenForRead {
		return nil, fmt.Errorf("%w: read on file opened for write", ErrMode)
	}

	var hdr [RecordHeaderLen]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read pcap record header: %w", err)
	}

	rec := &Record{
		TsSec:   f.order.Uint32(hdr[0:4]),
		TsUsec:  f.order.Uint32(hdr[4:8]),
		InclLen: f.order.Uint32(hdr[8:12]),
		OrigLen: f.order.Uint32(hdr[12:16]),
	}

	// Read through a limit so a corrupt length cannot force a huge allocation.
	data, err := io.ReadAll(io.LimitReader(f.r, int64(rec.InclLen)))
	if err != nil {
		return nil, fmt.Errorf("read pcap record payload: %w", err)
	}
	if len(data) == 0 && rec.InclLen > 0 {
		return nil, io.EOF
	}
	if uint32(len(data)) < rec.InclLen {
		rec.InclLen = uint32(len(data))
		rec.Truncated = true
	}
	rec.Data = data
	return rec, nil
}

// ReadPacketData implements gopacket.PacketDataSource.
func (f *File) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	rec, err := f.Read()
	if err != nil {
		return nil, gopacket.CaptureInfo{}, err
	}
	return rec.Data, rec.CaptureInfo(), nil
}

// Close releases the file. Closing a closed handle is a no-op.
func (f *File) Close() error {
	if f.f == nil {
		f.state = StateClosed
		return nil
	}
	err := f.f.Close()
	f.f = nil
	f.r = nil
	f.state = StateClosed
	if err != nil {
		return fmt.Errorf("close pcap file %s: %w", f.path, err)
	}
	return nil
}

// State returns the current lifecycle state.
func (f *File) State() State { return f.state }

// Path returns the path of the most recently opened file.
func (f *File) Path() string { return f.path }

// SnapLen returns the snaplen this handle was created with.
func (f *File) SnapLen() uint32 { return f.snaplen }

// MaxPayload returns the largest payload Write accepts. When appending to an
// existing file this is also bounded by the snaplen in its header.
func (f *File) MaxPayload() uint32 {
	if hs := f.header.SnapLen; f.state == StateOpenForWrite && hs > 0 && hs < f.snaplen {
		return hs
	}
	return f.snaplen
}

// Header returns the header written or parsed at open time.
func (f *File) Header() FileHeader { return f.header }

// ByteOrder returns the byte order of the open file.
func (f *File) ByteOrder() binary.ByteOrder { return f.order }

// LinkType returns the link-layer type recorded in the header.
func (f *File) LinkType() layers.LinkType { return layers.LinkType(f.header.Network) }
