package protocol

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// MaxPayloadSize bounds a single frame. A flush larger than this is
	// split over several FrameOps frames.
	MaxPayloadSize = 1 << 24
)

// Version is sent in FrameHello.
const Version = 1

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameHello FrameType = 0x00
	FrameOps   FrameType = 0x01
	FrameEvent FrameType = 0x02
	FrameError FrameType = 0x03
)

func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FrameOps:
		return "Ops"
	case FrameEvent:
		return "Event"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags modify how a frame is processed.
type FrameFlags uint8

const (
	// FlagContinued marks an ops frame whose flush continues in the next
	// frame. Clients should not paint until a frame without it arrives.
	FlagContinued FrameFlags = 0x01
)

// Has reports whether ff contains flag.
func (ff FrameFlags) Has(flag FrameFlags) bool { return ff&flag != 0 }

var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a typed payload.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// Encode returns the header followed by the payload.
func (f *Frame) Encode() []byte {
	buf := make([]byte, FrameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(f.Payload)))
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame decodes one complete frame. Trailing bytes are an error;
// use ReadFrame for streams.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	f, n, err := parseHeader(data[:FrameHeaderSize])
	if err != nil {
		return nil, err
	}
	switch rest := len(data) - FrameHeaderSize; {
	case rest < n:
		return nil, io.ErrUnexpectedEOF
	case rest > n:
		return nil, errors.Newf("protocol: %d trailing bytes after frame", rest-n)
	}
	f.Payload = append([]byte(nil), data[FrameHeaderSize:]...)
	return f, nil
}

// ReadFrame reads the next frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	f, n, err := parseHeader(header[:])
	if err != nil {
		return nil, err
	}
	f.Payload = make([]byte, n)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, errors.Wrapf(err, "reading %s payload", f.Type)
	}
	return f, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

func parseHeader(h []byte) (*Frame, int, error) {
	f := &Frame{Type: FrameType(h[0]), Flags: FrameFlags(h[1])}
	if f.Type > FrameError {
		return nil, 0, errors.Wrapf(ErrInvalidFrameType, "type 0x%02x", h[0])
	}
	n := binary.BigEndian.Uint32(h[2:6])
	if n > MaxPayloadSize {
		return nil, 0, errors.Wrapf(ErrFrameTooLarge, "%d bytes", n)
	}
	return f, int(n), nil
}

// Hello is the first frame a server sends.
type Hello struct {
	Version uint32
	// Root is the node id of the container the client must map to its
	// mount point.
	Root uint32
}

// Frame encodes h.
func (h Hello) Frame() *Frame {
	e := NewEncoder(8)
	e.WriteUvarint(uint64(h.Version))
	e.WriteUvarint(uint64(h.Root))
	return &Frame{Type: FrameHello, Payload: e.Bytes()}
}

// DecodeHello decodes a FrameHello payload.
func DecodeHello(payload []byte) (Hello, error) {
	d := NewDecoder(payload)
	var h Hello
	var err error
	if h.Version, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.Root, err = d.ReadUint32(); err != nil {
		return h, err
	}
	return h, nil
}

// ErrorFrame builds a FrameError carrying msg.
func ErrorFrame(msg string) *Frame {
	e := NewEncoder(len(msg) + 2)
	e.WriteString(msg)
	return &Frame{Type: FrameError, Payload: e.Bytes()}
}
