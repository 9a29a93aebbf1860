package protocol

import (
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// Decoding limits. A peer can only make us allocate what it actually sent,
// and never more than MaxStringLen for a single string.
const (
	MaxStringLen     = 1 << 20
	MaxVarintLen     = 10
	MaxCollectionLen = 1 << 17
)

var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrStringTooLong      = errors.New("protocol: string exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
)

// Encoder appends values to a growing buffer. Writes cannot fail.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with room for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Reset empties the encoder and keeps its buffer.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the encoded data. It is only valid until the next write.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) WriteUint8(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) WriteUvarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteSvarint writes v ZigZag encoded: 0, -1, 1, -2 become 0, 1, 2, 3.
func (e *Encoder) WriteSvarint(v int64) {
	e.WriteUvarint(uint64((v << 1) ^ (v >> 63)))
}

func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

func (e *Encoder) WriteFloat64(f float64) {
	v := math.Float64bits(f)
	e.buf = append(e.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Decoder reads values from a byte slice. Reads past the end return
// io.ErrUnexpectedEOF.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder reads from buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// Done reports whether every byte was consumed.
func (d *Decoder) Done() bool { return d.pos >= len(d.buf) }

func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) ReadUvarint() (uint64, error) {
	var v uint64
	for shift, i := uint(0), 0; ; shift, i = shift+7, i+1 {
		if i >= MaxVarintLen {
			return 0, ErrVarintOverflow
		}
		b, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
	}
}

func (d *Decoder) ReadSvarint() (int64, error) {
	uv, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	v := int64(uv >> 1)
	if uv&1 != 0 {
		v = ^v
	}
	return v, nil
}

// ReadUint32 reads a varint that must fit 32 bits, as node ids do.
func (d *Decoder) ReadUint32() (uint32, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, errors.Wrapf(ErrVarintOverflow, "value %d does not fit 32 bits", v)
	}
	return uint32(v), nil
}

func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", errors.Wrapf(ErrStringTooLong, "length %d", n)
	}
	if n > uint64(d.Remaining()) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// ReadBool accepts any non-zero byte as true.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	return b != 0, err
}

func (d *Decoder) ReadFloat64() (float64, error) {
	if d.Remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	var v uint64
	for _, b := range d.buf[d.pos : d.pos+8] {
		v = v<<8 | uint64(b)
	}
	d.pos += 8
	return math.Float64frombits(v), nil
}

// ReadCount reads a collection length. Every element takes at least one byte,
// so a count larger than the remaining input is rejected up front.
func (d *Decoder) ReadCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionLen {
		return 0, errors.Wrapf(ErrCollectionTooLarge, "count %d", n)
	}
	if n > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}
