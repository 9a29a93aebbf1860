package protocol

import (
	"io"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarint(t *testing.T) {
	tests := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		e := NewEncoder(0)
		e.WriteUvarint(tt.v)
		assert.Equal(t, tt.want, e.Bytes(), "encode %d", tt.v)

		got, err := NewDecoder(tt.want).ReadUvarint()
		require.NoError(t, err)
		assert.Equal(t, tt.v, got)
	}

	e := NewEncoder(0)
	e.WriteUvarint(math.MaxUint64)
	assert.Len(t, e.Bytes(), MaxVarintLen)
	got, err := NewDecoder(e.Bytes()).ReadUvarint()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)
}

func TestSvarintZigZag(t *testing.T) {
	for v, want := range map[int64]byte{0: 0, -1: 1, 1: 2, -2: 3, 2: 4} {
		e := NewEncoder(0)
		e.WriteSvarint(v)
		assert.Equal(t, []byte{want}, e.Bytes(), "encode %d", v)
	}
	for _, v := range []int64{math.MinInt64, -300, 0, 300, math.MaxInt64} {
		e := NewEncoder(0)
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDecoderErrors(t *testing.T) {
	_, err := NewDecoder([]byte{0x80}).ReadUvarint()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	overflow := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, err = NewDecoder(overflow).ReadUvarint()
	assert.ErrorIs(t, err, ErrVarintOverflow)

	e := NewEncoder(0)
	e.WriteUvarint(math.MaxUint32 + 1)
	_, err = NewDecoder(e.Bytes()).ReadUint32()
	assert.True(t, errors.Is(err, ErrVarintOverflow))

	// A length prefix claiming more than was sent.
	_, err = NewDecoder([]byte{0x05, 'a', 'b'}).ReadString()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	e.Reset()
	e.WriteUvarint(MaxStringLen + 1)
	_, err = NewDecoder(e.Bytes()).ReadString()
	assert.True(t, errors.Is(err, ErrStringTooLong))

	e.Reset()
	e.WriteUvarint(MaxCollectionLen + 1)
	_, err = NewDecoder(e.Bytes()).ReadCount()
	assert.True(t, errors.Is(err, ErrCollectionTooLarge))

	_, err = NewDecoder([]byte{0x03, 0x00}).ReadCount()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestScalars(t *testing.T) {
	e := NewEncoder(0)
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteString("héllo")
	e.WriteFloat64(-1.5)
	e.WriteUint8(0xfe)

	d := NewDecoder(e.Bytes())
	b, err := d.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)
	b, err = d.ReadBool()
	require.NoError(t, err)
	assert.False(t, b)
	s, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
	f, err := d.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, -1.5, f)
	c, err := d.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xfe), c)
	assert.True(t, d.Done())

	_, err = d.ReadFloat64()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
