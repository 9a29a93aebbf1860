package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameEncode(t *testing.T) {
	f := &Frame{Type: FrameOps, Flags: FlagContinued, Payload: []byte{1, 2, 3}}
	assert.Equal(t, []byte{0x01, 0x01, 0, 0, 0, 3, 1, 2, 3}, f.Encode())

	got, err := DecodeFrame(f.Encode())
	require.NoError(t, err)
	assert.Equal(t, f, got)
	assert.True(t, got.Flags.Has(FlagContinued))
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame([]byte{0x01, 0x00})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeFrame([]byte{0x01, 0x00, 0, 0, 0, 2, 9})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeFrame([]byte{0x01, 0x00, 0, 0, 0, 1, 9, 9})
	assert.ErrorContains(t, err, "trailing")

	_, err = DecodeFrame([]byte{0x7f, 0x00, 0, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidFrameType))

	_, err = DecodeFrame([]byte{0x01, 0x00, 0xff, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
}

func TestReadWriteFrames(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		Hello{Version: Version, Root: 7}.Frame(),
		Event{Node: 12, Type: "input", Value: "abc"}.Frame(),
		ErrorFrame("boom"),
	}
	for _, f := range frames {
		require.NoError(t, WriteFrame(&buf, f))
	}

	var got []FrameType
	for {
		f, err := ReadFrame(&buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, f.Type)

		switch f.Type {
		case FrameHello:
			h, err := DecodeHello(f.Payload)
			require.NoError(t, err)
			assert.Equal(t, Hello{Version: Version, Root: 7}, h)
		case FrameEvent:
			ev, err := DecodeEvent(f.Payload)
			require.NoError(t, err)
			assert.Equal(t, Event{Node: 12, Type: "input", Value: "abc"}, ev)
		}
	}
	assert.Equal(t, []FrameType{FrameHello, FrameEvent, FrameError}, got)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	data := (&Frame{Type: FrameOps, Payload: []byte{1, 2, 3}}).Encode()
	_, err := ReadFrame(bytes.NewReader(data[:len(data)-1]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameTypeString(t *testing.T) {
	assert.Equal(t, "Ops", FrameOps.String())
	assert.Equal(t, "Unknown", FrameType(0x42).String())
}
