package ledserial

import (
	"bytes"
	"strings"
	"testing"

	"github.com/DavSanchez/pixelclick/led"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripSendsFrames(t *testing.T) {
	var buf bytes.Buffer
	strip := NewStrip(&buf)

	frame := led.NewLEDs(3)
	frame.Fill(led.RGBColor{R: 15})
	require.NoError(t, strip.WriteColors(frame))
	require.NoError(t, strip.WriteColors(frame))

	p, err := ReadIncomingPacket(&buf, ReadContext{})
	require.NoError(t, err)
	require.Equal(t, InitializePacket{NumLEDs: 3}, p)

	rctx := ReadContext{NumLEDs: 3}
	for i := 0; i < 2; i++ {
		p, err = ReadIncomingPacket(&buf, rctx)
		require.NoError(t, err)
		assert.Equal(t, SetPacket{Pix: []uint8{15, 0, 0, 15, 0, 0, 15, 0, 0}}, p)
	}

	assert.Zero(t, buf.Len(), "strip re-initialized the controller")
}

func TestStripClear(t *testing.T) {
	var buf bytes.Buffer
	strip := NewStrip(&buf)

	require.NoError(t, strip.Clear())
	require.NoError(t, WriteIncomingPacket(&buf, InitializePacket{NumLEDs: 2}))
	require.NoError(t, strip.Clear())

	want := []IncomingPacket{ClearPacket{}, InitializePacket{NumLEDs: 2}, ClearPacket{}}
	for _, w := range want {
		p, err := ReadIncomingPacket(&buf, ReadContext{NumLEDs: 2})
		require.NoError(t, err)
		assert.Equal(t, w, p)
	}
	assert.Zero(t, buf.Len())
}

func TestLongMessageTruncated(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", MaxMessageLength+10)
	require.NoError(t, WriteOutgoingPacket(&buf, LogPacket{Message: long}))

	p, err := ReadOutgoingPacket(&buf, ReadContext{})
	require.NoError(t, err)
	assert.Equal(t, LogPacket{Message: long[:MaxMessageLength]}, p)
}

func TestControllerReplies(t *testing.T) {
	var buf bytes.Buffer
	replies := []OutgoingPacket{
		AckPacket{IncomingPacketType: TypeSetPacket},
		LogPacket{Message: "frame applied"},
		ErrorPacket{Message: "invalid number of pixels"},
		PanicPacket{},
	}
	for _, p := range replies {
		require.NoError(t, WriteOutgoingPacket(&buf, p))
	}

	for _, want := range replies {
		got, err := ReadOutgoingPacket(&buf, ReadContext{})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutgoingPacket(&buf, LogPacket{Message: "hello"}))

	b := buf.Bytes()
	b[4] ^= 0xFF // corrupt the message

	_, err := ReadOutgoingPacket(bytes.NewReader(b), ReadContext{})
	assert.True(t, errors.Is(err, ErrChecksum))
}
