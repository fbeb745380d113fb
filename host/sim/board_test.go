package sim

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"systime/core"
	"systime/protocol"
)

func TestBoardServesCommands(t *testing.T) {
	reg := core.NewRegister(16)
	boardEnd, hostEnd := net.Pipe()
	defer hostEnd.Close()

	board, err := NewBoard(core.Config{
		Reader:         reg,
		HWBits:         16,
		TickMultiplier: 1,
		TicksPerMs:     1000,
	}, boardEnd, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- board.Run(ctx, time.Millisecond)
	}()

	frame, err := protocol.BuildFrame(0x14, func(o protocol.OutputBuffer) {
		protocol.EncodeSetTime(o, 42)
	})
	require.NoError(t, err)
	_, err = hostEnd.Write(frame)
	require.NoError(t, err)

	dec := protocol.NewDecoder(256)
	buf := make([]byte, 64)
	require.NoError(t, hostEnd.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg protocol.Message
	for {
		n, err := hostEnd.Read(buf)
		require.NoError(t, err)
		dec.Write(buf[:n])
		var ok bool
		if msg, ok = dec.Next(); ok {
			break
		}
	}

	reply, err := protocol.DecodeReply(msg)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x14), reply.Sequence)
	assert.Equal(t, uint32(42), reply.Report.Sec)
	assert.Equal(t, uint32(42), board.Clock().Seconds())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	boardEnd.Close()
}

func TestBoardRejectsBadConfig(t *testing.T) {
	boardEnd, hostEnd := net.Pipe()
	defer boardEnd.Close()
	defer hostEnd.Close()

	_, err := NewBoard(core.Config{Reader: core.NewRegister(16)}, boardEnd, nil)
	assert.Error(t, err)
}

func TestBoardStopsOnEOF(t *testing.T) {
	boardEnd, hostEnd := net.Pipe()
	board, err := NewBoard(core.Config{
		Reader:         core.NewRegister(16),
		HWBits:         16,
		TickMultiplier: 1,
		TicksPerMs:     1000,
	}, boardEnd, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- board.Run(context.Background(), time.Millisecond)
	}()

	hostEnd.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("board did not stop when the link closed")
	}
}
