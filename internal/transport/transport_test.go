// SPDX-License-Identifier: MIT
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"spectrum/internal/spectrum"
	"spectrum/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames(n int) []spectrum.Frame {
	frames := make([]spectrum.Frame, n)
	for i := range frames {
		frames[i] = spectrum.Frame{
			Channel:    i % 2,
			FreqPerBin: 100,
			Time:       float64(i) / 10,
			Values:     []complex128{0, 1, 0},
			Scaled:     []float64{math.Inf(-1), -20.5, -80},
		}
	}
	return frames
}

func TestNewFrameMessage(t *testing.T) {
	f := testFrames(2)[1]
	msg := NewFrameMessage(f)

	assert.Equal(t, 1, msg.Channel)
	assert.Equal(t, 0.1, msg.Time)
	assert.Equal(t, 100.0, msg.FreqPerBin)
	require.Len(t, msg.Scaled, 3)
	assert.Nil(t, msg.Scaled[0])
	require.NotNil(t, msg.Scaled[1])
	require.NotNil(t, msg.Scaled[2])
	assert.Equal(t, -20.5, *msg.Scaled[1])
	assert.Equal(t, -80.0, *msg.Scaled[2])

	// The message must not alias the frame.
	f.Scaled[1] = 0
	assert.Equal(t, -20.5, *msg.Scaled[1])

	b, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":1,"time":0.1,"freqPerBin":100,"scaled":[null,-20.5,-80]}`, string(b))
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	assert.NoError(t, lt.Send(testFrames(1)[0]))
	assert.NoError(t, lt.Send("not a frame"))
	assert.NoError(t, lt.Close())
}

func TestReplayerSendsEveryFrameInOrder(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	r := NewReplayer(0, a, b)
	assert.Equal(t, time.Duration(0), r.Interval())

	frames := testFrames(5)
	require.NoError(t, r.Replay(context.Background(), frames))

	for _, m := range []*utils.MockTransport{a, b} {
		require.Equal(t, 5, m.Count())
		for i, sent := range m.Sent {
			assert.Equal(t, frames[i].Time, sent.(spectrum.Frame).Time)
		}
	}

	require.NoError(t, r.Close())
	assert.True(t, a.Closed)
	assert.True(t, b.Closed)
}

func TestReplayerInterval(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, NewReplayer(10).Interval())
	assert.Equal(t, time.Millisecond, NewReplayer(1000).Interval())
}

func TestReplayerPacesFrames(t *testing.T) {
	m := &utils.MockTransport{}
	r := NewReplayer(100, m) // 10ms per frame

	start := time.Now()
	require.NoError(t, r.Replay(context.Background(), testFrames(4)))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 4, m.Count())
}

func TestReplayerCancel(t *testing.T) {
	m := &utils.MockTransport{}
	r := NewReplayer(1, m) // one frame per second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Replay(ctx, testFrames(10))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, m.Count())
}

type failingTransport struct{ err error }

func (f failingTransport) Send(any) error { return f.err }
func (f failingTransport) Close() error   { return f.err }

func TestReplayerCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := &utils.MockTransport{}
	r := NewReplayer(0, failingTransport{boom}, m)

	err := r.Replay(context.Background(), testFrames(3))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, m.Count(), "a failing transport must not stop the others")
	assert.ErrorIs(t, r.Close(), boom)
}

func TestReplayerNoFrames(t *testing.T) {
	m := &utils.MockTransport{}
	assert.NoError(t, NewReplayer(10, m).Replay(context.Background(), nil))
	assert.Equal(t, 0, m.Count())
}

func TestWebSocketTransportBroadcastsFrames(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer wst.Close()

	url := "ws://" + wst.Addr().String() + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, wst.Send(testFrames(3)[2]))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg FrameMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 0, msg.Channel)
	assert.Equal(t, 0.2, msg.Time)
	require.Len(t, msg.Scaled, 3)
	assert.Nil(t, msg.Scaled[0])
	assert.Equal(t, -20.5, *msg.Scaled[1])
}

func TestWebSocketTransportClose(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, err)

	require.NoError(t, wst.Close())
	assert.NoError(t, wst.Close(), "Close must be idempotent")
	assert.Error(t, wst.Send(testFrames(1)[0]))
}

func TestWebSocketTransportBadAddress(t *testing.T) {
	_, err := NewWebSocketTransport("not-an-address")
	assert.Error(t, err)
}
