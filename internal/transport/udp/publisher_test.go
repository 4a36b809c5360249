// SPDX-License-Identifier: MIT
package udp

import (
	"math"
	"net"
	"testing"
	"time"

	"spectrum/internal/spectrum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receive(t *testing.T, conn *net.UDPConn) Packet {
	t.Helper()
	buf := make([]byte, 65536)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	pkt, err := Decode(buf[:n])
	require.NoError(t, err)
	return pkt
}

func TestPublisherSendsFrames(t *testing.T) {
	conn := listen(t)

	p, err := Dial(conn.LocalAddr().String())
	require.NoError(t, err)
	defer p.Close()

	first := spectrum.Frame{
		Channel:    1,
		FreqPerBin: 100,
		Time:       0.25,
		Values:     make([]complex128, 3),
		Scaled:     []float64{-10, math.Inf(-1), -60.5},
	}
	require.NoError(t, p.Send(first))

	pkt := receive(t, conn)
	assert.Equal(t, uint32(1), pkt.Sequence)
	assert.Equal(t, float32(0.25), pkt.Time)
	assert.Equal(t, uint16(1), pkt.Channel)
	require.Len(t, pkt.Scaled, 3)
	assert.Equal(t, float32(-10), pkt.Scaled[0])
	assert.True(t, math.IsInf(float64(pkt.Scaled[1]), -1))
	assert.Equal(t, float32(-60.5), pkt.Scaled[2])

	whole := spectrum.Frame{Time: spectrum.WholeFile, Scaled: []float64{-3}}
	require.NoError(t, p.Send(whole))

	pkt = receive(t, conn)
	assert.Equal(t, uint32(2), pkt.Sequence)
	assert.Equal(t, float32(-1), pkt.Time)
	assert.Equal(t, []float32{-3}, pkt.Scaled)
}

func TestPublisherRejectsOtherPayloads(t *testing.T) {
	conn := listen(t)
	p, err := Dial(conn.LocalAddr().String())
	require.NoError(t, err)
	defer p.Close()

	assert.Error(t, p.Send([]byte("raw")))
	assert.Error(t, p.Send(spectrum.Frame{Channel: -1}))
}

func TestPublisherClosed(t *testing.T) {
	conn := listen(t)
	p, err := Dial(conn.LocalAddr().String())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.Error(t, p.Send(spectrum.Frame{Scaled: []float64{0}}))
}

func TestNewPublisherNilSender(t *testing.T) {
	_, err := NewPublisher(nil)
	assert.Error(t, err)
}

func TestDialBadAddress(t *testing.T) {
	_, err := Dial("no-port")
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(make([]byte, HeaderSize-1))
	assert.Error(t, err)

	b := make([]byte, HeaderSize)
	b[11] = 2 // claims two bins with no payload
	_, err = Decode(b)
	assert.Error(t, err)
}

func TestPublisherDatagramLimit(t *testing.T) {
	assert.LessOrEqual(t, HeaderSize+4*MaxBins, MaxDatagram)
	assert.Greater(t, HeaderSize+4*(MaxBins+1), MaxDatagram)

	conn := listen(t)
	require.NoError(t, conn.SetReadBuffer(4*MaxDatagram))
	p, err := Dial(conn.LocalAddr().String())
	require.NoError(t, err)
	defer p.Close()

	// One bin too many is rejected before it reaches the socket.
	err = p.Send(spectrum.Frame{Scaled: make([]float64, MaxBins+1)})
	assert.ErrorContains(t, err, "packet limit")

	require.NoError(t, p.Send(spectrum.Frame{Scaled: make([]float64, MaxBins)}))
	pkt := receive(t, conn)
	assert.Len(t, pkt.Scaled, MaxBins)
}
