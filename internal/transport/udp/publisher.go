// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	applog "spectrum/internal/log"
	"spectrum/internal/spectrum"
)

// HeaderSize is the length in bytes of the fixed packet header.
const HeaderSize = 4 + 4 + 2 + 2

// MaxDatagram is the largest UDP payload an IPv4 socket accepts.
const MaxDatagram = 65507

// MaxBins is the most scaled values that fit in one datagram.
const MaxBins = (MaxDatagram - HeaderSize) / 4

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Time              | float32        | 4            | Seconds, -1 whole file  |
| Channel           | uint16         | 2            | Channel index           |
| Bin Count         | uint16         | 2            | Number of floats (N)    |
| Scaled            | []float32      | N * 4        | Normalised magnitudes   |
+-----------------------------------------------------------------------------+
*/

// Packet is a decoded frame datagram.
type Packet struct {
	Sequence uint32
	Time     float32
	Channel  uint16
	Scaled   []float32
}

// Publisher packs spectrum frames into binary datagrams and sends them with a
// Sender. It implements transport.Transport.
type Publisher struct {
	sender *Sender
	mu     sync.Mutex // Serialises packing into the shared buffers

	sequenceNum uint32

	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a Publisher that owns sender.
func NewPublisher(sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	return &Publisher{
		sender:       sender,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Dial is a shorthand for NewSender followed by NewPublisher.
func Dial(targetAddress string) (*Publisher, error) {
	sender, err := NewSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return NewPublisher(sender)
}

// Send packs a spectrum.Frame and writes it as one datagram.
func (p *Publisher) Send(data any) error {
	f, ok := data.(spectrum.Frame)
	if !ok {
		return fmt.Errorf("UDPPublisher: cannot send %T", data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sequenceNum++
	if err := p.pack(f); err != nil {
		applog.Errorf("UDPPublisher: error packing frame: %v", err)
		return err
	}

	packet := p.packetBuffer.Bytes()
	if err := p.sender.Send(packet); err != nil {
		return err
	}
	applog.Debugf("UDPPublisher: sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	return nil
}

func (p *Publisher) pack(f spectrum.Frame) error {
	if len(f.Scaled) > MaxBins {
		return fmt.Errorf("frame has %d bins, packet limit is %d", len(f.Scaled), MaxBins)
	}
	if f.Channel < 0 || f.Channel > math.MaxUint16 {
		return fmt.Errorf("channel %d does not fit in a packet", f.Channel)
	}

	if cap(p.f32Buffer) < len(f.Scaled) {
		p.f32Buffer = make([]float32, len(f.Scaled))
	}
	p.f32Buffer = p.f32Buffer[:len(f.Scaled)]
	for i, v := range f.Scaled {
		p.f32Buffer[i] = float32(v)
	}

	p.packetBuffer.Reset()
	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, float32(f.Time))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(f.Channel))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(p.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer)
	}
	return err
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	applog.Debugf("UDPPublisher: closing")
	return p.sender.Close()
}

// Decode parses a datagram written by Publisher.
func Decode(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes", len(b))
	}

	var pkt Packet
	pkt.Sequence = binary.BigEndian.Uint32(b[0:4])
	pkt.Time = math.Float32frombits(binary.BigEndian.Uint32(b[4:8]))
	pkt.Channel = binary.BigEndian.Uint16(b[8:10])
	count := int(binary.BigEndian.Uint16(b[10:12]))

	if want := HeaderSize + 4*count; len(b) != want {
		return Packet{}, fmt.Errorf("packet length %d does not match %d bins", len(b), count)
	}

	pkt.Scaled = make([]float32, count)
	if err := binary.Read(bytes.NewReader(b[HeaderSize:]), binary.BigEndian, pkt.Scaled); err != nil {
		return Packet{}, err
	}
	return pkt, nil
}
