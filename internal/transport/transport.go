// SPDX-License-Identifier: MIT
package transport

import (
	"math"

	"spectrum/internal/spectrum"
)

// Transport defines a generic interface for sending computed frames.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// FrameMessage is the JSON form of a spectrum.Frame. Raw coefficients are
// omitted; JSON has no complex type and no infinities, so silent bins are
// sent as null.
type FrameMessage struct {
	Channel    int        `json:"channel"`
	Time       float64    `json:"time"`
	FreqPerBin float64    `json:"freqPerBin"`
	Scaled     []*float64 `json:"scaled"`
}

// NewFrameMessage converts a frame for JSON transports.
func NewFrameMessage(f spectrum.Frame) FrameMessage {
	scaled := make([]*float64, len(f.Scaled))
	for i, v := range f.Scaled {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			v := v // per-iteration copy (go < 1.22 loop semantics)
			scaled[i] = &v
		}
	}
	return FrameMessage{
		Channel:    f.Channel,
		Time:       f.Time,
		FreqPerBin: f.FreqPerBin,
		Scaled:     scaled,
	}
}
