// SPDX-License-Identifier: MIT

// Package source provides decoded audio signals for spectral analysis. A
// source exposes its samples de-interleaved per channel and normalised to the
// [-1.0, 1.0) range, together with the metadata the analysis needs.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidSource is returned for sources whose metadata cannot describe a
// signal (no channels, non-positive rate or bit depth, ragged channels).
var ErrInvalidSource = errors.New("invalid audio source")

// ErrUnsupportedFormat is returned by Load for file types with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Source is the read-only view of a decoded audio signal.
type Source interface {
	SampleRate() int
	BitDepth() int
	Channels() int
	Duration() float64
	FramesPerChannel() int
	// Samples returns the signal indexed [channel][frame]. Callers must not
	// modify the returned slices.
	Samples() [][]float64
}

// Buffer is an in-memory Source.
type Buffer struct {
	sampleRate int
	bitDepth   int
	samples    [][]float64
}

var _ Source = (*Buffer)(nil)

// NewBuffer wraps already decoded per-channel samples. Every channel must
// hold the same number of frames.
func NewBuffer(sampleRate, bitDepth int, samples [][]float64) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidSource, sampleRate)
	}
	if bitDepth <= 0 {
		return nil, fmt.Errorf("%w: bit depth must be positive, got %d", ErrInvalidSource, bitDepth)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidSource)
	}
	frames := len(samples[0])
	for c, ch := range samples {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, channel 0 has %d",
				ErrInvalidSource, c, len(ch), frames)
		}
	}

	return &Buffer{
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		samples:    samples,
	}, nil
}

// SampleRate returns the sampling rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// BitDepth returns the quantisation depth of the original encoding.
func (b *Buffer) BitDepth() int { return b.bitDepth }

// Channels returns the number of channels.
func (b *Buffer) Channels() int { return len(b.samples) }

// FramesPerChannel returns the number of samples held by each channel.
func (b *Buffer) FramesPerChannel() int { return len(b.samples[0]) }

// Duration returns the length of the signal in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.FramesPerChannel()) / float64(b.sampleRate)
}

// Samples returns the underlying per-channel samples without copying.
func (b *Buffer) Samples() [][]float64 { return b.samples }

// IsMono reports whether the signal has a single channel.
func (b *Buffer) IsMono() bool { return len(b.samples) == 1 }

// Load opens and fully decodes the audio file at path. The decoder is picked
// from the file extension.
func Load(path string) (*Buffer, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return LoadWAV(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
