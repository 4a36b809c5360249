// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	applog "spectrum/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// LoadWAV decodes a PCM WAV file from disk.
func LoadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	buf, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	applog.Debugf("Source: loaded %s (%d Hz, %d bit, %d channels, %d frames)",
		path, buf.SampleRate(), buf.BitDepth(), buf.Channels(), buf.FramesPerChannel())
	return buf, nil
}

// DecodeWAV reads a whole PCM WAV stream into memory and de-interleaves it.
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file format")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV audio format %d is not integer PCM", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("error reading WAV data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	samples, err := deinterleave(pcm, int(dec.NumChans), bitDepth)
	if err != nil {
		return nil, err
	}

	return NewBuffer(int(dec.SampleRate), bitDepth, samples)
}

// deinterleave splits interleaved integer PCM into per-channel float slices
// scaled to [-1.0, 1.0). A trailing partial frame is dropped.
func deinterleave(pcm *audio.IntBuffer, channels, bitDepth int) ([][]float64, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: WAV header declares %d channels", ErrInvalidSource, channels)
	}
	divisor, offset, err := sampleScale(bitDepth)
	if err != nil {
		return nil, err
	}

	frames := len(pcm.Data) / channels
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		base := i * channels
		for c := 0; c < channels; c++ {
			out[c][i] = (float64(pcm.Data[base+c]) - offset) / divisor
		}
	}
	return out, nil
}

// sampleScale returns the divisor and DC offset that map integer samples of
// the given depth onto [-1.0, 1.0). 8-bit WAV data is unsigned.
func sampleScale(bitDepth int) (divisor, offset float64, err error) {
	switch bitDepth {
	case 8:
		return 128.0, 128.0, nil
	case 16:
		return 32768.0, 0, nil
	case 24:
		return 8388608.0, 0, nil
	case 32:
		return 2147483648.0, 0, nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
}
