// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"io"
)

// Summary is the human-readable description of an engine and its source.
type Summary struct {
	WindowSize       int
	FreqPerBin       float64
	SampleRate       int
	Duration         float64
	FramesPerChannel int
	TotalFrames      int
	Channels         int
	BitDepth         int
}

// Summary collects the engine's metadata.
func (e *Engine) Summary() Summary {
	return Summary{
		WindowSize:       e.WindowSize(),
		FreqPerBin:       e.FreqPerBin(),
		SampleRate:       e.SampleRate(),
		Duration:         e.Duration(),
		FramesPerChannel: e.FramesPerChannel(),
		TotalFrames:      e.TotalFrames(),
		Channels:         e.Channels(),
		BitDepth:         e.BitDepth(),
	}
}

// WriteTo writes the summary as one "label: value" line per field.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"FFT Window size: %d\n"+
			"Frequency per bin: %g\n"+
			"Sample rate: %d\n"+
			"Duration in seconds: %g\n"+
			"Frames per channel: %d\n"+
			"Total frames: %d\n"+
			"Number of channels: %d\n"+
			"Bit depth: %d\n",
		s.WindowSize, s.FreqPerBin, s.SampleRate, s.Duration,
		s.FramesPerChannel, s.TotalFrames, s.Channels, s.BitDepth)
	return int64(n), err
}
