// SPDX-License-Identifier: MIT

// Package utils holds helpers shared by tests across the module: signal
// generators, a WAV fixture writer and a recording transport.
package utils

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// MockTransport records everything sent to it instead of transmitting.
type MockTransport struct {
	mu     sync.Mutex
	Sent   []any
	Closed bool
}

// Send stores the data for later inspection.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return nil
}

// Close marks the transport as closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Count returns the number of messages received so far.
func (m *MockTransport) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// GenerateComplexWave returns a 440Hz fundamental plus two harmonics.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
	}
	return buffer
}

// GenerateSineWave returns a sine of the given frequency and peak amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// FindPeakBin returns the index of the largest value in magnitudes[startBin:endBin+1].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// WriteWAV encodes per-channel samples in [-1.0, 1.0] as an integer PCM WAV
// file. Supported depths are 8, 16, 24 and 32 bits; 8-bit samples are
// written unsigned, centred on 128.
func WriteWAV(path string, sampleRate, bitDepth int, channels [][]float64) error {
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported fixture bit depth %d", bitDepth)
	}
	if len(channels) == 0 {
		return fmt.Errorf("no channels to write")
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	numChans := len(channels)
	frames := len(channels[0])
	fullScale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChans,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, frames*numChans),
		SourceBitDepth: bitDepth,
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < numChans; c++ {
			v := math.Round(channels[c][i] * fullScale)
			v = math.Max(-fullScale, math.Min(fullScale-1, v))
			buf.Data[i*numChans+c] = int(v + offset)
		}
	}

	enc := wav.NewEncoder(file, sampleRate, bitDepth, numChans, 1)
	if err := enc.Write(buf); err != nil {
		file.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
