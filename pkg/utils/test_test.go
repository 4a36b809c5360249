// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

var testMagnitudes []float64

func TestMain(m *testing.M) {
	testMagnitudes = make([]float64, testSize)

	// Creates a "hill" with peak at position testSize/4.
	for i := range testMagnitudes {
		testMagnitudes[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	os.Exit(m.Run())
}

func TestMockTransport(t *testing.T) {
	mt := &MockTransport{}
	for i := 0; i < 3; i++ {
		if err := mt.Send(i); err != nil {
			t.Fatalf("MockTransport.Send() error = %v", err)
		}
	}
	if mt.Count() != 3 {
		t.Errorf("MockTransport.Count() = %d, want 3", mt.Count())
	}
	if err := mt.Close(); err != nil || !mt.Closed {
		t.Errorf("MockTransport.Close() = %v, closed = %v", err, mt.Closed)
	}
}

func TestGenerateComplexWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
	}{
		{"Standard", 1024, 44100},
		{"Small", 16, 8000},
		{"Large", 8192, 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateComplexWave(tt.size, tt.sampleRate)

			if len(result) != tt.size {
				t.Errorf("GenerateComplexWave() buffer size = %d, want %d", len(result), tt.size)
			}

			hasNonZero := false
			for _, v := range result {
				if v != 0 {
					hasNonZero = true
					break
				}
			}
			if !hasNonZero {
				t.Errorf("GenerateComplexWave() produced all zeros")
			}
		})
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 44100, 440.0},
		{"Middle C", 44100, 261.63},
		{"Low Sample Rate", 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(testSize, tt.sampleRate, tt.frequency, 0.5)

			peak := 0.0
			for _, v := range result {
				peak = math.Max(peak, math.Abs(v))
			}
			if peak > 0.5 {
				t.Errorf("GenerateSineWave() peak = %f, want <= 0.5", peak)
			}

			// Two zero crossings per cycle, allow 20% for phase alignment.
			samplesPerCycle := tt.sampleRate / tt.frequency
			crossCount := 0
			for i := 1; i < testSize; i++ {
				if (result[i-1] < 0 && result[i] >= 0) || (result[i-1] >= 0 && result[i] < 0) {
					crossCount++
				}
			}
			expected := float64(testSize) / (samplesPerCycle / 2)
			if math.Abs(float64(crossCount)-expected) > 0.2*expected {
				t.Errorf("GenerateSineWave() zero crossings = %d, expected approximately %.1f", crossCount, expected)
			}
		})
	}
}

func TestFindPeakBin(t *testing.T) {
	tests := []struct {
		name     string
		mags     []float64
		start    int
		end      int
		expected int
	}{
		{"Full Range", testMagnitudes, 0, testSize - 1, testSize / 4},
		{"Partial Range Start", testMagnitudes, testSize / 8, testSize - 1, testSize / 4},
		{"Negative Start", testMagnitudes, -10, testSize - 1, testSize / 4},
		{"Out of Range End", testMagnitudes, 0, testSize * 2, testSize / 4},
		{"Empty Slice", []float64{}, 0, 10, 0},
		{"Single Value", []float64{1.0}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FindPeakBin(tt.mags, tt.start, tt.end); result != tt.expected {
				t.Errorf("FindPeakBin() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.wav")
	left := GenerateSineWave(800, 8000, 1000, 0.5)
	right := make([]float64, 800)

	if err := WriteWAV(path, 8000, 16, [][]float64{left, right}); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("fixture not written: %v", err)
	}
	// 44-byte header plus 800 frames of two 16-bit samples.
	if info.Size() < 44+800*2*2 {
		t.Errorf("fixture size = %d, too small", info.Size())
	}

	if err := WriteWAV(path, 8000, 8, [][]float64{left}); err != nil {
		t.Errorf("WriteWAV() 8-bit error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() < 44+800 {
		t.Errorf("8-bit fixture not written: %v", err)
	}

	if err := WriteWAV(path, 8000, 12, [][]float64{left}); err == nil {
		t.Error("expected error for unsupported bit depth")
	}
}
