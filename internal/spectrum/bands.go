// SPDX-License-Identifier: MIT
package spectrum

import (
	"math"
	"math/cmplx"
)

// Band is a named frequency range, LowHz inclusive and HighHz exclusive.
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// BandLevel is the energy of one band in a frame. Level is the RMS magnitude
// of the band's bins on the Scaled percentage scale; a band with no bins or
// no energy has a Level of -Inf.
type BandLevel struct {
	Band
	Bins  int
	Level float64
}

// DefaultBands returns the conventional sub to treble split, with the top band
// ending at the Nyquist frequency.
func DefaultBands(sampleRate int) []Band {
	nyquist := float64(sampleRate) / 2
	return []Band{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: math.Nextafter(nyquist, math.Inf(1))},
	}
}

// BandLevels sums the energy (magnitude squared) of each band's bins in f.
// Bins outside every band are ignored; a bin inside overlapping bands counts
// towards the first.
func BandLevels(f Frame, bands []Band, dynamicRange float64) []BandLevel {
	levels := make([]BandLevel, len(bands))
	energy := make([]float64, len(bands))
	for i, b := range bands {
		levels[i].Band = b
	}

	for i, c := range f.Values {
		freq := f.Frequency(i)
		for j, b := range bands {
			if freq >= b.LowHz && freq < b.HighHz {
				mag := cmplx.Abs(c)
				energy[j] += mag * mag
				levels[j].Bins++
				break
			}
		}
	}

	for j := range levels {
		if levels[j].Bins == 0 {
			levels[j].Level = math.Inf(-1)
			continue
		}
		rms := math.Sqrt(energy[j] / float64(levels[j].Bins))
		levels[j].Level = Normalize(complex(rms, 0), dynamicRange)
	}
	return levels
}

// BandLevels computes the levels of f against DefaultBands for the source's
// sample rate and bit depth.
func (e *Engine) BandLevels(f Frame) []BandLevel {
	return BandLevels(f, DefaultBands(e.SampleRate()), e.dynamicRange)
}
