// SPDX-License-Identifier: MIT
package spectrum

import (
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// WholeFile is the Time of frames produced by the whole-file transform,
// which have no time offset.
const WholeFile = -1.0

// Frame is one transform result. Values holds the raw coefficients and
// Scaled the normalised magnitude of each, bin for bin.
type Frame struct {
	Channel    int
	FreqPerBin float64
	Time       float64 // seconds from the start, or WholeFile
	Values     []complex128
	Scaled     []float64
}

// Bins returns the number of frequency bins in the frame.
func (f Frame) Bins() int {
	return len(f.Values)
}

// Frequency returns the frequency in Hz of bin i.
func (f Frame) Frequency(i int) float64 {
	return float64(i) * f.FreqPerBin
}

// Peak returns the bin with the largest normalised value. For an empty frame it
// returns -1.
func (f Frame) Peak() (bin int, value float64) {
	if len(f.Scaled) == 0 {
		return -1, 0
	}
	bin = floats.MaxIdx(f.Scaled)
	return bin, f.Scaled[bin]
}

// IsWholeFile reports whether the frame came from the whole-file transform.
func (f Frame) IsWholeFile() bool {
	return f.Time == WholeFile
}

// FormatBin renders a coefficient as "real;imag".
func FormatBin(c complex128) string {
	return strconv.FormatFloat(real(c), 'g', -1, 64) + ";" + strconv.FormatFloat(imag(c), 'g', -1, 64)
}
