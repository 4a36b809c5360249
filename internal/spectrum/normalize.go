// SPDX-License-Identifier: MIT
package spectrum

import (
	"math"
	"math/cmplx"
)

// DynamicRange returns the theoretical dB span of a signal quantised to
// bitDepth bits, |20*log10(1/2^bitDepth)|. 16 bits give ~96.33 dB.
func DynamicRange(bitDepth int) float64 {
	return math.Abs(20 * math.Log10(1/math.Pow(2, float64(bitDepth))))
}

// Normalize maps a coefficient onto the percentage scale used for Scaled
// values: ((20*log10(|bin|) - dynamicRange) / dynamicRange) * 100.
//
// A magnitude of 2^bitDepth maps to 0; smaller magnitudes are negative. A
// zero-magnitude bin yields -Inf.
func Normalize(bin complex128, dynamicRange float64) float64 {
	db := 20 * math.Log10(cmplx.Abs(bin))
	return (db - dynamicRange) / dynamicRange * 100
}

// scale normalises raw into dst; both have one entry per bin.
func scale(dst []float64, raw []complex128, dynamicRange float64) {
	for i, c := range raw {
		dst[i] = Normalize(c, dynamicRange)
	}
}
