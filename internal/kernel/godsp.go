// SPDX-License-Identifier: MIT
package kernel

import "github.com/mjibson/go-dsp/fft"

// goDSPKernel computes the full complex spectrum with go-dsp and keeps the
// non-negative half. go-dsp plans internally, so there is nothing to reuse.
type goDSPKernel struct {
	size int
}

func newGoDSP(size int) *goDSPKernel {
	return &goDSPKernel{size: size}
}

func (k *goDSPKernel) Size() int { return k.size }

func (k *goDSPKernel) Name() string { return GoDSP }

func (k *goDSPKernel) Transform(dst []complex128, src []float64) []complex128 {
	checkLengths(k, dst, src)
	full := fft.FFTReal(src)
	copy(dst, full[:len(dst)])
	return dst
}
