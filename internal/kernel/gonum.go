// SPDX-License-Identifier: MIT
package kernel

import "gonum.org/v1/gonum/dsp/fourier"

// gonumKernel reuses one fourier.FFT plan for every call.
type gonumKernel struct {
	size int
	fft  *fourier.FFT
}

func newGonum(size int) *gonumKernel {
	return &gonumKernel{
		size: size,
		fft:  fourier.NewFFT(size),
	}
}

func (k *gonumKernel) Size() int { return k.size }

func (k *gonumKernel) Name() string { return Gonum }

func (k *gonumKernel) Transform(dst []complex128, src []float64) []complex128 {
	checkLengths(k, dst, src)
	return k.fft.Coefficients(dst, src)
}
