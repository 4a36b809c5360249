// SPDX-License-Identifier: MIT

// Package kernel wraps real-input FFT implementations behind a single
// interface. A Kernel of size N maps N real samples onto the N/2+1
// non-negative frequency bins. Outputs are unnormalised.
package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// Kernel is a planned real-input forward transform of a fixed length.
type Kernel interface {
	// Size returns the number of real input samples N.
	Size() int
	// Transform writes the N/2+1 coefficients of src into dst and returns
	// dst. len(src) must be Size() and len(dst) must be Size()/2+1.
	Transform(dst []complex128, src []float64) []complex128
	// Name identifies the backend.
	Name() string
}

// Backend names accepted by New.
const (
	Gonum = "gonum"
	GoDSP = "godsp"
)

// ErrSetup is returned when a kernel cannot be planned.
var ErrSetup = errors.New("kernel setup failed")

// Resolve maps a backend name, case-insensitively, to its canonical name. An
// empty name selects the gonum backend and "go-dsp" is accepted for godsp.
func Resolve(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Gonum:
		return Gonum, nil
	case GoDSP, "go-dsp":
		return GoDSP, nil
	default:
		return "", fmt.Errorf("%w: unknown backend %q", ErrSetup, name)
	}
}

// New plans a kernel of the given size using the named backend (see Resolve).
func New(name string, size int) (Kernel, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrSetup, size)
	}
	backend, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	if backend == GoDSP {
		return newGoDSP(size), nil
	}
	return newGonum(size), nil
}

// Bins returns the number of output coefficients for a real input of size n.
func Bins(n int) int {
	return n/2 + 1
}

func checkLengths(k Kernel, dst []complex128, src []float64) {
	if len(src) != k.Size() {
		panic(fmt.Sprintf("kernel: input length %d, want %d", len(src), k.Size()))
	}
	if len(dst) != Bins(k.Size()) {
		panic(fmt.Sprintf("kernel: output length %d, want %d", len(dst), Bins(k.Size())))
	}
}
