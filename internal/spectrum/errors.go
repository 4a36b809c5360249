// SPDX-License-Identifier: MIT
package spectrum

import "errors"

// Failure kinds reported by the engine. Operations wrap them with context,
// match them with errors.Is.
var (
	// ErrBadWindowSize is returned for a window size that is not positive and even.
	ErrBadWindowSize = errors.New("FFT window size must be even and greater than 0")

	// ErrBadTimeScale is returned for a time scale outside [MinTimeScale, MaxTimeScale]
	// or one that leaves segments without samples.
	ErrBadTimeScale = errors.New("time scale must be between 1 and 1000")

	// ErrBadChannel is returned when a query names a channel the source does not have.
	ErrBadChannel = errors.New("requested channel does not match the available channels")

	// ErrBadAllocate is returned when the transform kernel cannot be set up.
	ErrBadAllocate = errors.New("transform resources cannot be allocated")

	// ErrEmptyContainer is returned by queries issued before the producing transform ran.
	ErrEmptyContainer = errors.New("spectrum is empty, run FFT or PFFT first")
)
