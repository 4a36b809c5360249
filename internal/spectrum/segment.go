// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"math"

	applog "spectrum/internal/log"
)

// Time scale bounds for PFFT, in segments per second.
const (
	MinTimeScale = 1
	MaxTimeScale = 1000
)

// durationEpsilon absorbs float error in duration*timeScale, so that a 0.3 s
// signal at 10 segments per second yields 3 segments and not 2.
const durationEpsilon = 1e-9

// segmentPlan describes how each channel is cut for the segmented transform.
type segmentPlan struct {
	timeScale  int
	length     int // samples per segment
	perChannel int // segments per channel
}

// planSegments validates timeScale and sizes the segments. The segment count is
// floor(duration*timeScale), clamped to the whole segments the channel holds
// so the last segment never reads past the end of the samples.
func planSegments(sampleRate, frames int, duration float64, timeScale int) (segmentPlan, error) {
	if timeScale < MinTimeScale || timeScale > MaxTimeScale {
		return segmentPlan{}, fmt.Errorf("%w: got %d", ErrBadTimeScale, timeScale)
	}

	length := sampleRate / timeScale
	if length < 1 {
		return segmentPlan{}, fmt.Errorf("%w: %d segments per second exceeds the %d Hz sample rate",
			ErrBadTimeScale, timeScale, sampleRate)
	}

	perChannel := int(math.Floor(duration*float64(timeScale) + durationEpsilon))
	if perChannel < 0 {
		perChannel = 0
	}
	if whole := frames / length; perChannel > whole {
		applog.Debugf("Spectrum: clamping segment count from %d to %d (%d frames, %d per segment)",
			perChannel, whole, frames, length)
		perChannel = whole
	}

	return segmentPlan{
		timeScale:  timeScale,
		length:     length,
		perChannel: perChannel,
	}, nil
}

// segment returns the samples of time index j.
func (p segmentPlan) segment(samples []float64, j int) []float64 {
	return samples[j*p.length : (j+1)*p.length]
}

// time returns the start of time index j in seconds.
func (p segmentPlan) time(j int) float64 {
	return float64(j) / float64(p.timeScale)
}

// fillWindow copies the first len(dst) samples of src into dst and zero-pads
// the remainder when src is shorter.
func fillWindow(dst, src []float64) {
	n := copy(dst, src)
	clear(dst[n:])
}
