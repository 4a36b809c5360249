// SPDX-License-Identifier: MIT
/*
Package spectrum computes the frequency-domain representation of a decoded
audio file:

- FFT: one real-input transform per channel over the whole file
- PFFT: one transform per channel and time index over consecutive,
  non-overlapping segments of sampleRate/timeScale samples
- Normalisation of every bin onto a bit-depth-aware percentage scale

Every transform consumes exactly WindowSize samples. Shorter input is
zero-padded and longer input is truncated; a segment's transform never reads
beyond that segment.

The Engine is not safe for concurrent use. Query results are copies and may
be handed to other goroutines freely.
*/
package spectrum

import (
	"fmt"

	"spectrum/internal/kernel"
	applog "spectrum/internal/log"
	"spectrum/internal/source"
)

// Engine owns a loaded source and the spectra computed from it.
type Engine struct {
	windowSize   int
	src          source.Source
	samples      [][]float64
	dynamicRange float64
	kernel       kernel.Kernel
	input        []float64 // kernel input workspace, windowSize long

	whole     *store // whole-file result set, nil until FFT
	segmented *store // segmented result set, nil until PFFT
	timeScale int    // time scale of segmented, 0 when empty
}

type options struct {
	kernel string
}

// Option customises engine construction.
type Option func(*options)

// WithKernel selects the transform backend by name (see package kernel).
func WithKernel(name string) Option {
	return func(o *options) {
		o.kernel = name
	}
}

// Open validates windowSize, then loads and fully decodes the audio file at
// path.
func Open(windowSize int, path string, opts ...Option) (*Engine, error) {
	if err := validateWindowSize(windowSize); err != nil {
		return nil, err
	}
	src, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return New(windowSize, src, opts...)
}

// New builds an engine over an already decoded source.
func New(windowSize int, src source.Source, opts ...Option) (*Engine, error) {
	if err := validateWindowSize(windowSize); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", source.ErrInvalidSource)
	}
	if src.Channels() <= 0 || src.SampleRate() <= 0 || src.BitDepth() <= 0 {
		return nil, fmt.Errorf("%w: %d channels, %d Hz, %d bit",
			source.ErrInvalidSource, src.Channels(), src.SampleRate(), src.BitDepth())
	}

	samples := src.Samples()
	if len(samples) != src.Channels() {
		return nil, fmt.Errorf("%w: %d channels of samples, source reports %d",
			source.ErrInvalidSource, len(samples), src.Channels())
	}
	for c, ch := range samples {
		if len(ch) != src.FramesPerChannel() {
			return nil, fmt.Errorf("%w: channel %d has %d frames, source reports %d",
				source.ErrInvalidSource, c, len(ch), src.FramesPerChannel())
		}
	}

	o := options{kernel: kernel.Gonum}
	for _, opt := range opts {
		opt(&o)
	}

	k, err := kernel.New(o.kernel, windowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadAllocate, err)
	}

	e := &Engine{
		windowSize:   windowSize,
		src:          src,
		samples:      samples,
		dynamicRange: DynamicRange(src.BitDepth()),
		kernel:       k,
		input:        make([]float64, windowSize),
	}

	applog.Debugf("Spectrum: engine ready (window %d, %s kernel, %d Hz, %d bit, dynamic range %.2f dB)",
		windowSize, k.Name(), src.SampleRate(), src.BitDepth(), e.dynamicRange)
	return e, nil
}

func validateWindowSize(windowSize int) error {
	if windowSize <= 0 || windowSize%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrBadWindowSize, windowSize)
	}
	return nil
}

// FFT transforms each channel as a whole and stores one frame per channel.
// The kernel sees the first WindowSize samples of the channel, so callers
// wanting the whole file covered must pick WindowSize == FramesPerChannel.
// Calling FFT again keeps the existing results.
func (e *Engine) FFT() error {
	if e.whole != nil {
		applog.Debugf("Spectrum: whole-file transform already computed")
		return nil
	}

	if frames := e.src.FramesPerChannel(); frames > e.windowSize {
		applog.Warnf("Spectrum: %d frames per channel, only the first %d are transformed", frames, e.windowSize)
	} else if frames < e.windowSize {
		applog.Warnf("Spectrum: %d frames per channel, zero-padding to window size %d", frames, e.windowSize)
	}

	st := newStore(len(e.samples), kernel.Bins(e.windowSize))
	for c, ch := range e.samples {
		raw, scaled := st.put(c, c, WholeFile)
		e.transform(raw, scaled, ch)
	}

	e.whole = st
	applog.Debugf("Spectrum: whole-file transform done (%d channels)", st.len())
	return nil
}

// PFFT transforms every channel in segments of SampleRate/timeScale samples,
// timeScale segments per second of audio. Frames are stored channel by
// channel, ordered by time within a channel.
//
// Repeating the last time scale keeps the existing results. A different
// time scale recomputes and replaces them; on error the previous results
// are left untouched.
func (e *Engine) PFFT(timeScale int) error {
	if e.segmented != nil && e.timeScale == timeScale {
		applog.Debugf("Spectrum: segmented transform at %d/s already computed", timeScale)
		return nil
	}

	plan, err := planSegments(e.src.SampleRate(), e.src.FramesPerChannel(), e.src.Duration(), timeScale)
	if err != nil {
		return err
	}
	if plan.length < e.windowSize {
		applog.Debugf("Spectrum: segment of %d samples is shorter than window %d, zero-padding",
			plan.length, e.windowSize)
	}

	st := newStore(len(e.samples)*plan.perChannel, kernel.Bins(e.windowSize))
	k := 0
	for c, ch := range e.samples {
		for j := 0; j < plan.perChannel; j++ {
			raw, scaled := st.put(k, c, plan.time(j))
			e.transform(raw, scaled, plan.segment(ch, j))
			k++
		}
	}

	if e.segmented != nil {
		applog.Infof("Spectrum: replacing segmented results at %d/s with %d/s", e.timeScale, timeScale)
	}
	e.segmented = st
	e.timeScale = timeScale
	applog.Debugf("Spectrum: segmented transform done (%d frames, %d per channel, %d samples per segment)",
		st.len(), plan.perChannel, plan.length)
	return nil
}

// transform runs one kernel call over samples and normalises the result.
func (e *Engine) transform(raw []complex128, scaled []float64, samples []float64) {
	fillWindow(e.input, samples)
	e.kernel.Transform(raw, e.input)
	scale(scaled, raw, e.dynamicRange)
}

// FFTValues returns a copy of the whole-file spectrum, one frame per channel.
func (e *Engine) FFTValues() ([]Frame, error) {
	if e.whole == nil {
		return nil, fmt.Errorf("%w: FFT has not been run", ErrEmptyContainer)
	}
	return e.whole.frames(0, e.whole.len(), e.FreqPerBin()), nil
}

// PFFTValues returns a copy of the segmented spectrum of all channels, one
// channel after the other.
func (e *Engine) PFFTValues() ([]Frame, error) {
	if e.segmented == nil {
		return nil, fmt.Errorf("%w: PFFT has not been run", ErrEmptyContainer)
	}
	return e.segmented.frames(0, e.segmented.len(), e.FreqPerBin()), nil
}

// PFFTChannel returns a copy of the segmented spectrum of one channel.
func (e *Engine) PFFTChannel(channel int) ([]Frame, error) {
	if channel < 0 || channel >= e.Channels() {
		return nil, fmt.Errorf("%w: channel %d, source has %d", ErrBadChannel, channel, e.Channels())
	}
	if e.segmented == nil {
		return nil, fmt.Errorf("%w: PFFT has not been run", ErrEmptyContainer)
	}

	// Every channel holds the same number of frames.
	perChannel := e.segmented.len() / len(e.samples)
	return e.segmented.frames(channel*perChannel, (channel+1)*perChannel, e.FreqPerBin()), nil
}

// WindowSize returns the number of samples per transform.
func (e *Engine) WindowSize() int { return e.windowSize }

// Bins returns the number of bins in every frame, WindowSize/2+1.
func (e *Engine) Bins() int { return kernel.Bins(e.windowSize) }

// FreqPerBin returns the frequency resolution in Hz.
func (e *Engine) FreqPerBin() float64 {
	return float64(e.src.SampleRate()) / float64(e.windowSize)
}

// SampleRate returns the source sampling rate in Hz.
func (e *Engine) SampleRate() int { return e.src.SampleRate() }

// Duration returns the source length in seconds.
func (e *Engine) Duration() float64 { return e.src.Duration() }

// FramesPerChannel returns the number of samples in each channel.
func (e *Engine) FramesPerChannel() int { return e.src.FramesPerChannel() }

// TotalFrames returns the number of samples across all channels.
func (e *Engine) TotalFrames() int { return e.FramesPerChannel() * e.Channels() }

// Channels returns the number of source channels.
func (e *Engine) Channels() int { return e.src.Channels() }

// BitDepth returns the source bit depth.
func (e *Engine) BitDepth() int { return e.src.BitDepth() }

// IsMono reports whether the source has a single channel.
func (e *Engine) IsMono() bool { return e.Channels() == 1 }

// DynamicRange returns the dB range used as the normalisation reference.
func (e *Engine) DynamicRange() float64 { return e.dynamicRange }

// TimeScale returns the time scale of the current segmented results, or 0.
func (e *Engine) TimeScale() int { return e.timeScale }

// KernelName returns the transform backend in use.
func (e *Engine) KernelName() string { return e.kernel.Name() }

// Samples returns a copy of the source samples indexed [channel][frame].
func (e *Engine) Samples() [][]float64 {
	out := make([][]float64, len(e.samples))
	for c, ch := range e.samples {
		out[c] = append([]float64(nil), ch...)
	}
	return out
}
