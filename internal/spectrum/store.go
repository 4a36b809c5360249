// SPDX-License-Identifier: MIT
package spectrum

// frameHeader is the per-frame metadata kept beside the bin arena.
type frameHeader struct {
	channel int
	time    float64
}

// store owns the bins of one result set. Raw and scaled values of every frame
// live in two contiguous arenas; frame i occupies [i*bins, (i+1)*bins).
type store struct {
	bins    int
	headers []frameHeader
	raw     []complex128
	scaled  []float64
}

func newStore(frames, bins int) *store {
	return &store{
		bins:    bins,
		headers: make([]frameHeader, frames),
		raw:     make([]complex128, frames*bins),
		scaled:  make([]float64, frames*bins),
	}
}

// put records the header of frame i and returns its bin slots. The slots are
// capped so appends cannot spill into the next frame.
func (s *store) put(i, channel int, time float64) (raw []complex128, scaled []float64) {
	s.headers[i] = frameHeader{channel: channel, time: time}
	lo, hi := i*s.bins, (i+1)*s.bins
	return s.raw[lo:hi:hi], s.scaled[lo:hi:hi]
}

func (s *store) len() int {
	return len(s.headers)
}

// frame returns an independent copy of frame i.
func (s *store) frame(i int, freqPerBin float64) Frame {
	lo, hi := i*s.bins, (i+1)*s.bins
	h := s.headers[i]
	return Frame{
		Channel:    h.channel,
		FreqPerBin: freqPerBin,
		Time:       h.time,
		Values:     append([]complex128(nil), s.raw[lo:hi]...),
		Scaled:     append([]float64(nil), s.scaled[lo:hi]...),
	}
}

// frames copies frames [beg, end).
func (s *store) frames(beg, end int, freqPerBin float64) []Frame {
	out := make([]Frame, 0, end-beg)
	for i := beg; i < end; i++ {
		out = append(out, s.frame(i, freqPerBin))
	}
	return out
}
