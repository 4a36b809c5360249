// SPDX-License-Identifier: MIT
package transport

import (
	"context"
	"errors"
	"time"

	applog "spectrum/internal/log"
	"spectrum/internal/spectrum"
)

// Replayer sends computed frames to transports at the pace they were
// recorded: one frame per segment length.
type Replayer struct {
	interval   time.Duration
	transports []Transport
}

// NewReplayer creates a Replayer for frames produced at timeScale segments per
// second. A timeScale <= 0 sends frames without pausing.
func NewReplayer(timeScale int, transports ...Transport) *Replayer {
	var interval time.Duration
	if timeScale > 0 {
		interval = time.Second / time.Duration(timeScale)
	}
	return &Replayer{interval: interval, transports: transports}
}

// Interval returns the pause between frames.
func (r *Replayer) Interval() time.Duration {
	return r.interval
}

// Replay sends every frame to every transport in order, waiting Interval
// between frames. It returns ctx.Err() when cancelled. Transport errors are
// logged and returned joined once all frames are sent.
func (r *Replayer) Replay(ctx context.Context, frames []spectrum.Frame) error {
	if len(frames) == 0 {
		return nil
	}

	var ticker *time.Ticker
	if r.interval > 0 {
		ticker = time.NewTicker(r.interval)
		defer ticker.Stop()
	}

	applog.Infof("Replayer: sending %d frames to %d transports every %s",
		len(frames), len(r.transports), r.interval)

	var errs []error
	for i, f := range frames {
		if i > 0 && ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		for _, t := range r.transports {
			if err := t.Send(f); err != nil {
				applog.Warnf("Replayer: frame %d at %.3fs: %v", i, f.Time, err)
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Close closes every transport and returns their joined errors.
func (r *Replayer) Close() error {
	var errs []error
	for _, t := range r.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
