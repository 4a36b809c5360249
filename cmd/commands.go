// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"spectrum/internal/config"
	"spectrum/internal/kernel"
	applog "spectrum/internal/log"
	"spectrum/internal/source"
	"spectrum/internal/spectrum"
	"spectrum/internal/transport"
	"spectrum/internal/transport/udp"
	"spectrum/pkg/bitint"

	"github.com/spf13/cobra"
)

func newSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>",
		Short: "Print the properties of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(args[0], wholeFileWindow)
			if err != nil {
				return err
			}
			_, err = e.Summary().WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func newFFTCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fft <file>",
		Short: "Transform each channel as a whole",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(args[0], wholeFileWindow)
			if err != nil {
				return err
			}
			if _, err := e.Summary().WriteTo(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if err := e.FFT(); err != nil {
				return err
			}
			frames, err := e.FFTValues()
			if err != nil {
				return err
			}
			return opts.printFrames(cmd.OutOrStdout(), e, frames)
		},
	}
}

func newPFFTCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pfft <file>",
		Short: "Transform consecutive segments of each channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(args[0], opts.segmentWindow)
			if err != nil {
				return err
			}
			if _, err := e.Summary().WriteTo(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if err := e.PFFT(opts.cfg.Analysis.TimeScale); err != nil {
				return err
			}

			var frames []spectrum.Frame
			if opts.channel >= 0 {
				frames, err = e.PFFTChannel(opts.channel)
			} else {
				frames, err = e.PFFTValues()
			}
			if err != nil {
				return err
			}
			return opts.printFrames(cmd.OutOrStdout(), e, frames)
		},
	}
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve <file>",
		Short: "Replay the segmented spectrum of one channel to network clients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(args[0], opts.serveWindow)
			if err != nil {
				return err
			}
			if opts.cfg.Transport.UDPEnabled && e.Bins() > udp.MaxBins {
				return fmt.Errorf("window size %d gives %d bins, UDP packets hold at most %d",
					e.WindowSize(), e.Bins(), udp.MaxBins)
			}
			timeScale := opts.cfg.Analysis.TimeScale
			if err := e.PFFT(timeScale); err != nil {
				return err
			}
			frames, err := e.PFFTChannel(opts.cfg.Analysis.Channel)
			if err != nil {
				return err
			}

			transports, err := newTransports(opts.cfg.Transport)
			if err != nil {
				return err
			}
			replayer := transport.NewReplayer(timeScale, transports...)
			defer func() {
				if err := replayer.Close(); err != nil {
					applog.Warnf("Serve: closing transports: %v", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			applog.Infof("Serve: replaying %d frames of channel %d", len(frames), opts.cfg.Analysis.Channel)
			err = replayer.Replay(ctx, frames)
			if errors.Is(err, context.Canceled) {
				applog.Infof("Serve: interrupted")
				return nil
			}
			return err
		},
	}
}

// newTransports opens the transports enabled in cfg. With none enabled the
// frames are logged.
func newTransports(cfg config.TransportConfig) ([]transport.Transport, error) {
	var transports []transport.Transport

	if cfg.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddress)
		if err != nil {
			return nil, err
		}
		transports = append(transports, ws)
	}

	if cfg.UDPEnabled {
		pub, err := udp.Dial(cfg.UDPTargetAddress)
		if err != nil {
			for _, t := range transports {
				t.Close()
			}
			return nil, err
		}
		transports = append(transports, pub)
	}

	if len(transports) == 0 {
		transports = append(transports, transport.NewLoggingTransport())
	}
	return transports, nil
}

// windowFunc picks the window size for an automatic (zero) setting.
type windowFunc func(src source.Source) int

// wholeFileWindow covers every sample of a channel.
func wholeFileWindow(src source.Source) int {
	return max(2, bitint.NextPowerOfTwo(src.FramesPerChannel()))
}

// segmentWindow covers one segment at the configured time scale.
func (o *options) segmentWindow(src source.Source) int {
	return max(2, bitint.NextPowerOfTwo(src.SampleRate()/o.cfg.Analysis.TimeScale))
}

// serveWindow is segmentWindow limited to frames that fit in one UDP packet
// when UDP is enabled.
func (o *options) serveWindow(src source.Source) int {
	windowSize := o.segmentWindow(src)
	if !o.cfg.Transport.UDPEnabled {
		return windowSize
	}
	limited := windowSize
	for limited > 2 && kernel.Bins(limited) > udp.MaxBins {
		limited /= 2
	}
	if limited != windowSize {
		applog.Warnf("CLI: window size %d exceeds the UDP packet limit, using %d", windowSize, limited)
	}
	return limited
}

// open decodes path and builds an engine with the configured window and kernel.
func (o *options) open(path string, auto windowFunc) (*spectrum.Engine, error) {
	src, err := source.Load(path)
	if err != nil {
		return nil, err
	}

	windowSize := o.cfg.Analysis.WindowSize
	if windowSize == config.AutoWindowSize {
		windowSize = auto(src)
		applog.Debugf("CLI: automatic window size %d", windowSize)
	}
	if !bitint.IsPowerOfTwo(windowSize) {
		applog.Debugf("CLI: window size %d is not a power of two, transforms take a slower non-radix-2 path", windowSize)
	}

	return spectrum.New(windowSize, src, spectrum.WithKernel(o.cfg.Analysis.Kernel))
}

// printFrames writes one line per frame, one line per bin with --bins or one
// line per band with --bands.
func (o *options) printFrames(w io.Writer, e *spectrum.Engine, frames []spectrum.Frame) error {
	for _, f := range frames {
		if o.bands {
			for _, l := range e.BandLevels(f) {
				if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\n",
					f.Channel, formatTime(f), l.Name, l.Bins, l.Level); err != nil {
					return err
				}
			}
			continue
		}
		if o.bins {
			for i, c := range f.Values {
				if _, err := fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\t%s\t%.2f\n",
					f.Channel, formatTime(f), i, f.Frequency(i), spectrum.FormatBin(c), f.Scaled[i]); err != nil {
					return err
				}
			}
			continue
		}

		bin, value := f.Peak()
		if _, err := fmt.Fprintf(w, "channel %d\ttime %s\tpeak %.1f Hz\t%.2f\n",
			f.Channel, formatTime(f), f.Frequency(bin), value); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(f spectrum.Frame) string {
	if f.IsWholeFile() {
		return "whole"
	}
	return fmt.Sprintf("%.3f", f.Time)
}
