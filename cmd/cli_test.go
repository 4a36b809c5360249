// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spectrum/internal/config"
	"spectrum/internal/kernel"
	applog "spectrum/internal/log"
	"spectrum/internal/source"
	"spectrum/internal/spectrum"
	"spectrum/internal/transport/udp"
	"spectrum/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSine writes a mono 16-bit 1kHz sine sampled at 8kHz.
func writeSine(t *testing.T, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sine.wav")
	sine := utils.GenerateSineWave(frames, 8000, 1000, 0.5)
	require.NoError(t, utils.WriteWAV(path, 8000, 16, [][]float64{sine}))
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	level := applog.GetLevel()
	t.Cleanup(func() { applog.SetLevel(level) })

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestSummaryCommand(t *testing.T) {
	path := writeSine(t, 8000)

	stdout, _, err := run(t, "summary", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "FFT Window size: 1024\n")
	assert.Contains(t, stdout, "Sample rate: 8000\n")
	assert.Contains(t, stdout, "Frames per channel: 8000\n")
	assert.Contains(t, stdout, "Number of channels: 1\n")
	assert.Contains(t, stdout, "Bit depth: 16\n")
}

func TestSummaryCommandAutoWindow(t *testing.T) {
	path := writeSine(t, 8000)

	stdout, _, err := run(t, "summary", "--window", "0", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "FFT Window size: 8192\n")
}

func TestFFTCommand(t *testing.T) {
	path := writeSine(t, 8000)

	stdout, stderr, err := run(t, "fft", "--window", "8000", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Frequency per bin: 1\n")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "channel 0")
	assert.Contains(t, lines[0], "time whole")
	assert.Contains(t, lines[0], "peak 1000.0 Hz")
}

func TestFFTCommandBins(t *testing.T) {
	path := writeSine(t, 64)

	stdout, _, err := run(t, "fft", "--window", "8", "--bins", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	fields := strings.Split(lines[2], "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "0", fields[0])
	assert.Equal(t, "whole", fields[1])
	assert.Equal(t, "2", fields[2])
	assert.Equal(t, "2000.0", fields[3])
	assert.Contains(t, fields[4], ";")
}

func TestFFTCommandBands(t *testing.T) {
	path := writeSine(t, 8000)

	stdout, _, err := run(t, "fft", "--window", "8000", "--bands", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "0\twhole\tsub\t"))
	assert.True(t, strings.HasPrefix(lines[3], "0\twhole\tmid\t1500\t"))
}

func TestPFFTCommand(t *testing.T) {
	path := writeSine(t, 8000)

	stdout, _, err := run(t, "pfft", "--window", "2000", "--time-scale", "4", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	for i, want := range []string{"0.000", "0.250", "0.500", "0.750"} {
		assert.Contains(t, lines[i], "time "+want)
		assert.Contains(t, lines[i], "peak 1000.0 Hz")
	}
}

func TestPFFTCommandBadChannel(t *testing.T) {
	path := writeSine(t, 8000)

	_, _, err := run(t, "pfft", "--channel", "1", path)
	assert.ErrorIs(t, err, spectrum.ErrBadChannel)
}

func TestInvalidFlags(t *testing.T) {
	path := writeSine(t, 800)

	tests := []struct {
		name string
		args []string
	}{
		{"odd window", []string{"fft", "--window", "7", path}},
		{"time scale too large", []string{"pfft", "--time-scale", "1001", path}},
		{"unknown kernel", []string{"fft", "--kernel", "fftw", path}},
		{"missing file", []string{"summary", filepath.Join(t.TempDir(), "missing.wav")}},
		{"no file", []string{"summary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestServeCommandWithLoggingTransport(t *testing.T) {
	path := writeSine(t, 800)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
transport:
  websocket_enabled: false
  udp_enabled: false
`), 0o644))

	_, _, err := run(t, "serve", "--config", cfgPath, "--time-scale", "100", "--window", "0", path)
	assert.NoError(t, err)
}

func TestServeRejectsWindowOverUDPLimit(t *testing.T) {
	path := writeSine(t, 800)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
transport:
  websocket_enabled: false
  udp_enabled: true
  udp_target_address: `+conn.LocalAddr().String()+`
`), 0o644))

	_, _, err = run(t, "serve", "--config", cfgPath, "--window", "65536", path)
	assert.ErrorContains(t, err, "UDP packets hold at most")
}

func TestServeWindowFitsUDP(t *testing.T) {
	src, err := source.NewBuffer(44100, 16, [][]float64{make([]float64, 44100)})
	require.NoError(t, err)

	tests := []struct {
		name      string
		timeScale int
		udp       bool
		want      int
	}{
		{"one per second", 1, true, 16384},
		{"two per second", 2, true, 16384},
		{"ten per second", 10, true, 8192},
		{"no udp", 1, false, 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Analysis.TimeScale = tt.timeScale
			cfg.Transport.UDPEnabled = tt.udp
			o := &options{cfg: cfg}

			got := o.serveWindow(src)
			assert.Equal(t, tt.want, got)
			if tt.udp {
				assert.LessOrEqual(t, kernel.Bins(got), udp.MaxBins)
			}
		})
	}
}
