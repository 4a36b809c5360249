// SPDX-License-Identifier: MIT
package transport

import (
	applog "spectrum/internal/log"
	"spectrum/internal/spectrum"
)

// LoggingTransport implements the Transport interface by logging a one-line
// digest of every frame at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received frame. Other payloads are logged by type only.
func (lt *LoggingTransport) Send(data any) error {
	f, ok := data.(spectrum.Frame)
	if !ok {
		applog.Debugf("Transport: received %T", data)
		return nil
	}
	bin, value := f.Peak()
	applog.Debugf("Transport: channel %d at %.3fs, peak %.1f Hz (%.2f)",
		f.Channel, f.Time, f.Frequency(bin), value)
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
