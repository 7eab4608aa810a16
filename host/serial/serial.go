// Package serial opens the board's serial port.
package serial

import (
	"io"
	"time"

	"uniled/boards"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory pipes (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (9600 for every board; USB CDC ignores it)
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultConfig returns the default configuration for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        boards.DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}
