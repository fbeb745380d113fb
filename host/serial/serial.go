// Package serial opens the link to a board running the time firmware
package serial

import (
	"errors"
	"io"
	"time"
)

// Port is a byte link to the board. Native ports use github.com/tarm/serial;
// tests substitute an in-memory pipe
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout; 0 blocks until data arrives
	ReadTimeout time.Duration
}

var ErrNoDevice = errors.New("no serial device configured")

// DefaultConfig returns the link settings the firmware uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100 * time.Millisecond,
	}
}
