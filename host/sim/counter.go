// Package sim runs the firmware clock on a host, driven by the host's
// monotonic clock instead of a hardware timer
package sim

import (
	"time"
)

// HostCounter is a RawReader that behaves like an N-bit hardware timer
// clocked at a fixed frequency. Its count is derived from the host
// monotonic clock, so it wraps exactly like the register it stands in for
type HostCounter struct {
	hz      uint64
	mask    uint32
	bits    uint8
	elapsed func() time.Duration
}

// NewHostCounter starts a counter of the given width and frequency at zero
func NewHostCounter(bits uint8, hz uint32) *HostCounter {
	start := time.Now()
	return newHostCounter(bits, hz, func() time.Duration { return time.Since(start) })
}

func newHostCounter(bits uint8, hz uint32, elapsed func() time.Duration) *HostCounter {
	if bits == 0 || bits > 32 {
		bits = 32
	}
	return &HostCounter{
		hz:      uint64(hz),
		mask:    uint32(uint64(1)<<bits - 1),
		bits:    bits,
		elapsed: elapsed,
	}
}

// ReadRaw returns the current register value
func (c *HostCounter) ReadRaw() uint32 {
	ns := uint64(c.elapsed())
	// Split so ns*hz cannot overflow
	sec, rem := ns/uint64(time.Second), ns%uint64(time.Second)
	count := sec*c.hz + rem*c.hz/uint64(time.Second)
	return uint32(count) & c.mask
}

// Bits returns the register width
func (c *HostCounter) Bits() uint8 {
	return c.bits
}

// Period returns the time it takes the register to wrap
func (c *HostCounter) Period() time.Duration {
	return Period(c.bits, uint32(c.hz))
}

// Period returns the wrap period of a bits-wide register counting at hz.
// The clock must be read at least this often
func Period(bits uint8, hz uint32) time.Duration {
	if hz == 0 {
		return 0
	}
	counts := uint64(1) << bits
	sec, rem := counts/uint64(hz), counts%uint64(hz)
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(hz))
}
