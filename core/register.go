package core

import "sync/atomic"

// Register is a software counter register of a fixed bit width. It stands in
// for hardware when time comes from a variable incremented in a periodic
// interrupt, and is the simulated timer used by tests.
//
// Advance and Set may be called from an interrupt handler; ReadRaw is safe to
// call concurrently with them
type Register struct {
	value uint32 // atomic
	mask  uint32
	bits  uint8
}

// NewRegister creates a zeroed register. Widths outside 1..32 give a full
// 32-bit register
func NewRegister(bits uint8) *Register {
	mask, err := counterMask(bits)
	if err != nil {
		bits = WordBits
		mask = ^uint32(0)
	}
	return &Register{mask: mask, bits: bits}
}

// ReadRaw returns the current register value
func (r *Register) ReadRaw() uint32 {
	return atomic.LoadUint32(&r.value) & r.mask
}

// Set loads the register
func (r *Register) Set(v uint32) {
	atomic.StoreUint32(&r.value, v&r.mask)
}

// Advance adds n counts, wrapping at the register width
func (r *Register) Advance(n uint32) {
	// 2^32 is a multiple of every register period, so masking on read is
	// enough
	atomic.AddUint32(&r.value, n)
}

// Bits returns the register width
func (r *Register) Bits() uint8 {
	return r.bits
}
