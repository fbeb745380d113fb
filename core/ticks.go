package core

// WordBits is the width of the tick, millisecond and second accumulators
const WordBits = 32

// RawReader reads the current value of a free-running hardware counter.
// Implementations must be O(1) and must not block
type RawReader interface {
	ReadRaw() uint32
}

// ReaderFunc adapts a plain function (e.g. a timer register read) to RawReader
type ReaderFunc func() uint32

// ReadRaw calls f
func (f ReaderFunc) ReadRaw() uint32 {
	return f()
}

// TickSource widens a narrow, wrapping hardware counter into a 32-bit tick
// accumulator that only wraps at 2^32.
//
// Read (or any clock built on top of it) must be called at least once per
// hardware counter period. If the register wraps more than once between two
// reads the extra periods are indistinguishable from a shorter gap and those
// ticks are lost.
type TickSource struct {
	reader RawReader
	mask   uint32
	mult   uint32

	// Register is as wide as the accumulator and unscaled: the raw value is
	// the tick count and no state is needed
	direct bool

	lastRaw uint32
	ticks   uint32
}

// NewTickSource creates a configured tick source
func NewTickSource(reader RawReader, hwBits uint8, tickMultiplier uint32) (*TickSource, error) {
	s := &TickSource{}
	if err := s.Configure(reader, hwBits, tickMultiplier); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure (re)initializes the tick source.
// hwBits is the width of the hardware register, tickMultiplier the number of
// internal ticks added for every hardware tick. The reader is called once to
// seed the last observed raw value so the first Read does not see a huge delta
func (s *TickSource) Configure(reader RawReader, hwBits uint8, tickMultiplier uint32) error {
	if reader == nil {
		return ErrNoReader
	}
	mask, err := counterMask(hwBits)
	if err != nil {
		return err
	}
	if tickMultiplier == 0 {
		return &ConfigError{Field: "tick_multiplier", Value: tickMultiplier, Err: ErrTickMultiplier}
	}

	s.reader = reader
	s.mask = mask
	s.mult = tickMultiplier
	s.direct = hwBits == WordBits && tickMultiplier == 1

	s.lastRaw = reader.ReadRaw()
	if s.direct {
		s.ticks = s.lastRaw
	} else {
		s.ticks = 0
	}
	return nil
}

// counterMask returns the mask for a register of the given width
func counterMask(bits uint8) (uint32, error) {
	if bits == 0 || bits > WordBits {
		return 0, &ConfigError{Field: "hw_bits", Value: uint32(bits), Err: ErrBitWidth}
	}
	return uint32(uint64(1)<<bits - 1), nil
}

// Read samples the hardware counter and returns the updated tick accumulator
func (s *TickSource) Read() uint32 {
	now := s.reader.ReadRaw()
	if s.direct {
		s.ticks = now
		return now
	}

	// Masked subtraction gives the forward distance even if the register
	// wrapped past zero, as long as it wrapped at most once
	diff := (now - s.lastRaw) & s.mask
	s.ticks += diff * s.mult
	s.lastRaw = now
	return s.ticks
}

// Ticks returns the accumulator as of the last Read without touching hardware
func (s *TickSource) Ticks() uint32 {
	return s.ticks
}

// Mask returns the hardware register mask
func (s *TickSource) Mask() uint32 {
	return s.mask
}

// Multiplier returns the number of internal ticks per hardware tick
func (s *TickSource) Multiplier() uint32 {
	return s.mult
}

// Direct reports whether the register is read without widening
func (s *TickSource) Direct() bool {
	return s.direct
}

// TicksPerMsFor returns the ticks_for_1ms value for a counter clocked at
// counterHz with the given multiplier.
//
//	1 MHz, x1        -> 1000
//	10 MHz, x1       -> 10000
//	11.0592 MHz, x10 -> 110592
//
// A rate that does not give a whole number is truncated, which shows up as a
// constant rate error in the millisecond clock
func TicksPerMsFor(counterHz, tickMultiplier uint32) uint32 {
	return uint32(uint64(counterHz) * uint64(tickMultiplier) / 1000)
}
