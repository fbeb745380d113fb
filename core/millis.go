package core

// MillisecondClock converts the tick stream into a free-running millisecond
// counter. Sub-millisecond remainders are carried between reads instead of
// being dropped (Bresenham style), so the long-run average error is zero even
// when ticksPerMs does not divide the elapsed tick count
type MillisecondClock struct {
	src        *TickSource
	retire     Retirer
	ticksPerMs uint32

	tickMark uint32 // tick value up to which milliseconds were credited
	sampled  uint32 // tick value seen by the last Read
	ms       uint32
}

// NewMillisecondClock creates a millisecond clock on top of src.
// A nil retirer selects Divide
func NewMillisecondClock(src *TickSource, ticksPerMs uint32, retire Retirer) (*MillisecondClock, error) {
	c := &MillisecondClock{}
	if err := c.Configure(src, ticksPerMs, retire); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure (re)initializes the clock. The millisecond count restarts at zero
// from the tick source's current value.
// Tick rates coarser than one tick per millisecond are not supported
func (c *MillisecondClock) Configure(src *TickSource, ticksPerMs uint32, retire Retirer) error {
	if src == nil {
		return ErrNoSource
	}
	if ticksPerMs == 0 {
		return &ConfigError{Field: "ticks_per_ms", Value: ticksPerMs, Err: ErrTicksPerMs}
	}
	if retire == nil {
		retire = Divide
	}

	c.src = src
	c.retire = retire
	c.ticksPerMs = ticksPerMs
	c.tickMark = src.Ticks()
	c.sampled = c.tickMark
	c.ms = 0
	return nil
}

// Read refreshes the tick source and returns the updated millisecond count
func (c *MillisecondClock) Read() uint32 {
	now := c.src.Read()
	c.sampled = now

	// Wraparound safe: the pending span is always less than one word period
	n := c.retire.Retire(now-c.tickMark, c.ticksPerMs)
	c.tickMark += n * c.ticksPerMs
	c.ms += n
	return c.ms
}

// Last returns the millisecond count and the tick value at which it was last
// credited, without reading hardware
func (c *MillisecondClock) Last() (ms, tickMark uint32) {
	return c.ms, c.tickMark
}

// Sampled returns the tick value observed by the last Read
func (c *MillisecondClock) Sampled() uint32 {
	return c.sampled
}

// Remainder returns the ticks observed but not yet credited as a millisecond.
// Always less than TicksPerMs
func (c *MillisecondClock) Remainder() uint32 {
	return c.sampled - c.tickMark
}

// TicksPerMs returns the conversion ratio
func (c *MillisecondClock) TicksPerMs() uint32 {
	return c.ticksPerMs
}
