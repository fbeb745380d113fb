package core

import "errors"

// Config describes the hardware counter and the conversion ratios.
//
// Examples (32-bit accumulators):
//
//	1 MHz timer, 16-bit register:          HWBits 16, TickMultiplier 1,  TicksPerMs 1000
//	10 MHz timer, 32-bit register:         HWBits 32, TickMultiplier 1,  TicksPerMs 10000
//	11.0592 MHz timer, 16-bit register:    HWBits 16, TickMultiplier 10, TicksPerMs 110592
//
// A multiplier other than 1 lets non-integer tick rates be expressed exactly;
// the remainder-preserving conversion keeps the average error at zero
type Config struct {
	Reader         RawReader
	HWBits         uint8
	TickMultiplier uint32
	TicksPerMs     uint32

	// Retire selects the remainder retirement strategy. Nil means Divide
	Retire Retirer
}

// Validate reports every invalid field
func (c Config) Validate() error {
	var errs []error
	if c.Reader == nil {
		errs = append(errs, ErrNoReader)
	}
	if _, err := counterMask(c.HWBits); err != nil {
		errs = append(errs, err)
	}
	if c.TickMultiplier == 0 {
		errs = append(errs, &ConfigError{Field: "tick_multiplier", Value: 0, Err: ErrTickMultiplier})
	}
	if c.TicksPerMs == 0 {
		errs = append(errs, &ConfigError{Field: "ticks_per_ms", Value: 0, Err: ErrTicksPerMs})
	}
	return errors.Join(errs...)
}

// Snapshot is one consistent reading of all three granularities
type Snapshot struct {
	Ticks uint32
	Msec  uint32
	Sec   uint32 // wall seconds, offset applied
}

// Clock owns a tick source and the millisecond and second clocks built on it.
// It is not safe for use from more than one execution context; see Guarded
type Clock struct {
	ticks   TickSource
	millis  MillisecondClock
	seconds SecondClock
}

// New creates and configures a clock
func New(cfg Config) (*Clock, error) {
	c := &Clock{}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure resets all accumulators and the wall offset
func (c *Clock) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := c.ticks.Configure(cfg.Reader, cfg.HWBits, cfg.TickMultiplier); err != nil {
		return err
	}
	if err := c.millis.Configure(&c.ticks, cfg.TicksPerMs, cfg.Retire); err != nil {
		return err
	}
	if err := c.seconds.Configure(&c.millis, cfg.Retire); err != nil {
		return err
	}

	RecordEvent(EvtConfigure, 0, uint32(cfg.HWBits), cfg.TicksPerMs)
	DebugPrintln("systime: configured hw_bits=" + utoa(uint32(cfg.HWBits)) +
		" tick_multiplier=" + utoa(cfg.TickMultiplier) +
		" ticks_per_ms=" + utoa(cfg.TicksPerMs))
	return nil
}

// Ticks returns the current widened tick count
func (c *Clock) Ticks() uint32 {
	return c.ticks.Read()
}

// Millis returns the current millisecond count
func (c *Clock) Millis() uint32 {
	return c.millis.Read()
}

// Seconds returns the current wall seconds
func (c *Clock) Seconds() uint32 {
	return c.seconds.Now()
}

// UptimeSeconds returns the current internal second count, unaffected by
// wall-clock adjustments
func (c *Clock) UptimeSeconds() uint32 {
	return c.seconds.Read()
}

// LastMillis returns the millisecond count as of the last refresh
func (c *Clock) LastMillis() uint32 {
	ms, _ := c.millis.Last()
	return ms
}

// LastSeconds returns the wall seconds as of the last refresh
func (c *Clock) LastSeconds() uint32 {
	return c.seconds.Reported()
}

// Snapshot refreshes the whole chain once and returns all three values from
// that single pass
func (c *Clock) Snapshot() Snapshot {
	c.seconds.Read()
	ms, _ := c.millis.Last()
	return Snapshot{
		Ticks: c.millis.Sampled(),
		Msec:  ms,
		Sec:   c.seconds.Reported(),
	}
}

// Last returns the last fully retired milliseconds and seconds together with
// the tick value at which the last millisecond was credited. No hardware read
// is made, so Ticks lags real time by less than one millisecond
func (c *Clock) Last() Snapshot {
	ms, mark := c.millis.Last()
	return Snapshot{
		Ticks: mark,
		Msec:  ms,
		Sec:   c.seconds.Reported(),
	}
}

// Adjust shifts the wall seconds by delta
func (c *Clock) Adjust(delta int32) {
	c.seconds.Adjust(delta)
	RecordEvent(EvtAdjust, c.LastMillis(), uint32(delta), c.seconds.Reported())
}

// Set makes the wall seconds read wall
func (c *Clock) Set(wall uint32) {
	c.seconds.Set(wall)
	RecordEvent(EvtSet, c.LastMillis(), wall, uint32(c.seconds.Offset()))
}

// Offset returns the wall-clock offset in seconds
func (c *Clock) Offset() int32 {
	return c.seconds.Offset()
}

// TickSource exposes the underlying tick source
func (c *Clock) TickSource() *TickSource {
	return &c.ticks
}

// MillisecondClock exposes the underlying millisecond clock
func (c *Clock) MillisecondClock() *MillisecondClock {
	return &c.millis
}

// SecondClock exposes the underlying second clock
func (c *Clock) SecondClock() *SecondClock {
	return &c.seconds
}
