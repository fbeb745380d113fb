package core

// Guarded wraps a Clock for use from both mainline code and interrupt
// handlers. Every call runs with interrupts disabled (a mutex on host builds).
// Calls must not nest: a Guarded method must not be invoked from code that is
// already inside one
type Guarded struct {
	clock *Clock
}

// NewGuarded wraps c
func NewGuarded(c *Clock) *Guarded {
	return &Guarded{clock: c}
}

// Ticks returns the current widened tick count
func (g *Guarded) Ticks() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return g.clock.Ticks()
}

// Millis returns the current millisecond count
func (g *Guarded) Millis() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return g.clock.Millis()
}

// Seconds returns the current wall seconds
func (g *Guarded) Seconds() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return g.clock.Seconds()
}

// Snapshot returns a consistent reading of all three counters
func (g *Guarded) Snapshot() Snapshot {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return g.clock.Snapshot()
}

// Last returns the last retired state without a hardware read
func (g *Guarded) Last() Snapshot {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return g.clock.Last()
}

// Adjust shifts the wall seconds by delta
func (g *Guarded) Adjust(delta int32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	g.clock.Adjust(delta)
}

// Set makes the wall seconds read wall
func (g *Guarded) Set(wall uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	g.clock.Set(wall)
}

// Offset returns the wall-clock offset
func (g *Guarded) Offset() int32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return g.clock.Offset()
}
