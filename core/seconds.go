package core

const msPerSecond = 1000

// SecondClock converts the millisecond stream into whole seconds and applies
// a signed wall-clock offset at the reporting boundary.
//
// The offset is never folded into the internal count: Read is monotonic no
// matter how often the wall time is corrected
type SecondClock struct {
	ms     *MillisecondClock
	retire Retirer

	msMark uint32 // millisecond value up to which seconds were credited
	sec    uint32
	offset int32
}

// NewSecondClock creates a second clock on top of ms.
// A nil retirer selects Divide
func NewSecondClock(ms *MillisecondClock, retire Retirer) (*SecondClock, error) {
	c := &SecondClock{}
	if err := c.Configure(ms, retire); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure (re)initializes the clock and clears the offset
func (c *SecondClock) Configure(ms *MillisecondClock, retire Retirer) error {
	if ms == nil {
		return ErrNoSource
	}
	if retire == nil {
		retire = Divide
	}
	c.ms = ms
	c.retire = retire
	c.msMark, _ = ms.Last()
	c.sec = 0
	c.offset = 0
	return nil
}

// Read refreshes the millisecond clock and returns the internal (unadjusted)
// second count
func (c *SecondClock) Read() uint32 {
	now := c.ms.Read()
	n := c.retire.Retire(now-c.msMark, msPerSecond)
	c.msMark += n * msPerSecond
	c.sec += n
	return c.sec
}

// Internal returns the unadjusted second count as of the last Read
func (c *SecondClock) Internal() uint32 {
	return c.sec
}

// Reported returns the wall seconds as of the last Read
func (c *SecondClock) Reported() uint32 {
	return c.sec + uint32(c.offset)
}

// Now refreshes the clock and returns wall seconds
func (c *SecondClock) Now() uint32 {
	c.Read()
	return c.Reported()
}

// Adjust shifts the wall time by delta seconds.
// Compute delta as new_time - current_time
func (c *SecondClock) Adjust(delta int32) {
	c.offset += delta
}

// Set makes the wall time read wall from now on
func (c *SecondClock) Set(wall uint32) {
	c.Adjust(int32(wall - c.Now()))
}

// Offset returns the current wall-clock offset
func (c *SecondClock) Offset() int32 {
	return c.offset
}

// Remainder returns the milliseconds not yet credited as a second
func (c *SecondClock) Remainder() uint32 {
	ms, _ := c.ms.Last()
	return ms - c.msMark
}
