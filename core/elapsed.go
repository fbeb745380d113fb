package core

// Elapsed returns now - start. Unsigned subtraction keeps the result correct
// across one wrap of the counter
func Elapsed(now, start uint32) uint32 {
	return now - start
}

// Expired reports whether at least interval has passed since start
func Expired(now, start, interval uint32) bool {
	return now-start >= interval
}

// Before reports whether a is earlier than b. Only meaningful when the two
// values are less than half a counter period apart
func Before(a, b uint32) bool {
	return int32(a-b) < 0
}

// TicksElapsed returns the number of ticks since start
func (c *Clock) TicksElapsed(start uint32) uint32 {
	return Elapsed(c.Ticks(), start)
}

// TicksExpired reports whether interval ticks have passed since start
func (c *Clock) TicksExpired(start, interval uint32) bool {
	return Expired(c.Ticks(), start, interval)
}

// MillisElapsed returns the number of milliseconds since start
func (c *Clock) MillisElapsed(start uint32) uint32 {
	return Elapsed(c.Millis(), start)
}

// MillisExpired reports whether interval milliseconds have passed since start
func (c *Clock) MillisExpired(start, interval uint32) bool {
	return Expired(c.Millis(), start, interval)
}

// SecondsElapsed returns the number of internal seconds since start.
// start must come from UptimeSeconds; wall seconds can jump
func (c *Clock) SecondsElapsed(start uint32) uint32 {
	return Elapsed(c.UptimeSeconds(), start)
}

// SecondsExpired reports whether interval internal seconds have passed since start
func (c *Clock) SecondsExpired(start, interval uint32) bool {
	return Expired(c.UptimeSeconds(), start, interval)
}
