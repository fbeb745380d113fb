package core

// MillisReader is the clock a Scheduler runs on. Clock and Guarded both
// implement it
type MillisReader interface {
	Millis() uint32
}

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32 // milliseconds, in the scheduler clock's time base
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler runs timers against a millisecond clock. It makes progress only
// when Dispatch is called, and every Dispatch reads the clock, so polling it
// from the main loop also keeps the clock inside its liveness window.
//
// Wake times are compared with wraparound-safe differences; a timer must not
// be scheduled more than 2^31 ms ahead
type Scheduler struct {
	clock MillisReader
	list  *Timer
}

// NewScheduler creates an empty scheduler on clock
func NewScheduler(clock MillisReader) *Scheduler {
	return &Scheduler{clock: clock}
}

// Schedule adds a timer to the schedule. A timer without a handler is
// ignored
func (s *Scheduler) Schedule(t *Timer) {
	if t == nil || t.Handler == nil {
		return
	}
	state := disableInterrupts()
	defer restoreInterrupts(state)

	s.insert(t)
}

// insert inserts a timer in wake order. Timers with equal wake times keep
// insertion order
func (s *Scheduler) insert(t *Timer) {
	if s.list == nil || Before(t.WakeTime, s.list.WakeTime) {
		t.Next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.Next != nil && !Before(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Cancel removes a pending timer. Returns false if it was not scheduled
func (s *Scheduler) Cancel(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for p := &s.list; *p != nil; p = &(*p).Next {
		if *p == t {
			*p = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// Dispatch runs every timer that is due and returns how many ran.
// A handler that reschedules itself into the past runs again on the next
// Dispatch, not in this one
func (s *Scheduler) Dispatch() int {
	now := s.clock.Millis()

	// Detach due timers first; handlers run outside the critical section so
	// they may read a Guarded clock or schedule other timers
	state := disableInterrupts()
	var due, tail *Timer
	for s.list != nil && !Before(now, s.list.WakeTime) {
		t := s.list
		s.list = t.Next
		t.Next = nil
		if tail == nil {
			due = t
		} else {
			tail.Next = t
		}
		tail = t
	}
	restoreInterrupts(state)

	ran := 0
	for due != nil {
		t := due
		due = t.Next
		t.Next = nil

		if t.Handler == nil {
			// Cleared after it was scheduled
			continue
		}
		RecordEvent(EvtTimerFire, now, t.WakeTime, 0)
		ran++
		if t.Handler(t) == SF_RESCHEDULE {
			s.Schedule(t)
		}
	}
	return ran
}

// Next returns the wake time of the earliest pending timer
func (s *Scheduler) Next() (uint32, bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s.list == nil {
		return 0, false
	}
	return s.list.WakeTime, true
}

// Pending returns the number of scheduled timers
func (s *Scheduler) Pending() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	n := 0
	for t := s.list; t != nil; t = t.Next {
		n++
	}
	return n
}

// Every schedules handler to run every intervalMs milliseconds, starting one
// interval from now. The returned timer can be passed to Cancel
func (s *Scheduler) Every(intervalMs uint32, handler func()) *Timer {
	t := &Timer{
		WakeTime: s.clock.Millis() + intervalMs,
		Handler: func(t *Timer) uint8 {
			handler()
			// Drift-free: advance from the previous wake time, not from now
			t.WakeTime += intervalMs
			return SF_RESCHEDULE
		},
	}
	s.Schedule(t)
	return t
}
