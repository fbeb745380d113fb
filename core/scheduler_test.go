package core

import "testing"

type fakeMillis struct {
	now uint32
}

func (f *fakeMillis) Millis() uint32 {
	return f.now
}

func TestSchedulerOrder(t *testing.T) {
	clock := &fakeMillis{now: 0}
	sched := NewScheduler(clock)

	var order []int
	record := func(n int) func(*Timer) uint8 {
		return func(*Timer) uint8 {
			order = append(order, n)
			return SF_DONE
		}
	}

	sched.Schedule(&Timer{WakeTime: 30, Handler: record(3)})
	sched.Schedule(&Timer{WakeTime: 10, Handler: record(1)})
	sched.Schedule(&Timer{WakeTime: 20, Handler: record(2)})
	sched.Schedule(&Timer{WakeTime: 20, Handler: record(4)}) // same time, later insertion

	if next, ok := sched.Next(); !ok || next != 10 {
		t.Errorf("Next() = %d, %v; expected 10", next, ok)
	}

	clock.now = 9
	if ran := sched.Dispatch(); ran != 0 {
		t.Errorf("Nothing should be due at 9 ms, ran %d", ran)
	}

	clock.now = 25
	if ran := sched.Dispatch(); ran != 3 {
		t.Errorf("Expected 3 timers at 25 ms, ran %d", ran)
	}
	clock.now = 30
	sched.Dispatch()

	expected := []int{1, 2, 4, 3}
	if len(order) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("Expected %v, got %v", expected, order)
		}
	}
	if sched.Pending() != 0 {
		t.Errorf("Expected empty schedule, %d pending", sched.Pending())
	}
}

func TestSchedulerAcrossWrap(t *testing.T) {
	clock := &fakeMillis{now: 0xFFFFFFF0}
	sched := NewScheduler(clock)

	var fired []uint32
	handler := func(tm *Timer) uint8 {
		fired = append(fired, tm.WakeTime)
		return SF_DONE
	}

	sched.Schedule(&Timer{WakeTime: 0x10, Handler: handler})       // after the wrap
	sched.Schedule(&Timer{WakeTime: 0xFFFFFFF8, Handler: handler}) // before the wrap

	if next, _ := sched.Next(); next != 0xFFFFFFF8 {
		t.Errorf("Expected pre-wrap timer first, got 0x%X", next)
	}

	clock.now = 0xFFFFFFFF
	sched.Dispatch()
	if len(fired) != 1 {
		t.Fatalf("Expected only the pre-wrap timer, fired %v", fired)
	}

	clock.now = 0x10
	sched.Dispatch()
	if len(fired) != 2 || fired[1] != 0x10 {
		t.Errorf("Expected post-wrap timer to fire, fired %v", fired)
	}
}

func TestSchedulerReschedule(t *testing.T) {
	clock := &fakeMillis{}
	sched := NewScheduler(clock)

	count := 0
	sched.Schedule(&Timer{
		WakeTime: 5,
		Handler: func(tm *Timer) uint8 {
			count++
			if count == 3 {
				return SF_DONE
			}
			tm.WakeTime += 5
			return SF_RESCHEDULE
		},
	})

	for clock.now = 0; clock.now <= 50; clock.now++ {
		sched.Dispatch()
	}
	if count != 3 {
		t.Errorf("Expected 3 runs, got %d", count)
	}
}

func TestSchedulerRescheduleIntoPast(t *testing.T) {
	clock := &fakeMillis{now: 100}
	sched := NewScheduler(clock)

	runs := 0
	sched.Schedule(&Timer{
		WakeTime: 100,
		Handler: func(tm *Timer) uint8 {
			runs++
			return SF_RESCHEDULE // same wake time, already due
		},
	})

	if ran := sched.Dispatch(); ran != 1 {
		t.Errorf("A rescheduled timer must not run twice in one Dispatch, ran %d", ran)
	}
	sched.Dispatch()
	if runs != 2 {
		t.Errorf("Expected 2 runs over two Dispatch calls, got %d", runs)
	}
}

func TestSchedulerCancel(t *testing.T) {
	clock := &fakeMillis{}
	sched := NewScheduler(clock)

	fired := false
	a := &Timer{WakeTime: 10, Handler: func(*Timer) uint8 { fired = true; return SF_DONE }}
	b := &Timer{WakeTime: 20, Handler: func(*Timer) uint8 { return SF_DONE }}
	sched.Schedule(a)
	sched.Schedule(b)

	if !sched.Cancel(a) {
		t.Error("Cancel of a pending timer returned false")
	}
	if sched.Cancel(a) {
		t.Error("Cancel of an already cancelled timer returned true")
	}
	if sched.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", sched.Pending())
	}

	clock.now = 30
	sched.Dispatch()
	if fired {
		t.Error("Cancelled timer fired")
	}
	if _, ok := sched.Next(); ok {
		t.Error("Expected empty schedule")
	}
}

func TestSchedulerEvery(t *testing.T) {
	clock := &fakeMillis{now: 1000}
	sched := NewScheduler(clock)

	runs := 0
	tm := sched.Every(100, func() { runs++ })

	// Dispatch late every time; the period must not stretch
	for clock.now = 1000; clock.now < 2000; clock.now += 37 {
		sched.Dispatch()
	}
	if runs != 9 {
		t.Errorf("Expected 9 runs by 1998 ms, got %d", runs)
	}
	if tm.WakeTime != 2000 {
		t.Errorf("Expected next wake at 2000, got %d", tm.WakeTime)
	}

	sched.Cancel(tm)
	clock.now = 5000
	sched.Dispatch()
	if runs != 9 {
		t.Errorf("Cancelled periodic timer kept running")
	}
}

func TestSchedulerOnClock(t *testing.T) {
	clock, reg := newTestClock(t, 16, 1, 1000, nil)
	sched := NewScheduler(clock)

	fired := false
	sched.Schedule(&Timer{WakeTime: 20, Handler: func(*Timer) uint8 { fired = true; return SF_DONE }})

	advanceMillis(clock, reg, 19)
	sched.Dispatch()
	if fired {
		t.Fatal("Timer fired early")
	}
	reg.Advance(1000)
	sched.Dispatch()
	if !fired {
		t.Error("Timer did not fire at 20 ms")
	}
}

func TestSchedulerIgnoresTimerWithoutHandler(t *testing.T) {
	clock := &fakeMillis{now: 0}
	sched := NewScheduler(clock)

	sched.Schedule(&Timer{WakeTime: 5})
	sched.Schedule(nil)
	if sched.Pending() != 0 {
		t.Errorf("Timer without handler was scheduled, %d pending", sched.Pending())
	}

	cleared := &Timer{WakeTime: 5, Handler: func(*Timer) uint8 { return SF_RESCHEDULE }}
	sched.Schedule(cleared)
	cleared.Handler = nil

	clock.now = 10
	if ran := sched.Dispatch(); ran != 0 {
		t.Errorf("Expected no timers to run, ran %d", ran)
	}
	if sched.Pending() != 0 {
		t.Errorf("Cleared timer stayed scheduled, %d pending", sched.Pending())
	}
}
