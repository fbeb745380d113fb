package core

import (
	"errors"
	"testing"
)

func TestConfigValidateReportsEveryField(t *testing.T) {
	err := Config{}.Validate()
	if err == nil {
		t.Fatal("Expected an error for an empty config")
	}
	for _, want := range []error{ErrNoReader, ErrBitWidth, ErrTickMultiplier, ErrTicksPerMs} {
		if !errors.Is(err, want) {
			t.Errorf("Expected %v in %v", want, err)
		}
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field == "" {
		t.Errorf("Expected a ConfigError naming the field, got %v", err)
	}

	if _, err := New(Config{}); err == nil {
		t.Error("New accepted an invalid config")
	}
}

func TestConfigPresets(t *testing.T) {
	testCases := []struct {
		name string
		hz   uint32
		bits uint8
		mult uint32
		tpm  uint32
	}{
		{"1MHz 16-bit", 1000000, 16, 1, 1000},
		{"10MHz 32-bit", 10000000, 32, 1, 10000},
		{"11.0592MHz 16-bit x10", 11059200, 16, 10, 110592},
	}

	for _, tc := range testCases {
		if got := TicksPerMsFor(tc.hz, tc.mult); got != tc.tpm {
			t.Errorf("%s: TicksPerMsFor = %d, expected %d", tc.name, got, tc.tpm)
		}
		cfg := Config{Reader: NewRegister(tc.bits), HWBits: tc.bits, TickMultiplier: tc.mult, TicksPerMs: tc.tpm}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestConfigureRestartsCounters(t *testing.T) {
	clock, reg := newTestClock(t, 16, 1, 1000, nil)
	advanceMillis(clock, reg, 1500)

	if err := clock.Configure(Config{Reader: reg, HWBits: 16, TickMultiplier: 1, TicksPerMs: 1000}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if clock.Millis() != 0 || clock.UptimeSeconds() != 0 || clock.Ticks() != 0 {
		t.Errorf("Counters not reset: ticks=%d ms=%d s=%d", clock.Ticks(), clock.Millis(), clock.UptimeSeconds())
	}

	// A rejected configuration leaves the clock running
	advanceMillis(clock, reg, 10)
	if err := clock.Configure(Config{Reader: reg, HWBits: 16, TickMultiplier: 1}); err == nil {
		t.Fatal("Configure accepted ticks_per_ms=0")
	}
	if got := clock.Millis(); got != 10 {
		t.Errorf("Expected clock to keep running at 10 ms, got %d", got)
	}
}

func TestSnapshotConsistent(t *testing.T) {
	clock, reg := newTestClock(t, 16, 3, 1000, nil)
	clock.Set(100)

	for i := 0; i < 823; i++ {
		reg.Advance(500)
		clock.Millis()
	}
	reg.Advance(100) // not yet observed

	snap := clock.Snapshot()
	if snap.Ticks != (823*500+100)*3 {
		t.Fatalf("Snapshot ticks %d, expected %d", snap.Ticks, (823*500+100)*3)
	}
	if snap.Msec != snap.Ticks/1000 {
		t.Errorf("Snapshot ms %d disagrees with ticks %d", snap.Msec, snap.Ticks)
	}
	if snap.Sec != 101 {
		t.Errorf("Snapshot sec %d, expected 101", snap.Sec)
	}
}

func TestSnapshotMatchesSeparateReads(t *testing.T) {
	clock, reg := newTestClock(t, 16, 1, 1000, nil)
	advanceMillis(clock, reg, 2750)
	reg.Advance(321)

	snap := clock.Snapshot()
	if snap.Ticks != clock.TickSource().Ticks() {
		t.Errorf("Snapshot ticks %d, tick source %d", snap.Ticks, clock.TickSource().Ticks())
	}
	if snap.Msec != 2750 || snap.Sec != 2 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
}

func TestLastDoesNotReadHardware(t *testing.T) {
	reg := NewRegister(16)
	reads := 0
	reader := ReaderFunc(func() uint32 {
		reads++
		return reg.ReadRaw()
	})

	clock, err := New(Config{Reader: reader, HWBits: 16, TickMultiplier: 1, TicksPerMs: 1000})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	reg.Advance(2500)
	clock.Snapshot()
	reg.Advance(2500)

	before := reads
	last := clock.Last()
	if reads != before {
		t.Errorf("Last read the hardware %d times", reads-before)
	}
	if last.Msec != 2 || last.Ticks != 2000 || last.Sec != 0 {
		t.Errorf("Expected {2000 2 0}, got %+v", last)
	}
	if clock.LastMillis() != 2 || clock.LastSeconds() != 0 {
		t.Errorf("LastMillis/LastSeconds = %d/%d", clock.LastMillis(), clock.LastSeconds())
	}
}

func TestClockRecordsEvents(t *testing.T) {
	ClearEvents()
	clock, _ := newTestClock(t, 16, 1, 1000, nil)
	clock.Set(50)
	clock.Adjust(-5)

	events := RecentEvents()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].EventType != EvtConfigure || events[1].EventType != EvtSet || events[2].EventType != EvtAdjust {
		t.Errorf("Unexpected event order: %+v", events)
	}
	if events[1].Value1 != 50 || events[2].Value2 != 45 {
		t.Errorf("Unexpected event values: %+v", events)
	}
}
