package core

import (
	"strings"
	"testing"
)

func TestDebugPrintlnGated(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Expected only the enabled line, got %v", lines)
	}
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled returned false")
	}
}

func TestEventRingKeepsNewest(t *testing.T) {
	ClearEvents()
	for i := uint32(0); i < EventRingSize+5; i++ {
		RecordEvent(EvtTimerFire, i, i, 0)
	}

	events := RecentEvents()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Millis != 5 || events[len(events)-1].Millis != EventRingSize+4 {
		t.Errorf("Expected oldest 5 and newest %d, got %d and %d",
			EventRingSize+4, events[0].Millis, events[len(events)-1].Millis)
	}
}

func TestDumpEvents(t *testing.T) {
	ClearEvents()
	RecordEvent(EvtAdjust, 10, 20, 30)

	var out []string
	SetDebugWriter(func(s string) { out = append(out, s) })
	defer SetDebugWriter(func(string) {})

	DumpEvents()
	dump := strings.Join(out, "\n")
	if !strings.Contains(dump, "ADJUST ms=10 v1=20 v2=30") {
		t.Errorf("Dump missing event line:\n%s", dump)
	}
}

func TestItoa(t *testing.T) {
	testCases := []struct {
		n        int32
		expected string
	}{
		{0, "0"},
		{42, "42"},
		{-7, "-7"},
		{2147483647, "2147483647"},
		{-2147483648, "-2147483648"},
	}
	for _, tc := range testCases {
		if got := itoa(tc.n); got != tc.expected {
			t.Errorf("itoa(%d) = %q", tc.n, got)
		}
	}
	if got := utoa(4294967295); got != "4294967295" {
		t.Errorf("utoa(max) = %q", got)
	}
}
