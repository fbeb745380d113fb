package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// ClockEvent captures a time-keeping event for post-mortem analysis
type ClockEvent struct {
	EventType uint8  // Event type code
	Millis    uint32 // Millisecond clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtConfigure = 1 // Clock configured (hw_bits, ticks_per_ms)
	EvtSet       = 2 // Wall time set (new time, resulting offset)
	EvtAdjust    = 3 // Wall time adjusted (delta, new wall time)
	EvtTimerFire = 4 // Scheduler timer fired (wake time)
	EvtCommand   = 5 // Time command received (command ID)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	eventRing     [EventRingSize]ClockEvent
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a clock event in the ring buffer. Never blocks
func RecordEvent(eventType uint8, millis, value1, value2 uint32) {
	state := lockEvents()
	defer unlockEvents(state)

	idx := eventRingHead
	eventRing[idx] = ClockEvent{
		EventType: eventType,
		Millis:    millis,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// RecentEvents returns the recorded events, oldest first
func RecentEvents() []ClockEvent {
	events := make([]ClockEvent, 0, EventRingSize)
	state := lockEvents()
	defer unlockEvents(state)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpEvents writes the event ring through the debug writer
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[CLOCK] === Event Ring Dump ===")
	for _, evt := range RecentEvents() {
		var name string
		switch evt.EventType {
		case EvtConfigure:
			name = "CONFIGURE"
		case EvtSet:
			name = "SET"
		case EvtAdjust:
			name = "ADJUST"
		case EvtTimerFire:
			name = "TIMER_FIRE"
		case EvtCommand:
			name = "COMMAND"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[CLOCK] " + name +
			" ms=" + utoa(evt.Millis) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[CLOCK] === End Dump ===")
}

// ClearEvents clears the event ring
func ClearEvents() {
	state := lockEvents()
	defer unlockEvents(state)
	for i := range eventRing {
		eventRing[i] = ClockEvent{}
	}
	eventRingHead = 0
}
