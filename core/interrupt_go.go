//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// Host builds have no interrupts; goroutines stand in for interrupt handlers
// and are serialized with a mutex instead
var criticalSection sync.Mutex

// disableInterrupts enters the critical section
func disableInterrupts() State {
	criticalSection.Lock()
	return 0
}

// The event ring is written both inside and outside the critical section,
// so it has its own lock
var eventMu sync.Mutex

func lockEvents() State {
	eventMu.Lock()
	return 0
}

func unlockEvents(state State) {
	eventMu.Unlock()
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state State) {
	criticalSection.Unlock()
}
