//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt mask
type State = interrupt.State

// disableInterrupts masks interrupts so a clock update cannot be torn by an
// interrupt handler that also reads time
func disableInterrupts() State {
	return interrupt.Disable()
}

// lockEvents masks interrupts around an event ring update. interrupt.Disable
// nests, so this is safe inside a critical section
func lockEvents() State {
	return interrupt.Disable()
}

func unlockEvents(state State) {
	interrupt.Restore(state)
}

// restoreInterrupts restores the saved mask
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
