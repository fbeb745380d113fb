//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"systime/core"
)

// RP2040 timer peripheral
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching

	timerHz = 1000000
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// readTimer returns the low 32 bits of the 1 MHz microsecond timer. The low
// word wraps every ~71.6 minutes; the tick source widens it as long as it
// is read at least once per wrap
func readTimer() uint32 {
	return timerRAWL.Get()
}

// clockConfig is the 32-bit, 1 MHz timer read directly. The Cortex-M0+ has
// no divide instruction, so remainders are retired by subtraction
func clockConfig() core.Config {
	return core.Config{
		Reader:         core.ReaderFunc(readTimer),
		HWBits:         32,
		TickMultiplier: 1,
		TicksPerMs:     core.TicksPerMsFor(timerHz, 1),
		Retire:         core.Stepped,
	}
}
