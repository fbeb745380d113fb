//go:build rp2040

package main

import (
	"errors"
	"machine"
	"time"

	"systime/core"
	"systime/protocol"
)

const (
	reportIntervalMs = 1000
	decoderCapacity  = 256

	// Consecutive failed writes before the host is treated as gone
	maxWriteFailures = 10
)

var errStalled = errors.New("usb write made no progress")

var (
	framesReceived uint32
	framesRejected uint32
	writeFailures  uint32
)

func main() {
	InitUSB()
	initDebugUART()

	clock, err := core.New(clockConfig())
	if err != nil {
		// Only reachable if clockConfig is edited into something invalid
		core.DebugPrintln("systime: " + err.Error())
		for {
			time.Sleep(time.Second)
		}
	}
	guarded := core.NewGuarded(clock)
	if seedFromRTC(guarded) {
		core.DebugPrintln("systime: wall clock seeded from ds3231")
	}

	sched := core.NewScheduler(guarded)
	svc := core.NewTimeService(guarded, writeFrame)
	svc.ReportEvery(sched, reportIntervalMs)

	dict := svc.Dictionary()
	dict.AddConstant("MCU", "rp2040")
	dict.AddConstantUint("CLOCK_FREQ", timerHz)
	dict.AddConstantUint("REPORT_INTERVAL_MS", reportIntervalMs)

	decoder := protocol.NewDecoder(decoderCapacity)
	buf := make([]byte, 64)

	for {
		if n := USBRead(buf); n > 0 {
			writeFailures = 0
			data := buf[:n]
			for len(data) > 0 {
				written, _ := decoder.Write(data)
				data = data[written:]
				drain(decoder, svc)
				if written == 0 {
					decoder.Reset()
				}
			}
		}

		// Dispatch reads the clock, which keeps the timer observed well
		// inside its wrap period
		sched.Dispatch()
		time.Sleep(100 * time.Microsecond)
	}
}

func drain(decoder *protocol.Decoder, svc *core.TimeService) {
	for {
		msg, ok := decoder.Next()
		if !ok {
			return
		}
		framesReceived++
		if err := svc.Handle(msg); err != nil {
			framesRejected++
		}
	}
}

// writeFrame sends one frame. After maxWriteFailures the host is assumed
// gone and frames are dropped until it sends something again
func writeFrame(frame []byte) {
	if writeFailures >= maxWriteFailures {
		return
	}
	if err := USBWriteBytes(frame); err != nil {
		writeFailures++
		return
	}
	writeFailures = 0
}

func initDebugUART() {
	err := machine.UART0.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		return
	}
	core.SetDebugWriter(func(s string) {
		machine.UART0.Write([]byte(s))
		machine.UART0.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
}
