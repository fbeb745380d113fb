//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/ds3231"

	"systime/core"
)

// seedFromRTC sets the wall seconds from a DS3231 on I2C0 (SDA=GPIO4,
// SCL=GPIO5). Without a valid RTC the wall clock starts at uptime and waits
// for set_time from the host
func seedFromRTC(clock *core.Guarded) bool {
	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GPIO4,
		SCL:       machine.GPIO5,
	})
	if err != nil {
		core.DebugPrintln("systime: i2c0 configure failed: " + err.Error())
		return false
	}

	rtc := ds3231.New(machine.I2C0)
	if !rtc.Configure() {
		core.DebugPrintln("systime: no ds3231")
		return false
	}
	if !rtc.IsTimeValid() {
		core.DebugPrintln("systime: ds3231 time not valid")
		return false
	}

	now, err := rtc.ReadTime()
	if err != nil {
		core.DebugPrintln("systime: ds3231 read failed: " + err.Error())
		return false
	}
	unix := now.Unix()
	if unix < 0 || unix > 0xFFFFFFFF {
		return false
	}
	clock.Set(uint32(unix))
	return true
}
