//go:build rp2040

package main

import "machine"

// InitUSB configures machine.Serial, which is USB CDC on the RP2040
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// USBRead moves buffered USB bytes into buf and returns the count
func USBRead(buf []byte) int {
	n := 0
	for n < len(buf) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		buf[n] = b
		n++
	}
	return n
}

// USBWriteBytes writes data to USB, retrying partial writes
func USBWriteBytes(data []byte) error {
	for len(data) > 0 {
		n, err := machine.Serial.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return errStalled
		}
		data = data[n:]
	}
	return nil
}
