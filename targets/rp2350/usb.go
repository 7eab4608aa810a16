//go:build rp2350

package main

import (
	"machine"

	"uniled/boards"
)

// InitUSB initializes USB serial communication
// TinyGo automatically sets up USB CDC-ACM on RP2350
func InitUSB() {
	// machine.Serial is USB CDC; the baud rate is nominal
	err := machine.Serial.Configure(machine.UARTConfig{BaudRate: boards.DefaultBaud})
	if err != nil {
		return
	}
}

// USBAvailable returns the number of bytes available to read from USB
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte from USB
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}
