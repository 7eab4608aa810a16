//go:build rp2040

package main

import (
	"machine"
)

// gpioOutput drives an on/off LED on a GPIO pin
type gpioOutput struct {
	pin machine.Pin
}

func (o gpioOutput) Configure() error {
	o.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (o gpioOutput) Set(high bool) {
	o.pin.Set(high)
}
