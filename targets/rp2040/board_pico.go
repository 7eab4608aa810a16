//go:build rp2040 && !xiao_rp2040

package main

import (
	"machine"

	"uniled/boards"
	"uniled/core"
)

const boardName = "raspberry-pi-pico"

// newBackend drives the on-board LED as a plain digital output
func newBackend(p boards.Profile) core.Backend {
	return core.NewDigital(gpioOutput{pin: machine.Pin(p.DataPin)}, clock)
}
