//go:build rp2350

package main

import (
	"image/color"
	"machine"

	"uniled/boards"
	"uniled/core"
	"uniled/targets/pio"
)

const boardName = "pico2-ws2812"

// pioStrip adapts the PIO WS2812 driver to the LED backend
type pioStrip struct {
	dev *pio.WS2812
}

func (s pioStrip) Configure() error {
	return s.dev.Configure()
}

func (s pioStrip) Show(c core.Color) error {
	return s.dev.Fill(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

func newBackend(p boards.Profile) *core.RGB {
	dev := pio.NewWS2812(machine.Pin(p.DataPin), p.PixelCount, 0, 0)
	return core.NewRGB(pioStrip{dev: dev}, clock, p.Brightness)
}
