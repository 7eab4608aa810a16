//go:build xiao_rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"uniled/boards"
	"uniled/core"
)

const boardName = "xiao-rp2040"

// ws2812Strip bit-bangs a WS2812 chain with the tinygo driver
type ws2812Strip struct {
	data     machine.Pin
	power    machine.Pin
	hasPower bool
	dev      ws2812.Device
	pixels   []color.RGBA
}

func newWS2812Strip(p boards.Profile) *ws2812Strip {
	return &ws2812Strip{
		data:     machine.Pin(p.DataPin),
		power:    machine.Pin(p.PowerPin),
		hasPower: p.PowerPin != boards.NoPin,
		pixels:   make([]color.RGBA, p.PixelCount),
	}
}

func (s *ws2812Strip) Configure() error {
	// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
	if s.hasPower {
		s.power.Configure(machine.PinConfig{Mode: machine.PinOutput})
		s.power.High()
	}
	s.data.Configure(machine.PinConfig{Mode: machine.PinOutput})
	s.dev = ws2812.New(s.data)
	return nil
}

func (s *ws2812Strip) Show(c core.Color) error {
	for i := range s.pixels {
		s.pixels[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return s.dev.WriteColors(s.pixels)
}

func newBackend(p boards.Profile) core.Backend {
	return core.NewRGB(newWS2812Strip(p), clock, p.Brightness)
}
