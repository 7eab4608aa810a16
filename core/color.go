package core

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit-per-channel RGB value as carried on the wire.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Rainbow hue space. The accumulator is a uint16, so adding HueStep wraps
// back to zero at HueSpace.
const (
	HueSpace = 65536
	HueStep  = HueSpace / 256
)

// gammaExponent matches the NeoPixel gamma table used by the RGB boards.
const gammaExponent = 2.6

var gammaTable [256]uint8

func init() {
	for i := range gammaTable {
		gammaTable[i] = uint8(math.Pow(float64(i)/255, gammaExponent)*255 + 0.5)
	}
}

// Gamma8 maps a linear channel value to its gamma-corrected equivalent.
func Gamma8(v uint8) uint8 {
	return gammaTable[v]
}

// Gamma returns c with every channel gamma-corrected.
func (c Color) Gamma() Color {
	return Color{R: Gamma8(c.R), G: Gamma8(c.G), B: Gamma8(c.B)}
}

// Scale applies a global brightness to c. Brightness 255 is the identity.
func (c Color) Scale(brightness uint8) Color {
	if brightness == 255 {
		return c
	}
	b := uint16(brightness) + 1
	return Color{
		R: uint8((uint16(c.R) * b) >> 8),
		G: uint8((uint16(c.G) * b) >> 8),
		B: uint8((uint16(c.B) * b) >> 8),
	}
}

// IsBlack reports whether every channel is zero.
func (c Color) IsBlack() bool {
	return c == Black
}

// HueColor converts a position on the hue wheel to a fully saturated,
// full value color. Hue 0 is red.
func HueColor(hue uint16) Color {
	r, g, b := colorful.Hsv(float64(hue)*360/HueSpace, 1, 1).RGB255()
	return Color{R: r, G: g, B: b}
}
