package sim

import (
	"fmt"
	"io"
	"sync"

	"uniled/core"
)

// Renderer draws the simulated LED on a terminal. It serves as the pin of a
// Digital backend and as the strip of an RGB backend. Only changes are drawn.
type Renderer struct {
	mu     sync.Mutex
	w      io.Writer
	label  string
	ansi   bool
	color  core.Color
	drawn  bool
	frames uint64
}

// NewRenderer draws to w, prefixing every frame with label. With ansi set
// the LED is drawn as a 24-bit colored block.
func NewRenderer(w io.Writer, label string, ansi bool) *Renderer {
	return &Renderer{w: w, label: label, ansi: ansi}
}

func (r *Renderer) Configure() error {
	return nil
}

// Set draws a digital LED as white or off
func (r *Renderer) Set(high bool) {
	c := core.Black
	if high {
		c = core.White
	}
	r.draw(c)
}

// Show draws an addressable LED
func (r *Renderer) Show(c core.Color) error {
	r.draw(c)
	return nil
}

// Color returns the color on display
func (r *Renderer) Color() core.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.color
}

// Frames returns how many changes were drawn
func (r *Renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Renderer) draw(c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drawn && c == r.color {
		return
	}
	r.color = c
	r.drawn = true
	r.frames++

	state := "off"
	if !c.IsBlack() {
		state = "on "
	}
	if r.ansi {
		fmt.Fprintf(r.w, "[%s] \x1b[38;2;%d;%d;%dm●\x1b[0m %s #%02x%02x%02x\n", r.label, c.R, c.G, c.B, state, c.R, c.G, c.B)
		return
	}
	fmt.Fprintf(r.w, "[%s] %s #%02x%02x%02x\n", r.label, state, c.R, c.G, c.B)
}
