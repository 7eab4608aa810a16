package core

// RGB drives a WS2812-style addressable strip (XIAO RP2040 on-board pixel,
// external strips). Every pixel of the strip shows the same color.
type RGB struct {
	strip      PixelStrip
	clock      Clock
	brightness uint8
	debug      DebugWriter

	state       AnimationState
	color       Color // last logical color, before brightness
	initialized bool
	writeErrors uint32
}

// NewRGB creates an RGB backend. brightness scales every color written to
// the strip; 255 leaves colors untouched.
func NewRGB(strip PixelStrip, clock Clock, brightness uint8) *RGB {
	return &RGB{
		strip:      strip,
		clock:      clock,
		brightness: brightness,
		debug:      nopDebug,
	}
}

// SetDebugWriter routes diagnostics to w
func (r *RGB) SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = nopDebug
	}
	r.debug = w
}

func (r *RGB) Initialize() error {
	if r.initialized {
		return nil
	}
	if err := r.strip.Configure(); err != nil {
		return err
	}
	r.initialized = true
	r.state = AnimationState{}
	r.show(Black)
	r.debug("rgb: initialized")
	return nil
}

func (r *RGB) Update() {
	if !r.state.due(r.clock.Millis()) {
		return
	}

	switch r.state.Mode {
	case ModeBlink1:
		r.state.Phase = !r.state.Phase
		if r.state.Phase {
			r.show(r.state.Color1)
		} else {
			r.show(Black)
		}

	case ModeBlink2:
		r.state.Phase = !r.state.Phase
		if r.state.Phase {
			r.show(r.state.Color1)
		} else {
			r.show(r.state.Color2)
		}

	case ModeRainbow:
		r.show(HueColor(r.state.Hue).Gamma())
		r.state.Hue += HueStep
	}
}

// TurnOn shows full white
func (r *RGB) TurnOn() {
	r.SetColor(White)
}

func (r *RGB) TurnOff() {
	r.StopAnimation()
	r.show(Black)
}

func (r *RGB) SetColor(c Color) {
	r.StopAnimation()
	r.show(c)
}

// StartBlink starts dark; the first elapsed interval shows c
func (r *RGB) StartBlink(c Color, interval uint32) {
	r.state = AnimationState{
		Mode:       ModeBlink1,
		Color1:     c,
		Interval:   interval,
		LastChange: r.clock.Millis(),
	}
	r.show(Black)
}

// StartBlink2 shows c1 immediately; the first elapsed interval shows c2
func (r *RGB) StartBlink2(c1, c2 Color, interval uint32) {
	r.state = AnimationState{
		Mode:       ModeBlink2,
		Color1:     c1,
		Color2:     c2,
		Phase:      true,
		Interval:   interval,
		LastChange: r.clock.Millis(),
	}
	r.show(c1)
}

// StartRainbow restarts the wheel at red. Nothing is written until the
// first interval elapses.
func (r *RGB) StartRainbow(interval uint32) {
	r.state = AnimationState{
		Mode:       ModeRainbow,
		Interval:   interval,
		LastChange: r.clock.Millis(),
	}
}

func (r *RGB) StopAnimation() {
	r.state = AnimationState{}
}

func (r *RGB) Capabilities() Capabilities {
	return Capabilities{Color: true, Rainbow: true, Blink2: true}
}

func (r *RGB) Type() string {
	return "RGB"
}

func (r *RGB) State() AnimationState {
	return r.state
}

// Color returns the last color written, before brightness scaling
func (r *RGB) Color() Color {
	return r.color
}

// WriteErrors returns how many strip writes have failed
func (r *RGB) WriteErrors() uint32 {
	return r.writeErrors
}

func (r *RGB) show(c Color) {
	r.color = c
	if err := r.strip.Show(c.Scale(r.brightness)); err != nil {
		r.writeErrors++
		r.debug("rgb: show failed: " + err.Error())
	}
}
