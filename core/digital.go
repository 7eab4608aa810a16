package core

// Digital drives a plain on/off LED (Pico GPIO25, Uno LED_BUILTIN).
// It is color-blind: colors only decide whether the LED is lit, two-color
// blinks fall back to a single blink and rainbow falls back to solid on.
type Digital struct {
	pin   PinOutput
	clock Clock
	debug DebugWriter

	state       AnimationState
	lit         bool
	initialized bool
}

// NewDigital creates a Digital backend for pin
func NewDigital(pin PinOutput, clock Clock) *Digital {
	return &Digital{
		pin:   pin,
		clock: clock,
		debug: nopDebug,
	}
}

// SetDebugWriter routes diagnostics to w
func (d *Digital) SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = nopDebug
	}
	d.debug = w
}

func (d *Digital) Initialize() error {
	if d.initialized {
		return nil
	}
	if err := d.pin.Configure(); err != nil {
		return err
	}
	d.initialized = true
	d.state = AnimationState{}
	d.write(false)
	d.debug("digital: initialized")
	return nil
}

func (d *Digital) Update() {
	if !d.state.due(d.clock.Millis()) {
		return
	}
	d.state.Phase = !d.state.Phase
	d.write(d.state.Phase)
}

func (d *Digital) TurnOn() {
	d.StopAnimation()
	d.write(true)
}

func (d *Digital) TurnOff() {
	d.StopAnimation()
	d.write(false)
}

// SetColor ignores the channels and turns the LED on
func (d *Digital) SetColor(c Color) {
	d.TurnOn()
}

// StartBlink starts dark; the first elapsed interval lights the LED
func (d *Digital) StartBlink(c Color, interval uint32) {
	d.state = AnimationState{
		Mode:       ModeBlink1,
		Color1:     c,
		Interval:   interval,
		LastChange: d.clock.Millis(),
	}
	d.write(false)
}

// StartBlink2 degrades to a single blink of the first color
func (d *Digital) StartBlink2(c1, c2 Color, interval uint32) {
	d.StartBlink(c1, interval)
}

// StartRainbow degrades to solid on
func (d *Digital) StartRainbow(interval uint32) {
	d.TurnOn()
}

func (d *Digital) StopAnimation() {
	d.state = AnimationState{}
}

func (d *Digital) Capabilities() Capabilities {
	return Capabilities{}
}

func (d *Digital) Type() string {
	return "Digital"
}

func (d *Digital) State() AnimationState {
	return d.state
}

// Lit reports the level last written to the pin
func (d *Digital) Lit() bool {
	return d.lit
}

func (d *Digital) write(high bool) {
	d.lit = high
	d.pin.Set(high)
}
