package core

import (
	"errors"
	"testing"
)

func TestRGBInitialize(t *testing.T) {
	r, strip, _ := newTestRGB(0, 255)

	if strip.configured != 1 || strip.last() != Black {
		t.Fatalf("Expected configured dark strip, got %+v", strip)
	}
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	if strip.configured != 1 {
		t.Error("Second Initialize reconfigured the strip")
	}
	want := Capabilities{Color: true, Rainbow: true, Blink2: true}
	if r.Type() != "RGB" || r.Capabilities() != want {
		t.Errorf("Unexpected type/capabilities %s %+v", r.Type(), r.Capabilities())
	}
}

func TestRGBOnOffColor(t *testing.T) {
	r, strip, _ := newTestRGB(0, 255)

	r.TurnOn()
	if strip.last() != White || r.Color() != White {
		t.Errorf("ON should show white, got %v", strip.last())
	}

	r.SetColor(Color{R: 10, G: 20, B: 30})
	if strip.last() != (Color{R: 10, G: 20, B: 30}) {
		t.Errorf("Unexpected color %v", strip.last())
	}

	r.TurnOff()
	if strip.last() != Black {
		t.Errorf("OFF should show black, got %v", strip.last())
	}
}

func TestRGBBrightness(t *testing.T) {
	r, strip, _ := newTestRGB(0, 128)

	r.TurnOn()
	if strip.last() != (Color{R: 128, G: 128, B: 128}) {
		t.Errorf("Expected half white on the strip, got %v", strip.last())
	}
	if r.Color() != White {
		t.Errorf("Logical color should stay white, got %v", r.Color())
	}
}

func TestRGBBlink1(t *testing.T) {
	r, strip, clock := newTestRGB(0, 255)
	red := Color{R: 255}

	r.StartBlink(red, 100)
	if strip.last() != Black {
		t.Fatal("Blink should start dark")
	}

	expected := []Color{red, Black, red}
	for i, want := range expected {
		clock.Advance(100)
		r.Update()
		if strip.last() != want {
			t.Fatalf("step %d: expected %v, got %v", i, want, strip.last())
		}
	}
}

func TestRGBBlink2Alternates(t *testing.T) {
	r, strip, clock := newTestRGB(0, 255)
	red, blue := Color{R: 255}, Color{B: 255}

	r.StartBlink2(red, blue, 250)
	if strip.last() != red || !r.State().Phase {
		t.Fatalf("Blink2 should start on the first color, got %v", strip.last())
	}

	expected := []Color{blue, red, blue, red}
	for i, want := range expected {
		clock.Advance(250)
		r.Update()
		if strip.last() != want {
			t.Fatalf("step %d: expected %v, got %v", i, want, strip.last())
		}
	}
}

func TestRGBRainbow(t *testing.T) {
	r, strip, clock := newTestRGB(0, 255)
	r.TurnOn()
	shows := len(strip.shows)

	r.StartRainbow(20)
	if len(strip.shows) != shows {
		t.Fatal("StartRainbow should not write until the first interval")
	}

	clock.Advance(20)
	r.Update()
	if strip.last() != (Color{R: 255}) {
		t.Errorf("First rainbow frame should be red, got %v", strip.last())
	}
	if r.State().Hue != HueStep {
		t.Errorf("Expected hue %d, got %d", HueStep, r.State().Hue)
	}

	for i := 0; i < 255; i++ {
		clock.Advance(20)
		r.Update()
	}
	if r.State().Hue != 0 {
		t.Errorf("Expected hue to wrap after a full turn, got %d", r.State().Hue)
	}
}

func TestRGBStateReplacement(t *testing.T) {
	r, _, clock := newTestRGB(0, 255)

	r.StartBlink(White, 100)
	clock.Advance(100)
	r.Update()

	r.StartRainbow(30)
	st := r.State()
	want := AnimationState{Mode: ModeRainbow, Interval: 30, LastChange: clock.Millis()}
	if st != want {
		t.Errorf("Expected only rainbow fields, got %+v", st)
	}
}

func TestRGBWriteErrors(t *testing.T) {
	r, strip, _ := newTestRGB(0, 255)

	var messages []string
	r.SetDebugWriter(func(s string) { messages = append(messages, s) })

	strip.err = errors.New("bus stuck")
	r.TurnOn()

	if r.WriteErrors() != 1 {
		t.Errorf("Expected 1 write error, got %d", r.WriteErrors())
	}
	if len(messages) != 1 {
		t.Errorf("Expected one debug message, got %q", messages)
	}
}
