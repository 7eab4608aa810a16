package boards

import (
	"errors"
	"testing"
)

func TestBuiltinProfilesValid(t *testing.T) {
	for _, p := range Builtin() {
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", p.Name, err)
		}
		if p.Baud != DefaultBaud {
			t.Errorf("%s: expected %d baud, got %d", p.Name, DefaultBaud, p.Baud)
		}
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("xiao-rp2040", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsRGB() || p.DataPin != 12 || p.PowerPin != 11 || p.Brightness != 128 {
		t.Errorf("Unexpected XIAO profile %+v", p)
	}

	pico, err := Lookup("raspberry-pi-pico", nil)
	if err != nil {
		t.Fatal(err)
	}
	if pico.IsRGB() || pico.DataPin != 25 {
		t.Errorf("Unexpected Pico profile %+v", pico)
	}

	if _, err := Lookup("nope", nil); !errors.Is(err, ErrUnknownBoard) {
		t.Errorf("Expected ErrUnknownBoard, got %v", err)
	}
}

func TestBuiltinIsCopy(t *testing.T) {
	list := Builtin()
	list[0].Name = "changed"
	if Builtin()[0].Name == "changed" {
		t.Error("Builtin returned shared storage")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	data := []byte(`[
		{"name": "bench", "led": "rgb", "data_pin": 4, "pixel_count": 30},
		{"name": "blinky", "data_pin": 2}
	]`)

	profiles, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("Expected 2 profiles, got %d", len(profiles))
	}

	bench := profiles[0]
	if bench.Brightness != 255 || bench.Baud != DefaultBaud || bench.PowerPin != NoPin || bench.PixelCount != 30 {
		t.Errorf("Unexpected defaults %+v", bench)
	}

	blinky := profiles[1]
	if blinky.LED != LEDDigital || blinky.DataPin != 2 {
		t.Errorf("Unexpected profile %+v", blinky)
	}

	found, err := Lookup("bench", profiles)
	if err != nil || found.PixelCount != 30 {
		t.Errorf("Lookup in loaded profiles: %+v %v", found, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", `[{"data_pin": 3}]`},
		{"missing data pin", `[{"name": "x"}]`},
		{"bad kind", `[{"name": "x", "led": "laser", "data_pin": 3}]`},
		{"no pixels", `[{"name": "x", "led": "rgb", "data_pin": 3, "pixel_count": 0}]`},
		{"zero baud", `[{"name": "x", "data_pin": 3, "baud": 0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data)); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := Load([]byte(`{"name": "x"}`)); err == nil {
		t.Error("Expected error for a non-array document")
	}
}
