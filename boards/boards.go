// Package boards describes how the LED is wired on each supported board.
package boards

import (
	"encoding/json"
	"errors"
	"strconv"
)

// LEDKind selects the backend a board uses
type LEDKind string

const (
	LEDDigital LEDKind = "digital"
	LEDRGB     LEDKind = "rgb"
)

// NoPin marks an unused pin
const NoPin int8 = -1

// DefaultBaud is the serial speed every board listens at
const DefaultBaud = 9600

// Profile is the LED wiring of one board
type Profile struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	LED         LEDKind `json:"led"`
	DataPin     int8    `json:"data_pin"`
	PowerPin    int8    `json:"power_pin"`   // NoPin when the LED is always powered
	PixelCount  int     `json:"pixel_count"` // rgb only
	Brightness  uint8   `json:"brightness"`  // rgb only, 255 = full
	Baud        uint32  `json:"baud"`
}

var builtin = []Profile{
	{
		Name:        "arduino-uno-r4",
		Description: "Arduino Uno R4, LED_BUILTIN (simulator only)",
		LED:         LEDDigital,
		DataPin:     13,
		PowerPin:    NoPin,
		Brightness:  255,
		Baud:        DefaultBaud,
	},
	{
		Name:        "raspberry-pi-pico",
		Description: "Raspberry Pi Pico, on-board LED on GPIO25",
		LED:         LEDDigital,
		DataPin:     25,
		PowerPin:    NoPin,
		Brightness:  255,
		Baud:        DefaultBaud,
	},
	{
		Name:        "xiao-rp2040",
		Description: "Seeed XIAO RP2040, on-board WS2812 on GPIO12 powered from GPIO11",
		LED:         LEDRGB,
		DataPin:     12,
		PowerPin:    11,
		PixelCount:  1,
		Brightness:  128,
		Baud:        DefaultBaud,
	},
	{
		Name:        "pico2-ws2812",
		Description: "Raspberry Pi Pico 2, external WS2812 strip on GPIO16 driven by PIO",
		LED:         LEDRGB,
		DataPin:     16,
		PowerPin:    NoPin,
		PixelCount:  8,
		Brightness:  64,
		Baud:        DefaultBaud,
	},
}

var (
	ErrUnknownBoard = errors.New("unknown board")
	ErrInvalid      = errors.New("invalid board profile")
)

// Builtin returns a copy of the built-in profiles
func Builtin() []Profile {
	out := make([]Profile, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup finds a profile by name in profiles, or in the built-in set when
// profiles is nil.
func Lookup(name string, profiles []Profile) (Profile, error) {
	if profiles == nil {
		profiles = builtin
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, &ProfileError{Name: name, Err: ErrUnknownBoard}
}

// IsRGB reports whether the board drives an addressable LED
func (p Profile) IsRGB() bool {
	return p.LED == LEDRGB
}

// Validate checks that the profile can be turned into a backend
func (p Profile) Validate() error {
	fail := func(msg string) error {
		return &ProfileError{Name: p.Name, Err: ErrInvalid, Detail: msg}
	}

	if p.Name == "" {
		return fail("missing name")
	}
	switch p.LED {
	case LEDDigital:
	case LEDRGB:
		if p.PixelCount < 1 {
			return fail("pixel_count must be at least 1")
		}
	default:
		return fail("led must be " + strconv.Quote(string(LEDDigital)) + " or " + strconv.Quote(string(LEDRGB)))
	}
	if p.DataPin < 0 {
		return fail("data_pin must be set")
	}
	if p.PowerPin < NoPin {
		return fail("power_pin out of range")
	}
	if p.Baud == 0 {
		return fail("baud must be positive")
	}
	return nil
}

// defaults is the starting point every loaded profile is decoded over
func defaults() Profile {
	return Profile{
		LED:        LEDDigital,
		DataPin:    NoPin,
		PowerPin:   NoPin,
		PixelCount: 1,
		Brightness: 255,
		Baud:       DefaultBaud,
	}
}

// Load parses a JSON array of profiles. Fields left out of an entry keep
// their defaults, and every entry is validated.
func Load(jsonData []byte) ([]Profile, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(raw))
	for _, r := range raw {
		p := defaults()
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// ProfileError reports a problem with a named profile
type ProfileError struct {
	Name   string
	Err    error
	Detail string
}

func (e *ProfileError) Error() string {
	msg := e.Err.Error() + " " + strconv.Quote(e.Name)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}
