package core

// Backend is the LED effect interface shared by every board.
// Each implementation owns exactly one physical LED (or strip) and its
// animation state. Every control operation replaces the animation state
// wholesale before applying its own effect; only Update advances it.
type Backend interface {
	// Initialize performs hardware setup. Calling it again is a no-op.
	Initialize() error

	// Update advances the running animation by at most one phase.
	// It never blocks and must be called every loop iteration.
	Update()

	TurnOn()
	TurnOff()
	SetColor(c Color)
	StartBlink(c Color, interval uint32)
	StartBlink2(c1, c2 Color, interval uint32)
	StartRainbow(interval uint32)
	StopAnimation()

	// Capabilities reports which effects run at full fidelity.
	// Unsupported effects degrade instead of failing.
	Capabilities() Capabilities

	// Type returns a short hardware description ("Digital", "RGB")
	Type() string

	// State returns a copy of the current animation state
	State() AnimationState
}

// Capabilities describes what a backend can render natively
type Capabilities struct {
	Color   bool
	Rainbow bool
	Blink2  bool
}

// AnimationMode identifies the running animation
type AnimationMode uint8

const (
	ModeNone AnimationMode = iota
	ModeBlink1
	ModeBlink2
	ModeRainbow
)

func (m AnimationMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBlink1:
		return "blink1"
	case ModeBlink2:
		return "blink2"
	case ModeRainbow:
		return "rainbow"
	default:
		return "unknown"
	}
}

// AnimationState is the complete timing state of one backend.
type AnimationState struct {
	Mode   AnimationMode
	Color1 Color
	Color2 Color

	// Phase is the blink phase. For Blink1 true means lit; for Blink2 true
	// means Color1 is showing.
	Phase bool

	// Hue is the rainbow accumulator, in units of 1/HueSpace of the wheel.
	Hue uint16

	Interval   uint32 // milliseconds, > 0 while an animation runs
	LastChange uint32 // clock reading of the last phase change
}

// Idle reports whether no animation is running
func (s AnimationState) Idle() bool {
	return s.Mode == ModeNone
}

// due reports whether a phase advance is owed at now and, if so, restarts
// the interval from now. At most one advance is granted per call no matter
// how many intervals have passed.
func (s *AnimationState) due(now uint32) bool {
	if s.Mode == ModeNone {
		return false
	}
	if elapsed(now, s.LastChange) < s.Interval {
		return false
	}
	s.LastChange = now
	return true
}
