package core

// PinOutput is the abstract digital output a Digital backend drives.
// Platform-specific implementations handle actual hardware control.
type PinOutput interface {
	// Configure sets the pin up as an output. Called once from Initialize.
	Configure() error

	// Set drives the pin high (true) or low (false)
	Set(high bool)
}

// PixelStrip is the abstract chain of addressable pixels an RGB backend drives.
type PixelStrip interface {
	// Configure powers and sets up the strip. Called once from Initialize.
	Configure() error

	// Show writes c to every pixel of the strip and latches it.
	Show(c Color) error
}

// DebugWriter receives diagnostic messages. Targets route it to a debug
// UART or drop it; the host simulator routes it to its logger.
type DebugWriter func(string)

func nopDebug(string) {}
