package core

// Clock is a monotonic millisecond time source. Readings wrap at 2^32, so
// callers must compare them by subtraction only.
type Clock interface {
	Millis() uint32
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() uint32

func (f ClockFunc) Millis() uint32 {
	return f()
}

// TickClock is a Clock whose value is pushed in by the platform main loop
// from its hardware timer (and by tests).
type TickClock struct {
	ms uint32
}

// NewTickClock returns a clock starting at ms.
func NewTickClock(ms uint32) *TickClock {
	c := &TickClock{}
	c.Set(ms)
	return c
}

// Millis returns the last time pushed into the clock
func (c *TickClock) Millis() uint32 {
	return c.load()
}

// Set sets the current time
func (c *TickClock) Set(ms uint32) {
	c.store(ms)
}

// Advance moves the clock forward by d milliseconds
func (c *TickClock) Advance(d uint32) {
	c.store(c.load() + d)
}

// MillisFromUS converts a 64-bit microsecond timer reading to wrapping milliseconds
func MillisFromUS(us uint64) uint32 {
	return uint32(us / 1000)
}

// elapsed returns the wrap-safe distance from since to now
func elapsed(now, since uint32) uint32 {
	return now - since
}
