//go:build !tinygo

package core

// load returns the current clock value (regular Go implementation)
func (c *TickClock) load() uint32 {
	return c.ms
}

// store sets the clock value (regular Go implementation)
func (c *TickClock) store(ms uint32) {
	c.ms = ms
}
