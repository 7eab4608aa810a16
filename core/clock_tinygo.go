//go:build tinygo

package core

import "sync/atomic"

// load returns the current clock value
func (c *TickClock) load() uint32 {
	return atomic.LoadUint32(&c.ms)
}

// store sets the clock value
func (c *TickClock) store(ms uint32) {
	atomic.StoreUint32(&c.ms, ms)
}
