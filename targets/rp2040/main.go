//go:build rp2040

package main

import (
	"machine"
	"time"

	"uniled/boards"
	"uniled/core"
	"uniled/protocol"
)

var (
	// Bytes from the USB reader goroutine, drained by the main loop
	inputBuffer *protocol.SharedFifo

	// Millisecond clock fed from the hardware timer
	clock = core.NewTickClock(0)

	// Debug counters
	msgerrors uint32
)

// ledBlink blinks the status LED a specific number of times for diagnostics
func ledBlink(count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond) // Pause after blink sequence
}

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Initialize USB CDC immediately
	InitUSB()

	// Initialize clock
	InitClock()
	UpdateSystemTime()

	profile, err := boards.Lookup(boardName, nil)
	if err != nil {
		// 2 blinks forever = no profile for this build
		for {
			ledBlink(2)
		}
	}

	led := newBackend(profile)
	if err := led.Initialize(); err != nil {
		// 3 blinks forever = LED hardware setup failed
		for {
			ledBlink(3)
		}
	}

	inputBuffer = protocol.NewSharedFifo(256)
	handler := core.NewHandler(protocol.SplitTransport{In: inputBuffer, Out: machine.Serial}, led)

	// Start USB reader goroutine
	go usbReaderLoop()

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					handler.Reset()
				}
			}()

			// Update system time from hardware
			UpdateSystemTime()

			// At most one command, then animation
			handler.Poll()
		}()

		// Yield to other goroutines
		time.Sleep(core.PollInterval)
	}
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		for USBAvailable() > 0 && inputBuffer.Free() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				break
			}
			inputBuffer.Write([]byte{data})
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}
