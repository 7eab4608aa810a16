//go:build rp2040 || rp2350

package pio

import (
	"image/color"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// WS2812 bit timing in PIO cycles. One bit takes T1+T2+T3 = 10 cycles,
// so the state machine runs at 10 * 800kHz.
const (
	ws2812T1      = 2
	ws2812T2      = 5
	ws2812T3      = 3
	ws2812ClockHz = 8_000_000

	ws2812PIOOrigin = 0 // Load at offset 0 for correct jump addresses
)

// buildWS2812Program creates the WS2812 PIO program using AssemblerV0.
// The data pin is driven by side-set; every OUT shifts one bit into X.
func buildWS2812Program() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 1}

	return []uint16{
		asm.Out(rp2pio.OutDestX, 1).Side(0).Delay(ws2812T3 - 1).Encode(),  // 0: out x, 1      side 0 [2]
		asm.Jmp(3, rp2pio.JmpXZero).Side(1).Delay(ws2812T1 - 1).Encode(),  // 1: jmp !x, 3     side 1 [1]
		asm.Jmp(0, rp2pio.JmpAlways).Side(1).Delay(ws2812T2 - 1).Encode(), // 2: jmp 0         side 1 [4]
		asm.Nop().Side(0).Delay(ws2812T2 - 1).Encode(),                    // 3: nop           side 0 [4]
	}
}

// WS2812 drives a chain of WS2812 pixels from a PIO state machine
type WS2812 struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	count  int
	offset uint8
}

// NewWS2812 creates a WS2812 driver for count pixels on pin.
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewWS2812(pin machine.Pin, count int, pioNum, smNum uint8) *WS2812 {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &WS2812{
		pio:   pioHW,
		sm:    pioHW.StateMachine(smNum),
		pin:   pin,
		count: count,
	}
}

// Configure loads the program and starts the state machine
func (w *WS2812) Configure() error {
	// CRITICAL: Claim the state machine first!
	w.sm.TryClaim()

	program := buildWS2812Program()
	offset, err := w.pio.AddProgram(program, ws2812PIOOrigin)
	if err != nil {
		return err
	}
	w.offset = offset

	w.pin.Configure(machine.PinConfig{Mode: w.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSidesetPins(w.pin)
	cfg.SetSidesetParams(1, false, false)

	// Shift left, autopull at 24 bits (one GRB pixel)
	cfg.SetOutShift(false, true, 24)
	cfg.SetFIFOJoin(rp2pio.FifoJoinTx)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	whole, frac := clockDivider(machine.CPUFrequency(), ws2812ClockHz)
	cfg.SetClkDivIntFrac(whole, frac)

	// Initialize state machine FIRST
	w.sm.Init(offset, cfg)

	// THEN set pin direction (must be after Init!)
	w.sm.SetPindirsConsecutive(w.pin, 1, true)
	w.sm.SetPinsConsecutive(w.pin, 1, false)

	w.sm.SetEnabled(true)
	return nil
}

// Fill sets every pixel of the chain to the same color
func (w *WS2812) Fill(c color.RGBA) error {
	for i := 0; i < w.count; i++ {
		w.put(c.R, c.G, c.B)
	}
	return nil
}

// put queues one pixel. WS2812 expects GRB order, MSB first.
func (w *WS2812) put(r, g, b uint8) {
	word := uint32(g)<<24 | uint32(r)<<16 | uint32(b)<<8

	// Wait for FIFO space and write
	for w.sm.IsTxFIFOFull() {
		// Busy wait - should be very brief
	}
	w.sm.TxPut(word)
}

// clockDivider returns the 16.8 fixed point divider taking cpuHz to targetHz
func clockDivider(cpuHz, targetHz uint32) (uint16, uint8) {
	div256 := uint64(cpuHz) * 256 / uint64(targetHz)
	return uint16(div256 >> 8), uint8(div256 & 0xff)
}
