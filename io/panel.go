package io

import (
	"github.com/mc680x/trainer/bus"
)

// Panel is the keypad/display collaborator. It is the sole writer of
// the keypad result bytes and the sole consumer of the display scratch
// window; the CPU context only reads the former and writes the latter.
// A key press latches the key code and raises the CPU's NMI edge, the
// way the physical keypad interrupts the monitor.
type Panel struct {
	Mem *bus.Memory

	// Render receives the display scratch window whenever the emulated
	// program has written to it. The window is cleared once consumed.
	Render func(window []byte)

	// Notify raises the edge interrupt on a key press. Wired to the
	// CPU's NMI latch by the board.
	Notify func()
}

// Press latches a key code for the monitor to read and signals the
// edge interrupt.
func (p *Panel) Press(code byte) {
	p.Mem.Poke(bus.AddrKeyCode, code)
	p.Mem.Poke(bus.AddrKeyStat, 1)

	if p.Notify != nil {
		p.Notify()
	}
}

// Release clears the key-down status byte.
func (p *Panel) Release() {
	p.Mem.Poke(bus.AddrKeyStat, 0)
}

// Service consumes the display scratch window: if the program has
// written anything there, hand a copy to the renderer and clear the
// window for the next frame.
func (p *Panel) Service() {
	var dirty bool
	window := make([]byte, bus.DisplaySize)
	for n := range window {
		window[n] = p.Mem.Peek(bus.DisplayBase + uint16(n))
		if window[n] != 0 {
			dirty = true
		}
	}
	if !dirty {
		return
	}

	if p.Render != nil {
		p.Render(window)
	}
	for n := range uint16(bus.DisplaySize) {
		p.Mem.Poke(bus.DisplayBase+n, 0)
	}
}
