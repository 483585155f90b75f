// Package io provides the peripheral collaborators of the trainer: the
// serial line pump, the analog converter, and the keypad/display panel.
// Each one owns its side of the memory-mapped device contract and runs
// between CPU steps (or on its own goroutine for blocking input),
// never touching addresses the CPU context owns.
package io

import (
	"io"
	"log"

	"github.com/mc680x/trainer/bus"
)

// Serial pumps bytes between the UART latches and a host stream pair.
type Serial struct {
	Verbose bool

	Input  io.Reader
	Output io.Writer

	Mem *bus.Memory
}

// Service moves a latched outbound byte, if any, to the host stream.
// Called between CPU steps; clearing the transmit-busy bit is what lets
// the emulated program send its next byte.
func (s *Serial) Service() {
	value, ok := s.Mem.TakeTransmit()
	if !ok {
		return
	}

	if s.Output == nil {
		return
	}
	if _, err := s.Output.Write([]byte{value}); err != nil {
		if s.Verbose {
			log.Printf("serial: write: %v", err)
		}
	}
}

// Run pumps the host input stream into the receive latch until the
// stream ends or stop is closed. Blocking reads live here, on their own
// goroutine, so the stepping loop never stalls on the host terminal.
func (s *Serial) Run(stop <-chan struct{}) {
	if s.Input == nil {
		return
	}

	var one [1]byte
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := s.Input.Read(one[:])
		if n > 0 {
			s.Mem.ReceiveByte(one[0])
		}
		if err != nil {
			if s.Verbose {
				log.Printf("serial: read: %v", err)
			}
			return
		}
	}
}
