package io

import (
	"github.com/mc680x/trainer/bus"
)

// Adc resolves one-shot conversion requests armed through the ADC
// control register. Sample values stand in for the physical inputs; a
// test or a front end sets them per channel.
type Adc struct {
	Mem *bus.Memory

	// Sample holds the 10-bit conversion value per channel.
	Sample [4]uint16
}

// Service completes a pending conversion, latching the result bytes for
// the emulated program to read back.
func (a *Adc) Service() {
	channel, ok := a.Mem.TakeAdcRequest()
	if !ok {
		return
	}

	value := a.Sample[channel]
	a.Mem.CompleteAdc(byte(value>>8), byte(value))
}
