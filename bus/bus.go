// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package bus implements the trainer's 65536-cell memory space and the
// device registers layered over it.
//
// Two rules carry the whole memory model: ordinary stores at or above
// the ROM boundary are silently dropped, and a small fixed set of
// addresses has read/write side effects (UART, digital I/O mirror, ADC
// trigger and result latches). Everything else is plain storage.
//
// Ownership of the space is split by address range rather than by lock:
// the CPU stepping context owns most of it, while the peripheral
// context exclusively writes the keypad result bytes and consumes the
// display scratch window. The device latches are the one place both
// contexts meet, so those sit behind a mutex.
package bus

import (
	"fmt"
	"iter"
	"maps"
	"sync"
)

// RomBase is the fixed boundary at and above which ordinary stores are
// rejected. The monitor image lives there, along with the vector table.
const RomBase = uint16(0xC000)

// Device register addresses.
const (
	AddrUartStatus = uint16(0x9000) // r: bit0 rx full, bit1 tx busy
	AddrUartData   = uint16(0x9001) // w: latch outbound; r: take inbound
	AddrDigitalOut = uint16(0x9002) // w: output pin mirror
	AddrDigitalIn  = uint16(0x9003) // r: sampled input byte
	AddrAdcControl = uint16(0x9004) // w: low 2 bits select channel, arms
	AddrAdcHigh    = uint16(0x9005) // r: conversion result, high byte
	AddrAdcLow     = uint16(0x9006) // r: conversion result, low byte
)

// UART status bits.
const (
	UartRxFull = byte(1 << 0) // data received
	UartTxBusy = byte(1 << 1) // transmit not ready
)

// Display scratch window and keypad result bytes. These are plain RAM
// from the CPU's view; the panel collaborator consumes the window and
// is the sole writer of the key bytes. The window sits in the device
// page: interrupt and context frames push downward from the power-on
// stack pointers (SP=0x00F3, SP2=0x00CB) through page 0, so a window
// there would be consumed and cleared mid-frame by the panel. The key
// bytes are above the power-on stack top and out of its reach.
const (
	DisplayBase = uint16(0x9010)
	DisplaySize = 16
	AddrKeyCode = uint16(0x00FC)
	AddrKeyStat = uint16(0x00FD)
)

// SentinelSize bytes at the ROM boundary are marked 0xFF at reset as
// the end-of-RAM sentinel the monitor's memory sizing probes for.
const SentinelSize = 8

var _bus_defines = map[string]string{
	"UART_STATUS": fmt.Sprintf("0x%04X", AddrUartStatus),
	"UART_DATA":   fmt.Sprintf("0x%04X", AddrUartData),
	"DIG_OUT":     fmt.Sprintf("0x%04X", AddrDigitalOut),
	"DIG_IN":      fmt.Sprintf("0x%04X", AddrDigitalIn),
	"ADC_CTL":     fmt.Sprintf("0x%04X", AddrAdcControl),
	"ADC_HI":      fmt.Sprintf("0x%04X", AddrAdcHigh),
	"ADC_LO":      fmt.Sprintf("0x%04X", AddrAdcLow),
	"DISPLAY":     fmt.Sprintf("0x%04X", DisplayBase),
	"KEY_CODE":    fmt.Sprintf("0x%04X", AddrKeyCode),
	"KEY_STAT":    fmt.Sprintf("0x%04X", AddrKeyStat),
	"ROM_BASE":    fmt.Sprintf("0x%04X", RomBase),
}

// Memory is the byte-addressable space shared by the CPU and the
// peripheral collaborators.
type Memory struct {
	cell [0x10000]byte

	mu         sync.Mutex
	rxData     byte
	rxFull     bool
	txData     byte
	txBusy     bool
	digitalIn  byte
	digitalOut byte
	adcChannel byte
	adcPending bool
	adcHigh    byte
	adcLow     byte
}

// NewMemory creates an empty memory space.
func NewMemory() *Memory {
	return &Memory{}
}

// Defines returns the device addresses as assembler equates.
func (m *Memory) Defines() iter.Seq2[string, string] {
	return maps.All(_bus_defines)
}

// Reset returns the device latches to power-on values. Memory cells are
// left alone; the board reloads its boot images separately.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rxFull = false
	m.txBusy = false
	m.adcPending = false
	m.adcHigh = 0
	m.adcLow = 0
}

// Read returns the byte at an address, applying device side effects.
// Reading the UART data register consumes the received byte.
func (m *Memory) Read(addr uint16) byte {
	switch addr {
	case AddrUartStatus:
		m.mu.Lock()
		defer m.mu.Unlock()
		var status byte
		if m.rxFull {
			status |= UartRxFull
		}
		if m.txBusy {
			status |= UartTxBusy
		}
		return status

	case AddrUartData:
		m.mu.Lock()
		defer m.mu.Unlock()
		m.rxFull = false
		return m.rxData

	case AddrDigitalIn:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.digitalIn

	case AddrAdcHigh:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.adcHigh

	case AddrAdcLow:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.adcLow
	}

	return m.cell[addr]
}

// Write stores a byte at an address. Stores at or above the ROM
// boundary are dropped without signaling the executing program; device
// addresses latch instead of storing.
func (m *Memory) Write(addr uint16, value byte) {
	switch addr {
	case AddrUartData:
		m.mu.Lock()
		defer m.mu.Unlock()
		m.txData = value
		m.txBusy = true
		return

	case AddrDigitalOut:
		m.mu.Lock()
		m.digitalOut = value
		m.mu.Unlock()
		m.cell[addr] = value
		return

	case AddrAdcControl:
		m.mu.Lock()
		m.adcChannel = value & 0x03
		m.adcPending = true
		m.mu.Unlock()
		m.cell[addr] = value
		return
	}

	if addr >= RomBase {
		return
	}
	m.cell[addr] = value
}

// Poke stores a byte bypassing write protection and device decoding.
// Used for image loading, the reset sentinels, and the peripheral-owned
// cells.
func (m *Memory) Poke(addr uint16, value byte) {
	m.cell[addr] = value
}

// Peek reads a cell without device side effects.
func (m *Memory) Peek(addr uint16) byte {
	return m.cell[addr]
}

// LoadImage copies a boot image into memory at its base address,
// ignoring write protection. Images that would run past the end of the
// space are rejected.
func (m *Memory) LoadImage(base uint16, data []byte) error {
	if int(base)+len(data) > len(m.cell) {
		return &ErrImageBounds{Base: base, Size: len(data)}
	}

	copy(m.cell[base:], data)
	return nil
}

// MarkSentinels writes the end-of-RAM sentinel bytes at the ROM
// boundary, part of the reset sequence.
func (m *Memory) MarkSentinels() {
	for n := range uint16(SentinelSize) {
		m.cell[RomBase+n] = 0xFF
	}
}

// ReceiveByte latches an inbound serial byte and raises the
// data-received bit. Called from the serial collaborator.
func (m *Memory) ReceiveByte(value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rxData = value
	m.rxFull = true
}

// TakeTransmit collects a latched outbound serial byte, clearing the
// transmit-busy bit. Called from the serial collaborator.
func (m *Memory) TakeTransmit() (value byte, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.txBusy {
		return
	}
	m.txBusy = false
	return m.txData, true
}

// SetDigitalIn latches the sampled digital input byte.
func (m *Memory) SetDigitalIn(value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.digitalIn = value
}

// DigitalOut returns the output pin shadow register.
func (m *Memory) DigitalOut() byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.digitalOut
}

// TakeAdcRequest collects an armed one-shot conversion request,
// returning the selected channel. Called from the ADC collaborator.
func (m *Memory) TakeAdcRequest() (channel byte, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.adcPending {
		return
	}
	m.adcPending = false
	return m.adcChannel, true
}

// CompleteAdc latches a conversion result for the CPU to read back.
func (m *Memory) CompleteAdc(high, low byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.adcHigh = high
	m.adcLow = low
}
