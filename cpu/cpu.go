// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"sync/atomic"
)

// Bus is the memory the CPU executes against. Reads and writes may carry
// device side effects; the implementation decides which addresses are
// write-protected.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Interrupt and reset vector locations. Each holds a big-endian 16-bit
// entry point.
const (
	VectorIRQ   = uint16(0xFFF8)
	VectorSWI   = uint16(0xFFFA)
	VectorNMI   = uint16(0xFFFC)
	VectorReset = uint16(0xFFFE)
)

// Power-on stack pointer values.
const (
	ResetSP  = uint16(0x00F3)
	ResetSP2 = uint16(0x00CB)
)

var _cpu_defines = map[string]string{
	"VEC_IRQ":   fmt.Sprintf("0x%04X", VectorIRQ),
	"VEC_SWI":   fmt.Sprintf("0x%04X", VectorSWI),
	"VEC_NMI":   fmt.Sprintf("0x%04X", VectorNMI),
	"VEC_RESET": fmt.Sprintf("0x%04X", VectorReset),
}

// Cpu is the MC6800 execution state. All registers are mutated only by
// Tick and Reset; the one exception is the NMI latch, which an external
// edge-interrupt context sets through SignalNMI.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Bus Bus // Attached memory bus.

	A, B byte   // Accumulators.
	X    uint16 // Index register.
	PC   uint16 // Program counter.
	SP   uint16 // Active stack pointer.
	SP1  uint16 // Saved context pointer (user side).
	SP2  uint16 // Saved context pointer (shadow/monitor side).
	CCR  byte   // Condition code register.
	IR   byte   // Last fetched opcode byte.

	// Trace enables the per-step diagnostic line on TraceOut. It has no
	// effect on emulated semantics.
	Trace    bool
	TraceOut io.Writer

	// ResetLine and IrqLine sample the level-sensitive external lines;
	// nil lines read as deasserted. Sampling happens only at step
	// boundaries.
	ResetLine func() bool
	IrqLine   func() bool

	// ResetHook runs during reset servicing, before the vector load, so
	// the board can reload its boot images.
	ResetHook func()

	nmi     atomic.Bool
	ssFlag  int
	waiting bool
}

// NewCpu creates a CPU attached to a bus, in the power-on state except
// that the PC is left for Reset to load from the vector.
func NewCpu(bus Bus) (c *Cpu) {
	c = &Cpu{Bus: bus}
	c.CCR = CcrReset
	c.SP, c.SP1, c.SP2 = ResetSP, ResetSP, ResetSP2

	return
}

// Defines for the cpu.
func (c *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current register state as a single line.
func (c *Cpu) String() string {
	return fmt.Sprintf("PC=%04X IR=%02X A=%02X B=%02X X=%04X SP=%04X SP1=%04X SP2=%04X CCR=%s",
		c.PC, c.IR, c.A, c.B, c.X, c.SP, c.SP1, c.SP2, c.ccrString())
}

// SignalNMI latches a falling edge on the NMI line. The latch is
// consumed exactly once at a step boundary; further edges before then
// are absorbed, matching the hardware.
func (c *Cpu) SignalNMI() {
	c.nmi.Store(true)
}

// Waiting reports whether the CPU is halted in WAI, awaiting an
// interrupt.
func (c *Cpu) Waiting() bool {
	return c.waiting
}

// Reset reinitializes the register file and latches to power-on values,
// runs the board reset hook, and loads the PC from the reset vector.
func (c *Cpu) Reset() {
	if c.Verbose {
		log.Printf("cpu: reset")
	}

	c.A, c.B, c.X = 0, 0, 0
	c.SP, c.SP1, c.SP2 = ResetSP, ResetSP, ResetSP2
	c.CCR = CcrReset
	c.IR = 0
	c.ssFlag = 0
	c.waiting = false
	c.nmi.Store(false)

	if c.ResetHook != nil {
		c.ResetHook()
	}

	c.PC = c.readWord(VectorReset)
}

// interrupt pushes the register frame and vectors. All flags are
// cleared and the interrupt mask set, so the handler starts with
// CCR=0xD0. A waiting CPU wakes.
func (c *Cpu) interrupt(vector uint16) {
	c.pushContext()
	c.CCR = CcrReset
	c.waiting = false
	c.PC = c.readWord(vector)
}

// Tick performs one step: service reset, then IRQ, then the latched
// NMI, then fetch and execute a single instruction. Interrupt servicing
// is suppressed while the single-step countdown is armed. If IRQ and a
// pending NMI are both true, only IRQ is serviced this step; the NMI
// stays latched for a later step.
func (c *Cpu) Tick() {
	if c.ssFlag > 0 {
		// The armed countdown synthesizes the context swaps around the
		// single foreign instruction: RS2 going out, RS1 coming back.
		// It keeps running even when that instruction was a WAI, so the
		// monitor always regains control; the halted frame is parked
		// with its PC past the WAI.
		pc := c.PC
		c.ssFlag--
		switch c.ssFlag {
		case 3:
			c.IR = OpRS2
			rs2(c, 0)
			c.traceStep(pc)
			return
		case 1:
			c.IR = OpRS1
			rs1(c, 0)
			c.traceStep(pc)
			return
		}
	} else {
		switch {
		case c.ResetLine != nil && c.ResetLine():
			c.Reset()
			return
		case c.IrqLine != nil && c.IrqLine() && !c.Flag(FlagI):
			if c.Verbose {
				log.Printf("cpu: irq")
			}
			c.interrupt(VectorIRQ)
			return
		case c.nmi.CompareAndSwap(true, false):
			if c.Verbose {
				log.Printf("cpu: nmi")
			}
			c.interrupt(VectorNMI)
			return
		}
	}

	if c.waiting {
		return
	}

	pc := c.PC
	c.IR = c.Bus.Read(c.PC)
	c.PC++

	def := opcodes[c.IR]
	if def == nil {
		// Undefined opcodes execute as one-byte no-ops so the
		// interpreter never halts on illegal code.
		c.traceStep(pc)
		return
	}

	ea := c.operand(def.mode)
	def.fn(c, ea)
	c.traceStep(pc)
}

// operand consumes the operand bytes of an addressing mode and returns
// the effective address. Relative mode resolves the branch target here:
// the signed displacement is added to the PC after the operand fetch.
func (c *Cpu) operand(mode addrMode) (ea uint16) {
	switch mode {
	case modeInherent:
	case modeImmediate:
		ea = c.PC
		c.PC++
	case modeImmediate16:
		ea = c.PC
		c.PC += 2
	case modeDirect:
		ea = uint16(c.Bus.Read(c.PC))
		c.PC++
	case modeIndexed:
		ea = c.X + uint16(c.Bus.Read(c.PC))
		c.PC++
	case modeExtended:
		ea = c.readWord(c.PC)
		c.PC += 2
	case modeRelative:
		disp := c.Bus.Read(c.PC)
		c.PC++
		ea = c.PC + uint16(int8(disp))
	}

	return
}

// traceStep emits the diagnostic line for the step just executed: the
// fetch address, the mnemonic, and the post-execution register state.
func (c *Cpu) traceStep(pc uint16) {
	if !c.Trace || c.TraceOut == nil {
		return
	}

	fmt.Fprintf(c.TraceOut, "%04X %-6s A=%02X B=%02X X=%04X SP=%04X %s\n",
		pc, Mnemonic(c.IR), c.A, c.B, c.X, c.SP, c.ccrString())
}
