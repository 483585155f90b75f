package cpu

// opFn executes one decoded instruction. The effective address has
// already been computed (and the program counter advanced past the
// operand bytes) according to the opcode's addressing mode. For
// immediate mode the effective address is the address of the operand
// itself, so handlers read operands and memory the same way.
type opFn func(c *Cpu, ea uint16)

// accSel selects one of the two accumulators, so each ALU operation is
// written once and instantiated for both the A and B opcode variants.
type accSel func(c *Cpu) *byte

func accA(c *Cpu) *byte { return &c.A }
func accB(c *Cpu) *byte { return &c.B }

// readWord reads a big-endian 16-bit value from the bus.
func (c *Cpu) readWord(addr uint16) uint16 {
	hi := c.Bus.Read(addr)
	lo := c.Bus.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// writeWord writes a big-endian 16-bit value to the bus.
func (c *Cpu) writeWord(addr uint16, value uint16) {
	c.Bus.Write(addr, byte(value>>8))
	c.Bus.Write(addr+1, byte(value))
}

// push stores a byte at the active stack pointer and decrements it.
// Stack pointers wrap modulo 64K without any overflow check, matching
// the hardware's lack of a stack trap.
func (c *Cpu) push(value byte) {
	c.Bus.Write(c.SP, value)
	c.SP--
}

// pull increments the active stack pointer and loads a byte from it.
func (c *Cpu) pull() byte {
	c.SP++
	return c.Bus.Read(c.SP)
}

// pushWord pushes a 16-bit value, low byte first.
func (c *Cpu) pushWord(value uint16) {
	c.push(byte(value))
	c.push(byte(value >> 8))
}

// pullWord pulls a 16-bit value pushed by pushWord.
func (c *Cpu) pullWord() uint16 {
	hi := c.pull()
	lo := c.pull()
	return uint16(hi)<<8 | uint16(lo)
}

// Load, store, and ALU generators. Each returns the handler for a
// single (operation, accumulator) pairing; the dispatch table supplies
// the addressing mode.

func load(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		*acc(c) = c.logic(c.Bus.Read(ea))
	}
}

func store(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		c.Bus.Write(ea, c.logic(*acc(c)))
	}
}

// storeImmediate is the handler for the store opcodes in the immediate
// column (0x87, 0x8F, 0xC7, 0xCF). Immediate mode provides no address
// to store to; the hardware monitor treats these as no-ops that still
// consume their operand bytes, and boot images depend on that, so the
// quirk is preserved.
func storeImmediate(c *Cpu, ea uint16) {}

func addOp(acc accSel, withCarry bool) opFn {
	return func(c *Cpu, ea uint16) {
		a := acc(c)
		*a = c.add(*a, c.Bus.Read(ea), withCarry && c.Flag(FlagC))
	}
}

func subOp(acc accSel, withBorrow bool) opFn {
	return func(c *Cpu, ea uint16) {
		a := acc(c)
		*a = c.sub(*a, c.Bus.Read(ea), withBorrow && c.Flag(FlagC))
	}
}

func cmpOp(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		c.sub(*acc(c), c.Bus.Read(ea), false)
	}
}

func andOp(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		a := acc(c)
		*a = c.logic(*a & c.Bus.Read(ea))
	}
}

func oraOp(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		a := acc(c)
		*a = c.logic(*a | c.Bus.Read(ea))
	}
}

func eorOp(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		a := acc(c)
		*a = c.logic(*a ^ c.Bus.Read(ea))
	}
}

// bitOp is AND without the result write-back.
func bitOp(acc accSel) opFn {
	return func(c *Cpu, ea uint16) {
		c.logic(*acc(c) & c.Bus.Read(ea))
	}
}

// Unary ALU operations shared by the accumulator and memory
// read-modify-write rows.

func (c *Cpu) neg(v byte) byte {
	r := -v
	c.setZN8(r)
	c.setOverflow(v == 0x80)
	c.setCarry(v != 0)
	return r
}

func (c *Cpu) com(v byte) byte {
	r := ^v
	c.setZN8(r)
	c.setOverflow(false)
	c.setCarry(true)
	return r
}

func (c *Cpu) lsr(v byte) byte {
	r := v >> 1
	c.setShiftFlags(r, v&1 != 0)
	return r
}

func (c *Cpu) ror(v byte) byte {
	r := v >> 1
	if c.Flag(FlagC) {
		r |= 0x80
	}
	c.setShiftFlags(r, v&1 != 0)
	return r
}

func (c *Cpu) asr(v byte) byte {
	r := v>>1 | v&0x80
	c.setShiftFlags(r, v&1 != 0)
	return r
}

func (c *Cpu) asl(v byte) byte {
	r := v << 1
	c.setShiftFlags(r, v&0x80 != 0)
	return r
}

func (c *Cpu) rol(v byte) byte {
	r := v << 1
	if c.Flag(FlagC) {
		r |= 1
	}
	c.setShiftFlags(r, v&0x80 != 0)
	return r
}

func (c *Cpu) dec(v byte) byte {
	r := v - 1
	c.setZN8(r)
	c.setOverflow(v == 0x80)
	return r
}

func (c *Cpu) inc(v byte) byte {
	r := v + 1
	c.setZN8(r)
	c.setOverflow(v == 0x7F)
	return r
}

func (c *Cpu) tst(v byte) byte {
	c.setZN8(v)
	c.setOverflow(false)
	c.setCarry(false)
	return v
}

func (c *Cpu) clr(byte) byte {
	c.setZN8(0)
	c.setOverflow(false)
	c.setCarry(false)
	return 0
}

func rmwAcc(acc accSel, alu func(*Cpu, byte) byte) opFn {
	return func(c *Cpu, _ uint16) {
		a := acc(c)
		*a = alu(c, *a)
	}
}

func rmwMem(alu func(*Cpu, byte) byte) opFn {
	return func(c *Cpu, ea uint16) {
		c.Bus.Write(ea, alu(c, c.Bus.Read(ea)))
	}
}

// tstMem only updates the flags; no write-back, so device registers are
// not disturbed by a TST probe.
func tstMem(c *Cpu, ea uint16) {
	c.tst(c.Bus.Read(ea))
}

// Index register and stack pointer operations. Loads and stores of the
// 16-bit registers follow the load flag rule against the 16-bit value.

type reg16Sel func(c *Cpu) *uint16

func regX(c *Cpu) *uint16  { return &c.X }
func regSP(c *Cpu) *uint16 { return &c.SP }

func load16(reg reg16Sel) opFn {
	return func(c *Cpu, ea uint16) {
		v := c.readWord(ea)
		c.setZN16(v)
		c.setOverflow(false)
		*reg(c) = v
	}
}

func store16(reg reg16Sel) opFn {
	return func(c *Cpu, ea uint16) {
		v := *reg(c)
		c.setZN16(v)
		c.setOverflow(false)
		c.writeWord(ea, v)
	}
}

// cpx compares X against a 16-bit operand. N, Z and V follow the 16-bit
// result; C is not touched, matching the hardware.
func cpx(c *Cpu, ea uint16) {
	m := c.readWord(ea)
	r := c.X - m
	c.setZN16(r)
	c.setOverflow((c.X^m)&(c.X^r)&0x8000 != 0)
}

func inx(c *Cpu, _ uint16) {
	c.X++
	c.setFlag(FlagZ, c.X == 0)
}

func dex(c *Cpu, _ uint16) {
	c.X--
	c.setFlag(FlagZ, c.X == 0)
}

func ins(c *Cpu, _ uint16) { c.SP++ }
func des(c *Cpu, _ uint16) { c.SP-- }

// TSX and TXS offset by one, matching the hardware convention that SP
// points at the next free byte while X points at the top of stack.
func tsx(c *Cpu, _ uint16) { c.X = c.SP + 1 }
func txs(c *Cpu, _ uint16) { c.SP = c.X - 1 }

func pushOp(acc accSel) opFn {
	return func(c *Cpu, _ uint16) {
		c.push(*acc(c))
	}
}

func pullOp(acc accSel) opFn {
	return func(c *Cpu, _ uint16) {
		*acc(c) = c.pull()
	}
}

// Accumulator transfer and pair operations.

func tab(c *Cpu, _ uint16) { c.B = c.logic(c.A) }
func tba(c *Cpu, _ uint16) { c.A = c.logic(c.B) }

func tap(c *Cpu, _ uint16) { c.CCR = c.A | ccrUnused }
func tpa(c *Cpu, _ uint16) { c.A = c.CCR }

func aba(c *Cpu, _ uint16) { c.A = c.add(c.A, c.B, false) }
func sba(c *Cpu, _ uint16) { c.A = c.sub(c.A, c.B, false) }
func cba(c *Cpu, _ uint16) { c.sub(c.A, c.B, false) }

func daaOp(c *Cpu, _ uint16) { c.daa() }

func flagOp(flag byte, set bool) opFn {
	return func(c *Cpu, _ uint16) {
		c.setFlag(flag, set)
	}
}

// Flow control. Relative mode has already resolved the branch target
// into the effective address, so a branch is just a conditional PC load.

func branch(cond func(*Cpu) bool) opFn {
	return func(c *Cpu, ea uint16) {
		if cond(c) {
			c.PC = ea
		}
	}
}

func always(*Cpu) bool  { return true }
func ifHI(c *Cpu) bool  { return !c.Flag(FlagC) && !c.Flag(FlagZ) }
func ifLS(c *Cpu) bool  { return c.Flag(FlagC) || c.Flag(FlagZ) }
func ifCC(c *Cpu) bool  { return !c.Flag(FlagC) }
func ifCS(c *Cpu) bool  { return c.Flag(FlagC) }
func ifNE(c *Cpu) bool  { return !c.Flag(FlagZ) }
func ifEQ(c *Cpu) bool  { return c.Flag(FlagZ) }
func ifVC(c *Cpu) bool  { return !c.Flag(FlagV) }
func ifVS(c *Cpu) bool  { return c.Flag(FlagV) }
func ifPL(c *Cpu) bool  { return !c.Flag(FlagN) }
func ifMI(c *Cpu) bool  { return c.Flag(FlagN) }
func ifGE(c *Cpu) bool  { return c.Flag(FlagN) == c.Flag(FlagV) }
func ifLT(c *Cpu) bool  { return c.Flag(FlagN) != c.Flag(FlagV) }
func ifGT(c *Cpu) bool  { return !c.Flag(FlagZ) && ifGE(c) }
func ifLE(c *Cpu) bool  { return c.Flag(FlagZ) || ifLT(c) }

func jmp(c *Cpu, ea uint16) {
	c.PC = ea
}

// jsr pushes the return address (the PC already points past the operand
// bytes) and jumps. BSR shares this handler through relative mode.
func jsr(c *Cpu, ea uint16) {
	c.pushWord(c.PC)
	c.PC = ea
}

func rts(c *Cpu, _ uint16) {
	c.PC = c.pullWord()
}

func rti(c *Cpu, _ uint16) {
	c.pullContext()
}

// swi vectors through the software interrupt vector and unconditionally
// re-arms normal interrupt servicing by clearing the single-step
// counter.
func swi(c *Cpu, _ uint16) {
	c.ssFlag = 0
	c.interrupt(VectorSWI)
}

// wai halts instruction fetch until an interrupt condition becomes
// true. The stepping loop sees the halted state and stops advancing the
// PC; no busy spin is involved.
func wai(c *Cpu, _ uint16) {
	c.waiting = true
}

func nop(c *Cpu, _ uint16) {}
