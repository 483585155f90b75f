package cpu

// Condition code register bit assignments. Bits 6 and 7 are not
// implemented by the hardware and always read back as 1.
const (
	FlagC = byte(1 << 0) // Carry / borrow
	FlagV = byte(1 << 1) // Two's-complement overflow
	FlagZ = byte(1 << 2) // Zero
	FlagN = byte(1 << 3) // Negative
	FlagI = byte(1 << 4) // Interrupt mask
	FlagH = byte(1 << 5) // Half-carry

	ccrUnused = byte(0xC0)

	// CcrReset is the condition code register value at power-on and
	// after interrupt vectoring: all flags clear, interrupts masked.
	CcrReset = ccrUnused | FlagI
)

// Flag returns the state of a single CCR bit.
func (c *Cpu) Flag(flag byte) bool {
	return c.CCR&flag != 0
}

// setFlag sets or clears a single CCR bit.
func (c *Cpu) setFlag(flag byte, cond bool) {
	if cond {
		c.CCR |= flag
	} else {
		c.CCR &^= flag
	}
}

func (c *Cpu) setCarry(cond bool)     { c.setFlag(FlagC, cond) }
func (c *Cpu) setOverflow(cond bool)  { c.setFlag(FlagV, cond) }
func (c *Cpu) setHalfCarry(cond bool) { c.setFlag(FlagH, cond) }

// setZN8 updates Z and N from an 8-bit result.
func (c *Cpu) setZN8(value byte) {
	c.setFlag(FlagZ, value == 0)
	c.setFlag(FlagN, value&0x80 != 0)
}

// setZN16 updates Z and N from a 16-bit result.
func (c *Cpu) setZN16(value uint16) {
	c.setFlag(FlagZ, value == 0)
	c.setFlag(FlagN, value&0x8000 != 0)
}

// add computes a+b plus an optional carry-in, updating H, N, Z, V and C.
// Every add-family opcode (ADD, ADC, ABA) funnels through here so the
// flag formulas live in exactly one place.
func (c *Cpu) add(a, b byte, carryIn bool) byte {
	var ci byte
	if carryIn {
		ci = 1
	}
	r := a + b + ci
	c.setHalfCarry((a^b^r)&0x10 != 0)
	c.setCarry(uint16(a)+uint16(b)+uint16(ci) > 0xFF)
	c.setOverflow((a^r)&(b^r)&0x80 != 0)
	c.setZN8(r)
	return r
}

// sub computes a-b minus an optional borrow-in, updating N, Z, V and C.
// H is not affected by the subtract family. CMP-family opcodes call this
// and discard the result.
func (c *Cpu) sub(a, b byte, borrowIn bool) byte {
	var bi byte
	if borrowIn {
		bi = 1
	}
	r := a - b - bi
	c.setCarry(uint16(a) < uint16(b)+uint16(bi))
	c.setOverflow((a^b)&(a^r)&0x80 != 0)
	c.setZN8(r)
	return r
}

// logic updates N and Z from a logical result and clears V, the common
// rule for AND/OR/EOR/BIT and for every load and store.
func (c *Cpu) logic(r byte) byte {
	c.setZN8(r)
	c.setOverflow(false)
	return r
}

// setShiftFlags applies the shared shift/rotate flag rule: N and Z from
// the result, C from the bit shifted out, and V = N xor C.
func (c *Cpu) setShiftFlags(r byte, carryOut bool) {
	c.setZN8(r)
	c.setCarry(carryOut)
	c.setOverflow((r&0x80 != 0) != carryOut)
}

// ccrString renders each CCR bit as a letter or a dash, for trace output
// and the register dump.
func (c *Cpu) ccrString() string {
	letters := []struct {
		flag byte
		ch   byte
	}{
		{FlagH, 'H'},
		{FlagI, 'I'},
		{FlagN, 'N'},
		{FlagZ, 'Z'},
		{FlagV, 'V'},
		{FlagC, 'C'},
	}

	text := make([]byte, len(letters))
	for n, l := range letters {
		if c.Flag(l.flag) {
			text[n] = l.ch
		} else {
			text[n] = '-'
		}
	}
	return string(text)
}
