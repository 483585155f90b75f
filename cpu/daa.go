package cpu

// The decimal adjust table maps every combination of accumulator value,
// carry-in and half-carry-in to the BCD-corrected result. Entries are 10
// bits wide: bits 0-7 hold the corrected accumulator, bit 8 the carry out.
// The DAA opcode is then a single lookup keyed by (carry<<9 | half<<8 | A).
var daaTable [1024]uint16

const daaCarryOut = uint16(1 << 8)

func init() {
	for key := range daaTable {
		a := byte(key)
		half := key&0x100 != 0
		carry := key&0x200 != 0

		lo := a & 0x0F
		hi := a >> 4

		var adjust byte
		carryOut := carry

		// Correct the low nibble when it overflowed 9 or produced a
		// half-carry. The qualifying high-nibble boundary for the
		// 0x60 correction shifts from 0xA0 to 0x90 when the low
		// nibble is also being corrected.
		if half || lo > 9 {
			adjust += 0x06
		}
		if carry || hi > 9 || (hi > 8 && lo > 9) {
			adjust += 0x60
			carryOut = true
		}

		entry := uint16(a + adjust)
		if carryOut {
			entry |= daaCarryOut
		}
		daaTable[key] = entry
	}
}

// daa applies the decimal adjust correction to the accumulator. N and Z
// follow the corrected value and C comes from the table; V is left alone,
// matching the hardware where DAA leaves overflow undefined.
func (c *Cpu) daa() {
	key := int(c.A)
	if c.Flag(FlagH) {
		key |= 1 << 8
	}
	if c.Flag(FlagC) {
		key |= 1 << 9
	}

	entry := daaTable[key]
	c.A = byte(entry)
	c.setZN8(c.A)
	c.setCarry(entry&daaCarryOut != 0)
}
