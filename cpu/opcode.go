package cpu

// addrMode determines how an opcode's operand bytes map to an effective
// address.
type addrMode int

const (
	modeInherent    = addrMode(iota) // no operand
	modeImmediate                    // one operand byte at PC
	modeImmediate16                  // two operand bytes at PC
	modeDirect                       // one byte, zero-page address
	modeIndexed                      // one byte, unsigned offset from X
	modeExtended                     // two bytes, big-endian address
	modeRelative                     // one byte, signed displacement
)

// operandBytes is how many bytes past the opcode the mode consumes.
func (m addrMode) operandBytes() int {
	switch m {
	case modeInherent:
		return 0
	case modeImmediate16, modeExtended:
		return 2
	default:
		return 1
	}
}

// opcode is one entry of the dispatch table: the mnemonic (for trace
// output and the assembler), the addressing mode, and the handler.
type opcode struct {
	name string
	mode addrMode
	fn   opFn
}

// Monitor handoff opcodes, assigned to slots the stock instruction set
// leaves undefined.
const (
	OpT2S    = byte(0x02) // X -> SP2
	OpT2X    = byte(0x03) // SP2 -> X
	OpRS1    = byte(0x04) // swap active stack out through SP1, in via SP2
	OpRS2    = byte(0x05) // swap active stack out through SP2, in via SP1
	OpSS2    = byte(0x12) // arm single-step via the shadow stack
	OpTracOn = byte(0x13) // set the trace flag
	OpTracOf = byte(0x14) // clear the trace flag
)

var opcodes = [256]*opcode{
	0x01: {"NOP", modeInherent, nop},
	0x02: {"T2S", modeInherent, t2s},
	0x03: {"T2X", modeInherent, t2x},
	0x04: {"RS1", modeInherent, rs1},
	0x05: {"RS2", modeInherent, rs2},
	0x06: {"TAP", modeInherent, tap},
	0x07: {"TPA", modeInherent, tpa},
	0x08: {"INX", modeInherent, inx},
	0x09: {"DEX", modeInherent, dex},
	0x0A: {"CLV", modeInherent, flagOp(FlagV, false)},
	0x0B: {"SEV", modeInherent, flagOp(FlagV, true)},
	0x0C: {"CLC", modeInherent, flagOp(FlagC, false)},
	0x0D: {"SEC", modeInherent, flagOp(FlagC, true)},
	0x0E: {"CLI", modeInherent, flagOp(FlagI, false)},
	0x0F: {"SEI", modeInherent, flagOp(FlagI, true)},

	0x10: {"SBA", modeInherent, sba},
	0x11: {"CBA", modeInherent, cba},
	0x12: {"SS2", modeInherent, ss2},
	0x13: {"TRACON", modeInherent, tracOn},
	0x14: {"TRACOF", modeInherent, tracOf},
	0x16: {"TAB", modeInherent, tab},
	0x17: {"TBA", modeInherent, tba},
	0x19: {"DAA", modeInherent, daaOp},
	0x1B: {"ABA", modeInherent, aba},

	0x20: {"BRA", modeRelative, branch(always)},
	0x22: {"BHI", modeRelative, branch(ifHI)},
	0x23: {"BLS", modeRelative, branch(ifLS)},
	0x24: {"BCC", modeRelative, branch(ifCC)},
	0x25: {"BCS", modeRelative, branch(ifCS)},
	0x26: {"BNE", modeRelative, branch(ifNE)},
	0x27: {"BEQ", modeRelative, branch(ifEQ)},
	0x28: {"BVC", modeRelative, branch(ifVC)},
	0x29: {"BVS", modeRelative, branch(ifVS)},
	0x2A: {"BPL", modeRelative, branch(ifPL)},
	0x2B: {"BMI", modeRelative, branch(ifMI)},
	0x2C: {"BGE", modeRelative, branch(ifGE)},
	0x2D: {"BLT", modeRelative, branch(ifLT)},
	0x2E: {"BGT", modeRelative, branch(ifGT)},
	0x2F: {"BLE", modeRelative, branch(ifLE)},

	0x30: {"TSX", modeInherent, tsx},
	0x31: {"INS", modeInherent, ins},
	0x32: {"PULA", modeInherent, pullOp(accA)},
	0x33: {"PULB", modeInherent, pullOp(accB)},
	0x34: {"DES", modeInherent, des},
	0x35: {"TXS", modeInherent, txs},
	0x36: {"PSHA", modeInherent, pushOp(accA)},
	0x37: {"PSHB", modeInherent, pushOp(accB)},
	0x39: {"RTS", modeInherent, rts},
	0x3B: {"RTI", modeInherent, rti},
	0x3E: {"WAI", modeInherent, wai},
	0x3F: {"SWI", modeInherent, swi},

	0x40: {"NEGA", modeInherent, rmwAcc(accA, (*Cpu).neg)},
	0x43: {"COMA", modeInherent, rmwAcc(accA, (*Cpu).com)},
	0x44: {"LSRA", modeInherent, rmwAcc(accA, (*Cpu).lsr)},
	0x46: {"RORA", modeInherent, rmwAcc(accA, (*Cpu).ror)},
	0x47: {"ASRA", modeInherent, rmwAcc(accA, (*Cpu).asr)},
	0x48: {"ASLA", modeInherent, rmwAcc(accA, (*Cpu).asl)},
	0x49: {"ROLA", modeInherent, rmwAcc(accA, (*Cpu).rol)},
	0x4A: {"DECA", modeInherent, rmwAcc(accA, (*Cpu).dec)},
	0x4C: {"INCA", modeInherent, rmwAcc(accA, (*Cpu).inc)},
	0x4D: {"TSTA", modeInherent, rmwAcc(accA, (*Cpu).tst)},
	0x4F: {"CLRA", modeInherent, rmwAcc(accA, (*Cpu).clr)},

	0x50: {"NEGB", modeInherent, rmwAcc(accB, (*Cpu).neg)},
	0x53: {"COMB", modeInherent, rmwAcc(accB, (*Cpu).com)},
	0x54: {"LSRB", modeInherent, rmwAcc(accB, (*Cpu).lsr)},
	0x56: {"RORB", modeInherent, rmwAcc(accB, (*Cpu).ror)},
	0x57: {"ASRB", modeInherent, rmwAcc(accB, (*Cpu).asr)},
	0x58: {"ASLB", modeInherent, rmwAcc(accB, (*Cpu).asl)},
	0x59: {"ROLB", modeInherent, rmwAcc(accB, (*Cpu).rol)},
	0x5A: {"DECB", modeInherent, rmwAcc(accB, (*Cpu).dec)},
	0x5C: {"INCB", modeInherent, rmwAcc(accB, (*Cpu).inc)},
	0x5D: {"TSTB", modeInherent, rmwAcc(accB, (*Cpu).tst)},
	0x5F: {"CLRB", modeInherent, rmwAcc(accB, (*Cpu).clr)},

	0x60: {"NEG", modeIndexed, rmwMem((*Cpu).neg)},
	0x63: {"COM", modeIndexed, rmwMem((*Cpu).com)},
	0x64: {"LSR", modeIndexed, rmwMem((*Cpu).lsr)},
	0x66: {"ROR", modeIndexed, rmwMem((*Cpu).ror)},
	0x67: {"ASR", modeIndexed, rmwMem((*Cpu).asr)},
	0x68: {"ASL", modeIndexed, rmwMem((*Cpu).asl)},
	0x69: {"ROL", modeIndexed, rmwMem((*Cpu).rol)},
	0x6A: {"DEC", modeIndexed, rmwMem((*Cpu).dec)},
	0x6C: {"INC", modeIndexed, rmwMem((*Cpu).inc)},
	0x6D: {"TST", modeIndexed, tstMem},
	0x6E: {"JMP", modeIndexed, jmp},
	0x6F: {"CLR", modeIndexed, rmwMem((*Cpu).clr)},

	0x70: {"NEG", modeExtended, rmwMem((*Cpu).neg)},
	0x73: {"COM", modeExtended, rmwMem((*Cpu).com)},
	0x74: {"LSR", modeExtended, rmwMem((*Cpu).lsr)},
	0x76: {"ROR", modeExtended, rmwMem((*Cpu).ror)},
	0x77: {"ASR", modeExtended, rmwMem((*Cpu).asr)},
	0x78: {"ASL", modeExtended, rmwMem((*Cpu).asl)},
	0x79: {"ROL", modeExtended, rmwMem((*Cpu).rol)},
	0x7A: {"DEC", modeExtended, rmwMem((*Cpu).dec)},
	0x7C: {"INC", modeExtended, rmwMem((*Cpu).inc)},
	0x7D: {"TST", modeExtended, tstMem},
	0x7E: {"JMP", modeExtended, jmp},
	0x7F: {"CLR", modeExtended, rmwMem((*Cpu).clr)},

	0x80: {"SUBA", modeImmediate, subOp(accA, false)},
	0x81: {"CMPA", modeImmediate, cmpOp(accA)},
	0x82: {"SBCA", modeImmediate, subOp(accA, true)},
	0x84: {"ANDA", modeImmediate, andOp(accA)},
	0x85: {"BITA", modeImmediate, bitOp(accA)},
	0x86: {"LDAA", modeImmediate, load(accA)},
	0x87: {"STAA", modeImmediate, storeImmediate},
	0x88: {"EORA", modeImmediate, eorOp(accA)},
	0x89: {"ADCA", modeImmediate, addOp(accA, true)},
	0x8A: {"ORAA", modeImmediate, oraOp(accA)},
	0x8B: {"ADDA", modeImmediate, addOp(accA, false)},
	0x8C: {"CPX", modeImmediate16, cpx},
	0x8D: {"BSR", modeRelative, jsr},
	0x8E: {"LDS", modeImmediate16, load16(regSP)},
	0x8F: {"STS", modeImmediate16, storeImmediate},

	0x90: {"SUBA", modeDirect, subOp(accA, false)},
	0x91: {"CMPA", modeDirect, cmpOp(accA)},
	0x92: {"SBCA", modeDirect, subOp(accA, true)},
	0x94: {"ANDA", modeDirect, andOp(accA)},
	0x95: {"BITA", modeDirect, bitOp(accA)},
	0x96: {"LDAA", modeDirect, load(accA)},
	0x97: {"STAA", modeDirect, store(accA)},
	0x98: {"EORA", modeDirect, eorOp(accA)},
	0x99: {"ADCA", modeDirect, addOp(accA, true)},
	0x9A: {"ORAA", modeDirect, oraOp(accA)},
	0x9B: {"ADDA", modeDirect, addOp(accA, false)},
	0x9C: {"CPX", modeDirect, cpx},
	0x9E: {"LDS", modeDirect, load16(regSP)},
	0x9F: {"STS", modeDirect, store16(regSP)},

	0xA0: {"SUBA", modeIndexed, subOp(accA, false)},
	0xA1: {"CMPA", modeIndexed, cmpOp(accA)},
	0xA2: {"SBCA", modeIndexed, subOp(accA, true)},
	0xA4: {"ANDA", modeIndexed, andOp(accA)},
	0xA5: {"BITA", modeIndexed, bitOp(accA)},
	0xA6: {"LDAA", modeIndexed, load(accA)},
	0xA7: {"STAA", modeIndexed, store(accA)},
	0xA8: {"EORA", modeIndexed, eorOp(accA)},
	0xA9: {"ADCA", modeIndexed, addOp(accA, true)},
	0xAA: {"ORAA", modeIndexed, oraOp(accA)},
	0xAB: {"ADDA", modeIndexed, addOp(accA, false)},
	0xAC: {"CPX", modeIndexed, cpx},
	0xAD: {"JSR", modeIndexed, jsr},
	0xAE: {"LDS", modeIndexed, load16(regSP)},
	0xAF: {"STS", modeIndexed, store16(regSP)},

	0xB0: {"SUBA", modeExtended, subOp(accA, false)},
	0xB1: {"CMPA", modeExtended, cmpOp(accA)},
	0xB2: {"SBCA", modeExtended, subOp(accA, true)},
	0xB4: {"ANDA", modeExtended, andOp(accA)},
	0xB5: {"BITA", modeExtended, bitOp(accA)},
	0xB6: {"LDAA", modeExtended, load(accA)},
	0xB7: {"STAA", modeExtended, store(accA)},
	0xB8: {"EORA", modeExtended, eorOp(accA)},
	0xB9: {"ADCA", modeExtended, addOp(accA, true)},
	0xBA: {"ORAA", modeExtended, oraOp(accA)},
	0xBB: {"ADDA", modeExtended, addOp(accA, false)},
	0xBC: {"CPX", modeExtended, cpx},
	0xBD: {"JSR", modeExtended, jsr},
	0xBE: {"LDS", modeExtended, load16(regSP)},
	0xBF: {"STS", modeExtended, store16(regSP)},

	0xC0: {"SUBB", modeImmediate, subOp(accB, false)},
	0xC1: {"CMPB", modeImmediate, cmpOp(accB)},
	0xC2: {"SBCB", modeImmediate, subOp(accB, true)},
	0xC4: {"ANDB", modeImmediate, andOp(accB)},
	0xC5: {"BITB", modeImmediate, bitOp(accB)},
	0xC6: {"LDAB", modeImmediate, load(accB)},
	0xC7: {"STAB", modeImmediate, storeImmediate},
	0xC8: {"EORB", modeImmediate, eorOp(accB)},
	0xC9: {"ADCB", modeImmediate, addOp(accB, true)},
	0xCA: {"ORAB", modeImmediate, oraOp(accB)},
	0xCB: {"ADDB", modeImmediate, addOp(accB, false)},
	0xCE: {"LDX", modeImmediate16, load16(regX)},
	0xCF: {"STX", modeImmediate16, storeImmediate},

	0xD0: {"SUBB", modeDirect, subOp(accB, false)},
	0xD1: {"CMPB", modeDirect, cmpOp(accB)},
	0xD2: {"SBCB", modeDirect, subOp(accB, true)},
	0xD4: {"ANDB", modeDirect, andOp(accB)},
	0xD5: {"BITB", modeDirect, bitOp(accB)},
	0xD6: {"LDAB", modeDirect, load(accB)},
	0xD7: {"STAB", modeDirect, store(accB)},
	0xD8: {"EORB", modeDirect, eorOp(accB)},
	0xD9: {"ADCB", modeDirect, addOp(accB, true)},
	0xDA: {"ORAB", modeDirect, oraOp(accB)},
	0xDB: {"ADDB", modeDirect, addOp(accB, false)},
	0xDE: {"LDX", modeDirect, load16(regX)},
	0xDF: {"STX", modeDirect, store16(regX)},

	0xE0: {"SUBB", modeIndexed, subOp(accB, false)},
	0xE1: {"CMPB", modeIndexed, cmpOp(accB)},
	0xE2: {"SBCB", modeIndexed, subOp(accB, true)},
	0xE4: {"ANDB", modeIndexed, andOp(accB)},
	0xE5: {"BITB", modeIndexed, bitOp(accB)},
	0xE6: {"LDAB", modeIndexed, load(accB)},
	0xE7: {"STAB", modeIndexed, store(accB)},
	0xE8: {"EORB", modeIndexed, eorOp(accB)},
	0xE9: {"ADCB", modeIndexed, addOp(accB, true)},
	0xEA: {"ORAB", modeIndexed, oraOp(accB)},
	0xEB: {"ADDB", modeIndexed, addOp(accB, false)},
	0xEE: {"LDX", modeIndexed, load16(regX)},
	0xEF: {"STX", modeIndexed, store16(regX)},

	0xF0: {"SUBB", modeExtended, subOp(accB, false)},
	0xF1: {"CMPB", modeExtended, cmpOp(accB)},
	0xF2: {"SBCB", modeExtended, subOp(accB, true)},
	0xF4: {"ANDB", modeExtended, andOp(accB)},
	0xF5: {"BITB", modeExtended, bitOp(accB)},
	0xF6: {"LDAB", modeExtended, load(accB)},
	0xF7: {"STAB", modeExtended, store(accB)},
	0xF8: {"EORB", modeExtended, eorOp(accB)},
	0xF9: {"ADCB", modeExtended, addOp(accB, true)},
	0xFA: {"ORAB", modeExtended, oraOp(accB)},
	0xFB: {"ADDB", modeExtended, addOp(accB, false)},
	0xFE: {"LDX", modeExtended, load16(regX)},
	0xFF: {"STX", modeExtended, store16(regX)},
}

// Mnemonic returns the mnemonic for an opcode byte, or "???" for the
// undefined slots.
func Mnemonic(op byte) string {
	def := opcodes[op]
	if def == nil {
		return "???"
	}
	return def.name
}
