package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ram is a bus with no write protection and no device decoding, for
// exercising the core in isolation.
type ram [0x10000]byte

func (r *ram) Read(addr uint16) byte         { return r[addr] }
func (r *ram) Write(addr uint16, value byte) { r[addr] = value }

// testCpu builds a CPU with the reset vector aimed at org and the code
// bytes in place, already reset.
func testCpu(org uint16, code ...byte) (*Cpu, *ram) {
	mem := &ram{}
	mem[VectorReset] = byte(org >> 8)
	mem[VectorReset+1] = byte(org)
	copy(mem[org:], code)

	c := NewCpu(mem)
	c.Reset()
	return c, mem
}

func ccr(letters string) byte {
	value := ccrUnused
	for _, ch := range letters {
		switch ch {
		case 'H':
			value |= FlagH
		case 'I':
			value |= FlagI
		case 'N':
			value |= FlagN
		case 'Z':
			value |= FlagZ
		case 'V':
			value |= FlagV
		case 'C':
			value |= FlagC
		}
	}
	return value
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(0x1234)

	assert.Equal(byte(0), c.A)
	assert.Equal(byte(0), c.B)
	assert.Equal(uint16(0), c.X)
	assert.Equal(ResetSP, c.SP)
	assert.Equal(ResetSP, c.SP1)
	assert.Equal(ResetSP2, c.SP2)
	assert.Equal(CcrReset, c.CCR)
	assert.Equal(uint16(0x1234), c.PC)
}

func TestLoadStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// LDAA #$05 / STAA $50 / LDAA #$00 / ADDA $50
	c, mem := testCpu(0x0100,
		0x86, 0x05,
		0x97, 0x50,
		0x86, 0x00,
		0x9B, 0x50,
	)

	for range 4 {
		c.Tick()
	}

	assert.Equal(byte(0x05), c.A)
	assert.Equal(byte(0x05), mem[0x0050])
	assert.Equal(ccr("I"), c.CCR, "Z, N, V and C all clear")
}

func TestArithmeticFlags(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		op      byte
		a       byte
		operand byte
		carry   bool
		want    byte
		ccr     byte
	}){
		{"add_simple", 0x8B, 0x05, 0x02, false, 0x07, ccr("I")},
		{"add_halfcarry", 0x8B, 0x09, 0x09, false, 0x12, ccr("HI")},
		{"add_zero_carry", 0x8B, 0xFF, 0x01, false, 0x00, ccr("HIZC")},
		{"add_overflow", 0x8B, 0x7F, 0x01, false, 0x80, ccr("HINV")},
		{"adc_with_carry", 0x89, 0x05, 0x02, true, 0x08, ccr("I")},
		{"sub_simple", 0x80, 0x07, 0x02, false, 0x05, ccr("I")},
		{"sub_borrow", 0x80, 0x02, 0x07, false, 0xFB, ccr("INC")},
		{"sub_zero", 0x80, 0x07, 0x07, false, 0x00, ccr("IZ")},
		{"sub_overflow", 0x80, 0x80, 0x01, false, 0x7F, ccr("IV")},
		{"sbc_with_borrow", 0x82, 0x07, 0x02, true, 0x04, ccr("I")},
		{"cmp_keeps_acc", 0x81, 0x07, 0x09, false, 0x07, ccr("INC")},
		{"and", 0x84, 0xF0, 0x0F, false, 0x00, ccr("IZ")},
		{"ora", 0x8A, 0xF0, 0x0F, false, 0xFF, ccr("IN")},
		{"eor", 0x88, 0xFF, 0x0F, false, 0xF0, ccr("IN")},
		{"bit_keeps_acc", 0x85, 0xF0, 0xF0, false, 0xF0, ccr("IN")},
	}

	for _, entry := range table {
		c, _ := testCpu(0x0100, entry.op, entry.operand)
		c.A = entry.a
		c.setCarry(entry.carry)

		c.Tick()

		assert.Equal(entry.want, c.A, entry.name)
		assert.Equal(entry.ccr, c.CCR, entry.name)
		assert.Equal(uint16(0x0102), c.PC, entry.name)
	}
}

func TestAccumulatorBVariants(t *testing.T) {
	assert := assert.New(t)

	// LDAB #$22 / ADDB #$11 / STAB $40
	c, mem := testCpu(0x0100,
		0xC6, 0x22,
		0xCB, 0x11,
		0xD7, 0x40,
	)

	for range 3 {
		c.Tick()
	}

	assert.Equal(byte(0x33), c.B)
	assert.Equal(byte(0), c.A, "accumulator A untouched")
	assert.Equal(byte(0x33), mem[0x0040])
}

func TestDecimalAdjustSequence(t *testing.T) {
	assert := assert.New(t)

	// ADDA #9 with A=9 leaves half-carry set; DAA must correct to BCD 18.
	c, _ := testCpu(0x0100,
		0x8B, 0x09,
		0x19,
	)
	c.A = 0x09

	c.Tick()
	assert.Equal(byte(0x12), c.A)
	assert.True(c.Flag(FlagH))

	c.Tick()
	assert.Equal(byte(0x18), c.A)
	assert.False(c.Flag(FlagC))
}

func TestShiftsAndRotates(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		op    byte
		a     byte
		carry bool
		want  byte
		ccr   byte
	}){
		{"asla", 0x48, 0x40, false, 0x80, ccr("INV")},
		{"asla_carry", 0x48, 0x81, false, 0x02, ccr("IVC")},
		{"lsra", 0x44, 0x03, false, 0x01, ccr("IVC")},
		{"asra_sign", 0x47, 0x81, false, 0xC0, ccr("INC")},
		{"rola", 0x49, 0x80, true, 0x01, ccr("IVC")},
		{"rora", 0x46, 0x01, true, 0x80, ccr("INC")},
		{"nega", 0x40, 0x01, false, 0xFF, ccr("INC")},
		{"nega_min", 0x40, 0x80, false, 0x80, ccr("INVC")},
		{"coma", 0x43, 0xF0, false, 0x0F, ccr("IC")},
		{"inca_overflow", 0x4C, 0x7F, false, 0x80, ccr("INV")},
		{"deca_overflow", 0x4A, 0x80, false, 0x7F, ccr("IV")},
		{"tsta", 0x4D, 0x80, true, 0x80, ccr("IN")},
		{"clra", 0x4F, 0x55, true, 0x00, ccr("IZ")},
	}

	for _, entry := range table {
		c, _ := testCpu(0x0100, entry.op)
		c.A = entry.a
		c.setCarry(entry.carry)

		c.Tick()

		assert.Equal(entry.want, c.A, entry.name)
		assert.Equal(entry.ccr, c.CCR, entry.name)
	}
}

func TestMemoryReadModifyWrite(t *testing.T) {
	assert := assert.New(t)

	// INC 0x0200 (extended), then COM 2,X with X=0x01FE.
	c, mem := testCpu(0x0100,
		0x7C, 0x02, 0x00,
		0x63, 0x02,
	)
	mem[0x0200] = 0x41
	c.X = 0x01FE

	c.Tick()
	assert.Equal(byte(0x42), mem[0x0200])

	c.Tick()
	assert.Equal(byte(0xBD), mem[0x0200], "indexed effective address X+offset")
	assert.True(c.Flag(FlagC), "COM always sets carry")
}

func TestAddressingModes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code []byte
		prep func(c *Cpu, mem *ram)
		want byte
	}){
		{"immediate", []byte{0x86, 0x7A}, nil, 0x7A},
		{"direct", []byte{0x96, 0x42}, func(c *Cpu, mem *ram) {
			mem[0x0042] = 0x55
		}, 0x55},
		{"indexed", []byte{0xA6, 0x10}, func(c *Cpu, mem *ram) {
			c.X = 0x0300
			mem[0x0310] = 0x66
		}, 0x66},
		{"extended", []byte{0xB6, 0x12, 0x34}, func(c *Cpu, mem *ram) {
			mem[0x1234] = 0x77
		}, 0x77},
	}

	for _, entry := range table {
		c, mem := testCpu(0x0100, entry.code...)
		if entry.prep != nil {
			entry.prep(c, mem)
		}

		c.Tick()

		assert.Equal(entry.want, c.A, entry.name)
		assert.Equal(uint16(0x0100)+uint16(len(entry.code)), c.PC, entry.name)
	}
}

func TestBranchDisplacement(t *testing.T) {
	assert := assert.New(t)

	// BRA -2 is a self loop: the target is the branch itself.
	c, _ := testCpu(0x0100, 0x20, 0xFE)

	c.Tick()
	assert.Equal(uint16(0x0100), c.PC)

	c.Tick()
	assert.Equal(uint16(0x0100), c.PC, "loops forever")
}

func TestBranchConditions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		op    byte
		flags byte
		taken bool
	}){
		{"beq_taken", 0x27, FlagZ, true},
		{"beq_not", 0x27, 0, false},
		{"bne_taken", 0x26, 0, true},
		{"bcs_taken", 0x25, FlagC, true},
		{"bcc_not", 0x24, FlagC, false},
		{"bmi_taken", 0x2B, FlagN, true},
		{"bpl_not", 0x2A, FlagN, false},
		{"bhi_taken", 0x22, 0, true},
		{"bhi_not", 0x22, FlagC, false},
		{"bls_taken", 0x23, FlagZ, true},
		{"bge_equal_signs", 0x2C, FlagN | FlagV, true},
		{"blt_taken", 0x2D, FlagN, true},
		{"bgt_not_on_zero", 0x2E, FlagZ, false},
		{"ble_taken_on_zero", 0x2F, FlagZ, true},
		{"bvs_taken", 0x29, FlagV, true},
		{"bvc_taken", 0x28, 0, true},
	}

	for _, entry := range table {
		c, _ := testCpu(0x0100, entry.op, 0x10)
		c.CCR = ccrUnused | FlagI | entry.flags

		c.Tick()

		want := uint16(0x0102)
		if entry.taken {
			want = 0x0112
		}
		assert.Equal(want, c.PC, entry.name)
	}
}

func TestIndexRegisterOps(t *testing.T) {
	assert := assert.New(t)

	// LDX #$1234 / INX / STX $60 / CPX #$1235
	c, mem := testCpu(0x0100,
		0xCE, 0x12, 0x34,
		0x08,
		0xDF, 0x60,
		0x8C, 0x12, 0x35,
	)

	c.Tick()
	assert.Equal(uint16(0x1234), c.X)

	c.Tick()
	assert.Equal(uint16(0x1235), c.X)
	assert.False(c.Flag(FlagZ))

	c.Tick()
	assert.Equal(byte(0x12), mem[0x0060], "big-endian store, high byte first")
	assert.Equal(byte(0x35), mem[0x0061])

	carryBefore := c.Flag(FlagC)
	c.Tick()
	assert.True(c.Flag(FlagZ), "CPX equal sets Z")
	assert.Equal(carryBefore, c.Flag(FlagC), "CPX leaves carry alone")
}

func TestStackOps(t *testing.T) {
	assert := assert.New(t)

	// LDS #$02FF / PSHA / PSHB / PULB / PULA
	c, mem := testCpu(0x0100,
		0x8E, 0x02, 0xFF,
		0x36,
		0x37,
		0x33,
		0x32,
	)
	c.A = 0x11
	c.B = 0x22

	c.Tick()
	assert.Equal(uint16(0x02FF), c.SP)

	c.Tick()
	c.Tick()
	assert.Equal(byte(0x11), mem[0x02FF])
	assert.Equal(byte(0x22), mem[0x02FE])
	assert.Equal(uint16(0x02FD), c.SP)

	c.A, c.B = 0, 0
	c.Tick()
	c.Tick()
	assert.Equal(byte(0x22), c.B)
	assert.Equal(byte(0x11), c.A)
	assert.Equal(uint16(0x02FF), c.SP)
}

func TestStackWraparound(t *testing.T) {
	assert := assert.New(t)

	// Pushing with SP=0 wraps to 0xFFFF without complaint.
	c, mem := testCpu(0x0100, 0x36, 0x36)
	c.SP = 0x0000
	c.A = 0xAA

	c.Tick()
	assert.Equal(byte(0xAA), mem[0x0000])
	assert.Equal(uint16(0xFFFF), c.SP)

	c.Tick()
	assert.Equal(byte(0xAA), mem[0xFFFF])
	assert.Equal(uint16(0xFFFE), c.SP)
}

func TestSubroutines(t *testing.T) {
	assert := assert.New(t)

	// JSR $0200 ... at 0x0200: RTS
	c, mem := testCpu(0x0100, 0xBD, 0x02, 0x00)
	mem[0x0200] = 0x39

	c.Tick()
	assert.Equal(uint16(0x0200), c.PC)
	assert.Equal(uint16(ResetSP-2), c.SP)

	c.Tick()
	assert.Equal(uint16(0x0103), c.PC, "returns past the JSR operand")
	assert.Equal(ResetSP, c.SP)
}

func TestBsr(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(0x0100, 0x8D, 0x20)

	c.Tick()
	assert.Equal(uint16(0x0122), c.PC)
	assert.Equal(uint16(ResetSP-2), c.SP)
}

func TestTransfersAndCcr(t *testing.T) {
	assert := assert.New(t)

	// TAP / TPA: the unimplemented CCR bits read back as 1.
	c, _ := testCpu(0x0100, 0x06, 0x07)
	c.A = FlagC | FlagZ

	c.Tick()
	assert.Equal(ccrUnused|FlagC|FlagZ, c.CCR)

	c.Tick()
	assert.Equal(ccrUnused|FlagC|FlagZ, c.A)
}

func TestUndefinedOpcodeIsNop(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []byte{0x00, 0x15, 0x21, 0x38, 0x3A, 0x83, 0x9D, 0xCC} {
		c, _ := testCpu(0x0100, op)
		c.A = 0x5A
		before := c.CCR

		c.Tick()

		assert.Equal(uint16(0x0101), c.PC, "opcode 0x%02X", op)
		assert.Equal(before, c.CCR, "opcode 0x%02X", op)
		assert.Equal(byte(0x5A), c.A, "opcode 0x%02X", op)
	}
}

func TestStoreImmediateQuirk(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		code []byte
	}){
		{"staa_imm", []byte{0x87, 0x55}},
		{"stab_imm", []byte{0xC7, 0x55}},
		{"sts_imm", []byte{0x8F, 0x12, 0x34}},
		{"stx_imm", []byte{0xCF, 0x12, 0x34}},
	}

	for _, entry := range table {
		c, mem := testCpu(0x0100, entry.code...)
		snapshot := *mem
		before := c.CCR

		c.Tick()

		assert.Equal(uint16(0x0100)+uint16(len(entry.code)), c.PC, entry.name)
		assert.Equal(before, c.CCR, entry.name)
		assert.Equal(snapshot, *mem, entry.name)
	}
}

func TestSwi(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(0x0100, 0x3F)
	mem[VectorSWI] = 0x20
	mem[VectorSWI+1] = 0x00
	c.A = 0x42
	c.CCR = ccr("C")

	c.Tick()

	assert.Equal(uint16(0x2000), c.PC)
	assert.Equal(CcrReset, c.CCR, "vectoring clears flags and masks interrupts")
	assert.Equal(uint16(ResetSP-7), c.SP)

	// Frame layout: CCR, B, A, X, PC from the new top of stack.
	assert.Equal(ccr("C"), mem[c.SP+1])
	assert.Equal(byte(0x42), mem[c.SP+3])
	assert.Equal(byte(0x01), mem[c.SP+6], "return PC high")
	assert.Equal(byte(0x01), mem[c.SP+7], "return PC low")
}

func TestRtiRestoresContext(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(0x0100, 0x3F)
	mem[VectorSWI] = 0x20
	mem[VectorSWI+1] = 0x00
	mem[0x2000] = 0x3B // RTI
	c.A, c.B, c.X = 0x11, 0x22, 0x3344
	c.CCR = ccr("NC")

	c.Tick()
	c.Tick()

	assert.Equal(uint16(0x0101), c.PC)
	assert.Equal(byte(0x11), c.A)
	assert.Equal(byte(0x22), c.B)
	assert.Equal(uint16(0x3344), c.X)
	assert.Equal(ccr("NC"), c.CCR)
	assert.Equal(ResetSP, c.SP)
}

func TestIrqService(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(0x0100, 0x01, 0x01)
	mem[VectorIRQ] = 0x30
	mem[VectorIRQ+1] = 0x00

	irq := false
	c.IrqLine = func() bool { return irq }

	c.CCR &^= FlagI
	irq = true
	c.Tick()

	assert.Equal(uint16(0x3000), c.PC)
	assert.True(c.Flag(FlagI), "handler starts masked")

	// While masked, the line is ignored.
	pc := c.PC
	c.Tick()
	assert.Equal(pc+1, c.PC, "steps through the handler")
}

func TestIrqWinsOverNmi(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(0x0100, 0x01, 0x01)
	mem[VectorIRQ] = 0x30
	mem[VectorIRQ+1] = 0x00
	mem[VectorNMI] = 0x40
	mem[VectorNMI+1] = 0x00

	irq := true
	c.IrqLine = func() bool { return irq }
	c.CCR &^= FlagI
	c.SignalNMI()

	c.Tick()
	assert.Equal(uint16(0x3000), c.PC, "IRQ vector taken first")

	// IRQ now masked; the NMI stays latched and is taken next.
	c.Tick()
	assert.Equal(uint16(0x4000), c.PC, "latched NMI taken on a later step")

	// The latch was consumed exactly once.
	irq = false
	c.CCR &^= FlagI
	pc := c.PC
	c.Tick()
	assert.Equal(pc+1, c.PC, "no double service")
}

func TestNmiIgnoresMask(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(0x0100, 0x01)
	mem[VectorNMI] = 0x40
	mem[VectorNMI+1] = 0x00

	assert.True(c.Flag(FlagI))
	c.SignalNMI()
	c.Tick()

	assert.Equal(uint16(0x4000), c.PC)
}

func TestWaiHaltsUntilInterrupt(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(0x0100, 0x3E, 0x01)
	mem[VectorNMI] = 0x40
	mem[VectorNMI+1] = 0x00

	c.Tick()
	assert.True(c.Waiting())

	pc := c.PC
	for range 3 {
		c.Tick()
	}
	assert.Equal(pc, c.PC, "no fetch while halted")

	c.SignalNMI()
	c.Tick()
	assert.False(c.Waiting())
	assert.Equal(uint16(0x4000), c.PC)
	assert.Equal(byte(0x01), mem[c.SP+7], "frame resumes past the WAI")
}

func TestResetLine(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(0x0100, 0x86, 0x55)

	reset := false
	c.ResetLine = func() bool { return reset }
	hooked := 0
	c.ResetHook = func() { hooked++ }

	c.Tick()
	assert.Equal(byte(0x55), c.A)

	reset = true
	c.Tick()
	reset = false

	assert.Equal(byte(0), c.A)
	assert.Equal(uint16(0x0100), c.PC)
	assert.Equal(1, hooked)
}

func TestTraceOutput(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(0x0100, 0x86, 0x55)
	var buf bytes.Buffer
	c.Trace = true
	c.TraceOut = &buf

	c.Tick()

	line := buf.String()
	assert.True(strings.HasPrefix(line, "0100 LDAA"), line)
	assert.Contains(line, "A=55")
	assert.Contains(line, "-I----")
}

func TestTraceOpcodes(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(0x0100, OpTracOn, OpTracOf)

	c.Tick()
	assert.True(c.Trace)

	c.Tick()
	assert.False(c.Trace)
	assert.Equal(CcrReset, c.CCR, "no flag effect")
}
