package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzTick(f *testing.F) {
	for op := 0; op < 256; op += 17 {
		f.Add(byte(op), byte(op+1), byte(op+2), uint16(op*251), uint16(op*1031))
	}
	f.Add(byte(0x12), byte(0), byte(0), uint16(0x00F3), uint16(0x3000))
	f.Add(byte(0x3F), byte(0), byte(0), uint16(0), uint16(0xFFFF))

	f.Fuzz(func(t *testing.T, op, arg1, arg2 byte, sp, x uint16) {
		assert := assert.New(t)

		c, _ := testCpu(0x0100, op, arg1, arg2)
		c.SP, c.SP1, c.SP2 = sp, sp, x
		c.X = x

		// No opcode, operand, or register state may panic the stepper.
		pcBefore := c.PC
		c.Tick()

		if opcodes[op] == nil {
			assert.Equal(pcBefore+1, c.PC, "undefined opcode 0x%02X", op)
		}

		for range 16 {
			c.Tick()
		}
	})
}
