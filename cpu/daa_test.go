package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// daaReference computes the decimal adjust the long way: correct the
// low digit first, then decide the high correction from the adjusted
// value.
func daaReference(a byte, half, carry bool) (byte, bool) {
	v := uint16(a)
	if half || v&0x0F > 9 {
		v += 0x06
	}

	out := carry
	if carry || v > 0x9F {
		v += 0x60
		out = true
	}

	return byte(v), out
}

func TestDaaTable(t *testing.T) {
	assert := assert.New(t)

	for n := range 1024 {
		a := byte(n)
		half := n&0x100 != 0
		carry := n&0x200 != 0

		c, _ := testCpu(0x0100, 0x19)
		c.A = a
		c.setHalfCarry(half)
		c.setCarry(carry)

		want, wantCarry := daaReference(a, half, carry)

		c.Tick()

		assert.Equal(want, c.A, "A=%02X H=%v C=%v", a, half, carry)
		assert.Equal(wantCarry, c.Flag(FlagC), "A=%02X H=%v C=%v", a, half, carry)
		assert.Equal(want == 0, c.Flag(FlagZ), "A=%02X H=%v C=%v", a, half, carry)
		assert.Equal(want&0x80 != 0, c.Flag(FlagN), "A=%02X H=%v C=%v", a, half, carry)
	}
}

func TestDaaBcdSums(t *testing.T) {
	assert := assert.New(t)

	// ADDA followed by DAA over every pair of two-digit BCD values must
	// produce the BCD sum, with carry signaling the hundreds digit.
	for x := 0; x < 100; x++ {
		for y := 0; y < 100; y++ {
			c, _ := testCpu(0x0100,
				0x8B, byte(y/10<<4|y%10),
				0x19,
			)
			c.A = byte(x/10<<4 | x%10)

			c.Tick()
			c.Tick()

			sum := x + y
			want := byte(sum/10%10<<4 | sum%10)
			assert.Equal(want, c.A, "%d + %d", x, y)
			assert.Equal(sum > 99, c.Flag(FlagC), "%d + %d", x, y)
		}
	}
}
