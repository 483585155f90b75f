package cpu

// The monitor handoff mechanism runs two execution contexts on two
// independent stacks. A context is the full register frame (PC, X, A, B,
// CCR) in the interrupt push layout, and SP1/SP2 remember the stack
// pointers of whichever contexts are parked. The monitor arranges SP2 to
// address its own saved frame and SP1 to address the user frame; SS2
// then runs exactly one user instruction under the user stack before the
// synthesized RS2/RS1 pair returns to the monitor.

// pushContext saves the register frame on the active stack: PC, X, A,
// B, CCR, low byte first for the 16-bit registers.
func (c *Cpu) pushContext() {
	c.pushWord(c.PC)
	c.pushWord(c.X)
	c.push(c.A)
	c.push(c.B)
	c.push(c.CCR)
}

// pullContext restores a frame saved by pushContext from the active
// stack.
func (c *Cpu) pullContext() {
	c.CCR = c.pull() | ccrUnused
	c.B = c.pull()
	c.A = c.pull()
	c.X = c.pullWord()
	c.PC = c.pullWord()
}

// t2s copies X into the shadow stack pointer. No flags are touched.
func t2s(c *Cpu, _ uint16) {
	c.SP2 = c.X
}

// t2x copies the shadow stack pointer into X. No flags are touched.
func t2x(c *Cpu, _ uint16) {
	c.X = c.SP2
}

// ss2 arms a single step through the shadow stack: park the current
// frame on the active stack, start the countdown that will synthesize
// RS2 and then RS1 on the following steps, and resume from the context
// addressed by SP2. While the countdown runs, IRQ and NMI servicing is
// suppressed.
func ss2(c *Cpu, _ uint16) {
	c.pushContext()
	c.ssFlag = 4
	c.SP = c.SP2
	c.pullContext()
}

// rs2 swaps contexts: the outgoing frame is parked on the active stack
// and its pointer remembered in SP2, then execution resumes from the
// context addressed by SP1.
func rs2(c *Cpu, _ uint16) {
	c.pushContext()
	c.SP2 = c.SP
	c.SP = c.SP1
	c.pullContext()
	// Any halted state belongs to the parked frame, not the incoming one.
	c.waiting = false
}

// rs1 is the mirror swap through SP1, resuming from the context
// addressed by SP2. It is the documented way for a user program to hand
// control back to the monitor in place of a return-from-interrupt.
func rs1(c *Cpu, _ uint16) {
	c.pushContext()
	c.SP1 = c.SP
	c.SP = c.SP2
	c.pullContext()
	c.waiting = false
}

func tracOn(c *Cpu, _ uint16) {
	c.Trace = true
}

func tracOf(c *Cpu, _ uint16) {
	c.Trace = false
}
