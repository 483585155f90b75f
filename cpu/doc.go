// Package cpu implements the MC6800 microprocessor core of the trainer.
//
// The processor consists of two 8-bit accumulators (A, B), a 16-bit index
// register (X), a 16-bit program counter, three 16-bit stack pointers (the
// active SP plus the SP1/SP2 context pointers used by the monitor handoff
// opcodes), and a condition-code register holding the H, I, N, Z, V and C
// flags. One call to Tick services reset, IRQ and NMI in that order, then
// fetches, decodes and executes a single instruction against the attached
// memory bus.
//
// Beyond the stock instruction set the core implements the monitor handoff
// opcodes (T2S, T2X, SS2, RS1, RS2, TRACON, TRACOF) that swap execution
// between two independent stacks, letting a resident monitor single-step
// user code without disturbing its own stack.
//
// The package also provides a two-pass assembler for the 6800 instruction
// set, supporting labels, equates, and compile-time expression evaluation.
package cpu
