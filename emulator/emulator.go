// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"iter"
	"sync/atomic"
	"time"

	"github.com/mc680x/trainer/bus"
	"github.com/mc680x/trainer/cpu"
	"github.com/mc680x/trainer/internal"
	"github.com/mc680x/trainer/io"
)

// DefaultSettle is the pause after a hardware reset before stepping
// resumes, standing in for the physical board's bring-up time.
const DefaultSettle = 50 * time.Millisecond

// Trainer is the whole board: CPU, memory, and the peripheral
// collaborators, with the boot image set reloaded on every reset.
type Trainer struct {
	Verbose bool

	Cpu *cpu.Cpu
	Mem *bus.Memory

	Serial *io.Serial
	Adc    *io.Adc
	Panel  *io.Panel

	// Settle is the post-reset delay. Zero means DefaultSettle; tests
	// set it negative to skip the pause entirely.
	Settle time.Duration

	images    []cpu.Image
	resetLine atomic.Bool
	irqLine   atomic.Bool
}

// NewTrainer wires up a board. The caller loads boot images and calls
// Reset before stepping.
func NewTrainer() (t *Trainer) {
	t = &Trainer{}
	t.Mem = bus.NewMemory()
	t.Cpu = cpu.NewCpu(t.Mem)

	t.Serial = &io.Serial{Mem: t.Mem}
	t.Adc = &io.Adc{Mem: t.Mem}
	t.Panel = &io.Panel{Mem: t.Mem, Notify: t.Cpu.SignalNMI}

	t.Cpu.ResetLine = t.resetLine.Load
	t.Cpu.IrqLine = t.irqLine.Load
	t.Cpu.ResetHook = t.resetHook

	return
}

// Defines returns an iterator over all of the assembler equates the
// board publishes.
func (t *Trainer) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		t.Cpu.Defines(),
		t.Mem.Defines(),
	)
}

// Load registers boot images and copies them into memory. The set is
// reloaded verbatim on every reset.
func (t *Trainer) Load(images ...cpu.Image) (err error) {
	for _, image := range images {
		if err = t.Mem.LoadImage(image.Base, image.Data); err != nil {
			return &ErrLoad{Base: image.Base, Err: err}
		}
		t.images = append(t.images, image)
	}

	return
}

// LoadProgram loads every image of an assembled program.
func (t *Trainer) LoadProgram(prog *cpu.Program) error {
	return t.Load(prog.Images...)
}

// resetHook runs while the CPU services the reset line: device latches
// back to power-on, boot images reloaded, end-of-RAM sentinels marked,
// then the settle pause.
func (t *Trainer) resetHook() {
	t.Mem.Reset()
	for _, image := range t.images {
		// Bounds were checked at Load time.
		t.Mem.LoadImage(image.Base, image.Data)
	}
	t.Mem.MarkSentinels()

	settle := t.Settle
	if settle == 0 {
		settle = DefaultSettle
	}
	if settle > 0 {
		time.Sleep(settle)
	}
}

// Reset performs a power-on reset.
func (t *Trainer) Reset() {
	t.Cpu.Verbose = t.Verbose
	t.Cpu.Reset()
}

// SetResetLine drives the level-sensitive external reset line.
func (t *Trainer) SetResetLine(asserted bool) {
	t.resetLine.Store(asserted)
}

// SetIrqLine drives the level-sensitive external interrupt line.
func (t *Trainer) SetIrqLine(asserted bool) {
	t.irqLine.Store(asserted)
}

// Tick performs a single CPU step and then services each peripheral
// collaborator. The peripherals only ever run at step boundaries, so an
// instruction is never preempted mid-execution.
func (t *Trainer) Tick() {
	t.Cpu.Tick()

	t.Serial.Service()
	t.Adc.Service()
	t.Panel.Service()
}

// Run steps the board until stop is closed. Serial input pumps on its
// own goroutine since host reads block.
func (t *Trainer) Run(stop <-chan struct{}) {
	go t.Serial.Run(stop)

	for {
		select {
		case <-stop:
			return
		default:
		}
		t.Tick()
	}
}
