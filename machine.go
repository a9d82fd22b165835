// machine.go - wires the assembled program image together with the
// mutable machine state (memory, registers, CSRs, devices) the executor
// runs against. Loosely modeled on program_executor.go's role as the glue
// between a decoded program and the subsystems it drives, generalized from
// one host-side "run this named program" operation to owning the whole
// machine for the process's lifetime.

package main

import (
	"io"
	"sync/atomic"
)

// Machine bundles every piece of state the executor (C8) and the ecall
// subsystem (C9) touch. It is built once per run from an assembled
// program and torn down when the process exits.
type Machine struct {
	Program []Instruction
	Labels  map[string]LabelEntry

	Mem   *Memory
	Int   IntRegs
	Float FloatRegs
	CSR   *CSRFile

	Clock *SimClock
	RNG   *RNG
	Files *FileTable
	MIDI  MIDIBackend

	Display *Display

	PC int // index into Program

	cancel int32 // atomic; polled every asyncPollInterval instructions

	// DebugState mirrors --print-state: when set, PrintString also copies
	// its output to the system clipboard for easy pasting into a bug report.
	DebugState bool
}

const asyncPollInterval = 256

// NewMachine assembles a fresh machine from a linked program image. entryPC
// is the instruction index to start at (0 unless a "main" label was found).
func NewMachine(prog []Instruction, labels map[string]LabelEntry, data []byte, entryPC int, width, height int, stdin io.Reader, stdout, stderr io.Writer, baseDir string, midi MIDIBackend) *Machine {
	mem := NewMemory()
	mem.LoadData(data)

	disp := NewDisplay(width, height)
	disp.Attach(mem)

	m := &Machine{
		Program: prog,
		Labels:  labels,
		Mem:     mem,
		CSR:     NewCSRFile(),
		Clock:   NewSimClock(),
		RNG:     NewRNG(int64(width*7919 + height*104729)),
		Files:   NewFileTable(baseDir, stdin, stdout, stderr),
		MIDI:    midi,
		Display: disp,
		PC:      entryPC,
	}
	m.Int.Set(2, stackTop) // x2 = sp
	return m
}

// RequestCancel sets the termination flag the executor polls every
// asyncPollInterval instructions. Blocking ecalls (Sleep, ReadInt,
// ReadFloat, MidiOutSync) do not check it; a cancellation requested during
// one of them takes effect after the call returns.
func (m *Machine) RequestCancel() {
	atomic.StoreInt32(&m.cancel, 1)
}

func (m *Machine) cancelled() bool {
	return atomic.LoadInt32(&m.cancel) != 0
}

func (m *Machine) pcAddr() uint32 {
	return textBase + uint32(m.PC)*4
}
