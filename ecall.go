// ecall.go - C9: the environment-call dispatch table, keyed on a7 per
// spec.md §4.9. Codes in the 100s are aliases of their single-digit
// counterparts (10/110, 48/148) and dispatch to the same handler.

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	ecallPrintInt       = 1
	ecallPrintFloat     = 2
	ecallPrintString    = 4
	ecallReadInt        = 5
	ecallReadFloat      = 6
	ecallSbrk           = 9
	ecallExit           = 10
	ecallPrintChar      = 11
	ecallTime           = 30
	ecallMidiOut        = 31
	ecallSleep          = 32
	ecallMidiOutSync    = 33
	ecallPrintHex       = 34
	ecallPrintUnsigned  = 36
	ecallRandInt        = 41
	ecallRandIntRange   = 42
	ecallRandFloat      = 43
	ecallClearScreen    = 48
	ecallClose          = 57
	ecallSeek           = 62
	ecallRead           = 63
	ecallWrite          = 64
	ecallExitAlias      = 110
	ecallClearScreenAls = 148
	ecallOpen           = 1024
)

// ExitSignal is returned by Ecall (not as an error-in-the-trap-sense) when
// the program calls Exit; the executor's run loop stops and propagates
// Code as the process exit status.
type ExitSignal struct{ Code int32 }

func (e ExitSignal) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }

// Ecall executes the environment call currently named by a7, returning an
// ExitSignal on Exit or a Trap on IllegalEcall; both are carried back
// through the same error return executor.go already threads for faults.
func (m *Machine) Ecall() error {
	a7 := m.Int.Get(17)
	a0 := m.Int.Get(10)
	a1 := m.Int.Get(11)
	a2 := m.Int.Get(12)
	a3 := m.Int.Get(13)

	switch a7 {
	case ecallPrintInt:
		fmt.Fprintf(m.Files.stdout, "%d", a0)

	case ecallPrintFloat:
		fmt.Fprintf(m.Files.stdout, "%g", math.Float32frombits(m.Float.Get(10)))

	case ecallPrintString:
		s := m.Mem.ReadCString(uint32(a0))
		fmt.Fprint(m.Files.stdout, s)
		if m.DebugState {
			debugCopyString(s)
		}

	case ecallReadInt:
		line, _ := m.Files.ReadLine()
		v, _ := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		m.Int.Set(10, int32(v))

	case ecallReadFloat:
		line, _ := m.Files.ReadLine()
		v, _ := strconv.ParseFloat(strings.TrimSpace(line), 32)
		m.Float.Set(10, math.Float32bits(float32(v)))

	case ecallSbrk:
		m.Int.Set(10, int32(m.Mem.Sbrk(int64(a0))))

	case ecallExit, ecallExitAlias:
		return ExitSignal{Code: a0}

	case ecallPrintChar:
		fmt.Fprintf(m.Files.stdout, "%c", rune(a0))

	case ecallTime:
		ms := m.Clock.MillisSinceEpoch()
		m.Int.Set(10, int32(uint32(ms)))
		m.Int.Set(11, int32(uint32(ms>>32)))

	case ecallMidiOut, ecallMidiOutSync:
		if m.MIDI != nil {
			m.MIDI.PlayNote(uint8(a0), uint8(a2), uint8(a3), time.Duration(a1)*time.Millisecond, a7 == ecallMidiOutSync)
		}

	case ecallSleep:
		if a0 > 0 {
			time.Sleep(time.Duration(a0) * time.Millisecond)
		}

	case ecallPrintHex:
		fmt.Fprintf(m.Files.stdout, "0x%08x", uint32(a0))

	case ecallPrintUnsigned:
		fmt.Fprintf(m.Files.stdout, "%d", uint32(a0))

	case ecallRandInt:
		m.Int.Set(10, m.RNG.Int32())

	case ecallRandIntRange:
		m.Int.Set(10, m.RNG.IntRange(a1))

	case ecallRandFloat:
		m.Float.Set(10, math.Float32bits(m.RNG.Float32()))

	case ecallClearScreen, ecallClearScreenAls:
		m.Display.ClearScreen(int(a1), byte(a0))

	case ecallClose:
		m.Files.Close(a0)

	case ecallSeek:
		m.Int.Set(10, int32(m.Files.Seek(a0, int64(a1), a2)))

	case ecallRead:
		data, ok := m.Files.Read(a0, int(a2))
		if !ok {
			m.Int.Set(10, -1)
		} else {
			m.Mem.WriteBytes(uint32(a1), data)
			m.Int.Set(10, int32(len(data)))
		}

	case ecallWrite:
		data := m.Mem.ReadBytes(uint32(a1), int(a2))
		m.Int.Set(10, int32(m.Files.Write(a0, data)))

	case ecallOpen:
		path := m.Mem.ReadCString(uint32(a0))
		m.Int.Set(10, m.Files.Open(path, a1))

	default:
		return Trap{Cause: CauseIllegalEcall, PC: m.pcAddr(), Val: uint32(a7)}
	}
	return nil
}
