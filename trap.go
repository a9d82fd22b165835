// trap.go - fatal-instruction trap delivery (§4.8): saves PC/cause/faulting
// value into the uepc/ucause/utval CSRs and either redirects control to the
// registered user trap handler (utvec) or terminates the run with a
// diagnostic naming the cause and faulting PC.

package main

import "fmt"

type TrapCause int

const (
	CauseIllegalInstruction TrapCause = iota
	CauseLoadMisaligned
	CauseStoreMisaligned
	CauseLoadAccessFault
	CauseStoreAccessFault
	CauseIllegalEcall
	CauseBreakpoint
)

func (c TrapCause) String() string {
	switch c {
	case CauseIllegalInstruction:
		return "IllegalInstruction"
	case CauseLoadMisaligned:
		return "Load address misaligned"
	case CauseStoreMisaligned:
		return "Store address misaligned"
	case CauseLoadAccessFault:
		return "LoadAccessFault"
	case CauseStoreAccessFault:
		return "StoreAccessFault"
	case CauseIllegalEcall:
		return "IllegalEcall"
	case CauseBreakpoint:
		return "Breakpoint"
	default:
		return "UnknownCause"
	}
}

// Trap carries enough information for the executor to either redirect to
// the user handler or abort the run.
type Trap struct {
	Cause TrapCause
	PC    uint32
	Val   uint32
}

func (t Trap) Error() string {
	return fmt.Sprintf("trap %s at pc=0x%08x (val=0x%08x)", t.Cause, t.PC, t.Val)
}

// deliver saves the trap into the CSR file and returns the instruction
// index to resume at: the handler's entry if one is installed and
// delegation is enabled, or -1 if the run must terminate.
func (m *Machine) deliver(t Trap) int {
	m.CSR.uepc = t.PC
	m.CSR.ucause = uint32(t.Cause)
	m.CSR.utval = t.Val
	if m.CSR.TrapDelegationEnabled() {
		idx := int((m.CSR.utvec - textBase) / 4)
		if idx >= 0 && idx < len(m.Program) {
			return idx
		}
	}
	return -1
}
