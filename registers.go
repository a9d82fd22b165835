// registers.go - C7: the integer and floating-point register files and the
// small CSR set this machine implements.
//
// Grounded on the teacher's registers.go in spirit only (a small, directly
// indexed state block guarded by the caller rather than its own lock,
// since the executor is the single writer) — the master-I/O-map style of
// the original file is replaced here by mmio_regions.go, which owns the
// actual device address table.

package main

// IntRegs holds x0..x31. x0 is hardwired to zero: writes are discarded,
// reads always yield 0.
type IntRegs struct {
	x [32]int32
}

func (r *IntRegs) Get(i int) int32 {
	if i == 0 {
		return 0
	}
	return r.x[i]
}

func (r *IntRegs) Set(i int, v int32) {
	if i == 0 {
		return
	}
	r.x[i] = v
}

// FloatRegs holds f0..f31 as untyped 32-bit storage; instructions decide
// whether the bits mean an IEEE-754 single or a raw integer payload.
type FloatRegs struct {
	f [32]uint32
}

func (r *FloatRegs) Get(i int) uint32  { return r.f[i] }
func (r *FloatRegs) Set(i int, v uint32) { r.f[i] = v }

// CSRFile is the handful of control/status registers SPEC_FULL.md names:
// time/timeh (read-only, computed on access), misa (read-only constant),
// and the trap-delivery quartet uepc/ustatus/ucause/utval plus uscratch
// and utvec, all plain read/write words.
type CSRFile struct {
	misa     uint32
	uepc     uint32
	ustatus  uint32
	utvec    uint32
	ucause   uint32
	uscratch uint32
	utval    uint32
}

// miscRV32IMF: bits M, I, F and the base-ISA "32" class field, the value
// programs read from misa to detect floating-point availability.
const miscRV32IMF = 1<<8 | 1<<5 | 1<<12 | 1<<30

func NewCSRFile() *CSRFile {
	return &CSRFile{misa: miscRV32IMF}
}

// Read returns (value, ok); ok is false for an unknown CSR index, which
// the executor turns into an IllegalInstruction trap.
func (c *CSRFile) Read(idx int, clock *SimClock) (uint32, bool) {
	switch idx {
	case csrTime:
		return uint32(clock.MillisSinceEpoch()), true
	case csrTimeh:
		return uint32(clock.MillisSinceEpoch() >> 32), true
	case csrMisa:
		return c.misa, true
	case csrUepc:
		return c.uepc, true
	case csrUstatus:
		return c.ustatus, true
	case csrUtvec:
		return c.utvec, true
	case csrUcause:
		return c.ucause, true
	case csrUscratch:
		return c.uscratch, true
	case csrUtval:
		return c.utval, true
	default:
		return 0, false
	}
}

// Write stores a value into a writable CSR; time/timeh/misa are read-only
// and a write to them is simply discarded (they still count as "known"
// CSRs so csrrw et al. don't trap).
func (c *CSRFile) Write(idx int, v uint32) bool {
	switch idx {
	case csrTime, csrTimeh, csrMisa:
		return true
	case csrUepc:
		c.uepc = v
	case csrUstatus:
		c.ustatus = v
	case csrUtvec:
		c.utvec = v
	case csrUcause:
		c.ucause = v
	case csrUscratch:
		c.uscratch = v
	case csrUtval:
		c.utval = v
	default:
		return false
	}
	return true
}

// TrapDelegationEnabled reports whether ustatus's low bit (the only status
// bit this simulator defines) permits jumping to utvec on a fault.
func (c *CSRFile) TrapDelegationEnabled() bool {
	return c.ustatus&1 == 1 && c.utvec != 0
}
