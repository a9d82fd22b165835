// executor.go - C8: the dispatch loop. Fetches the decoded record at PC,
// executes it, advances PC by one slot unless the instruction redirected
// control, and polls the cancellation flag every asyncPollInterval
// instructions. Grounded on program_executor.go's role as the single
// driver thread that owns one piece of mutable state and is the only
// writer to it; the teacher's name-pointer/status/session fields are
// replaced here by PC/registers/CSRs, the actual domain state this
// simulator's loop advances.

package main

import (
	"math"
)

// Run executes instructions starting at m.PC until the program exits,
// traps without a handler, or cancellation is requested. It returns the
// process exit code and, if the run ended on an unhandled trap, the trap
// that ended it.
func (m *Machine) Run() (exitCode int32, fatal error) {
	count := 0
	for {
		if m.PC < 0 || m.PC >= len(m.Program) {
			return 0, Trap{Cause: CauseLoadAccessFault, PC: m.pcAddr()}
		}

		count++
		if count%asyncPollInterval == 0 && m.cancelled() {
			return 1, nil
		}

		instr := m.Program[m.PC]
		nextPC := m.PC + 1

		err := m.step(instr, &nextPC)
		if err != nil {
			if exit, ok := err.(ExitSignal); ok {
				return exit.Code, nil
			}
			trap := err.(Trap)
			if idx := m.deliver(trap); idx >= 0 {
				nextPC = idx
			} else {
				return 1, trap
			}
		}

		m.PC = nextPC
	}
}

// step executes one decoded instruction, mutating registers/memory/CSRs
// and nextPC as needed. A non-nil return is either a Trap or an
// ExitSignal; both propagate up through Run unchanged.
func (m *Machine) step(in Instruction, nextPC *int) error {
	x := &m.Int
	switch in.Op {
	case OpLui:
		x.Set(in.Rd, in.Imm<<12)
	case OpAuipc:
		x.Set(in.Rd, int32(m.pcAddr())+in.Imm<<12)

	case OpJal:
		x.Set(in.Rd, int32(m.pcAddr())+4)
		if in.Target >= 0 {
			*nextPC = in.Target
		} else {
			*nextPC = m.PC + int(in.Imm)/4
		}

	case OpJalr:
		target := uint32(x.Get(in.Rs1)+in.Imm) &^ 1
		link := int32(m.pcAddr()) + 4
		x.Set(in.Rd, link)
		if (target-textBase)%4 != 0 {
			return Trap{Cause: CauseLoadMisaligned, PC: m.pcAddr(), Val: target}
		}
		*nextPC = int((target - textBase) / 4)

	case OpBeq:
		if x.Get(in.Rs1) == x.Get(in.Rs2) {
			*nextPC = m.branchTarget(in)
		}
	case OpBne:
		if x.Get(in.Rs1) != x.Get(in.Rs2) {
			*nextPC = m.branchTarget(in)
		}
	case OpBlt:
		if x.Get(in.Rs1) < x.Get(in.Rs2) {
			*nextPC = m.branchTarget(in)
		}
	case OpBge:
		if x.Get(in.Rs1) >= x.Get(in.Rs2) {
			*nextPC = m.branchTarget(in)
		}
	case OpBltu:
		if uint32(x.Get(in.Rs1)) < uint32(x.Get(in.Rs2)) {
			*nextPC = m.branchTarget(in)
		}
	case OpBgeu:
		if uint32(x.Get(in.Rs1)) >= uint32(x.Get(in.Rs2)) {
			*nextPC = m.branchTarget(in)
		}

	case OpLb, OpLh, OpLw, OpLbu, OpLhu:
		addr := uint32(x.Get(in.Rs1) + in.Imm)
		if t := m.checkLoadAlign(in.Op, addr); t != nil {
			return t
		}
		if !m.Mem.IsBacked(addr) {
			return Trap{Cause: CauseLoadAccessFault, PC: m.pcAddr(), Val: addr}
		}
		switch in.Op {
		case OpLb:
			x.Set(in.Rd, int32(int8(m.Mem.ReadByte(addr))))
		case OpLbu:
			x.Set(in.Rd, int32(m.Mem.ReadByte(addr)))
		case OpLh:
			x.Set(in.Rd, int32(int16(m.Mem.ReadHalf(addr))))
		case OpLhu:
			x.Set(in.Rd, int32(m.Mem.ReadHalf(addr)))
		case OpLw:
			x.Set(in.Rd, int32(m.Mem.ReadWord(addr)))
		}

	case OpSb, OpSh, OpSw:
		addr := uint32(x.Get(in.Rs1) + in.Imm)
		size := uint32(1)
		if in.Op == OpSh {
			size = 2
		} else if in.Op == OpSw {
			size = 4
		}
		if t := m.checkStoreAlign(in.Op, addr); t != nil {
			return t
		}
		if m.Mem.IsTextRange(addr, size) {
			return Trap{Cause: CauseStoreAccessFault, PC: m.pcAddr(), Val: addr}
		}
		v := uint32(x.Get(in.Rs2))
		switch in.Op {
		case OpSb:
			m.Mem.WriteByte(addr, byte(v))
		case OpSh:
			m.Mem.WriteHalf(addr, uint16(v))
		case OpSw:
			m.Mem.WriteWord(addr, v)
		}

	case OpAddi:
		x.Set(in.Rd, x.Get(in.Rs1)+in.Imm)
	case OpSlti:
		x.Set(in.Rd, b2i(x.Get(in.Rs1) < in.Imm))
	case OpSltiu:
		x.Set(in.Rd, b2i(uint32(x.Get(in.Rs1)) < uint32(in.Imm)))
	case OpXori:
		x.Set(in.Rd, x.Get(in.Rs1)^in.Imm)
	case OpOri:
		x.Set(in.Rd, x.Get(in.Rs1)|in.Imm)
	case OpAndi:
		x.Set(in.Rd, x.Get(in.Rs1)&in.Imm)
	case OpSlli:
		x.Set(in.Rd, x.Get(in.Rs1)<<(uint32(in.Imm)&31))
	case OpSrli:
		x.Set(in.Rd, int32(uint32(x.Get(in.Rs1))>>(uint32(in.Imm)&31)))
	case OpSrai:
		x.Set(in.Rd, x.Get(in.Rs1)>>(uint32(in.Imm)&31))

	case OpAdd:
		x.Set(in.Rd, x.Get(in.Rs1)+x.Get(in.Rs2))
	case OpSub:
		x.Set(in.Rd, x.Get(in.Rs1)-x.Get(in.Rs2))
	case OpSll:
		x.Set(in.Rd, x.Get(in.Rs1)<<(uint32(x.Get(in.Rs2))&31))
	case OpSlt:
		x.Set(in.Rd, b2i(x.Get(in.Rs1) < x.Get(in.Rs2)))
	case OpSltu:
		x.Set(in.Rd, b2i(uint32(x.Get(in.Rs1)) < uint32(x.Get(in.Rs2))))
	case OpXor:
		x.Set(in.Rd, x.Get(in.Rs1)^x.Get(in.Rs2))
	case OpSrl:
		x.Set(in.Rd, int32(uint32(x.Get(in.Rs1))>>(uint32(x.Get(in.Rs2))&31)))
	case OpSra:
		x.Set(in.Rd, x.Get(in.Rs1)>>(uint32(x.Get(in.Rs2))&31))
	case OpOr:
		x.Set(in.Rd, x.Get(in.Rs1)|x.Get(in.Rs2))
	case OpAnd:
		x.Set(in.Rd, x.Get(in.Rs1)&x.Get(in.Rs2))

	case OpMul:
		x.Set(in.Rd, x.Get(in.Rs1)*x.Get(in.Rs2))
	case OpMulh:
		x.Set(in.Rd, int32((int64(x.Get(in.Rs1))*int64(x.Get(in.Rs2)))>>32))
	case OpMulhu:
		x.Set(in.Rd, int32((uint64(uint32(x.Get(in.Rs1)))*uint64(uint32(x.Get(in.Rs2))))>>32))
	case OpMulhsu:
		x.Set(in.Rd, int32((int64(x.Get(in.Rs1))*int64(uint32(x.Get(in.Rs2))))>>32))

	case OpDiv:
		a, b := x.Get(in.Rs1), x.Get(in.Rs2)
		switch {
		case b == 0:
			x.Set(in.Rd, -1)
		case a == math.MinInt32 && b == -1:
			x.Set(in.Rd, math.MinInt32)
		default:
			x.Set(in.Rd, a/b)
		}
	case OpDivu:
		a, b := uint32(x.Get(in.Rs1)), uint32(x.Get(in.Rs2))
		if b == 0 {
			x.Set(in.Rd, -1)
		} else {
			x.Set(in.Rd, int32(a/b))
		}
	case OpRem:
		a, b := x.Get(in.Rs1), x.Get(in.Rs2)
		switch {
		case b == 0:
			x.Set(in.Rd, a)
		case a == math.MinInt32 && b == -1:
			x.Set(in.Rd, 0)
		default:
			x.Set(in.Rd, a%b)
		}
	case OpRemu:
		a, b := uint32(x.Get(in.Rs1)), uint32(x.Get(in.Rs2))
		if b == 0 {
			x.Set(in.Rd, int32(a))
		} else {
			x.Set(in.Rd, int32(a%b))
		}

	case OpFlw:
		addr := uint32(x.Get(in.Rs1) + in.Imm)
		if (addr % 4) != 0 {
			return Trap{Cause: CauseLoadMisaligned, PC: m.pcAddr(), Val: addr}
		}
		if !m.Mem.IsBacked(addr) {
			return Trap{Cause: CauseLoadAccessFault, PC: m.pcAddr(), Val: addr}
		}
		m.Float.Set(in.Rd, m.Mem.ReadWord(addr))
	case OpFsw:
		addr := uint32(x.Get(in.Rs1) + in.Imm)
		if (addr % 4) != 0 {
			return Trap{Cause: CauseStoreMisaligned, PC: m.pcAddr(), Val: addr}
		}
		m.Mem.WriteWord(addr, m.Float.Get(in.Rs2))

	case OpFaddS:
		m.setF(in.Rd, m.f(in.Rs1)+m.f(in.Rs2))
	case OpFsubS:
		m.setF(in.Rd, m.f(in.Rs1)-m.f(in.Rs2))
	case OpFmulS:
		m.setF(in.Rd, m.f(in.Rs1)*m.f(in.Rs2))
	case OpFdivS:
		m.setF(in.Rd, m.f(in.Rs1)/m.f(in.Rs2))
	case OpFsqrtS:
		m.setF(in.Rd, float32(math.Sqrt(float64(m.f(in.Rs1)))))
	case OpFminS:
		m.setF(in.Rd, float32(math.Min(float64(m.f(in.Rs1)), float64(m.f(in.Rs2)))))
	case OpFmaxS:
		m.setF(in.Rd, float32(math.Max(float64(m.f(in.Rs1)), float64(m.f(in.Rs2)))))
	case OpFsgnjS:
		m.Float.Set(in.Rd, (m.Float.Get(in.Rs1)&0x7fffffff)|(m.Float.Get(in.Rs2)&0x80000000))
	case OpFsgnjnS:
		m.Float.Set(in.Rd, (m.Float.Get(in.Rs1)&0x7fffffff)|(^m.Float.Get(in.Rs2)&0x80000000))
	case OpFsgnjxS:
		m.Float.Set(in.Rd, m.Float.Get(in.Rs1)^(m.Float.Get(in.Rs2)&0x80000000))

	case OpFcvtWS:
		x.Set(in.Rd, float32ToInt32Sat(m.f(in.Rs1)))
	case OpFcvtWuS:
		x.Set(in.Rd, int32(float32ToUint32Sat(m.f(in.Rs1))))
	case OpFcvtSW:
		m.setF(in.Rd, float32(x.Get(in.Rs1)))
	case OpFcvtSWu:
		m.setF(in.Rd, float32(uint32(x.Get(in.Rs1))))
	case OpFmvXW:
		x.Set(in.Rd, int32(m.Float.Get(in.Rs1)))
	case OpFmvWX:
		m.Float.Set(in.Rd, uint32(x.Get(in.Rs1)))

	case OpFeqS:
		x.Set(in.Rd, b2i(m.f(in.Rs1) == m.f(in.Rs2)))
	case OpFltS:
		x.Set(in.Rd, b2i(m.f(in.Rs1) < m.f(in.Rs2)))
	case OpFleS:
		x.Set(in.Rd, b2i(m.f(in.Rs1) <= m.f(in.Rs2)))
	case OpFclassS:
		x.Set(in.Rd, classifyFloat32(m.f(in.Rs1)))

	case OpCsrrw, OpCsrrs, OpCsrrc, OpCsrrwi, OpCsrrsi, OpCsrrci:
		if t := m.execCSR(in); t != nil {
			return t
		}

	case OpEcall:
		return m.Ecall()

	case OpEbreak:
		return Trap{Cause: CauseBreakpoint, PC: m.pcAddr()}

	case OpUret:
		*nextPC = int((m.CSR.uepc - textBase) / 4)

	case OpFence:
		// single-threaded executor; nothing to order

	default:
		return Trap{Cause: CauseIllegalInstruction, PC: m.pcAddr(), Val: uint32(in.Op)}
	}
	return nil
}

func (m *Machine) branchTarget(in Instruction) int {
	if in.Target >= 0 {
		return in.Target
	}
	return m.PC + int(in.Imm)/4
}

func (m *Machine) checkLoadAlign(op OpCode, addr uint32) error {
	switch op {
	case OpLh, OpLhu:
		if addr%2 != 0 {
			return Trap{Cause: CauseLoadMisaligned, PC: m.pcAddr(), Val: addr}
		}
	case OpLw:
		if addr%4 != 0 {
			return Trap{Cause: CauseLoadMisaligned, PC: m.pcAddr(), Val: addr}
		}
	}
	return nil
}

func (m *Machine) checkStoreAlign(op OpCode, addr uint32) error {
	switch op {
	case OpSh:
		if addr%2 != 0 {
			return Trap{Cause: CauseStoreMisaligned, PC: m.pcAddr(), Val: addr}
		}
	case OpSw:
		if addr%4 != 0 {
			return Trap{Cause: CauseStoreMisaligned, PC: m.pcAddr(), Val: addr}
		}
	}
	return nil
}

func (m *Machine) f(i int) float32      { return math.Float32frombits(m.Float.Get(i)) }
func (m *Machine) setF(i int, v float32) { m.Float.Set(i, math.Float32bits(v)) }

func (m *Machine) execCSR(in Instruction) error {
	old, ok := m.CSR.Read(in.CSR, m.Clock)
	if !ok {
		return Trap{Cause: CauseIllegalInstruction, PC: m.pcAddr(), Val: uint32(in.CSR)}
	}
	var operand uint32
	switch in.Op {
	case OpCsrrw, OpCsrrs, OpCsrrc:
		operand = uint32(m.Int.Get(in.Rs1))
	default:
		operand = uint32(in.Imm)
	}
	var next uint32
	switch in.Op {
	case OpCsrrw, OpCsrrwi:
		next = operand
	case OpCsrrs, OpCsrrsi:
		next = old | operand
	case OpCsrrc, OpCsrrci:
		next = old &^ operand
	}
	if !m.CSR.Write(in.CSR, next) {
		return Trap{Cause: CauseIllegalInstruction, PC: m.pcAddr(), Val: uint32(in.CSR)}
	}
	m.Int.Set(in.Rd, int32(old))
	return nil
}

func b2i(cond bool) int32 {
	if cond {
		return 1
	}
	return 0
}

func float32ToInt32Sat(v float32) int32 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

func float32ToUint32Sat(v float32) uint32 {
	switch {
	case math.IsNaN(float64(v)) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

// classifyFloat32 returns the RV32F FCLASS.S bitmask for v.
func classifyFloat32(v float32) int32 {
	bits := math.Float32bits(v)
	neg := bits>>31 == 1
	exp := (bits >> 23) & 0xff
	frac := bits & 0x7fffff

	switch {
	case exp == 0xff && frac != 0:
		if bits&(1<<22) != 0 {
			return 1 << 9 // quiet NaN
		}
		return 1 << 8 // signaling NaN
	case exp == 0xff && neg:
		return 1 << 0 // -inf
	case exp == 0xff:
		return 1 << 7 // +inf
	case exp == 0 && frac == 0 && neg:
		return 1 << 3 // -0
	case exp == 0 && frac == 0:
		return 1 << 4 // +0
	case exp == 0 && neg:
		return 1 << 2 // -subnormal
	case exp == 0:
		return 1 << 5 // +subnormal
	case neg:
		return 1 << 1 // -normal
	default:
		return 1 << 6 // +normal
	}
}
