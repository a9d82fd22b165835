// pseudo.go - C3: expands pseudo-instructions into real ones.
//
// Because a pseudo can expand to one or two real instructions, the final
// byte address of every text label can only be known after this pass runs.
// Expand returns, alongside the flat expanded instruction list, a table
// mapping each pre-expansion instruction index to the index of its first
// expanded instruction, so layout.go can translate the symbolic InstrIdx
// recorded by the parser into a final instruction-list position.

package main

// Expand runs pseudo-instruction expansion over prog.Instrs, returning the
// expanded instruction list and a preIndexToFinalIndex table of len(prog.Instrs)+1
// entries (the extra trailing entry is the final instruction count, letting
// callers compute "one past the last instruction of label i" uniformly).
func Expand(instrs []RawInstr) ([]RawInstr, []int) {
	var out []RawInstr
	mapping := make([]int, len(instrs)+1)
	for i, in := range instrs {
		mapping[i] = len(out)
		out = append(out, expandOne(in)...)
	}
	mapping[len(instrs)] = len(out)
	return out, mapping
}

func reg(i int) Operand      { return Operand{Kind: OpReg, Reg: i} }
func freg(i int) Operand     { return Operand{Kind: OpFReg, Reg: i} }
func imm(v int64) Operand    { return Operand{Kind: OpImm, Imm: v} }
func label(l string) Operand { return Operand{Kind: OpLabel, Label: l} }

const regT6 = 31 // t6; no expansion below uses it (li/la build in rd, call in ra)

func mk(pos Pos, mnem string, ops ...Operand) RawInstr {
	return RawInstr{Pos: pos, Mnemonic: mnem, Operands: ops}
}

func expandOne(in RawInstr) []RawInstr {
	pos := in.Pos
	ops := in.Operands

	switch in.Mnemonic {
	case "nop":
		return []RawInstr{mk(pos, "addi", reg(0), reg(0), imm(0))}

	case "li":
		rd, val := ops[0], ops[1].Imm
		if fitsI12(val) {
			return []RawInstr{mk(pos, "addi", rd, reg(0), imm(val))}
		}
		hi, lo := splitHiLo(val)
		return []RawInstr{
			mk(pos, "lui", rd, imm(hi)),
			mk(pos, "addi", rd, rd, imm(lo)),
		}

	case "la":
		rd, lbl := ops[0], ops[1]
		return []RawInstr{
			mk(pos, "auipc", rd, lbl),
			mk(pos, "addi", rd, rd, lbl),
		}

	case "mv":
		return []RawInstr{mk(pos, "addi", ops[0], ops[1], imm(0))}

	case "not":
		return []RawInstr{mk(pos, "xori", ops[0], ops[1], imm(-1))}

	case "neg":
		return []RawInstr{mk(pos, "sub", ops[0], reg(0), ops[1])}

	case "seqz":
		return []RawInstr{mk(pos, "sltiu", ops[0], ops[1], imm(1))}

	case "snez":
		return []RawInstr{mk(pos, "sltu", ops[0], reg(0), ops[1])}

	case "sltz":
		return []RawInstr{mk(pos, "slt", ops[0], ops[1], reg(0))}

	case "sgtz":
		return []RawInstr{mk(pos, "slt", ops[0], reg(0), ops[1])}

	case "j":
		return []RawInstr{mk(pos, "jal", reg(0), ops[0])}

	case "jr":
		return []RawInstr{mk(pos, "jalr", reg(0), ops[0], imm(0))}

	case "ret":
		return []RawInstr{mk(pos, "jalr", reg(0), reg(1), imm(0))} // ra=x1

	case "call":
		return []RawInstr{
			mk(pos, "auipc", reg(1), ops[0]),
			mk(pos, "jalr", reg(1), reg(1), ops[0]),
		}

	case "beqz":
		return []RawInstr{mk(pos, "beq", ops[0], reg(0), ops[1])}
	case "bnez":
		return []RawInstr{mk(pos, "bne", ops[0], reg(0), ops[1])}
	case "blez":
		return []RawInstr{mk(pos, "bge", reg(0), ops[0], ops[1])}
	case "bgez":
		return []RawInstr{mk(pos, "bge", ops[0], reg(0), ops[1])}
	case "bltz":
		return []RawInstr{mk(pos, "blt", ops[0], reg(0), ops[1])}
	case "bgtz":
		return []RawInstr{mk(pos, "blt", reg(0), ops[0], ops[1])}
	case "bgt":
		return []RawInstr{mk(pos, "blt", ops[1], ops[0], ops[2])}
	case "ble":
		return []RawInstr{mk(pos, "bge", ops[1], ops[0], ops[2])}
	case "bgtu":
		return []RawInstr{mk(pos, "bltu", ops[1], ops[0], ops[2])}
	case "bleu":
		return []RawInstr{mk(pos, "bgeu", ops[1], ops[0], ops[2])}

	case "csrr":
		return []RawInstr{mk(pos, "csrrs", ops[0], ops[1], reg(0))}
	case "csrw":
		return []RawInstr{mk(pos, "csrrw", reg(0), ops[0], ops[1])}
	case "csrs":
		return []RawInstr{mk(pos, "csrrs", reg(0), ops[0], ops[1])}
	case "csrc":
		return []RawInstr{mk(pos, "csrrc", reg(0), ops[0], ops[1])}
	case "csrwi":
		return []RawInstr{mk(pos, "csrrwi", reg(0), ops[0], ops[1])}
	case "csrsi":
		return []RawInstr{mk(pos, "csrrsi", reg(0), ops[0], ops[1])}
	case "csrci":
		return []RawInstr{mk(pos, "csrrci", reg(0), ops[0], ops[1])}

	case "fmv.s":
		return []RawInstr{mk(pos, "fsgnj.s", ops[0], ops[1], ops[1])}
	case "fabs.s":
		return []RawInstr{mk(pos, "fsgnjx.s", ops[0], ops[1], ops[1])}
	case "fneg.s":
		return []RawInstr{mk(pos, "fsgnjn.s", ops[0], ops[1], ops[1])}

	default:
		return []RawInstr{in}
	}
}

func fitsI12(v int64) bool { return v >= -2048 && v <= 2047 }

// splitHiLo splits a 32-bit immediate into the lui-form upper 20 bits and
// an addi-form signed 12-bit low part, the low part carrying a sign that
// the upper bits compensate for (matching RISC-V's lui+addi idiom).
func splitHiLo(v int64) (int64, int64) {
	v32 := int32(v)
	lo := int32(v32 << 20 >> 20) // sign-extended low 12 bits
	hi := (v32 - lo) >> 12
	return int64(hi), int64(lo)
}
