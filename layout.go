// layout.go - C4: assigns final addresses and resolves every label
// reference into the PC-relative or absolute immediate its instruction
// needs, then hands off to the C5 encoder (ir.go's mnemonicToOp table) to
// produce the final Instruction slice the executor runs.

package main

// Link runs C3 (pseudo expansion) then C4 (layout) over a ParsedProgram,
// returning the final decoded instruction array plus the pre-expansion to
// post-expansion instruction-index mapping Expand computed (callers need it
// to translate a text LabelEntry.InstrIdx, such as the entry point, into a
// final instruction-array index the same way label references inside the
// program already are). Errors are collected, not fatal-on-first, matching
// the rest of the assembler's error-collection discipline; a non-empty
// error slice means the caller must refuse to run.
func Link(prog *ParsedProgram) ([]Instruction, []int, []*AssembleError) {
	expanded, mapping := Expand(prog.Instrs)

	var errs []*AssembleError
	errf := func(kind AssembleErrorKind, pos Pos, format string, args ...interface{}) {
		errs = append(errs, newErr(kind, pos, format, args...))
	}

	resolve := func(name string, pos Pos) (uint32, bool) {
		entry, ok := prog.Labels[name]
		if !ok {
			errf(ErrUndefinedLabel, pos, "undefined label %q", name)
			return 0, false
		}
		if entry.Section == SectionData {
			return entry.Addr, true
		}
		return textBase + uint32(mapping[entry.InstrIdx])*4, true
	}

	out := make([]Instruction, len(expanded))

	// pending carries the %hi split computed for an auipc whose operand
	// is a label, so the immediately following addi/jalr referencing the
	// same label uses the matching %lo instead of re-deriving it from its
	// own (different) PC.
	type hiLo struct {
		label string
		diff  int64
		valid bool
	}
	var pending hiLo

	for i, in := range expanded {
		pos := in.Pos
		addr := textBase + uint32(i)*4
		op, known := mnemonicToOp[in.Mnemonic]
		rec := Instruction{Op: op, Rd: -1, Rs1: -1, Rs2: -1, Target: -1, Pos: pos}
		if !known {
			errf(ErrUnknownInstruction, pos, "unknown instruction %q", in.Mnemonic)
			out[i] = rec
			continue
		}

		ops := in.Operands
		regAt := func(idx int) int {
			if idx < len(ops) {
				return ops[idx].Reg
			}
			return 0
		}

		switch op {
		case OpLui, OpAuipc:
			rec.Rd = regAt(0)
			lbl := ops[1]
			if lbl.Kind == OpLabel {
				target, ok := resolve(lbl.Label, pos)
				if ok {
					diff := int64(int32(target - addr))
					if op == OpAuipc {
						hi, _ := splitHiLo(diff)
						rec.Imm = int32(hi)
						pending = hiLo{label: lbl.Label, diff: diff, valid: true}
					} else {
						hi, _ := splitHiLo(int64(int32(target)))
						rec.Imm = int32(hi)
					}
				}
			} else {
				rec.Imm = int32(lbl.Imm)
			}

		case OpJal:
			rec.Rd = regAt(0)
			lbl := ops[1]
			if lbl.Kind == OpLabel {
				target, ok := resolve(lbl.Label, pos)
				if ok {
					idx := int(mapping[prog.Labels[lbl.Label].InstrIdx])
					if prog.Labels[lbl.Label].Section != SectionText {
						errf(ErrUndefinedLabel, pos, "jal target %q is not in .text", lbl.Label)
					} else {
						rec.Target = idx
					}
					off := int64(int32(target - addr))
					if off < -(1<<20) || off >= (1<<20) {
						errf(ErrBranchOutOfRange, pos, "jal target %q out of range", lbl.Label)
					}
					rec.Imm = int32(off)
				}
			} else {
				rec.Imm = int32(lbl.Imm)
			}

		case OpBeq, OpBne, OpBlt, OpBge, OpBltu, OpBgeu:
			rec.Rs1 = regAt(0)
			rec.Rs2 = regAt(1)
			lbl := ops[2]
			if lbl.Kind == OpLabel {
				target, ok := resolve(lbl.Label, pos)
				if ok {
					entry := prog.Labels[lbl.Label]
					if entry.Section == SectionText {
						rec.Target = int(mapping[entry.InstrIdx])
					}
					off := int64(int32(target - addr))
					if off < -4096 || off > 4094 {
						errf(ErrBranchOutOfRange, pos, "branch target %q out of range", lbl.Label)
					}
					rec.Imm = int32(off)
				}
			} else {
				rec.Imm = int32(lbl.Imm)
			}

		case OpJalr:
			rec.Rd = regAt(0)
			rec.Rs1 = regAt(1)
			imm := ops[2]
			if imm.Kind == OpLabel && pending.valid && pending.label == imm.Label {
				_, lo := splitHiLo(pending.diff)
				rec.Imm = int32(lo)
				pending.valid = false
			} else if imm.Kind == OpLabel {
				target, ok := resolve(imm.Label, pos)
				if ok {
					rec.Imm = int32(int32(target - addr))
				}
			} else {
				rec.Imm = int32(imm.Imm)
			}

		case OpAddi:
			rec.Rd = regAt(0)
			rec.Rs1 = regAt(1)
			imm := ops[2]
			if imm.Kind == OpLabel {
				if pending.valid && pending.label == imm.Label {
					_, lo := splitHiLo(pending.diff)
					rec.Imm = int32(lo)
					pending.valid = false
				} else {
					target, ok := resolve(imm.Label, pos)
					if ok {
						rec.Imm = int32(int32(target))
					}
				}
			} else {
				rec.Imm = int32(imm.Imm)
			}

		case OpSlti, OpSltiu, OpXori, OpOri, OpAndi, OpSlli, OpSrli, OpSrai:
			rec.Rd = regAt(0)
			rec.Rs1 = regAt(1)
			rec.Imm = int32(ops[2].Imm)

		case OpLb, OpLh, OpLw, OpLbu, OpLhu, OpFlw:
			rec.Rd = regAt(0)
			mem := ops[1]
			rec.Rs1 = mem.Reg
			rec.Imm = int32(mem.Imm)

		case OpSb, OpSh, OpSw, OpFsw:
			rec.Rs2 = regAt(0)
			mem := ops[1]
			rec.Rs1 = mem.Reg
			rec.Imm = int32(mem.Imm)

		case OpAdd, OpSub, OpSll, OpSlt, OpSltu, OpXor, OpSrl, OpSra, OpOr, OpAnd,
			OpMul, OpMulh, OpMulhsu, OpMulhu, OpDiv, OpDivu, OpRem, OpRemu,
			OpFaddS, OpFsubS, OpFmulS, OpFdivS, OpFsgnjS, OpFsgnjnS, OpFsgnjxS,
			OpFminS, OpFmaxS, OpFeqS, OpFltS, OpFleS:
			rec.Rd = regAt(0)
			rec.Rs1 = regAt(1)
			rec.Rs2 = regAt(2)

		case OpFsqrtS, OpFcvtWS, OpFcvtWuS, OpFcvtSW, OpFcvtSWu, OpFmvXW, OpFmvWX, OpFclassS:
			rec.Rd = regAt(0)
			rec.Rs1 = regAt(1)

		case OpCsrrw, OpCsrrs, OpCsrrc:
			rec.Rd = regAt(0)
			rec.Rs1 = regAt(2)
			if csr, ok := lookupCSR(ops[1].Label); ok {
				rec.CSR = csr
			} else {
				errf(ErrExpectedImmediate, pos, "unknown CSR %q", ops[1].Label)
			}

		case OpCsrrwi, OpCsrrsi, OpCsrrci:
			rec.Rd = regAt(0)
			rec.Imm = int32(ops[2].Imm)
			if csr, ok := lookupCSR(ops[1].Label); ok {
				rec.CSR = csr
			} else {
				errf(ErrExpectedImmediate, pos, "unknown CSR %q", ops[1].Label)
			}

		case OpEcall, OpEbreak, OpUret, OpFence:
			// no operands to resolve

		default:
			errf(ErrUnknownInstruction, pos, "unhandled opcode %v", op)
		}

		out[i] = rec
	}

	return out, mapping, errs
}
