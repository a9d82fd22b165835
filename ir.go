// ir.go - C5: the decoded instruction record the executor dispatches on.
//
// Every field here is pre-parsed at assembly time so the hot loop in
// executor.go never re-decodes a mnemonic or re-resolves a label: opcode is
// a dense tag, immediates are already sign-extended int32s, and branch/jump
// targets are already final indices into the Instruction slice.

package main

type OpCode int

const (
	OpInvalid OpCode = iota

	// RV32I
	OpLui
	OpAuipc
	OpJal
	OpJalr
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd
	OpFence
	OpEcall
	OpEbreak
	OpUret

	// RV32M
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu

	// RV32F
	OpFlw
	OpFsw
	OpFaddS
	OpFsubS
	OpFmulS
	OpFdivS
	OpFsqrtS
	OpFsgnjS
	OpFsgnjnS
	OpFsgnjxS
	OpFminS
	OpFmaxS
	OpFcvtWS
	OpFcvtWuS
	OpFcvtSW
	OpFcvtSWu
	OpFmvXW
	OpFmvWX
	OpFeqS
	OpFltS
	OpFleS
	OpFclassS

	// Zicsr
	OpCsrrw
	OpCsrrs
	OpCsrrc
	OpCsrrwi
	OpCsrrsi
	OpCsrrci
)

var mnemonicToOp = map[string]OpCode{
	"lui": OpLui, "auipc": OpAuipc, "jal": OpJal, "jalr": OpJalr,
	"beq": OpBeq, "bne": OpBne, "blt": OpBlt, "bge": OpBge, "bltu": OpBltu, "bgeu": OpBgeu,
	"lb": OpLb, "lh": OpLh, "lw": OpLw, "lbu": OpLbu, "lhu": OpLhu,
	"sb": OpSb, "sh": OpSh, "sw": OpSw,
	"addi": OpAddi, "slti": OpSlti, "sltiu": OpSltiu, "xori": OpXori, "ori": OpOri, "andi": OpAndi,
	"slli": OpSlli, "srli": OpSrli, "srai": OpSrai,
	"add": OpAdd, "sub": OpSub, "sll": OpSll, "slt": OpSlt, "sltu": OpSltu,
	"xor": OpXor, "srl": OpSrl, "sra": OpSra, "or": OpOr, "and": OpAnd,
	"fence": OpFence, "ecall": OpEcall, "ebreak": OpEbreak, "uret": OpUret,

	"mul": OpMul, "mulh": OpMulh, "mulhsu": OpMulhsu, "mulhu": OpMulhu,
	"div": OpDiv, "divu": OpDivu, "rem": OpRem, "remu": OpRemu,

	"flw": OpFlw, "fsw": OpFsw,
	"fadd.s": OpFaddS, "fsub.s": OpFsubS, "fmul.s": OpFmulS, "fdiv.s": OpFdivS, "fsqrt.s": OpFsqrtS,
	"fsgnj.s": OpFsgnjS, "fsgnjn.s": OpFsgnjnS, "fsgnjx.s": OpFsgnjxS,
	"fmin.s": OpFminS, "fmax.s": OpFmaxS,
	"fcvt.w.s": OpFcvtWS, "fcvt.wu.s": OpFcvtWuS, "fcvt.s.w": OpFcvtSW, "fcvt.s.wu": OpFcvtSWu,
	"fmv.x.w": OpFmvXW, "fmv.w.x": OpFmvWX,
	"feq.s": OpFeqS, "flt.s": OpFltS, "fle.s": OpFleS, "fclass.s": OpFclassS,

	"csrrw": OpCsrrw, "csrrs": OpCsrrs, "csrrc": OpCsrrc,
	"csrrwi": OpCsrrwi, "csrrsi": OpCsrrsi, "csrrci": OpCsrrci,
}

// Instruction is one pre-decoded text-segment record.
type Instruction struct {
	Op     OpCode
	Rd     int
	Rs1    int
	Rs2    int
	Imm    int32
	CSR    int
	Target int // resolved instruction-array index for control transfers, -1 if none
	Pos    Pos // kept for trap diagnostics
}

func isBranchOp(op OpCode) bool {
	switch op {
	case OpBeq, OpBne, OpBlt, OpBge, OpBltu, OpBgeu:
		return true
	}
	return false
}

func isFloatReg(k OperandKind) bool { return k == OpFReg }

var opNames = buildOpNames()

func buildOpNames() map[OpCode]string {
	m := make(map[OpCode]string, len(mnemonicToOp))
	for name, op := range mnemonicToOp {
		m[op] = name
	}
	return m
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "invalid"
}
