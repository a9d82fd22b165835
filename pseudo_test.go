package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandLiSmallFitsAddi(t *testing.T) {
	assert := assert.New(t)

	out, mapping := Expand([]RawInstr{mk(Pos{}, "li", reg(5), imm(10))})
	assert.Len(out, 1)
	assert.Equal("addi", out[0].Mnemonic)
	assert.Equal([]int{0, 1}, mapping)
}

func TestExpandLiLargeSplitsHiLo(t *testing.T) {
	assert := assert.New(t)

	out, _ := Expand([]RawInstr{mk(Pos{}, "li", reg(5), imm(0x12345678))})
	assert.Len(out, 2)
	assert.Equal("lui", out[0].Mnemonic)
	assert.Equal("addi", out[1].Mnemonic)
}

func TestExpandLaUsesAuipcNotLui(t *testing.T) {
	assert := assert.New(t)

	out, _ := Expand([]RawInstr{mk(Pos{}, "la", reg(5), label("buf"))})
	assert.Len(out, 2)
	assert.Equal("auipc", out[0].Mnemonic, "la must be PC-relative")
	assert.Equal("addi", out[1].Mnemonic)
}

func TestExpandCallUsesRa(t *testing.T) {
	assert := assert.New(t)

	out, _ := Expand([]RawInstr{mk(Pos{}, "call", label("f"))})
	assert.Len(out, 2)
	assert.Equal("auipc", out[0].Mnemonic)
	assert.Equal(1, out[0].Operands[0].Reg)
	assert.Equal("jalr", out[1].Mnemonic)
}

func TestExpandMappingAcrossMultipleInstructions(t *testing.T) {
	assert := assert.New(t)

	out, mapping := Expand([]RawInstr{
		mk(Pos{}, "nop"),
		mk(Pos{}, "li", reg(5), imm(0x12345678)), // expands to 2
		mk(Pos{}, "ret"),
	})
	assert.Len(out, 4)
	assert.Equal([]int{0, 1, 3, 4}, mapping)
}

func TestSplitHiLoRecombines(t *testing.T) {
	assert := assert.New(t)

	for _, v := range []int64{0, 1, -1, 0x12345678, -0x12345678, 0x7FFFFFFF, -0x80000000} {
		hi, lo := splitHiLo(v)
		got := int32(hi<<12) + int32(lo)
		assert.Equal(int32(v), got, "value %d", v)
	}
}

func TestExpandBranchPseudosPickCorrectComparison(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]string{
		"beqz": "beq", "bnez": "bne", "blez": "bge", "bgez": "bge",
		"bltz": "blt", "bgtz": "blt", "bgt": "blt", "ble": "bge",
		"bgtu": "bltu", "bleu": "bgeu",
	}
	for mnem, want := range cases {
		out, _ := Expand([]RawInstr{mk(Pos{}, mnem, reg(5), reg(6), label("l"))})
		assert.Equal(want, out[0].Mnemonic, mnem)
	}
}
