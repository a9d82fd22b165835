package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProgram assembles src end-to-end and runs it to completion, headless
// (no Ebiten display pump — display_backend.go is only reached from main).
func runProgram(t *testing.T, src, stdin string) (*Machine, int32, string) {
	t.Helper()
	toks, lerrs := Lex("test.s", src)
	require.Empty(t, lerrs)
	parsed, perrs := Parse(toks)
	require.Empty(t, perrs)
	instrs, mapping, errs := Link(parsed)
	require.Empty(t, errs)

	entryPC := 0
	if e, ok := parsed.Labels[parsed.EntryLabel]; ok {
		entryPC = mapping[e.InstrIdx]
	}

	out := &bytes.Buffer{}
	m := NewMachine(instrs, parsed.Labels, parsed.Data, entryPC, 4, 4, strings.NewReader(stdin), out, &bytes.Buffer{}, ".", nil)
	m.Mem.LoadText(encodeDummyText(len(instrs)))

	code, fatal := m.Run()
	require.NoError(t, fatal)
	return m, code, out.String()
}

// encodeDummyText reserves n*4 text bytes so IsTextRange's bookkeeping
// matches a real assembled image; the executor never decodes these bytes
// itself, it dispatches on the pre-decoded Instruction slice.
func encodeDummyText(n int) []byte {
	return make([]byte, n*4)
}

func TestProgramHelloWorld(t *testing.T) {
	_, code, out := runProgram(t, `
.data
hello: .string "Hello World!\n"
.text
main:
	li a7, 4
	la a0, hello
	ecall
	li a7, 10
	li a0, 0
	ecall
`, "")
	assert.Equal(t, int32(0), code)
	assert.Equal(t, "Hello World!\n", out)
}

func TestProgramPrintInt(t *testing.T) {
	_, code, out := runProgram(t, `
main:
	li a7, 1
	li a0, -42
	ecall
	li a7, 11
	li a0, 10
	ecall
	li a7, 10
	ecall
`, "")
	assert.Equal(t, int32(0), code)
	assert.Equal(t, "-42\n", out)
}

// TestProgramEntryAfterExpandingPseudoInstruction places a two-word pseudo
// instruction (li with an out-of-range immediate) before the main label, so
// main's pre-expansion InstrIdx (1) and its post-expansion index (2) differ.
// Starting execution at the unmapped index would run the tail half of the li
// as the first instruction instead of main's actual first instruction.
func TestProgramEntryAfterExpandingPseudoInstruction(t *testing.T) {
	_, code, out := runProgram(t, `
.text
helper:
	li x5, 0x123456
main:
	li a7, 4
	la a0, greeting
	ecall
	li a7, 10
	li a0, 0
	ecall
.data
greeting: .string "ok\n"
`, "")
	assert.Equal(t, int32(0), code)
	assert.Equal(t, "ok\n", out)
}

func TestProgramSbrk(t *testing.T) {
	m, code, _ := runProgram(t, `
main:
	li a7, 9
	li a0, 4
	ecall
	li x5, 0x1234
	sw x5, 0(a0)
	lw x6, 0(a0)
	li a7, 10
	ecall
`, "")
	assert.Equal(t, int32(0), code)
	assert.Equal(t, int32(0x1234), m.Int.Get(6))
}
