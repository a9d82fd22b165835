package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcallMachine(t *testing.T, stdin string) (*Machine, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	m := NewMachine(nil, nil, nil, 0, 4, 4, strings.NewReader(stdin), out, &bytes.Buffer{}, ".", nil)
	return m, out
}

func TestEcallPrintInt(t *testing.T) {
	m, out := newEcallMachine(t, "")
	m.Int.Set(17, ecallPrintInt)
	m.Int.Set(10, -42)
	require.NoError(t, m.Ecall())
	assert.Equal(t, "-42", out.String())
}

func TestEcallPrintString(t *testing.T) {
	m, out := newEcallMachine(t, "")
	m.Mem.WriteBytes(heapBase, []byte("Hello, world!\x00"))
	m.Int.Set(17, ecallPrintString)
	m.Int.Set(10, int32(heapBase))
	require.NoError(t, m.Ecall())
	assert.Equal(t, "Hello, world!", out.String())
}

func TestEcallReadIntParsesStdinLine(t *testing.T) {
	m, _ := newEcallMachine(t, "123\n")
	m.Int.Set(17, ecallReadInt)
	require.NoError(t, m.Ecall())
	assert.Equal(t, int32(123), m.Int.Get(10))
}

func TestEcallSbrkReturnsPreviousBreak(t *testing.T) {
	m, _ := newEcallMachine(t, "")
	m.Int.Set(17, ecallSbrk)
	m.Int.Set(10, 64)
	require.NoError(t, m.Ecall())
	assert.Equal(t, int32(heapBase), m.Int.Get(10))

	m.Int.Set(10, 64)
	require.NoError(t, m.Ecall())
	assert.Equal(t, int32(heapBase+64), m.Int.Get(10))
}

func TestEcallExitReturnsSignal(t *testing.T) {
	m, _ := newEcallMachine(t, "")
	m.Int.Set(17, ecallExit)
	m.Int.Set(10, 3)
	err := m.Ecall()
	exit, ok := err.(ExitSignal)
	require.True(t, ok)
	assert.Equal(t, int32(3), exit.Code)
}

func TestEcallExitAliasBehavesLikeExit(t *testing.T) {
	m, _ := newEcallMachine(t, "")
	m.Int.Set(17, ecallExitAlias)
	m.Int.Set(10, 5)
	err := m.Ecall()
	exit, ok := err.(ExitSignal)
	require.True(t, ok)
	assert.Equal(t, int32(5), exit.Code)
}

func TestEcallUnknownCodeTraps(t *testing.T) {
	m, _ := newEcallMachine(t, "")
	m.Int.Set(17, 999)
	err := m.Ecall()
	trap, ok := err.(Trap)
	require.True(t, ok)
	assert.Equal(t, CauseIllegalEcall, trap.Cause)
}

func TestEcallPrintHexFormatsUnsigned(t *testing.T) {
	m, out := newEcallMachine(t, "")
	m.Int.Set(17, ecallPrintHex)
	m.Int.Set(10, -1)
	require.NoError(t, m.Ecall())
	assert.Equal(t, "0xffffffff", out.String())
}

func TestEcallPrintStringStillPrintsWhenDebugStateSet(t *testing.T) {
	m, out := newEcallMachine(t, "")
	m.DebugState = true
	m.Mem.WriteBytes(heapBase, []byte("debug\x00"))
	m.Int.Set(17, ecallPrintString)
	m.Int.Set(10, int32(heapBase))
	require.NoError(t, m.Ecall())
	assert.Equal(t, "debug", out.String())
}
