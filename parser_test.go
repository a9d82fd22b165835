package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) (*ParsedProgram, []*AssembleError) {
	t.Helper()
	toks, lerrs := Lex("t.s", src)
	require.Empty(t, lerrs)
	return Parse(toks)
}

func TestParseDataLabelsGetFinalAddressImmediately(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".data\na: .word 1\nb: .word 2\n")
	require.Empty(t, errs)
	assert.Equal(uint32(dataBase), prog.Labels["a"].Addr)
	assert.Equal(uint32(dataBase+4), prog.Labels["b"].Addr)
}

func TestParseTextLabelsGetInstrIdxNotAddress(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".text\nfirst:\naddi x1, x1, 1\nsecond:\naddi x2, x2, 1\n")
	require.Empty(t, errs)
	assert.Equal(SectionText, prog.Labels["first"].Section)
	assert.Equal(0, prog.Labels["first"].InstrIdx)
	assert.Equal(1, prog.Labels["second"].InstrIdx)
}

func TestParseMainLabelBecomesEntry(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, "main:\naddi x1, x1, 1\n")
	require.Empty(t, errs)
	assert.Equal("main", prog.EntryLabel)
}

func TestParseStringDirectiveAddsNUL(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".data\ns: .string \"hi\"\n")
	require.Empty(t, errs)
	assert.Equal([]byte("hi\x00"), prog.Data)
}

func TestParseStringConcatenatesMultipleLiteralsWithOneTrailingNUL(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".data\ns: .string \"ab\", \"cd\"\n")
	require.Empty(t, errs)
	assert.Equal([]byte("abcd\x00"), prog.Data)
}

func TestParseAsciiDirectiveOmitsNUL(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".data\ns: .ascii \"hi\"\n")
	require.Empty(t, errs)
	assert.Equal([]byte("hi"), prog.Data)
}

func TestParseSpaceDirectiveZeroFills(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".data\n.space 4\n")
	require.Empty(t, errs)
	assert.Equal([]byte{0, 0, 0, 0}, prog.Data)
}

func TestParseAlignPadsToBoundary(t *testing.T) {
	assert := assert.New(t)

	prog, errs := parseSrc(t, ".data\n.byte 1\n.align 2\n.word 0xAABBCCDD\n")
	require.Empty(t, errs)
	require.Len(t, prog.Data, 8)
	assert.Equal(byte(1), prog.Data[0])
	assert.Equal(byte(0xDD), prog.Data[4])
}

func TestParseDuplicateLabelIsCollectedAsError(t *testing.T) {
	_, errs := parseSrc(t, "a:\naddi x1, x1, 1\na:\naddi x2, x2, 1\n")
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrDuplicateLabel, errs[0].Kind)
}

func TestParseUnknownDirectiveIsCollectedAsError(t *testing.T) {
	_, errs := parseSrc(t, ".bogus\n")
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrUnknownDirective, errs[0].Kind)
}
