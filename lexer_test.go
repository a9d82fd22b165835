package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexSkipsCommentsAndWhitespace(t *testing.T) {
	toks, errs := Lex("t.s", "  addi x1, x1, 1 # comment\n; also a comment\n")
	require.Empty(t, errs)
	var kinds []TokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Contains(t, kinds, TokIdent)
	assert.Contains(t, kinds, TokNewline)
}

func TestLexHexAndBinaryLiterals(t *testing.T) {
	toks, errs := Lex("t.s", "0xFF 0b101 42 -7\n")
	require.Empty(t, errs)
	var vals []int64
	for _, tk := range toks {
		if tk.Kind == TokInt {
			vals = append(vals, tk.IntVal)
		}
	}
	assert.Equal(t, []int64{0xFF, 0b101, 42, -7}, vals)
}

func TestLexCharLiteralEscapes(t *testing.T) {
	toks, errs := Lex("t.s", "'\\n' 'a' '\\0'\n")
	require.Empty(t, errs)
	var vals []int64
	for _, tk := range toks {
		if tk.Kind == TokInt {
			vals = append(vals, tk.IntVal)
		}
	}
	assert.Equal(t, []int64{'\n', 'a', 0}, vals)
}

func TestLexStringEscapes(t *testing.T) {
	toks, errs := Lex("t.s", `"a\nb\tc"` + "\n")
	require.Empty(t, errs)
	require.NotEmpty(t, toks)
	assert.Equal(t, "a\nb\tc", toks[0].StrVal)
}

func TestLexDirectiveDropsLeadingDot(t *testing.T) {
	toks, errs := Lex("t.s", ".data\n")
	require.Empty(t, errs)
	require.NotEmpty(t, toks)
	assert.Equal(t, TokDirective, toks[0].Kind)
	assert.Equal(t, "data", toks[0].Text)
}

func TestLexMacroParamSigilLexesAsIdent(t *testing.T) {
	toks, errs := Lex("t.s", ".macro inc(%p1)\naddi %p1, %p1, 1\n.end_macro\n")
	require.Empty(t, errs)
	var idents []string
	for _, tk := range toks {
		if tk.Kind == TokIdent {
			idents = append(idents, tk.Text)
		}
	}
	assert.Equal(t, []string{"inc", "%p1", "addi", "%p1", "%p1"}, idents)
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	_, errs := Lex("t.s", `"unterminated`)
	assert.NotEmpty(t, errs)
}
