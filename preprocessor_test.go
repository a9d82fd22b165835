package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessEqvSubstitutesValue(t *testing.T) {
	assert := assert.New(t)

	toks, errs := Lex("t.s", ".eqv LIMIT 100\naddi x1, x1, LIMIT\n")
	require.Empty(t, errs)
	pp := newPreprocessor()
	out := pp.substitute(toks, 0)
	require.Empty(t, pp.errors)

	var ints []int64
	for _, tk := range out {
		if tk.Kind == TokInt {
			ints = append(ints, tk.IntVal)
		}
	}
	assert.Equal([]int64{100}, ints)
}

func TestPreprocessMacroExpansion(t *testing.T) {
	assert := assert.New(t)

	toks, errs := Lex("t.s", ".macro inc(%p1)\naddi %p1, %p1, 1\n.end_macro\ninc(x5)\n")
	require.Empty(t, errs)
	pp := newPreprocessor()
	out := pp.substitute(toks, 0)
	require.Empty(t, pp.errors)

	var idents []string
	for _, tk := range out {
		if tk.Kind == TokIdent {
			idents = append(idents, tk.Text)
		}
	}
	assert.Equal([]string{"addi", "x5", "x5"}, idents)
}

func TestPreprocessMacroExpansionWithMultipleParams(t *testing.T) {
	assert := assert.New(t)

	toks, errs := Lex("t.s", ".macro addto(%p1, %p2)\nadd %p1, %p1, %p2\n.end_macro\naddto(x5, x6)\n")
	require.Empty(t, errs)
	pp := newPreprocessor()
	out := pp.substitute(toks, 0)
	require.Empty(t, pp.errors)

	var idents []string
	for _, tk := range out {
		if tk.Kind == TokIdent {
			idents = append(idents, tk.Text)
		}
	}
	assert.Equal([]string{"add", "x5", "x5", "x6"}, idents)
}

func TestPreprocessMacroLocalLabelsAreRenamedPerExpansion(t *testing.T) {
	assert := assert.New(t)

	toks, errs := Lex("t.s", ".macro loop()\nlocal_top:\naddi x1, x1, 1\nj local_top\n.end_macro\nloop()\nloop()\n")
	require.Empty(t, errs)
	pp := newPreprocessor()
	out := pp.substitute(toks, 0)
	require.Empty(t, pp.errors)

	var labelNames []string
	for i, tk := range out {
		if tk.Kind == TokIdent && i+1 < len(out) && out[i+1].Kind == TokColon {
			labelNames = append(labelNames, tk.Text)
		}
	}
	require.Len(t, labelNames, 2)
	assert.NotEqual(labelNames[0], labelNames[1], "each macro expansion must get its own label")
}

func TestPreprocessIncludeSplicesFile(t *testing.T) {
	assert := assert.New(t)

	pp := newPreprocessor()
	pp.readFile = func(path string) (string, error) {
		if path == "main.s" {
			return ".include \"lib.s\"\naddi x1, x1, 1\n", nil
		}
		return "addi x2, x2, 2\n", nil
	}
	toks := pp.processFile("main.s", map[string]bool{})
	toks = pp.substitute(toks, 0)
	require.Empty(t, pp.errors)

	var idents []string
	for _, tk := range toks {
		if tk.Kind == TokIdent {
			idents = append(idents, tk.Text)
		}
	}
	assert.Equal([]string{"addi", "x2", "x2", "addi", "x1", "x1"}, idents)
}

func TestPreprocessCircularIncludeErrors(t *testing.T) {
	pp := newPreprocessor()
	pp.readFile = func(path string) (string, error) {
		if path == "a.s" {
			return ".include \"b.s\"\n", nil
		}
		return ".include \"a.s\"\n", nil
	}
	pp.processFile("a.s", map[string]bool{})
	require.NotEmpty(t, pp.errors)
	assert.Equal(t, ErrCircularInclude, pp.errors[0].Kind)
}
