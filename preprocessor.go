// preprocessor.go - .include / .eqv / .macro expansion over the token
// stream (C1 transforms 2 and 3; transform 1, tokenizing, lives in
// lexer.go). Grounded on the teacher's assembler/ie64asm.go preprocess and
// expandPass functions (textual macro capture keyed by name+arity, included
// map[string]bool cycle guard), adapted to operate on tokens instead of
// raw text lines and to the directive names spec.md defines.

package main

import (
	"os"
	"path/filepath"
	"strconv"
)

const maxMacroDepth = 64

type macroDef struct {
	name   string
	params []string
	body   []Token
}

type preprocessor struct {
	readFile    func(path string) (string, error)
	eqv         map[string][]Token
	macros      map[string]*macroDef // key: name + "/" + arity
	expandCount int
	errors      []*AssembleError
}

func newPreprocessor() *preprocessor {
	return &preprocessor{
		readFile: func(path string) (string, error) {
			b, err := os.ReadFile(path)
			return string(b), err
		},
		eqv:    make(map[string][]Token),
		macros: make(map[string]*macroDef),
	}
}

// Preprocess tokenizes the entry file and expands .include/.eqv/.macro,
// returning a flat token stream ready for the parser.
func Preprocess(entryPath string) ([]Token, []*AssembleError) {
	pp := newPreprocessor()
	toks := pp.processFile(entryPath, map[string]bool{})
	toks = pp.substitute(toks, 0)
	return toks, pp.errors
}

func (pp *preprocessor) errf(kind AssembleErrorKind, pos Pos, format string, args ...interface{}) {
	pp.errors = append(pp.errors, newErr(kind, pos, format, args...))
}

// processFile lexes one file and resolves .include splices; .eqv/.macro
// definitions are captured but left for the substitute pass so that
// forward .eqv/.macro uses across included files still work the same way
// the original one-shot lexer pass would see them.
func (pp *preprocessor) processFile(path string, chain map[string]bool) []Token {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if chain[abs] {
		pp.errf(ErrCircularInclude, Pos{File: path}, "circular include of %s", path)
		return nil
	}
	chain[abs] = true
	defer delete(chain, abs)

	src, err := pp.readFile(path)
	if err != nil {
		pp.errf(ErrIoError, Pos{File: path}, "could not read %s: %v", path, err)
		return nil
	}

	toks, lexErrs := Lex(path, src)
	pp.errors = append(pp.errors, lexErrs...)

	var out []Token
	baseDir := filepath.Dir(path)
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == TokDirective && t.Text == "include" {
			j := i + 1
			if j >= len(toks) || toks[j].Kind != TokString {
				pp.errf(ErrExpectedImmediate, t.Pos, ".include expects a quoted path")
				i = skipToNewline(toks, i)
				continue
			}
			incPath := toks[j].StrVal
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(baseDir, incPath)
			}
			out = append(out, pp.processFile(incPath, chain)...)
			i = skipToNewline(toks, j)
			continue
		}
		if t.Kind == TokEOF {
			continue
		}
		out = append(out, t)
	}
	return out
}

func skipToNewline(toks []Token, from int) int {
	i := from
	for i < len(toks) && toks[i].Kind != TokNewline {
		i++
	}
	return i
}

// substitute expands .eqv, .macro/.end_macro and macro invocations over a
// flat token stream, recursively re-scanning generated tokens so that a
// macro body invoking another macro, or referencing an .eqv name, still
// resolves. depth guards against runaway expansion (MacroRecursion).
func (pp *preprocessor) substitute(toks []Token, depth int) []Token {
	if depth > maxMacroDepth {
		if len(toks) > 0 {
			pp.errf(ErrMacroRecursion, toks[0].Pos, "macro expansion exceeded depth %d", maxMacroDepth)
		}
		return nil
	}

	var out []Token
	for i := 0; i < len(toks); i++ {
		t := toks[i]

		switch {
		case t.Kind == TokDirective && t.Text == "eqv":
			name, valTokens, next := pp.parseEqv(toks, i)
			if name != "" {
				pp.eqv[name] = valTokens
			}
			i = next
			continue

		case t.Kind == TokDirective && t.Text == "macro":
			def, next := pp.parseMacroDef(toks, i)
			if def != nil {
				key := def.name + "/" + strconv.Itoa(len(def.params))
				pp.macros[key] = def
			}
			i = next
			continue

		case t.Kind == TokIdent:
			if def, args, next, ok := pp.tryMacroInvocation(toks, i); ok {
				body := pp.expandMacroBody(def, args)
				out = append(out, pp.substitute(body, depth+1)...)
				i = next
				continue
			}
			if val, ok := pp.eqv[t.Text]; ok {
				out = append(out, val...)
				continue
			}
			out = append(out, t)

		default:
			out = append(out, t)
		}
	}
	return out
}

// parseEqv consumes `.eqv NAME value...` up to the newline.
func (pp *preprocessor) parseEqv(toks []Token, at int) (string, []Token, int) {
	i := at + 1
	if i >= len(toks) || toks[i].Kind != TokIdent {
		pp.errf(ErrExpectedImmediate, toks[at].Pos, ".eqv expects a name")
		return "", nil, skipToNewline(toks, at)
	}
	name := toks[i].Text
	i++
	var val []Token
	for i < len(toks) && toks[i].Kind != TokNewline {
		val = append(val, toks[i])
		i++
	}
	return name, val, i
}

// parseMacroDef consumes `.macro NAME(%p1, %p2) ... .end_macro`.
func (pp *preprocessor) parseMacroDef(toks []Token, at int) (*macroDef, int) {
	i := at + 1
	if i >= len(toks) || toks[i].Kind != TokIdent {
		pp.errf(ErrExpectedImmediate, toks[at].Pos, ".macro expects a name")
		return nil, skipToMacroEnd(toks, at)
	}
	def := &macroDef{name: toks[i].Text}
	i++

	if i < len(toks) && toks[i].Kind == TokLParen {
		i++
		for i < len(toks) && toks[i].Kind != TokRParen {
			if toks[i].Kind == TokIdent {
				def.params = append(def.params, toks[i].Text)
			}
			i++
			if i < len(toks) && toks[i].Kind == TokComma {
				i++
			}
		}
		if i < len(toks) {
			i++ // consume ')'
		}
	}
	i = skipToNewline(toks, i)
	if i < len(toks) {
		i++ // consume newline after the header
	}

	start := i
	depth := 1
	for i < len(toks) {
		if toks[i].Kind == TokDirective && toks[i].Text == "macro" {
			depth++
		}
		if toks[i].Kind == TokDirective && toks[i].Text == "end_macro" {
			depth--
			if depth == 0 {
				break
			}
		}
		i++
	}
	def.body = toks[start:i]
	if i < len(toks) {
		i++ // consume end_macro
	}
	i = skipToNewline(toks, i)
	return def, i
}

func skipToMacroEnd(toks []Token, at int) int {
	i := at
	for i < len(toks) && !(toks[i].Kind == TokDirective && toks[i].Text == "end_macro") {
		i++
	}
	return i
}

// tryMacroInvocation checks whether the identifier at `at` names a
// registered macro and, if so, consumes its (optional) argument list.
func (pp *preprocessor) tryMacroInvocation(toks []Token, at int) (*macroDef, [][]Token, int, bool) {
	name := toks[at].Text
	i := at + 1

	var args [][]Token
	hasParens := i < len(toks) && toks[i].Kind == TokLParen
	if hasParens {
		i++
		var cur []Token
		parenDepth := 1
		for i < len(toks) && parenDepth > 0 {
			switch toks[i].Kind {
			case TokLParen:
				parenDepth++
				cur = append(cur, toks[i])
			case TokRParen:
				parenDepth--
				if parenDepth == 0 {
					if len(cur) > 0 {
						args = append(args, cur)
					}
					i++
					continue
				}
				cur = append(cur, toks[i])
			case TokComma:
				if parenDepth == 1 {
					args = append(args, cur)
					cur = nil
				} else {
					cur = append(cur, toks[i])
				}
			default:
				cur = append(cur, toks[i])
			}
			i++
		}
	}

	key := name + "/" + strconv.Itoa(len(args))
	def, ok := pp.macros[key]
	if !ok {
		return nil, nil, at, false
	}
	end := i
	if !hasParens {
		end = at + 1
	}
	return def, args, end, true
}

// expandMacroBody substitutes %pN parameters and alpha-renames macro-local
// labels (by convention, any label named "local_*") so that repeated
// invocations of the same macro never collide.
func (pp *preprocessor) expandMacroBody(def *macroDef, args [][]Token) []Token {
	pp.expandCount++
	suffix := "__exp" + strconv.Itoa(pp.expandCount)

	locals := map[string]string{}
	for i := 0; i < len(def.body); i++ {
		t := def.body[i]
		if t.Kind == TokIdent && isLocalMacroLabel(t.Text) && i+1 < len(def.body) && def.body[i+1].Kind == TokColon {
			if _, seen := locals[t.Text]; !seen {
				locals[t.Text] = t.Text + suffix
			}
		}
	}

	paramOf := func(name string) (int, bool) {
		for idx, p := range def.params {
			if p == name {
				return idx, true
			}
		}
		return 0, false
	}

	var out []Token
	for _, t := range def.body {
		if t.Kind == TokIdent {
			if idx, ok := paramOf(t.Text); ok && idx < len(args) {
				out = append(out, args[idx]...)
				continue
			}
			if renamed, ok := locals[t.Text]; ok {
				t.Text = renamed
				out = append(out, t)
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func isLocalMacroLabel(name string) bool {
	return len(name) >= len("local_") && name[:len("local_")] == "local_"
}
