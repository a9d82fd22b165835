// parser.go - C2: turns a preprocessed token stream into a ParsedProgram.
//
// Data-segment labels get final addresses as soon as their directive is
// parsed, since .data layout never depends on anything downstream. Text
// labels only get a symbolic index into the pre-expansion instruction list
// (see ast.go's LabelEntry doc); pseudo.go and layout.go turn that into a
// final byte address once expansion has run.

package main

import (
	"math"
	"strings"
)

const (
	dataBase = 0x10000000
	textBase = 0x00400000
)

type parser struct {
	toks   []Token
	pos    int
	errors []*AssembleError

	section SectionKind
	data    []byte
	instrs  []RawInstr
	labels  map[string]LabelEntry
	pending []string // labels seen since the last instruction/data item
	entry   string
}

// Parse consumes a preprocessed token stream and produces a ParsedProgram.
// It never stops at the first error: parsing resumes at the next line.
func Parse(toks []Token) (*ParsedProgram, []*AssembleError) {
	p := &parser{
		toks:    toks,
		section: SectionText,
		labels:  make(map[string]LabelEntry),
	}
	p.run()
	return &ParsedProgram{
		Data:       p.data,
		Instrs:     p.instrs,
		Labels:     p.labels,
		EntryLabel: p.entry,
	}, p.errors
}

func (p *parser) errf(kind AssembleErrorKind, pos Pos, format string, args ...interface{}) {
	p.errors = append(p.errors, newErr(kind, pos, format, args...))
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) skipToNewline() {
	for p.cur().Kind != TokNewline && p.cur().Kind != TokEOF {
		p.advance()
	}
	if p.cur().Kind == TokNewline {
		p.advance()
	}
}

func (p *parser) run() {
	for p.cur().Kind != TokEOF {
		t := p.cur()
		switch t.Kind {
		case TokNewline:
			p.advance()
		case TokDirective:
			p.parseDirective()
		case TokIdent:
			if p.peekIsColon() {
				p.parseLabelDef()
			} else {
				p.parseInstruction()
			}
		default:
			p.errf(ErrUnknownInstruction, t.Pos, "unexpected token %q", t.String())
			p.skipToNewline()
		}
	}
}

func (p *parser) peekIsColon() bool {
	return p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == TokColon
}

// parseLabelDef binds the label name just read to the current position and
// skips any blank lines after it. Further labels on the same line (e.g.
// "a: b: addi ...") are bound by later passes of run()'s loop.
func (p *parser) parseLabelDef() {
	name := p.advance().Text
	pos := p.toks[p.pos-1].Pos
	p.advance() // colon
	p.bindLabel(name, pos)
	for p.cur().Kind == TokNewline {
		p.advance()
	}
}

func (p *parser) bindLabel(name string, pos Pos) {
	if _, dup := p.labels[name]; dup {
		p.errf(ErrDuplicateLabel, pos, "label %q already defined", name)
		return
	}
	if name == "main" {
		p.entry = name
	}
	if p.section == SectionData {
		p.labels[name] = LabelEntry{Section: SectionData, Addr: dataBase + uint32(len(p.data)), Pos: pos}
	} else {
		p.labels[name] = LabelEntry{Section: SectionText, InstrIdx: len(p.instrs), Pos: pos}
	}
}

func (p *parser) parseDirective() {
	t := p.advance()
	switch t.Text {
	case "data":
		p.section = SectionData
		p.skipToNewline()
	case "text":
		p.section = SectionText
		p.skipToNewline()
	case "global", "globl":
		p.skipToNewline()
	case "align":
		p.parseAlign(t.Pos)
	case "word":
		p.parseIntList(t.Pos, 4)
	case "half", "hword", "short":
		p.parseIntList(t.Pos, 2)
	case "byte":
		p.parseIntList(t.Pos, 1)
	case "space", "skip":
		p.parseSpace(t.Pos)
	case "string", "asciz", "ascii":
		p.parseString(t.Pos, t.Text == "ascii")
	case "float":
		p.parseFloatList(t.Pos, 4)
	case "double":
		p.parseFloatList(t.Pos, 8)
	case "eqv", "macro", "end_macro", "include":
		// fully consumed by the preprocessor; seeing one here means it
		// leaked through (e.g. inside an unresolved macro body).
		p.skipToNewline()
	default:
		p.errf(ErrUnknownDirective, t.Pos, "unknown directive %q", t.Text)
		p.skipToNewline()
	}
}

func (p *parser) parseAlign(pos Pos) {
	if p.cur().Kind != TokInt {
		p.errf(ErrExpectedImmediate, pos, ".align expects an integer operand")
		p.skipToNewline()
		return
	}
	n := p.advance().IntVal
	align := int64(1) << uint(n)
	for int64(len(p.data))%align != 0 {
		p.data = append(p.data, 0)
	}
	p.skipToNewline()
}

func (p *parser) parseIntList(pos Pos, width int) {
	if p.section != SectionData {
		p.errf(ErrUnknownDirective, pos, "data directive used outside .data")
	}
	for {
		if p.cur().Kind != TokInt {
			p.errf(ErrExpectedImmediate, p.cur().Pos, "expected integer operand")
			break
		}
		v := p.advance().IntVal
		for i := 0; i < width; i++ {
			p.data = append(p.data, byte(v>>(8*uint(i))))
		}
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	p.skipToNewline()
}

// parseFloatList stores each .float (width 4) or .double (width 8) operand
// as its IEEE-754 bit pattern. Operands are whole numbers only: the lexer has
// no float-literal form, so "3.14" reads as the integer 3 followed by a
// stray ".14" token, and the rest of that line is skipped.
func (p *parser) parseFloatList(pos Pos, width int) {
	start := len(p.data)
	p.parseIntList(pos, width)
	for off := start; off+width <= len(p.data); off += width {
		var v uint64
		for i := 0; i < width; i++ {
			v |= uint64(p.data[off+i]) << (8 * uint(i))
		}
		bits := uint64(math.Float32bits(float32(int32(v))))
		if width == 8 {
			bits = math.Float64bits(float64(int64(v)))
		}
		for i := 0; i < width; i++ {
			p.data[off+i] = byte(bits >> (8 * uint(i)))
		}
	}
}

func (p *parser) parseSpace(pos Pos) {
	if p.cur().Kind != TokInt {
		p.errf(ErrExpectedImmediate, pos, ".space expects an integer operand")
		p.skipToNewline()
		return
	}
	n := p.advance().IntVal
	for i := int64(0); i < n; i++ {
		p.data = append(p.data, 0)
	}
	p.skipToNewline()
}

// parseString handles .string/.asciz (raw=false, a single trailing NUL even
// when several comma-separated literals concatenate into one blob) and
// .ascii (raw=true, never NUL-terminated).
func (p *parser) parseString(pos Pos, raw bool) {
	for {
		if p.cur().Kind != TokString {
			p.errf(ErrExpectedImmediate, p.cur().Pos, "expected string literal")
			break
		}
		s := p.advance().StrVal
		p.data = append(p.data, []byte(s)...)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if !raw {
		p.data = append(p.data, 0)
	}
	_ = pos
	p.skipToNewline()
}

// parseInstruction collects a mnemonic and its operands verbatim; pseudo.go
// decides later whether the mnemonic is real or needs expansion.
func (p *parser) parseInstruction() {
	m := p.advance()
	instr := RawInstr{Pos: m.Pos, Mnemonic: strings.ToLower(m.Text)}
	for p.cur().Kind != TokNewline && p.cur().Kind != TokEOF {
		op, ok := p.parseOperand()
		if !ok {
			break
		}
		instr.Operands = append(instr.Operands, op)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	p.instrs = append(p.instrs, instr)
	p.skipToNewline()
}

// parseOperand handles registers, float registers, bare immediates, labels,
// and imm(reg) memory operands.
func (p *parser) parseOperand() (Operand, bool) {
	t := p.cur()
	switch t.Kind {
	case TokInt:
		p.advance()
		imm := t.IntVal
		if p.cur().Kind == TokLParen {
			return p.parseMemOperand(imm)
		}
		return Operand{Kind: OpImm, Imm: imm}, true

	case TokIdent:
		if reg, ok := lookupIntReg(t.Text); ok {
			p.advance()
			return Operand{Kind: OpReg, Reg: reg}, true
		}
		if reg, ok := lookupFloatReg(t.Text); ok {
			p.advance()
			return Operand{Kind: OpFReg, Reg: reg}, true
		}
		p.advance()
		if p.cur().Kind == TokLParen {
			return p.parseMemOperand(0)
		}
		return Operand{Kind: OpLabel, Label: t.Text}, true

	case TokLParen:
		return p.parseMemOperand(0)

	default:
		p.errf(ErrExpectedRegister, t.Pos, "expected operand, got %q", t.String())
		return Operand{}, false
	}
}

func (p *parser) parseMemOperand(imm int64) (Operand, bool) {
	p.advance() // '('
	if p.cur().Kind != TokIdent {
		p.errf(ErrExpectedRegister, p.cur().Pos, "expected base register inside ()")
		return Operand{}, false
	}
	name := p.advance().Text
	reg, ok := lookupIntReg(name)
	if !ok {
		p.errf(ErrExpectedRegister, p.cur().Pos, "unknown register %q", name)
		return Operand{}, false
	}
	if p.cur().Kind != TokRParen {
		p.errf(ErrExpectedRegister, p.cur().Pos, "expected ')'")
		return Operand{}, false
	}
	p.advance() // ')'
	return Operand{Kind: OpMem, Reg: reg, Imm: imm}, true
}
