// errors.go - assembly-time error taxonomy

package main

import "fmt"

// AssembleErrorKind names one of the assembly-time failure modes. The
// assembler never stops at the first one: every line is parsed and every
// kind found is collected, then reported together (see §7 of SPEC_FULL.md).
type AssembleErrorKind int

const (
	ErrIoError AssembleErrorKind = iota
	ErrCircularInclude
	ErrUnknownDirective
	ErrMacroRecursion
	ErrMacroArityMismatch
	ErrExpectedRegister
	ErrExpectedImmediate
	ErrImmediateOutOfRange
	ErrUndefinedLabel
	ErrDuplicateLabel
	ErrBranchOutOfRange
	ErrUnknownInstruction
)

func (k AssembleErrorKind) String() string {
	switch k {
	case ErrIoError:
		return "IoError"
	case ErrCircularInclude:
		return "CircularInclude"
	case ErrUnknownDirective:
		return "UnknownDirective"
	case ErrMacroRecursion:
		return "MacroRecursion"
	case ErrMacroArityMismatch:
		return "MacroArityMismatch"
	case ErrExpectedRegister:
		return "ExpectedRegister"
	case ErrExpectedImmediate:
		return "ExpectedImmediate"
	case ErrImmediateOutOfRange:
		return "ImmediateOutOfRange"
	case ErrUndefinedLabel:
		return "UndefinedLabel"
	case ErrDuplicateLabel:
		return "DuplicateLabel"
	case ErrBranchOutOfRange:
		return "BranchOutOfRange"
	case ErrUnknownInstruction:
		return "UnknownInstruction"
	default:
		return "UnknownError"
	}
}

// Pos identifies a point in a source file for diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// AssembleError is one collected assembly-time failure.
type AssembleError struct {
	Kind    AssembleErrorKind
	Pos     Pos
	Message string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func newErr(kind AssembleErrorKind, pos Pos, format string, args ...interface{}) *AssembleError {
	return &AssembleError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// AssembleErrors is a non-empty collection of AssembleError, returned by the
// assembler when it refuses to produce a program image.
type AssembleErrors []*AssembleError

func (es AssembleErrors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	s := fmt.Sprintf("%d assembly errors:\n", len(es))
	for _, e := range es {
		s += "  " + e.Error() + "\n"
	}
	return s
}
