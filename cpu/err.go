package cpu

import (
	"errors"

	"github.com/mc680x/trainer/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrOrgSyntax       = errors.New(f(".org syntax"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrModeInvalid     = errors.New(f("addressing mode not available"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrOperandExtra    = errors.New(f("excessive arguments"))
	ErrBranchRange     = errors.New(f("branch target out of range"))
	ErrValueRange      = errors.New(f("value out of range"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
