package mips

import (
	"errors"

	"github.com/ezrec/vmachine/translate"
)

var f = translate.From

var (
	// Encoder errors
	ErrLineEmpty       = errors.New(f("empty line"))
	ErrMnemonicUnknown = errors.New(f("unknown mnemonic"))
	ErrRegisterInvalid = errors.New(f("invalid register"))
	ErrOperandMissing  = errors.New(f("missing operand"))
	ErrOperandExtra    = errors.New(f("excessive operands"))
	ErrNumberInvalid   = errors.New(f("not a number"))
	ErrImmediateRange  = errors.New(f("immediate out of range"))

	// Assembler errors
	ErrEquateSyntax     = errors.New(f(".equ syntax"))
	ErrEquateDuplicate  = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate   = errors.New(f("label duplicated"))
	ErrLabelInvalid     = errors.New(f("label invalid"))
	ErrWordSyntax       = errors.New(f(".word syntax"))
	ErrDirectiveInvalid = errors.New(f("directive invalid"))
)

// ErrOperand locates an encoding failure at one word of an instruction.
// Index 0 is the mnemonic itself.
type ErrOperand struct {
	Mnemonic string
	Index    int
	Word     string
	Err      error
}

func (err *ErrOperand) Error() string {
	if err.Index == 0 {
		return f("'%v' %v", err.Word, err.Err)
	}
	return f("%v operand %d '%v' %v", err.Mnemonic, err.Index, err.Word, err.Err)
}

func (err *ErrOperand) Unwrap() error {
	return err.Err
}

// ErrRange describes a value that did not fit its field, and was truncated.
type ErrRange struct {
	Field string
	Value int64
	Bits  int
}

func (err *ErrRange) Error() string {
	return f("%v %d does not fit in %d bits", err.Field, err.Value, err.Bits)
}

func (err *ErrRange) Is(target error) bool {
	return target == ErrImmediateRange
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
