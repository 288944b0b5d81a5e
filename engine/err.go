package engine

import (
	"errors"

	"github.com/ezrec/vmachine/translate"
)

var f = translate.From

var (
	ErrInstructionUnsupported = errors.New(f("unsupported instruction"))
	ErrTranslationMismatch    = errors.New(f("translation mismatch"))
	ErrRegisterUnmapped       = errors.New(f("register has no target"))
	ErrScratchRegister        = errors.New(f("operand uses the scratch register"))
)

// ErrTranslate locates a failure to fetch or translate a word.
type ErrTranslate struct {
	Pc    uint32
	Word  uint32
	State State // State that failed.
	Err   error
}

func (err *ErrTranslate) Error() string {
	return f("0x%08x: word 0x%08x: %v: %v", err.Pc, err.Word, err.State, err.Err)
}

func (err *ErrTranslate) Unwrap() error {
	return err.Err
}
