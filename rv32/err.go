package rv32

import (
	"errors"

	"github.com/ezrec/vmachine/translate"
)

var f = translate.From

var (
	ErrMnemonicUnknown = errors.New(f("unknown mnemonic"))
	ErrImmediateRange  = errors.New(f("immediate out of range"))
	ErrImmediateAlign  = errors.New(f("immediate not aligned"))
)

// ErrImmediate reports an immediate that the instruction cannot encode.
type ErrImmediate struct {
	Mnemonic string
	Value    int64
	Err      error
}

func (err *ErrImmediate) Error() string {
	return f("%v: %d %v", err.Mnemonic, err.Value, err.Err)
}

func (err *ErrImmediate) Unwrap() error {
	return err.Err
}
