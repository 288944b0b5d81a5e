package vm

import (
	"errors"

	"github.com/ezrec/vmachine/translate"
)

var f = translate.From

var (
	ErrConfigValue   = errors.New(f("invalid configuration value"))
	ErrFormatUnknown = errors.New(f("unknown program image format"))
	ErrHexWord       = errors.New(f("not a 32-bit hex word"))
	ErrStarted       = errors.New(f("virtual machine already started"))
	ErrNotStarted    = errors.New(f("virtual machine not started"))
)

// ErrConfig names the configuration field that failed validation.
type ErrConfig struct {
	Field string
	Err   error
}

func (err *ErrConfig) Error() string {
	return f("config %v: %v", err.Field, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}

// ErrLoad indicates where a program image failed to load.
type ErrLoad struct {
	Filename string
	LineNo   int // Zero if the format has no lines.
	Err      error
}

func (err *ErrLoad) Error() string {
	if err.LineNo == 0 {
		return f("%v: %v", err.Filename, err.Err)
	}
	return f("%v:%d: %v", err.Filename, err.LineNo, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
