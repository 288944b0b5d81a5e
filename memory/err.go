package memory

import (
	"errors"

	"github.com/ezrec/vmachine/translate"
)

var f = translate.From

var (
	ErrAddressRange = errors.New(f("address out of range"))
	ErrImageEmpty   = errors.New(f("image empty"))
)

// ErrOutOfBounds reports an access outside of the memory array.
type ErrOutOfBounds struct {
	Address  uint32
	Capacity uint32
}

func (err *ErrOutOfBounds) Error() string {
	return f("address 0x%08x outside of %d words", err.Address, err.Capacity)
}

func (err *ErrOutOfBounds) Is(target error) bool {
	return target == ErrAddressRange
}
