package cache

import (
	"errors"

	"github.com/ezrec/vmachine/translate"
)

var f = translate.From

var (
	ErrLinesZero = errors.New(f("cache must have at least one line"))
)
