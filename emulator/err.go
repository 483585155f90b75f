package emulator

import (
	"github.com/mc680x/trainer/translate"
)

var f = translate.From

// ErrLoad indicates a boot image that could not be placed in memory.
type ErrLoad struct {
	Base uint16
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("image at 0x%04X: %v", err.Base, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
