package bus

import (
	"github.com/mc680x/trainer/translate"
)

var f = translate.From

// ErrImageBounds indicates a boot image that runs past the end of the
// memory space.
type ErrImageBounds struct {
	Base uint16
	Size int
}

func (err *ErrImageBounds) Error() string {
	return f("image at 0x%04X size %d exceeds memory", err.Base, err.Size)
}
