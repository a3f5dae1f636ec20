package memory

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is wrapped by every address boundary violation.
var ErrOutOfRange = errors.New("address out of range")

// ErrUncorrectable is returned when an ECC-protected read finds more errors
// than the code can correct.
var ErrUncorrectable = errors.New("uncorrectable ECC error")

// A BoundaryError reports an access outside [0, Depth).
type BoundaryError struct {
	Op      string
	Address int64
	Depth   uint64
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%s address %s out of range [0x0, 0x%X]",
		e.Op, formatAddress(e.Address), e.Depth-1)
}

// Unwrap lets errors.Is match ErrOutOfRange.
func (e *BoundaryError) Unwrap() error {
	return ErrOutOfRange
}

func formatAddress(addr int64) string {
	if addr < 0 {
		return fmt.Sprintf("-0x%X", uint64(-addr))
	}

	return fmt.Sprintf("0x%X", addr)
}
