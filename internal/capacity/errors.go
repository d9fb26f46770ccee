package capacity

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded matches every *CapacityExceededError with errors.Is.
var ErrCapacityExceeded = errors.New("QR payload exceeds capacity")

// CapacityExceededError reports a payload too large for the requested level
// and for every weaker level the caller allowed.
type CapacityExceededError struct {
	Requested Level
	Length    int
	Capacity  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("QR payload too large for level %s (%d bytes, capacity %d). Consider reducing image size/quality or disabling embedding.",
		e.Requested, e.Length, e.Capacity)
}

// Is makes errors.Is(err, ErrCapacityExceeded) hold.
func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// ParseError is returned when a level name cannot be parsed.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return "invalid error-correction level: " + e.Value
}
