package qr

import (
	"errors"
	"fmt"
)

// ErrNoCode is returned by Decode when the image holds no readable QR code.
var ErrNoCode = errors.New("no QR code found in image")

// RenderError is returned when a payload cannot be drawn as a QR code. The
// payload itself is unaffected; callers report it and carry on.
type RenderError struct {
	Level   string
	Length  int
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("QR render failed at level %s (%d bytes): %s", e.Level, e.Length, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ColorError is returned for a color that is not "#rgb" or "#rrggbb".
type ColorError struct {
	Value string
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("invalid color %q: expected #rgb or #rrggbb", e.Value)
}
