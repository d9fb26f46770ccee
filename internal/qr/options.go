package qr

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/jonathan/contact-qr/internal/capacity"
)

// Size bounds in pixels.
const (
	MinSize     = 128
	MaxSize     = 1024
	DefaultSize = 320
)

// Default colors.
const (
	DefaultDark  = "#000000"
	DefaultLight = "#ffffff"
)

// Options controls how a payload is drawn.
type Options struct {
	Size  int            `json:"size,omitempty" yaml:"size,omitempty"`
	Dark  string         `json:"dark,omitempty" yaml:"dark,omitempty"`
	Light string         `json:"light,omitempty" yaml:"light,omitempty"`
	Level capacity.Level `json:"level" yaml:"level"`
}

// DefaultOptions returns a 320px black-on-white code at level M.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Dark: DefaultDark, Light: DefaultLight, Level: capacity.M}
}

// Normalized fills in defaults and clamps Size.
func (o Options) Normalized() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	o.Size = min(max(o.Size, MinSize), MaxSize)
	if strings.TrimSpace(o.Dark) == "" {
		o.Dark = DefaultDark
	}
	if strings.TrimSpace(o.Light) == "" {
		o.Light = DefaultLight
	}
	if !o.Level.Valid() {
		o.Level = capacity.M
	}
	return o
}

// ParseColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return color.RGBA{}, &ColorError{Value: s}
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, &ColorError{Value: s}
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, &ColorError{Value: s}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
