// Package capacity maps QR error-correction levels to payload byte budgets and
// picks the level a payload should be rendered at.
package capacity

import (
	"encoding/json"
	"strings"
)

// Level is a QR error-correction level.
//
// The zero value is M, the level used when none is chosen.
type Level int

const (
	// M recovers roughly 15% of the symbol.
	M Level = iota
	// L recovers roughly 7% of the symbol.
	L
	// Q recovers roughly 25% of the symbol.
	Q
	// H recovers roughly 30% of the symbol.
	H
)

// String returns the single-letter name of the level.
func (l Level) String() string {
	switch l {
	case L:
		return "L"
	case M:
		return "M"
	case Q:
		return "Q"
	case H:
		return "H"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name. Matching is case-insensitive and ignores
// surrounding whitespace; an empty string yields M.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LOW":
		return L, nil
	case "", "M", "MEDIUM":
		return M, nil
	case "Q", "QUARTILE":
		return Q, nil
	case "H", "HIGH":
		return H, nil
	default:
		return M, &ParseError{Value: s}
	}
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l == L || l == M || l == Q || l == H
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, &ParseError{Value: l.String()}
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalJSON encodes the level as its letter.
func (l Level) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON accepts the level as a JSON string.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &ParseError{Value: string(data)}
	}
	return l.UnmarshalText([]byte(s))
}
