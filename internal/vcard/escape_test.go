package vcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape_EmptyString(t *testing.T) {
	assert.Equal(t, "", Escape(""))
}

func TestEscape_NoSpecialCharacters(t *testing.T) {
	text := "Plain text with no reserved characters"
	assert.Equal(t, text, Escape(text))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "backslash", input: `a\b`, expected: `a\\b`},
		{name: "comma", input: "a,b", expected: `a\,b`},
		{name: "semicolon", input: "a;b", expected: `a\;b`},
		{name: "LF", input: "a\nb", expected: `a\nb`},
		{name: "CRLF", input: "a\r\nb", expected: `a\nb`},
		{name: "CR", input: "a\rb", expected: `a\nb`},
		{name: "consecutive line breaks", input: "a\r\n\nb", expected: `a\n\nb`},
		{name: "backslash before n is not a line break", input: `a\nb`, expected: `a\\nb`},
		{name: "backslash before comma", input: `a\,b`, expected: `a\\\,b`},
		{name: "unicode passes through", input: "Zoë Åström", expected: "Zoë Åström"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escape(tt.input))
		})
	}
}

func TestEscape_Note(t *testing.T) {
	note := "Hello, \"world\"; see\nnext line"
	assert.Equal(t, `Hello\, "world"\; see\nnext line`, Escape(note))
}

func TestUnescape_RoundTrip(t *testing.T) {
	inputs := []string{
		`C:\path\to,file;name`,
		"line one\nline two",
		`\\,;;,,\`,
		"mixed \\n literal and\nreal break",
		"",
	}

	for _, in := range inputs {
		assert.Equal(t, in, Unescape(Escape(in)), "input %q", in)
	}
}

func TestUnescape_NormalizesLineBreaks(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Unescape(Escape("a\r\nb\rc")))
}
