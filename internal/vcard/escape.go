// Package vcard builds vCard 3.0 documents from contact form fields.
package vcard

import "strings"

// escaper applies the vCard text-value escapes. The backslash rule comes first
// so escapes introduced by later rules are not escaped twice; strings.Replacer
// scans left to right without rescanning output, so a single pass is safe.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
	",", `\,`,
	";", `\;`,
)

var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\n`, "\n",
	`\N`, "\n",
	`\,`, ",",
	`\;`, ";",
)

// Escape escapes backslash, line breaks, comma and semicolon in a vCard text value.
// Any of "\r\n", "\n" or "\r" becomes the two-character sequence `\n`.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return escaper.Replace(text)
}

// Unescape reverses Escape. Line breaks come back as "\n".
func Unescape(text string) string {
	if text == "" {
		return ""
	}
	return unescaper.Replace(text)
}
