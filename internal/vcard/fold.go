package vcard

import "strings"

const (
	// MaxLineLength is the longest a physical vCard line may be before folding.
	MaxLineLength = 75

	// continuationPrefix starts every folded continuation line.
	continuationPrefix = " "
)

// FoldLine splits a content line into physical lines. The first line holds up to
// MaxLineLength characters; each continuation holds up to MaxLineLength-1
// characters after its leading space. Lines that already fit are returned as is.
//
// Lengths are counted in bytes. Photo lines are pure base64 so this matches the
// character count for every line that is actually folded in practice.
func FoldLine(line string) []string {
	if len(line) <= MaxLineLength {
		return []string{line}
	}

	parts := make([]string, 0, len(line)/(MaxLineLength-1)+1)
	parts = append(parts, line[:MaxLineLength])
	for i := MaxLineLength; i < len(line); i += MaxLineLength - 1 {
		end := min(i+MaxLineLength-1, len(line))
		parts = append(parts, continuationPrefix+line[i:end])
	}
	return parts
}

// UnfoldLines joins physical lines back into content lines by appending every
// continuation line (one starting with a space) to the line before it.
func UnfoldLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(l, continuationPrefix) && len(out) > 0 {
			out[len(out)-1] += strings.TrimPrefix(l, continuationPrefix)
			continue
		}
		out = append(out, l)
	}
	return out
}
