// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	govcard "github.com/emersion/go-vcard"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/payload"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintPayload summarizes a composed QR payload and how close it is to the
// capacity of its level.
func (p *Printer) PrintPayload(pl *payload.Payload) {
	if pl == nil {
		return
	}

	var sb strings.Builder
	limit := capacity.CapacityOf(pl.Level)
	sb.WriteString(fmt.Sprintf("Kind:      %s\n", pl.Kind))
	sb.WriteString(fmt.Sprintf("Size:      %d bytes\n", pl.Len()))
	if pl.Downgraded {
		sb.WriteString(fmt.Sprintf("Level:     %s (requested %s)\n", pl.Level, pl.Requested))
	} else {
		sb.WriteString(fmt.Sprintf("Level:     %s\n", pl.Level))
	}
	sb.WriteString(fmt.Sprintf("Capacity:  %d bytes (%d free)", limit, limit-pl.Len()))

	p.printBox("QR PAYLOAD", sb.String())
	p.PrintFitResult(pl.Fit)
}

// PrintFitResult outputs the outcome of a photo fit search.
func (p *Printer) PrintFitResult(res *fitsearch.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	switch {
	case res.Fitted && !res.Recompressed:
		sb.WriteString("Photo already fit; nothing re-encoded\n")
	case res.Fitted:
		sb.WriteString("Photo re-encoded to fit\n")
	default:
		sb.WriteString("No candidate fit; last probe kept\n")
	}
	sb.WriteString(fmt.Sprintf("Level:       %s\n", res.Level))
	sb.WriteString(fmt.Sprintf("Dimension:   %dpx\n", res.Candidate.MaxDimension))
	sb.WriteString(fmt.Sprintf("Quality:     %.2f\n", res.Candidate.Quality))
	sb.WriteString(fmt.Sprintf("Probes:      %d\n", res.Evaluated))
	sb.WriteString(fmt.Sprintf("Card size:   %d bytes", res.Document.Len()))

	p.printBox("PHOTO FIT SEARCH", sb.String())
}

// PrintCard outputs the properties of a decoded vCard.
func (p *Printer) PrintCard(card govcard.Card) {
	if len(card) == 0 {
		return
	}

	var sb strings.Builder
	if v := card.PreferredValue(govcard.FieldFormattedName); v != "" {
		sb.WriteString(fmt.Sprintf("Name:      %s\n", v))
	}
	if n := card.Name(); n != nil && (n.GivenName != "" || n.FamilyName != "") {
		sb.WriteString(fmt.Sprintf("  given:   %s\n", n.GivenName))
		sb.WriteString(fmt.Sprintf("  family:  %s\n", n.FamilyName))
	}
	for _, row := range []struct{ label, key string }{
		{"Org:       ", govcard.FieldOrganization},
		{"Title:     ", govcard.FieldTitle},
		{"URL:       ", govcard.FieldURL},
	} {
		if v := card.Value(row.key); v != "" {
			sb.WriteString(row.label + v + "\n")
		}
	}

	writeList(&sb, "Phones", card[govcard.FieldTelephone])
	writeList(&sb, "Emails", card[govcard.FieldEmail])

	for _, addr := range card.Addresses() {
		parts := []string{addr.StreetAddress, addr.Locality, addr.Region, addr.PostalCode, addr.Country}
		sb.WriteString(fmt.Sprintf("Address:   %s\n", joinNonBlank(parts)))
	}
	if v := card.Value(govcard.FieldNote); v != "" {
		sb.WriteString(fmt.Sprintf("Note:      %d chars\n", utf8.RuneCountInString(v)))
	}
	if f := card.Get(govcard.FieldPhoto); f != nil {
		sb.WriteString(fmt.Sprintf("Photo:     %s, %d base64 chars\n", f.Params.Get(govcard.ParamType), len(f.Value)))
	}

	p.printBox("VCARD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecoded outputs text read back from a QR image.
func (p *Printer) PrintDecoded(source, text string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:    %s\n", source))
	sb.WriteString(fmt.Sprintf("Size:      %d bytes\n", len(text)))
	sb.WriteString(fmt.Sprintf("Fits:      %s", fittingLevels(len(text))))

	p.printBox("DECODED QR", sb.String())
}

func writeList(sb *strings.Builder, label string, fields []*govcard.Field) {
	if len(fields) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(fields), maxItemsToShow)
	for _, f := range fields[:count] {
		if types := f.Params.Types(); len(types) > 0 {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", f.Value, strings.ToLower(strings.Join(types, ", "))))
		} else {
			sb.WriteString(fmt.Sprintf("  • %s\n", f.Value))
		}
	}
	if len(fields) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(fields)-maxItemsToShow))
	}
}

// fittingLevels lists the levels, strongest first, whose capacity holds n bytes.
func fittingLevels(n int) string {
	var fits []string
	for _, level := range capacity.Levels() {
		if capacity.Fits(level, n) {
			fits = append(fits, level.String())
		}
	}
	if len(fits) == 0 {
		return "none"
	}
	return strings.Join(fits, " ")
}

func joinNonBlank(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}
