package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	govcard "github.com/emersion/go-vcard"
	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/fetch"
	"github.com/jonathan/contact-qr/internal/observability"
	"github.com/jonathan/contact-qr/internal/qr"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Summarize .vcf files and decode QR code images",
	Long: `Prints a summary of each vCard in a .vcf file. For .png and .jpg
files the QR code is decoded first; a decoded vCard is summarized too.
An http or https argument is fetched as a hosted .vcf.

Example:
  contact_qr inspect jane.vcf jane.png
  contact_qr inspect https://cards.example.com/cards/3f6c1a52.vcf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())
	for _, arg := range args {
		var err error
		if fetch.IsURL(arg) {
			err = inspectURL(cmd.Context(), arg, printer)
		} else {
			err = inspectFile(arg, printer)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func inspectURL(ctx context.Context, link string, printer *observability.Printer) error {
	text, err := fetch.HostedCard(ctx, link, nil)
	if err != nil {
		return err
	}
	return printCards(strings.NewReader(text), printer)
}

func inspectFile(path string, printer *observability.Printer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		text, err := qr.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		printer.PrintDecoded(filepath.Base(path), text)
		if strings.HasPrefix(text, "BEGIN:VCARD") {
			return printCards(strings.NewReader(text), printer)
		}
		return nil
	default:
		if err := printCards(strings.NewReader(string(data)), printer); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
}

// printCards prints every card in r; it fails when r holds none.
func printCards(r io.Reader, printer *observability.Printer) error {
	dec := govcard.NewDecoder(r)
	n := 0
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to parse vCard: %w", err)
		}
		printer.PrintCard(card)
		n++
	}
	if n == 0 {
		return fmt.Errorf("no vCard found")
	}
	return nil
}
