package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	govcard "github.com/emersion/go-vcard"
	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/config"
	"github.com/jonathan/contact-qr/internal/observability"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/validation"
	"github.com/jonathan/contact-qr/internal/vcard"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write a vCard 3.0 file from a contact JSON file",
	Long: `Reads a contact JSON file, validates it and writes the full vCard,
including the photo when includePhotoInVcf is set or --photo is given.

Example:
  contact_qr build --contact jane.json --output jane.vcf
  contact_qr build --contact jane.json --photo jane.jpg`,
	RunE: runBuild,
}

var (
	buildContact string
	buildOutput  string
	buildPhoto   string
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildContact, "contact", "i", "", "Path to contact JSON file (required)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output .vcf path (default: stdout)")
	buildCmd.Flags().StringVar(&buildPhoto, "photo", "", "Image file or URL to embed as the contact photo")

	if err := buildCmd.MarkFlagRequired("contact"); err != nil {
		panic(fmt.Sprintf("failed to mark contact flag as required: %v", err))
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	doc, err := buildDocument(cmd.Context(), settings, buildContact, buildPhoto, photo.NewJPEGCompressor())
	if err != nil {
		return err
	}

	if buildOutput == "" || buildOutput == "-" {
		_, err = cmd.OutOrStdout().Write(doc.Bytes())
		return err
	}
	if err := vcard.WriteFile(buildOutput, doc); err != nil {
		return err
	}

	if verbose {
		card, err := govcard.NewDecoder(strings.NewReader(doc.String())).Decode()
		if err != nil {
			return fmt.Errorf("failed to re-read vCard: %w", err)
		}
		observability.NewPrinter(os.Stderr).PrintCard(card)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", buildOutput, doc.Len())
	return nil
}

// buildDocument reads and validates a contact and serializes it. A photo file,
// when given, replaces any photo in the JSON and is always embedded.
func buildDocument(ctx context.Context, cfg *config.Config, contactPath, photoPath string, c photo.Compressor) (vcard.Document, error) {
	fields, err := readContact(contactPath)
	if err != nil {
		return vcard.Document{}, err
	}

	if photoPath != "" {
		_, dataURL, err := loadPhoto(ctx, photoPath, cfg.PhotoSettings(), c)
		if err != nil {
			return vcard.Document{}, err
		}
		fields = fields.WithPhoto(dataURL)
	}

	if err := validation.ValidateContact(fields, false, ""); err != nil {
		return vcard.Document{}, err
	}
	return vcard.Build(fields), nil
}
