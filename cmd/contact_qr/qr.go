package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/config"
	"github.com/jonathan/contact-qr/internal/fetch"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/observability"
	"github.com/jonathan/contact-qr/internal/payload"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/qr"
	"github.com/jonathan/contact-qr/internal/validation"
	"github.com/jonathan/contact-qr/internal/vcard"
)

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Render a contact as a QR code PNG",
	Long: `Composes the QR payload for a contact and renders it as a PNG.

An embedded photo is shrunk until the card fits the requested level. If it
still does not fit, the level is weakened (H, Q, M, L) unless --no-downgrade
is set. With --hosted-url the code encodes that link instead of the card.

Example:
  contact_qr qr --contact jane.json --output jane.png --level Q
  contact_qr qr --contact jane.json --photo jane.jpg --embed-photo`,
	RunE: runQR,
}

var (
	qrContact     string
	qrOutput      string
	qrPhoto       string
	qrLevel       string
	qrSize        int
	qrDark        string
	qrLight       string
	qrEmbedPhoto  bool
	qrMaxDim      int
	qrQuality     float64
	qrHostedURL   string
	qrNoDowngrade bool
	qrNoCompress  bool
	qrVerify      bool
)

func init() {
	rootCmd.AddCommand(qrCmd)

	qrCmd.Flags().StringVarP(&qrContact, "contact", "i", "", "Path to contact JSON file (required)")
	qrCmd.Flags().StringVarP(&qrOutput, "output", "o", "", "Output PNG path (default: <name>.png)")
	qrCmd.Flags().StringVar(&qrPhoto, "photo", "", "Image file or URL to use as the contact photo")
	qrCmd.Flags().StringVarP(&qrLevel, "level", "l", "", "Error-correction level: L, M, Q or H")
	qrCmd.Flags().IntVar(&qrSize, "size", 0, "PNG size in pixels")
	qrCmd.Flags().StringVar(&qrDark, "dark", "", "Module color (#rrggbb)")
	qrCmd.Flags().StringVar(&qrLight, "light", "", "Background color (#rrggbb)")
	qrCmd.Flags().BoolVar(&qrEmbedPhoto, "embed-photo", false, "Embed the photo in the QR payload")
	qrCmd.Flags().IntVar(&qrMaxDim, "max-dim", 0, "Starting photo max dimension in pixels")
	qrCmd.Flags().Float64Var(&qrQuality, "quality", 0, "Starting JPEG quality (0.4-0.95)")
	qrCmd.Flags().StringVar(&qrHostedURL, "hosted-url", "", "Encode this link to a hosted .vcf instead of the card")
	qrCmd.Flags().BoolVar(&qrNoDowngrade, "no-downgrade", false, "Fail instead of weakening the error-correction level")
	qrCmd.Flags().BoolVar(&qrNoCompress, "no-compress", false, "Do not shrink the embedded photo to fit")
	qrCmd.Flags().BoolVar(&qrVerify, "verify-hosted", false, "Check that --hosted-url serves a vCard before encoding it")

	if err := qrCmd.MarkFlagRequired("contact"); err != nil {
		panic(fmt.Sprintf("failed to mark contact flag as required: %v", err))
	}
}

// qrOptions holds one qr invocation. Zero values fall back to settings.
type qrOptions struct {
	ContactPath  string
	PhotoPath    string
	OutputPath   string
	Level        string
	Size         int
	Dark         string
	Light        string
	EmbedPhoto   *bool
	MaxDimension int
	Quality      float64
	HostedURL    string
	NoDowngrade  bool
	NoCompress   bool
	VerifyHosted bool
}

func runQR(cmd *cobra.Command, _ []string) error {
	opts := qrOptions{
		ContactPath:  qrContact,
		PhotoPath:    qrPhoto,
		OutputPath:   qrOutput,
		Level:        qrLevel,
		Size:         qrSize,
		Dark:         qrDark,
		Light:        qrLight,
		MaxDimension: qrMaxDim,
		Quality:      qrQuality,
		HostedURL:    qrHostedURL,
		NoDowngrade:  qrNoDowngrade,
		NoCompress:   qrNoCompress,
		VerifyHosted: qrVerify,
	}
	if cmd.Flags().Changed("embed-photo") {
		opts.EmbedPhoto = &qrEmbedPhoto
	}

	p, path, err := makeQR(cmd.Context(), settings, opts, photo.NewJPEGCompressor(), qr.NewRenderer())
	if err != nil {
		return err
	}

	if verbose {
		observability.NewPrinter(os.Stderr).PrintPayload(p)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s payload, %d bytes, level %s)\n", path, p.Kind, p.Len(), p.Level)
	if p.Downgraded {
		fmt.Fprintf(cmd.ErrOrStderr(), "Level lowered from %s to %s to fit\n", p.Requested, p.Level)
	}
	return nil
}

// makeQR composes the payload, renders it and writes the PNG. It returns the
// payload and the path written.
func makeQR(ctx context.Context, cfg *config.Config, opts qrOptions, c photo.Compressor, r qr.Renderer) (*payload.Payload, string, error) {
	fields, err := readContact(opts.ContactPath)
	if err != nil {
		return nil, "", err
	}

	features := cfg.Features()
	if opts.NoDowngrade {
		features.AutoDowngrade = false
	}
	if opts.NoCompress {
		features.AutoCompress = false
	}

	useHosted := strings.TrimSpace(opts.HostedURL) != ""
	if err := validation.ValidateContact(fields, useHosted && features.HostedURL, opts.HostedURL); err != nil {
		return nil, "", err
	}

	if useHosted && opts.VerifyHosted {
		if _, err := fetch.HostedCard(ctx, strings.TrimSpace(opts.HostedURL), nil); err != nil {
			return nil, "", err
		}
	}

	level := cfg.RequestedLevel()
	if opts.Level != "" {
		if level, err = capacity.ParseLevel(opts.Level); err != nil {
			return nil, "", err
		}
	}
	embed := cfg.EmbedsPhoto()
	if opts.EmbedPhoto != nil {
		embed = *opts.EmbedPhoto
	}

	session, err := photoSession(ctx, cfg, opts, fields, c)
	if err != nil {
		return nil, "", err
	}

	composer := payload.NewComposer(features, fitsearch.NewEngine(c))
	p, err := composer.Compose(ctx, session, payload.Request{
		Fields:         fields,
		Level:          level,
		EmbedPhotoInQR: embed,
		UseHostedURL:   useHosted,
		HostedURL:      opts.HostedURL,
	})
	if err != nil {
		return nil, "", err
	}

	renderOpts := cfg.QROptions()
	renderOpts.Level = p.Level
	if opts.Size != 0 {
		renderOpts.Size = opts.Size
	}
	if opts.Dark != "" {
		renderOpts.Dark = opts.Dark
	}
	if opts.Light != "" {
		renderOpts.Light = opts.Light
	}
	png, err := r.Render(ctx, p.Text, renderOpts)
	if err != nil {
		return nil, "", err
	}

	path := opts.OutputPath
	if path == "" {
		path = vcard.FileName(fileBase(fields), ".png")
	}
	if err := writeFile(path, png); err != nil {
		return nil, "", err
	}
	log.Debugf("wrote %s: %d byte PNG for %d byte payload", path, len(png), p.Len())
	return p, path, nil
}

// photoSession seeds a session from the photo file or, failing that, from the
// contact's own photo.
func photoSession(ctx context.Context, cfg *config.Config, opts qrOptions, fields vcard.ContactFields, c photo.Compressor) (*fitsearch.Session, error) {
	start := cfg.PhotoSettings()
	if opts.MaxDimension != 0 {
		start.MaxDimension = opts.MaxDimension
	}
	if opts.Quality != 0 {
		start.Quality = opts.Quality
	}
	start = start.Clamped()

	session := fitsearch.NewSession()
	switch {
	case opts.PhotoPath != "":
		src, dataURL, err := loadPhoto(ctx, opts.PhotoPath, start, c)
		if err != nil {
			return nil, err
		}
		session.SetPhoto(src, dataURL, start)
	case fields.HasPhoto():
		_, src, err := photo.DecodeDataURL(fields.PhotoDataURL)
		if err != nil {
			return nil, err
		}
		session.SetPhoto(src, fields.PhotoDataURL, start)
	}
	return session, nil
}

// fileBase derives an output file name from the contact's names.
func fileBase(fields vcard.ContactFields) string {
	name := strings.TrimSpace(fields.DisplayName)
	if name == "" {
		name = strings.TrimSpace(fields.FirstName + " " + fields.LastName)
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '_'
		}
		return -1
	}, name)
	return strings.Trim(name, "_")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
