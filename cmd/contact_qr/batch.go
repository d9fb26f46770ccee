package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/contact-qr/internal/config"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/payload"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/qr"
	"github.com/jonathan/contact-qr/internal/schemas"
	"github.com/jonathan/contact-qr/internal/validation"
	"github.com/jonathan/contact-qr/internal/vcard"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Build vCards and QR codes for a list of contacts",
	Long: `Reads a JSON array of contacts and writes one .vcf per contact, plus a
QR code PNG with --qr. Contacts are processed concurrently; a contact that
fails is reported and the rest continue.

Example:
  contact_qr batch --input team.json --output-dir cards --qr --workers 8`,
	RunE: runBatch,
}

var (
	batchInput   string
	batchOutDir  string
	batchQR      bool
	batchWorkers int
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "Path to JSON array of contacts (required)")
	batchCmd.Flags().StringVarP(&batchOutDir, "output-dir", "o", "", "Output directory (default from config)")
	batchCmd.Flags().BoolVar(&batchQR, "qr", false, "Also render a QR code PNG per contact")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Contacts processed at once (default from config)")

	if err := batchCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}
}

// batchItem is the outcome for one contact.
type batchItem struct {
	Index int
	Files []string
	Err   error
}

// batchReport lists every contact's outcome in input order.
type batchReport struct {
	Items []batchItem
}

// Failed counts contacts that produced an error.
func (r *batchReport) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

func runBatch(cmd *cobra.Command, _ []string) error {
	outDir := batchOutDir
	if outDir == "" {
		outDir = settings.OutputDir
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = settings.Workers
	}

	report, err := runBatchFile(cmd.Context(), settings, batchInput, outDir, batchQR, workers)
	if err != nil {
		return err
	}

	for _, item := range report.Items {
		if item.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "contact %d: %v\n", item.Index+1, item.Err)
			continue
		}
		for _, f := range item.Files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d contacts failed", failed, len(report.Items))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d contacts into %s\n", len(report.Items), outDir)
	return nil
}

// runBatchFile processes every contact in the input file with at most workers
// running at once. Per-contact failures are recorded in the report; the error
// return is for problems with the input itself or cancellation.
func runBatchFile(ctx context.Context, cfg *config.Config, inputPath, outDir string, withQR bool, workers int) (*batchReport, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch input: %w", err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("batch input must be a JSON array of contacts: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if workers <= 0 {
		workers = config.DefaultWorkers
	}
	compressor := photo.NewJPEGCompressor()
	composer := payload.NewComposer(cfg.Features(), fitsearch.NewEngine(compressor))
	renderer := qr.NewRenderer()

	report := &batchReport{Items: make([]batchItem, len(raw))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, contact := range raw {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, err := batchContact(gctx, cfg, composer, renderer, contact, i, outDir, withQR)
			mu.Lock()
			report.Items[i] = batchItem{Index: i, Files: files, Err: err}
			mu.Unlock()
			if err != nil {
				log.Warnf("contact %d failed: %v", i+1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func batchContact(ctx context.Context, cfg *config.Config, composer *payload.Composer, renderer qr.Renderer, contact json.RawMessage, i int, outDir string, withQR bool) ([]string, error) {
	if err := schemas.ValidateContactJSON(contact); err != nil {
		return nil, err
	}
	var fields vcard.ContactFields
	if err := json.Unmarshal(contact, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact: %w", err)
	}
	if err := validation.ValidateContact(fields, false, ""); err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%03d", i+1)
	if name := fileBase(fields); name != "" {
		base += "-" + name
	}

	vcfPath := filepath.Join(outDir, base+".vcf")
	if err := vcard.WriteFile(vcfPath, vcard.Build(fields)); err != nil {
		return nil, err
	}
	files := []string{vcfPath}
	if !withQR {
		return files, nil
	}

	session := fitsearch.NewSession()
	if fields.HasPhoto() {
		_, src, err := photo.DecodeDataURL(fields.PhotoDataURL)
		if err != nil {
			return files, err
		}
		session.SetPhoto(src, fields.PhotoDataURL, cfg.PhotoSettings())
	}
	p, err := composer.Compose(ctx, session, payload.Request{
		Fields:         fields,
		Level:          cfg.RequestedLevel(),
		EmbedPhotoInQR: cfg.EmbedsPhoto(),
	})
	if err != nil {
		return files, err
	}

	opts := cfg.QROptions()
	opts.Level = p.Level
	png, err := renderer.Render(ctx, p.Text, opts)
	if err != nil {
		return files, err
	}
	pngPath := filepath.Join(outDir, base+".png")
	if err := writeFile(pngPath, png); err != nil {
		return files, err
	}
	return append(files, pngPath), nil
}
