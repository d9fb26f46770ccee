package vcard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MIMEType is the content type used when a document is exported as a file.
const MIMEType = "text/vcard;charset=utf-8"

// DefaultFileBase is used when no file name is given.
const DefaultFileBase = "contact"

// FileName returns base+ext, falling back to DefaultFileBase when base is blank.
// ext is expected with its leading dot (".vcf", ".png").
func FileName(base, ext string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultFileBase
	}
	return base + ext
}

// WriteFile writes the document to path, creating parent directories as needed.
func WriteFile(path string, doc Document) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, doc.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write vCard file %s: %w", path, err)
	}
	return nil
}
