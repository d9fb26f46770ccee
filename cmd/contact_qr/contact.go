package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/contact-qr/internal/fetch"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/schemas"
	"github.com/jonathan/contact-qr/internal/vcard"
)

// readContact loads a contact JSON file after checking it against the schema.
func readContact(path string) (vcard.ContactFields, error) {
	var fields vcard.ContactFields
	if err := schemas.ValidateContactFile(path); err != nil {
		return fields, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fields, fmt.Errorf("failed to read contact file: %w", err)
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fields, fmt.Errorf("failed to unmarshal contact JSON: %w", err)
	}
	return fields, nil
}

// loadPhoto reads an image file or URL and encodes it at the starting
// candidate, the way a freshly selected photo is prepared before any fitting.
func loadPhoto(ctx context.Context, path string, start fitsearch.Candidate, c photo.Compressor) ([]byte, string, error) {
	src, err := readPhoto(ctx, path)
	if err != nil {
		return nil, "", err
	}
	if _, err := photo.FileDataURL(src); err != nil {
		return nil, "", fmt.Errorf("photo %s: %w", path, err)
	}

	start = start.Clamped()
	dataURL, err := c.Reencode(ctx, src, start.MaxDimension, start.Quality)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode photo: %w", err)
	}
	log.Debugf("loaded photo %s: %d bytes in, %d chars out", path, len(src), len(dataURL))
	return src, dataURL, nil
}

func readPhoto(ctx context.Context, path string) ([]byte, error) {
	if fetch.IsURL(path) {
		return fetch.Photo(ctx, path, nil)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return src, nil
}
