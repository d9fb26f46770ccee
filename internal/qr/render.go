// Package qr draws payloads as QR code PNGs and reads them back.
package qr

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg" // register JPEG decoding for Decode
	_ "image/png"  // register PNG decoding for Decode

	logging "github.com/ipfs/go-log/v2"
	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/jonathan/contact-qr/internal/capacity"
)

var log = logging.Logger("qr")

// Renderer draws text as a QR code PNG.
type Renderer interface {
	Render(ctx context.Context, text string, opts Options) ([]byte, error)
}

// GoQRCodeRenderer renders with github.com/skip2/go-qrcode.
type GoQRCodeRenderer struct {
	// DisableBorder drops the quiet zone around the symbol.
	DisableBorder bool
}

// NewRenderer returns the default renderer.
func NewRenderer() *GoQRCodeRenderer {
	return &GoQRCodeRenderer{}
}

// RecoveryLevel maps a capacity level onto the go-qrcode recovery level.
func RecoveryLevel(level capacity.Level) qrcode.RecoveryLevel {
	switch level {
	case capacity.L:
		return qrcode.Low
	case capacity.Q:
		return qrcode.High
	case capacity.H:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Render draws text with opts. Every failure is a *RenderError.
func (r *GoQRCodeRenderer) Render(ctx context.Context, text string, opts Options) ([]byte, error) {
	opts = opts.Normalized()
	fail := func(msg string, cause error) error {
		log.Warnf("render failed at level %s for %d bytes: %s", opts.Level, len(text), msg)
		return &RenderError{Level: opts.Level.String(), Length: len(text), Message: msg, Cause: cause}
	}

	if err := ctx.Err(); err != nil {
		return nil, fail("cancelled", err)
	}
	if text == "" {
		return nil, fail("empty payload", nil)
	}

	dark, err := ParseColor(opts.Dark)
	if err != nil {
		return nil, fail("bad dark color", err)
	}
	light, err := ParseColor(opts.Light)
	if err != nil {
		return nil, fail("bad light color", err)
	}

	code, err := qrcode.New(text, RecoveryLevel(opts.Level))
	if err != nil {
		return nil, fail("encode", err)
	}
	code.ForegroundColor = dark
	code.BackgroundColor = light
	code.DisableBorder = r.DisableBorder

	png, err := code.PNG(opts.Size)
	if err != nil {
		return nil, fail("png", err)
	}
	log.Debugf("rendered %d-byte payload at level %s, version %d, %dpx", len(text), opts.Level, code.VersionNumber, opts.Size)
	return png, nil
}

// Decode reads the text of the first QR code found in a PNG or JPEG image.
func Decode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errors.Join(ErrNoCode, err)
	}
	return DecodeImage(img)
}

// DecodeImage reads the text of the QR code in img.
func DecodeImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", errors.Join(ErrNoCode, err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", errors.Join(ErrNoCode, err)
	}
	return result.GetText(), nil
}
