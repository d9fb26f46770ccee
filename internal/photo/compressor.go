// Package photo re-encodes contact photos into size-bounded JPEG data URLs.
package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoding
	"image/jpeg"
	_ "image/png" // register PNG decoding
	"math"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/image/draw"
)

var log = logging.Logger("photo")

// Dimension and quality bounds accepted by Reencode.
const (
	MinDimension   = 64
	MaxDimension   = 1024
	MinQuality     = 0.4
	MaxQuality     = 0.95
	DefaultQuality = 0.8
	DefaultMaxDim  = 512
)

// Compressor re-encodes an image so its longer side is at most maxDimension.
// Output size grows with both maxDimension and quality, though not strictly.
type Compressor interface {
	Reencode(ctx context.Context, src []byte, maxDimension int, quality float64) (string, error)
}

// JPEGCompressor decodes PNG, JPEG or GIF input and produces a JPEG data URL.
type JPEGCompressor struct {
	// Scaler resamples the image; CatmullRom when nil.
	Scaler draw.Scaler
	// Background fills transparent areas, which JPEG cannot carry; white when nil.
	Background color.Color
}

// NewJPEGCompressor returns a compressor with default resampling.
func NewJPEGCompressor() *JPEGCompressor {
	return &JPEGCompressor{}
}

// Reencode scales src so its longer side is at most maxDimension, never
// upscaling, and encodes it as JPEG at the clamped quality.
func (c *JPEGCompressor) Reencode(ctx context.Context, src []byte, maxDimension int, quality float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	maxDimension = ClampDimension(maxDimension)
	quality = ClampQuality(quality)

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return "", &ReencodeError{MaxDimension: maxDimension, Quality: quality, Message: "failed to decode source image", Cause: err}
	}

	bounds := img.Bounds()
	width, height := ScaledSize(bounds.Dx(), bounds.Dy(), maxDimension)
	if width == 0 || height == 0 {
		return "", &ReencodeError{MaxDimension: maxDimension, Quality: quality, Message: "source image is empty"}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := c.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	scaler := c.Scaler
	if scaler == nil {
		scaler = draw.CatmullRom
	}
	scaler.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return "", &ReencodeError{MaxDimension: maxDimension, Quality: quality, Message: "failed to encode JPEG", Cause: err}
	}

	log.Debugf("re-encoded %s %dx%d -> %dx%d at q=%.2f: %d bytes",
		format, bounds.Dx(), bounds.Dy(), width, height, quality, buf.Len())

	return EncodeDataURL("image/jpeg", buf.Bytes()), nil
}

// ScaledSize returns the output size for a width x height image whose longer
// side must not exceed maxDimension. The scale factor is capped at 1.
func ScaledSize(width, height, maxDimension int) (int, int) {
	longer := max(width, height)
	if longer <= 0 {
		return 0, 0
	}
	scale := math.Min(1, float64(maxDimension)/float64(longer))
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// ClampDimension bounds d to [MinDimension, MaxDimension].
func ClampDimension(d int) int {
	return min(MaxDimension, max(MinDimension, d))
}

// ClampQuality bounds q to [MinQuality, MaxQuality]; zero means DefaultQuality.
func ClampQuality(q float64) float64 {
	if q == 0 || math.IsNaN(q) {
		q = DefaultQuality
	}
	return math.Min(MaxQuality, math.Max(MinQuality, q))
}

func jpegQuality(q float64) int {
	return int(math.Round(q * 100))
}
