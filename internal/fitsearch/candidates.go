package fitsearch

import (
	"math"
	"slices"

	"github.com/jonathan/contact-qr/internal/photo"
)

// Candidate is one (max dimension, JPEG quality) pair to re-encode a photo with.
type Candidate struct {
	MaxDimension int     `json:"maxDimension"`
	Quality      float64 `json:"quality"`
}

// DefaultCandidate is the starting point for a new session.
var DefaultCandidate = Candidate{MaxDimension: photo.DefaultMaxDim, Quality: photo.DefaultQuality}

// Clamped returns c with both values inside the legal ranges.
func (c Candidate) Clamped() Candidate {
	return Candidate{
		MaxDimension: photo.ClampDimension(c.MaxDimension),
		Quality:      roundQuality(photo.ClampQuality(c.Quality)),
	}
}

// commonDimensions are the fixed sizes tried after the relative steps.
var commonDimensions = []int{512, 448, 384, 352, 320, 288, 256, 224, 192, 160, 144, 128, 96, 80, 64}

// fixedQualities are the fixed qualities tried after the relative steps.
var fixedQualities = []float64{0.6, 0.55, 0.5, 0.45, 0.4}

// MaxProbes bounds the number of re-encodes any single search performs.
var MaxProbes = (3 + len(commonDimensions)) * (3 + len(fixedQualities))

// Candidates returns the dimension and quality ladders explored from start.
// Both are deduplicated, limited to the legal ranges and to values no larger
// than start, and ordered largest first. start itself always leads.
func Candidates(start Candidate) (dimensions []int, qualities []float64) {
	start = start.Clamped()

	dims := []int{
		start.MaxDimension,
		int(math.Round(float64(start.MaxDimension) * 0.85)),
		int(math.Round(float64(start.MaxDimension) * 0.7)),
	}
	dims = append(dims, commonDimensions...)
	for _, d := range dims {
		if d < photo.MinDimension || d > start.MaxDimension {
			continue
		}
		if !slices.Contains(dimensions, d) {
			dimensions = append(dimensions, d)
		}
	}
	slices.SortFunc(dimensions, func(a, b int) int { return b - a })

	qs := []float64{
		start.Quality,
		math.Max(0.75, start.Quality-0.1),
		math.Max(0.65, start.Quality-0.2),
	}
	qs = append(qs, fixedQualities...)
	for _, q := range qs {
		q = roundQuality(q)
		if q < photo.MinQuality || q > start.Quality {
			continue
		}
		if !slices.Contains(qualities, q) {
			qualities = append(qualities, q)
		}
	}
	slices.SortFunc(qualities, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	})

	return dimensions, qualities
}

// roundQuality keeps qualities on a 0.01 grid so float noise from the
// relative steps does not defeat deduplication.
func roundQuality(q float64) float64 {
	return math.Round(q*100) / 100
}
