// Package fitsearch shrinks an embedded contact photo until the vCard fits the
// byte capacity of a QR error-correction level.
package fitsearch

import (
	"context"

	logging "github.com/ipfs/go-log/v2"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/metrics"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/vcard"
)

var log = logging.Logger("fitsearch")

// Result is the outcome of a search. When Fitted is false no candidate fit
// and Document holds the last document built.
type Result struct {
	Fitted       bool           `json:"fitted"`
	Document     vcard.Document `json:"-"`
	Level        capacity.Level `json:"level"`
	Candidate    Candidate      `json:"candidate"`
	Recompressed bool           `json:"recompressed"`
	Evaluated    int            `json:"evaluated"`
}

// Engine drives a Compressor through the candidate ladders.
type Engine struct {
	compressor photo.Compressor
}

// NewEngine returns an engine that re-encodes photos with c.
func NewEngine(c photo.Compressor) *Engine {
	return &Engine{compressor: c}
}

// Fit builds fields with the session photo embedded and, if the document is
// too large for level, re-encodes the photo over the candidate ladders until
// one fits. Dimensions form the outer loop and qualities the inner loop, both
// largest first; the first candidate that fits ends the search and becomes
// the session's settings. Probes run one at a time and each one replaces the
// session's current photo.
//
// A session that is already searching gets ErrSearchInProgress. Failing to
// re-encode a candidate skips it. Only context cancellation aborts a search.
func (e *Engine) Fit(ctx context.Context, s *Session, fields vcard.ContactFields, level capacity.Level) (*Result, error) {
	if !s.searching.CompareAndSwap(false, true) {
		metrics.FitSearches.WithLabelValues(metrics.OutcomeBusy).Inc()
		return nil, ErrSearchInProgress
	}
	defer s.searching.Store(false)

	res, err := e.fit(ctx, s, fields, level)
	switch {
	case err != nil:
		metrics.FitSearches.WithLabelValues(metrics.OutcomeCancelled).Inc()
	case !res.Recompressed && res.Fitted:
		metrics.FitSearches.WithLabelValues(metrics.OutcomeAlreadyFit).Inc()
	case res.Fitted:
		metrics.FitSearches.WithLabelValues(metrics.OutcomeFitted).Inc()
	default:
		metrics.FitSearches.WithLabelValues(metrics.OutcomeNoFit).Inc()
	}
	if res != nil {
		metrics.FitProbes.Observe(float64(res.Evaluated))
	}
	return res, err
}

func (e *Engine) fit(ctx context.Context, s *Session, fields vcard.ContactFields, level capacity.Level) (*Result, error) {
	limit := capacity.CapacityOf(level)
	start := s.Settings()

	current := s.Photo()
	doc := vcard.Build(fields.WithPhoto(current))
	if doc.Len() <= limit {
		return &Result{Fitted: true, Document: doc, Level: level, Candidate: start}, nil
	}
	if current == "" {
		log.Debugf("payload of %d bytes exceeds level %s with no photo to shrink", doc.Len(), level)
		return &Result{Document: doc, Level: level, Candidate: start}, nil
	}

	src := s.sourceBytes()
	if src == nil {
		_, data, err := photo.DecodeDataURL(current)
		if err != nil {
			log.Warnf("current photo cannot be used as a re-encode source: %v", err)
			return &Result{Document: doc, Level: level, Candidate: start}, nil
		}
		src = data
	}

	dims, qualities := Candidates(start)
	log.Debugf("fitting %d-byte payload into level %s (%d bytes): %d dimensions x %d qualities",
		doc.Len(), level, limit, len(dims), len(qualities))

	res := &Result{Document: doc, Level: level, Candidate: start, Recompressed: true}
	for _, d := range dims {
		for _, q := range qualities {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			candidate := Candidate{MaxDimension: d, Quality: q}
			res.Evaluated++

			dataURL, err := e.compressor.Reencode(ctx, src, d, q)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				metrics.ReencodeFailures.Inc()
				log.Debugf("candidate %dpx q=%.2f failed: %v", d, q, err)
				continue
			}

			s.setCurrent(dataURL)
			res.Document = vcard.Build(fields.WithPhoto(dataURL))
			res.Candidate = candidate

			if res.Document.Len() <= limit {
				s.setSettings(candidate)
				res.Fitted = true
				log.Infof("photo fit at %dpx q=%.2f after %d probes (%d/%d bytes)",
					d, q, res.Evaluated, res.Document.Len(), limit)
				return res, nil
			}
		}
	}

	log.Infof("no photo candidate fits level %s after %d probes", level, res.Evaluated)
	return res, nil
}
