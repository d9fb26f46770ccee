// Package payload turns contact fields into the text encoded in a QR code.
package payload

import (
	"context"
	"errors"
	"net/url"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/metrics"
	"github.com/jonathan/contact-qr/internal/vcard"
)

var log = logging.Logger("payload")

// Kind says what a payload's text is.
type Kind string

const (
	KindVCard Kind = "vcard"
	KindURL   Kind = "url"
)

// Features toggles the optional composition behaviors.
type Features struct {
	// AutoDowngrade lets a payload move to a weaker level when it does not
	// fit the requested one.
	AutoDowngrade bool `json:"autoDowngrade" yaml:"autoDowngrade"`
	// HostedURL allows encoding a link to a hosted .vcf instead of the card.
	HostedURL bool `json:"hostedUrl" yaml:"hostedUrl"`
	// AutoCompress shrinks an embedded photo until the card fits.
	AutoCompress bool `json:"autoCompress" yaml:"autoCompress"`
}

// DefaultFeatures enables everything.
func DefaultFeatures() Features {
	return Features{AutoDowngrade: true, HostedURL: true, AutoCompress: true}
}

// Basic disables everything: the card is encoded as-is at the requested level.
func Basic() Features {
	return Features{}
}

// Request is one composition.
type Request struct {
	Fields         vcard.ContactFields `json:"fields"`
	Level          capacity.Level      `json:"level"`
	EmbedPhotoInQR bool                `json:"embedPhotoInQr"`
	UseHostedURL   bool                `json:"useHostedUrl"`
	HostedURL      string              `json:"hostedUrl,omitempty"`
}

// Payload is the composed QR text and the level it must be rendered at.
type Payload struct {
	Kind       Kind              `json:"kind"`
	Text       string            `json:"text"`
	Level      capacity.Level    `json:"level"`
	Requested  capacity.Level    `json:"requested"`
	Downgraded bool              `json:"downgraded"`
	Fit        *fitsearch.Result `json:"fit,omitempty"`
}

// Len returns the payload size in bytes.
func (p *Payload) Len() int {
	return len(p.Text)
}

// Composer builds payloads.
type Composer struct {
	features Features
	engine   *fitsearch.Engine
}

// NewComposer returns a composer. engine may be nil when AutoCompress is off.
func NewComposer(features Features, engine *fitsearch.Engine) *Composer {
	if engine == nil {
		features.AutoCompress = false
	}
	return &Composer{features: features, engine: engine}
}

// Features returns the composer's effective feature set.
func (c *Composer) Features() Features {
	return c.features
}

// Compose builds the payload for req. The photo comes from the session when it
// has one, otherwise from req.Fields; s may be nil.
//
// The payload is never truncated. When it fits no allowed level the error is a
// *capacity.CapacityExceededError.
func (c *Composer) Compose(ctx context.Context, s *fitsearch.Session, req Request) (*Payload, error) {
	requested := req.Level
	if !requested.Valid() {
		requested = capacity.M
	}

	if c.features.HostedURL && req.UseHostedURL && strings.TrimSpace(req.HostedURL) != "" {
		link := strings.TrimSpace(req.HostedURL)
		if err := CheckHostedURL(link); err != nil {
			return nil, err
		}
		return c.finish(&Payload{Kind: KindURL, Text: link, Requested: requested})
	}

	fields := req.Fields
	photo := fields.PhotoDataURL
	sessionPhoto := s != nil && s.HasPhoto()
	if sessionPhoto {
		photo = s.Photo()
	}
	if req.EmbedPhotoInQR && photo != "" {
		fields = fields.WithPhoto(photo)
	} else {
		fields = fields.WithoutPhoto()
	}

	doc := vcard.Build(fields)
	p := &Payload{Kind: KindVCard, Requested: requested}

	if c.features.AutoCompress && req.EmbedPhotoInQR && sessionPhoto && !capacity.Fits(requested, doc.Len()) {
		res, err := c.engine.Fit(ctx, s, fields, requested)
		switch {
		case errors.Is(err, fitsearch.ErrSearchInProgress):
			log.Debugf("fit search already running; composing with the current photo")
		case err != nil:
			return nil, err
		default:
			doc = res.Document
			p.Fit = res
		}
	}

	p.Text = doc.String()
	return c.finish(p)
}

func (c *Composer) finish(p *Payload) (*Payload, error) {
	length := p.Len()

	var err error
	if c.features.AutoDowngrade {
		p.Level, err = capacity.FitLevel(p.Requested, length)
	} else {
		p.Level = p.Requested
		if !capacity.Fits(p.Requested, length) {
			err = &capacity.CapacityExceededError{
				Requested: p.Requested,
				Length:    length,
				Capacity:  capacity.CapacityOf(p.Requested),
			}
		}
	}
	if err != nil {
		metrics.CapacityExceeded.Inc()
		log.Infof("%s payload of %d bytes does not fit level %s", p.Kind, length, p.Requested)
		return nil, err
	}

	p.Downgraded = p.Level != p.Requested
	if p.Downgraded {
		log.Infof("downgraded %s payload from %s to %s (%d bytes)", p.Kind, p.Requested, p.Level, length)
	}

	metrics.Payloads.WithLabelValues(string(p.Kind), p.Level.String()).Inc()
	metrics.PayloadBytes.Observe(float64(length))
	return p, nil
}

// CheckHostedURL verifies link is an absolute http or https URL.
func CheckHostedURL(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return &HostedURLError{URL: link, Message: "cannot be parsed", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &HostedURLError{URL: link, Message: "must use http or https"}
	}
	if u.Host == "" {
		return &HostedURLError{URL: link, Message: "missing host"}
	}
	return nil
}
