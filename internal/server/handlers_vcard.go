package server

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/payload"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/schemas"
	"github.com/jonathan/contact-qr/internal/validation"
	"github.com/jonathan/contact-qr/internal/vcard"
)

// ComposeRequest is the body of POST /vcard and POST /qr. Zero values fall
// back to the server settings.
type ComposeRequest struct {
	Contact        json.RawMessage `json:"contact" validate:"required"`
	Level          string          `json:"level,omitempty" validate:"omitempty,max=16"`
	EmbedPhotoInQR *bool           `json:"embedPhotoInQr,omitempty"`
	UseHostedURL   bool            `json:"useHostedUrl,omitempty"`
	HostedURL      string          `json:"hostedUrl,omitempty" validate:"omitempty,max=2048"`
	MaxDimension   int             `json:"maxDimension,omitempty" validate:"omitempty,min=64,max=1024"`
	Quality        float64         `json:"quality,omitempty" validate:"omitempty,gte=0.4,lte=0.95"`
	Size           int             `json:"size,omitempty" validate:"omitempty,min=64,max=2048"`
	Dark           string          `json:"dark,omitempty" validate:"omitempty,hexcolor"`
	Light          string          `json:"light,omitempty" validate:"omitempty,hexcolor"`
}

// ComposeResponse describes a composed payload.
type ComposeResponse struct {
	Kind       payload.Kind      `json:"kind"`
	Payload    string            `json:"payload"`
	Length     int               `json:"length"`
	Level      capacity.Level    `json:"level"`
	Requested  capacity.Level    `json:"requested"`
	Downgraded bool              `json:"downgraded"`
	Fit        *fitsearch.Result `json:"fit,omitempty"`
}

// handleVCard composes the QR payload and describes it. With ?download=true
// it instead returns the full .vcf, whose photo follows includePhotoInVcf.
func (s *Server) handleVCard(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	fields, err := s.contactFields(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		s.vcardAttachment(w, vcard.FileName(fields.DisplayName, ".vcf"), vcard.Build(fields).String())
		return
	}

	p, err := s.compose(r.Context(), &req, fields)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ComposeResponse{
		Kind:       p.Kind,
		Payload:    p.Text,
		Length:     p.Len(),
		Level:      p.Level,
		Requested:  p.Requested,
		Downgraded: p.Downgraded,
		Fit:        p.Fit,
	})
}

// handleQR composes the payload and renders it as a PNG.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	fields, err := s.contactFields(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.compose(r.Context(), &req, fields)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.settings.QROptions()
	opts.Level = p.Level
	if req.Size != 0 {
		opts.Size = req.Size
	}
	if req.Dark != "" {
		opts.Dark = req.Dark
	}
	if req.Light != "" {
		opts.Light = req.Light
	}

	png, err := s.renderer.Render(r.Context(), p.Text, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("X-QR-Level", p.Level.String())
	w.Header().Set("X-QR-Downgraded", strconv.FormatBool(p.Downgraded))
	w.Header().Set("X-Payload-Bytes", strconv.Itoa(p.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Warnf("failed to write QR image: %v", err)
	}
}

// contactFields schema-checks the raw contact, decodes it and validates the
// form rules.
func (s *Server) contactFields(req *ComposeRequest) (vcard.ContactFields, error) {
	var fields vcard.ContactFields
	if err := schemas.ValidateContactJSON(req.Contact); err != nil {
		return fields, err
	}
	if err := json.Unmarshal(req.Contact, &fields); err != nil {
		return fields, &ErrValidation{Field: "contact", Message: err.Error()}
	}

	hosted := req.UseHostedURL && s.composer.Features().HostedURL
	if err := validation.ValidateContact(fields, hosted, req.HostedURL); err != nil {
		return fields, err
	}
	return fields, nil
}

// compose runs the payload composer with a session private to this request.
func (s *Server) compose(ctx context.Context, req *ComposeRequest, fields vcard.ContactFields) (*payload.Payload, error) {
	level := s.settings.RequestedLevel()
	if req.Level != "" {
		parsed, err := capacity.ParseLevel(req.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	embed := s.settings.EmbedsPhoto()
	if req.EmbedPhotoInQR != nil {
		embed = *req.EmbedPhotoInQR
	}

	session := fitsearch.NewSession()
	if fields.HasPhoto() {
		_, src, err := photo.DecodeDataURL(fields.PhotoDataURL)
		if err != nil {
			return nil, err
		}
		start := s.settings.PhotoSettings()
		if req.MaxDimension != 0 {
			start.MaxDimension = req.MaxDimension
		}
		if req.Quality != 0 {
			start.Quality = req.Quality
		}
		session.SetPhoto(src, fields.PhotoDataURL, start)
	}

	return s.composer.Compose(ctx, session, payload.Request{
		Fields:         fields,
		Level:          level,
		EmbedPhotoInQR: embed,
		UseHostedURL:   req.UseHostedURL,
		HostedURL:      req.HostedURL,
	})
}

func (s *Server) vcardAttachment(w http.ResponseWriter, fileName, body string) {
	w.Header().Set("Content-Type", vcard.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+sanitizeFileName(fileName)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Warnf("failed to write vCard: %v", err)
	}
}

// sanitizeFileName keeps a header-safe subset of characters.
func sanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	if strings.Trim(cleaned, "._") == "" {
		return vcard.FileName("", ".vcf")
	}
	return cleaned
}

// jsonFieldName reports validation failures by their JSON names.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
