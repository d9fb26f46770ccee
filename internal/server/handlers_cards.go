package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/contact-qr/internal/db"
	"github.com/jonathan/contact-qr/internal/server/middleware"
	"github.com/jonathan/contact-qr/internal/vcard"
)

// CardRequest is the body of POST /cards.
type CardRequest struct {
	Contact  json.RawMessage `json:"contact" validate:"required"`
	FileName string          `json:"fileName,omitempty" validate:"omitempty,max=128"`
}

// CardResponse is a stored card plus the link a QR code can point at.
type CardResponse struct {
	db.Card
	URL string `json:"url"`
}

// handleCreateCard stores the contact's .vcf and returns its public link.
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}

	var body CardRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	fields, err := s.contactFields(&ComposeRequest{Contact: body.Contact})
	if err != nil {
		s.writeError(w, err)
		return
	}

	base := strings.TrimSuffix(strings.TrimSpace(body.FileName), ".vcf")
	if base == "" {
		base = strings.TrimSpace(fields.DisplayName)
	}
	fileName := sanitizeFileName(vcard.FileName(base, ".vcf"))

	card, err := s.store.SaveCard(r.Context(), middleware.OwnerID(r), fileName, vcard.Build(fields).String())
	if err != nil {
		s.writeError(w, err)
		return
	}
	log.Infof("stored card %s (%d bytes)", card.ID, card.SizeBytes)

	w.Header().Set("Location", "/cards/"+card.ID.String())
	s.jsonResponse(w, http.StatusCreated, s.cardResponse(r, card))
}

// handleListCards lists the caller's cards, newest first.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be an integer"})
			return
		}
		limit = db.ClampLimit(n)
	}

	cards, err := s.store.ListCards(r.Context(), middleware.OwnerID(r), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]CardResponse, len(cards))
	for i := range cards {
		out[i] = s.cardResponse(r, &cards[i])
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"cards": out, "count": len(out)})
}

// handleGetCard serves a stored card as a .vcf download. It is public so a
// scanned QR link opens without credentials.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}
	id, err := cardID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	card, err := s.store.GetCard(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if card == nil {
		s.writeError(w, &ErrCardNotFound{ID: id})
		return
	}
	s.vcardAttachment(w, card.FileName, card.VCard)
}

// handleDeleteCard removes one of the caller's cards.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}
	id, err := cardID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	deleted, err := s.store.DeleteCard(r.Context(), id, middleware.OwnerID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		s.writeError(w, &ErrCardNotFound{ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cardID parses the {id} path value; a trailing ".vcf" is accepted.
func cardID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSuffix(r.PathValue("id"), ".vcf")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

func (s *Server) cardResponse(r *http.Request, card *db.Card) CardResponse {
	return CardResponse{Card: *card, URL: s.baseURL(r) + "/cards/" + card.ID.String() + ".vcf"}
}
