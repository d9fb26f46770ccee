// Package server provides the HTTP API for building vCards, QR codes and
// hosted contact cards.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/payload"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/qr"
	"github.com/jonathan/contact-qr/internal/schemas"
	"github.com/jonathan/contact-qr/internal/validation"
)

// ErrStoreUnavailable is returned by card routes when no database is configured.
var ErrStoreUnavailable = errors.New("card store is not configured")

// ErrCardNotFound indicates a card id that does not exist or belongs to someone else.
type ErrCardNotFound struct {
	ID uuid.UUID
}

func (e *ErrCardNotFound) Error() string {
	return fmt.Sprintf("card not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		requestErr *ErrValidation
		contactErr *validation.ValidationError
		schemaErr  *schemas.ValidationError
		docErr     *schemas.DocumentError
		dataURLErr *photo.DataURLError
		hostedErr  *payload.HostedURLError
		colorErr   *qr.ColorError
		levelErr   *capacity.ParseError
		notFound   *ErrCardNotFound
		tooLarge   *http.MaxBytesError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &requestErr), errors.As(err, &contactErr), errors.As(err, &schemaErr),
		errors.As(err, &dataURLErr), errors.As(err, &hostedErr), errors.As(err, &colorErr),
		errors.As(err, &levelErr), errors.As(err, &docErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, capacity.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
	Schema []schemas.FieldError    `json:"schema,omitempty"`
}

func newErrorBody(err error) errorBody {
	body := errorBody{Error: err.Error()}

	var contactErr *validation.ValidationError
	if errors.As(err, &contactErr) {
		body.Error = "invalid contact"
		body.Fields = contactErr.Errors
	}
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		body.Error = "contact does not match schema"
		body.Schema = schemaErr.Errors
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		body.Error = "internal server error"
	}
	return body
}
