package db

import (
	"time"

	"github.com/google/uuid"
)

// Card is a stored vCard document.
type Card struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	FileName  string     `json:"file_name"`
	VCard     string     `json:"-"`
	SizeBytes int        `json:"size_bytes"`
	CreatedAt time.Time  `json:"created_at"`
}

// DefaultListLimit caps ListCards when no limit is given.
const DefaultListLimit = 50

// MaxListLimit is the largest page ListCards returns.
const MaxListLimit = 500
