package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Card Methods
// -----------------------------------------------------------------------------

// SaveCard stores a vCard and returns the new record. ownerID may be nil when
// the server runs without authentication.
func (db *DB) SaveCard(ctx context.Context, ownerID *uuid.UUID, fileName, vcard string) (*Card, error) {
	if vcard == "" {
		return nil, fmt.Errorf("vcard cannot be empty")
	}

	var c Card
	err := db.pool.QueryRow(ctx,
		`INSERT INTO cards (owner_id, file_name, vcard, size_bytes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, owner_id, file_name, vcard, size_bytes, created_at`,
		ownerID, fileName, vcard, len(vcard),
	).Scan(&c.ID, &c.OwnerID, &c.FileName, &c.VCard, &c.SizeBytes, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}
	return &c, nil
}

// GetCard retrieves a card by ID. It returns nil, nil when no card exists.
func (db *DB) GetCard(ctx context.Context, id uuid.UUID) (*Card, error) {
	var c Card
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, file_name, vcard, size_bytes, created_at
		 FROM cards WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.OwnerID, &c.FileName, &c.VCard, &c.SizeBytes, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &c, nil
}

// DeleteCard removes a card owned by ownerID, or an unowned card when ownerID
// is nil. It reports whether a row was deleted.
func (db *DB) DeleteCard(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM cards WHERE id = $1 AND owner_id IS NOT DISTINCT FROM $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete card: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListCards returns the newest cards of ownerID, without their vCard bodies.
func (db *DB) ListCards(ctx context.Context, ownerID *uuid.UUID, limit int) ([]Card, error) {
	limit = ClampLimit(limit)

	rows, err := db.pool.Query(ctx,
		`SELECT id, owner_id, file_name, size_bytes, created_at
		 FROM cards
		 WHERE owner_id IS NOT DISTINCT FROM $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]Card, 0)
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.FileName, &c.SizeBytes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// ClampLimit bounds a requested page size to [1, MaxListLimit], using
// DefaultListLimit for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}
