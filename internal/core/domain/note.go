package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminNote is an append-only annotation on a wallet, written by an
// administrator. Notes are never edited or deleted and they never affect
// balance computation; they exist purely for audit.
type AdminNote struct {
	ID        uuid.UUID `json:"id"`
	WalletID  uuid.UUID `json:"wallet_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
