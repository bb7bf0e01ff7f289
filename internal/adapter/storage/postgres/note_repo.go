package postgres

import (
	"context"
	"fmt"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// NoteRepo implements ports.NoteRepository. Append-only: rows are never
// updated or deleted.
type NoteRepo struct {
	pool Pool
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(pool Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

// Create inserts an admin note.
func (r *NoteRepo) Create(ctx context.Context, n *domain.AdminNote) error {
	query := `INSERT INTO admin_notes (id, wallet_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, n.ID, n.WalletID, n.AuthorID, n.Text, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admin note: %w", err)
	}
	return nil
}

// ListByWallet returns all notes for a wallet, oldest first.
func (r *NoteRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.AdminNote, error) {
	query := `SELECT id, wallet_id, author_id, text, created_at
		FROM admin_notes WHERE wallet_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list admin notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.AdminNote
	for rows.Next() {
		n := domain.AdminNote{}
		if err := rows.Scan(&n.ID, &n.WalletID, &n.AuthorID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin note rows: %w", err)
	}
	return notes, nil
}
