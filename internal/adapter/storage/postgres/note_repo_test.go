package postgres

import (
	"context"
	"testing"
	"time"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNoteRepo(mock)
	note := &domain.AdminNote{
		ID:        uuid.New(),
		WalletID:  uuid.New(),
		AuthorID:  "admin-7",
		Text:      "balance corrected after chargeback",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO admin_notes").
		WithArgs(note.ID, note.WalletID, note.AuthorID, note.Text, note.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), note)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNoteRepo(mock)
	walletID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM admin_notes WHERE wallet_id").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "wallet_id", "author_id", "text", "created_at"}).
			AddRow(uuid.New(), walletID, "admin-1", "first note", now.Add(-time.Hour)).
			AddRow(uuid.New(), walletID, "admin-2", "second note", now))

	notes, err := repo.ListByWallet(context.Background(), walletID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "admin-1", notes[0].AuthorID)
	assert.Equal(t, "second note", notes[1].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}
