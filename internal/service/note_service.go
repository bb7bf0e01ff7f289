package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NoteServiceImpl implements ports.NoteService.
type NoteServiceImpl struct {
	walletRepo ports.WalletRepository
	noteRepo   ports.NoteRepository
	cache      ports.DetailsCache
	log        zerolog.Logger
}

// NewNoteService creates a new NoteServiceImpl.
func NewNoteService(
	walletRepo ports.WalletRepository,
	noteRepo ports.NoteRepository,
	cache ports.DetailsCache,
	log zerolog.Logger,
) *NoteServiceImpl {
	return &NoteServiceImpl{
		walletRepo: walletRepo,
		noteRepo:   noteRepo,
		cache:      cache,
		log:        log,
	}
}

// AddNote appends an immutable admin note and returns the wallet it was
// attached to.
func (s *NoteServiceImpl) AddNote(ctx context.Context, walletID uuid.UUID, authorID, text string) (*domain.Wallet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("note text must not be empty")
	}

	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	note := &domain.AdminNote{
		ID:        uuid.New(),
		WalletID:  walletID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create note: %w", err))
	}

	invalidateDetails(ctx, s.cache, s.log, walletID)

	s.log.Info().
		Str("wallet_id", walletID.String()).
		Str("author_id", authorID).
		Msg("admin note added")

	return wallet, nil
}
