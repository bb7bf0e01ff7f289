package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportingServiceImpl implements ports.ReportingService. Reads never take
// row locks, so a details view can be served while a writer holds the
// wallet lock.
type ReportingServiceImpl struct {
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	noteRepo    ports.NoteRepository
	cache       ports.DetailsCache
	recentLimit int
	cacheTTL    time.Duration
	log         zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	noteRepo ports.NoteRepository,
	cache ports.DetailsCache,
	recentLimit int,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		noteRepo:    noteRepo,
		cache:       cache,
		recentLimit: recentLimit,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

// GetWalletDetails composes the admin view of one wallet: current state,
// recent ledger entries, freeze history, notes and per-type statistics.
func (s *ReportingServiceImpl) GetWalletDetails(ctx context.Context, walletID uuid.UUID) (*ports.WalletDetails, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, walletID)
		if err != nil {
			s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("details cache read failed")
		}
		if cached != nil {
			var details ports.WalletDetails
			if err := json.Unmarshal(cached, &details); err == nil {
				return &details, nil
			}
			s.log.Warn().Str("wallet_id", walletID.String()).Msg("discarding unreadable cached details")
		}
	}

	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	recent, _, err := s.ledgerRepo.List(ctx, ports.LedgerListParams{
		WalletID: walletID,
		Page:     1,
		PageSize: s.recentLimit,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	freezeHistory, err := s.ledgerRepo.ListFreezeEvents(ctx, walletID, s.recentLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list freeze events: %w", err))
	}

	notes, err := s.noteRepo.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notes: %w", err))
	}

	stats, err := s.ledgerRepo.GetStats(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get stats: %w", err))
	}

	details := &ports.WalletDetails{
		Wallet:             wallet,
		RecentTransactions: recent,
		FreezeHistory:      freezeHistory,
		Notes:              notes,
		Statistics:         stats,
	}

	if s.cache != nil {
		payload, err := json.Marshal(details)
		if err == nil {
			if err := s.cache.Set(ctx, walletID, payload, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("details cache write failed")
			}
		}
	}

	return details, nil
}
