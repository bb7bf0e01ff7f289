package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FreezeServiceImpl implements ports.FreezeService.
type FreezeServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	cache      ports.DetailsCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewFreezeService creates a new FreezeServiceImpl.
func NewFreezeService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	cache ports.DetailsCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *FreezeServiceImpl {
	return &FreezeServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		cache:      cache,
		transactor: transactor,
		log:        log,
	}
}

// Freeze moves funds from the available pool to the frozen pool and marks
// the wallet FROZEN. Total wealth is unchanged.
func (s *FreezeServiceImpl) Freeze(ctx context.Context, req ports.FreezeRequest) (*domain.Wallet, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Reason == "" {
		return nil, apperror.ErrInvalidReason()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		if errors.Is(err, ports.ErrLockNotAcquired) {
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if wallet.IsSuspended() {
		return nil, apperror.ErrWalletSuspended()
	}
	// Only funds actually present can be frozen; credit is not freezable.
	if req.Amount > wallet.Balance {
		return nil, apperror.ErrExceedsAvailableBalance()
	}

	now := time.Now().UTC()
	wallet.Balance -= req.Amount
	wallet.FrozenBalance += req.Amount
	wallet.Status = domain.WalletStatusFrozen
	reason := req.Reason
	wallet.FreezeReason = &reason
	wallet.FrozenAt = &now

	txn := &domain.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeFreeze,
		Amount:       -req.Amount,
		Currency:     wallet.Currency,
		Description:  req.Reason,
		Status:       domain.TransactionStatusCompleted,
		CreatedBy:    req.Actor,
		BalanceAfter: wallet.Balance,
		CreatedAt:    now,
		ProcessedAt:  &now,
	}

	if err := s.ledgerRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}
	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	invalidateDetails(ctx, s.cache, s.log, wallet.ID)

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", req.Amount).
		Int64("frozen_balance", wallet.FrozenBalance).
		Str("actor", req.Actor).
		Msg("funds frozen")

	return wallet, nil
}

// Unfreeze returns funds from the frozen pool to the available pool. The
// wallet goes back to ACTIVE once the frozen pool is empty.
func (s *FreezeServiceImpl) Unfreeze(ctx context.Context, req ports.FreezeRequest) (*domain.Wallet, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		if errors.Is(err, ports.ErrLockNotAcquired) {
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if wallet.IsSuspended() {
		return nil, apperror.ErrWalletSuspended()
	}
	if req.Amount > wallet.FrozenBalance {
		return nil, apperror.ErrExceedsFrozenBalance()
	}

	now := time.Now().UTC()
	wallet.Balance += req.Amount
	wallet.FrozenBalance -= req.Amount
	if wallet.FrozenBalance == 0 {
		wallet.Status = domain.WalletStatusActive
		if req.Reason != "" {
			reason := req.Reason
			wallet.UnfreezeReason = &reason
		}
		wallet.UnfrozenAt = &now
	}

	txn := &domain.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeUnfreeze,
		Amount:       req.Amount,
		Currency:     wallet.Currency,
		Description:  req.Reason,
		Status:       domain.TransactionStatusCompleted,
		CreatedBy:    req.Actor,
		BalanceAfter: wallet.Balance,
		CreatedAt:    now,
		ProcessedAt:  &now,
	}

	if err := s.ledgerRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}
	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	invalidateDetails(ctx, s.cache, s.log, wallet.ID)

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", req.Amount).
		Int64("frozen_balance", wallet.FrozenBalance).
		Str("actor", req.Actor).
		Msg("funds unfrozen")

	return wallet, nil
}
