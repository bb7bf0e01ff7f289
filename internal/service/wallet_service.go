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

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	cache      ports.DetailsCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	cache ports.DetailsCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		cache:      cache,
		transactor: transactor,
		log:        log,
	}
}

// EnsureWallet returns the user's wallet for the currency, creating an
// empty ACTIVE one on first use.
func (s *WalletServiceImpl) EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	if len(currency) != 3 {
		return nil, apperror.ErrInvalidCurrency(currency)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	now := time.Now().UTC()
	wallet = &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Currency:  currency,
		Status:    domain.WalletStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		// A concurrent first use may have won the insert.
		existing, getErr := s.walletRepo.GetByUserID(ctx, userID, currency)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", userID.String()).
		Str("currency", currency).
		Msg("wallet created")

	return wallet, nil
}

// GetByID looks up a wallet by its identifier.
func (s *WalletServiceImpl) GetByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}

// GetByUser looks up a wallet without creating it.
func (s *WalletServiceImpl) GetByUser(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}

// Suspend blocks every mutation on the wallet until it is reinstated.
// Balances are untouched.
func (s *WalletServiceImpl) Suspend(ctx context.Context, walletID uuid.UUID, reason, actor string) (*domain.Wallet, error) {
	if reason == "" {
		return nil, apperror.ErrInvalidReason()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
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
		return wallet, nil
	}

	wallet.Status = domain.WalletStatusSuspended
	suspendReason := reason
	wallet.SuspendReason = &suspendReason

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	invalidateDetails(ctx, s.cache, s.log, walletID)

	s.log.Info().
		Str("wallet_id", walletID.String()).
		Str("actor", actor).
		Str("reason", reason).
		Msg("wallet suspended")

	return wallet, nil
}

// Reinstate lifts a suspension. The wallet returns to FROZEN when frozen
// funds remain, ACTIVE otherwise.
func (s *WalletServiceImpl) Reinstate(ctx context.Context, walletID uuid.UUID, actor string) (*domain.Wallet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		if errors.Is(err, ports.ErrLockNotAcquired) {
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.IsSuspended() {
		return nil, apperror.ErrWalletNotSuspended()
	}

	if wallet.FrozenBalance > 0 {
		wallet.Status = domain.WalletStatusFrozen
	} else {
		wallet.Status = domain.WalletStatusActive
	}
	wallet.SuspendReason = nil

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	invalidateDetails(ctx, s.cache, s.log, walletID)

	s.log.Info().
		Str("wallet_id", walletID.String()).
		Str("actor", actor).
		Msg("wallet reinstated")

	return wallet, nil
}
