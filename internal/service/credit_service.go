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

// CreditServiceImpl implements ports.CreditService.
type CreditServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	cache      ports.DetailsCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewCreditService creates a new CreditServiceImpl.
func NewCreditService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	cache ports.DetailsCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *CreditServiceImpl {
	return &CreditServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		cache:      cache,
		transactor: transactor,
		log:        log,
	}
}

// SetCreditLimit changes the wallet's overdraft allowance. The new limit
// must cover any credit already in use.
func (s *CreditServiceImpl) SetCreditLimit(ctx context.Context, req ports.CreditLimitRequest) (*domain.Wallet, error) {
	if req.NewLimit < 0 {
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
	if req.NewLimit < wallet.CreditUsed() {
		return nil, apperror.ErrCreditLimitBelowUsage()
	}

	oldLimit := wallet.CreditLimit
	now := time.Now().UTC()
	wallet.CreditLimit = req.NewLimit

	// Audit entry with zero amount: limits shape future debits, they do
	// not move funds.
	txn := &domain.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeCreditLimitChange,
		Amount:       0,
		Currency:     wallet.Currency,
		Description:  fmt.Sprintf("credit limit changed from %d to %d: %s", oldLimit, req.NewLimit, req.Reason),
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
		Int64("old_limit", oldLimit).
		Int64("new_limit", req.NewLimit).
		Str("actor", req.Actor).
		Msg("credit limit changed")

	return wallet, nil
}
