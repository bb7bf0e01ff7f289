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

// adjustableTypes are the transaction types AdjustBalance accepts. Freeze
// and credit-limit events have dedicated services and never go through here.
var adjustableTypes = map[domain.TransactionType]bool{
	domain.TransactionTypeDeposit:    true,
	domain.TransactionTypeWithdrawal: true,
	domain.TransactionTypePayment:    true,
	domain.TransactionTypeRefund:     true,
	domain.TransactionTypeAdjustment: true,
}

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	cache      ports.DetailsCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	cache ports.DetailsCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		cache:      cache,
		transactor: transactor,
		log:        log,
	}
}

// AdjustBalance applies a signed amount to the wallet's available balance
// atomically with the ledger append, under a pessimistic row lock.
func (s *LedgerServiceImpl) AdjustBalance(ctx context.Context, req ports.AdjustmentRequest) (*domain.Transaction, error) {
	if req.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Type == "" {
		req.Type = domain.TransactionTypeAdjustment
	}
	if !adjustableTypes[req.Type] {
		return nil, apperror.Validation(fmt.Sprintf("transaction type %s cannot be recorded directly", req.Type))
	}
	if req.Type == domain.TransactionTypeAdjustment && req.Reason == "" {
		return nil, apperror.ErrInvalidReason()
	}

	// Idempotency: a completed entry with the same reference is the answer.
	if req.Reference != nil && *req.Reference != "" {
		existing, err := s.ledgerRepo.GetByReference(ctx, req.WalletID, *req.Reference)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
		}
		if existing != nil {
			return existing, nil
		}
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

	if req.Amount < 0 {
		if wallet.Status == domain.WalletStatusFrozen {
			return nil, apperror.ErrWalletFrozen()
		}
		if !wallet.CanDebit(-req.Amount) {
			return nil, apperror.ErrInsufficientFunds()
		}
	}

	now := time.Now().UTC()
	wallet.Balance += req.Amount

	txn := &domain.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Type:         req.Type,
		Amount:       req.Amount,
		Currency:     wallet.Currency,
		Description:  req.Reason,
		Status:       domain.TransactionStatusCompleted,
		Reference:    req.Reference,
		CreatedBy:    req.Actor,
		BalanceAfter: wallet.Balance,
		CreatedAt:    now,
		ProcessedAt:  &now,
	}

	deposited, withdrawn, spent, earned := txn.CounterDelta()
	wallet.TotalDeposited += deposited
	wallet.TotalWithdrawn += withdrawn
	wallet.TotalSpent += spent
	wallet.TotalEarned += earned

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
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("type", string(txn.Type)).
		Int64("amount", req.Amount).
		Int64("balance_after", wallet.Balance).
		Str("actor", req.Actor).
		Msg("balance adjusted")

	return txn, nil
}

// RecordDeposit credits the wallet; amount is positive minor units.
func (s *LedgerServiceImpl) RecordDeposit(ctx context.Context, walletID uuid.UUID, amount int64, description string, reference *string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return s.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID:  walletID,
		Amount:    amount,
		Type:      domain.TransactionTypeDeposit,
		Reason:    description,
		Reference: reference,
		Actor:     domain.SystemActor,
	})
}

// RecordWithdrawal debits the wallet; amount is positive minor units.
func (s *LedgerServiceImpl) RecordWithdrawal(ctx context.Context, walletID uuid.UUID, amount int64, description string, reference *string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return s.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID:  walletID,
		Amount:    -amount,
		Type:      domain.TransactionTypeWithdrawal,
		Reason:    description,
		Reference: reference,
		Actor:     domain.SystemActor,
	})
}

// RecordPayment debits the wallet for a purchase; amount is positive.
func (s *LedgerServiceImpl) RecordPayment(ctx context.Context, walletID uuid.UUID, amount int64, description string, reference *string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return s.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID:  walletID,
		Amount:    -amount,
		Type:      domain.TransactionTypePayment,
		Reason:    description,
		Reference: reference,
		Actor:     domain.SystemActor,
	})
}

// invalidateDetails drops the cached details view after a committed write.
// Best-effort: a stale read until TTL expiry beats failing the write.
func invalidateDetails(ctx context.Context, cache ports.DetailsCache, log zerolog.Logger, walletID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, walletID); err != nil {
		log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("failed to invalidate details cache")
	}
}
