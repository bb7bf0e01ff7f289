package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const stalePendingBatchSize = 100

// ReconcileServiceImpl implements ports.ReconcileService. The ledger is the
// source of truth: replaying every completed entry from zero must reproduce
// the stored balances exactly.
type ReconcileServiceImpl struct {
	walletRepo    ports.WalletRepository
	ledgerRepo    ports.LedgerRepository
	transactor    ports.DBTransactor
	pendingCutoff time.Duration
	log           zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl.
func NewReconcileService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	pendingCutoff time.Duration,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		walletRepo:    walletRepo,
		ledgerRepo:    ledgerRepo,
		transactor:    transactor,
		pendingCutoff: pendingCutoff,
		log:           log,
	}
}

// CheckWallet replays the wallet's completed entries from zero and compares
// the result against the stored balances and lifetime counters.
func (s *ReconcileServiceImpl) CheckWallet(ctx context.Context, walletID uuid.UUID) (*ports.ReconcileReport, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	entries, err := s.ledgerRepo.ListCompleted(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list completed entries: %w", err))
	}

	var balance, frozen int64
	var deposited, withdrawn, spent, earned int64
	for i := range entries {
		balance, frozen = entries[i].Apply(balance, frozen)
		d, w, sp, e := entries[i].CounterDelta()
		deposited += d
		withdrawn += w
		spent += sp
		earned += e
	}

	report := &ports.ReconcileReport{
		WalletID:        walletID,
		StoredBalance:   wallet.Balance,
		StoredFrozen:    wallet.FrozenBalance,
		LedgerBalance:   balance,
		LedgerFrozen:    frozen,
		StoredDeposited: wallet.TotalDeposited,
		StoredWithdrawn: wallet.TotalWithdrawn,
		StoredSpent:     wallet.TotalSpent,
		StoredEarned:    wallet.TotalEarned,
		LedgerDeposited: deposited,
		LedgerWithdrawn: withdrawn,
		LedgerSpent:     spent,
		LedgerEarned:    earned,
		Entries:         int64(len(entries)),
	}
	report.Consistent = wallet.Balance == balance && wallet.FrozenBalance == frozen &&
		wallet.TotalDeposited == deposited && wallet.TotalWithdrawn == withdrawn &&
		wallet.TotalSpent == spent && wallet.TotalEarned == earned

	if !report.Consistent {
		s.log.Error().
			Str("wallet_id", walletID.String()).
			Int64("stored_balance", report.StoredBalance).
			Int64("ledger_balance", report.LedgerBalance).
			Int64("stored_frozen", report.StoredFrozen).
			Int64("ledger_frozen", report.LedgerFrozen).
			Int64("stored_deposited", report.StoredDeposited).
			Int64("ledger_deposited", report.LedgerDeposited).
			Int64("stored_withdrawn", report.StoredWithdrawn).
			Int64("ledger_withdrawn", report.LedgerWithdrawn).
			Int64("stored_spent", report.StoredSpent).
			Int64("ledger_spent", report.LedgerSpent).
			Int64("stored_earned", report.StoredEarned).
			Int64("ledger_earned", report.LedgerEarned).
			Msg("wallet inconsistent with ledger")
	}

	return report, nil
}

// ResolveStalePending settles PENDING entries older than the cutoff. An
// entry whose effect is already reflected in the stored balances becomes
// COMPLETED; one whose effect is absent becomes FAILED. Running it again on
// a settled ledger changes nothing.
func (s *ReconcileServiceImpl) ResolveStalePending(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.pendingCutoff)
	stale, err := s.ledgerRepo.ListStalePending(ctx, cutoff, stalePendingBatchSize)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("list stale pending: %w", err))
	}

	resolved := 0
	for i := range stale {
		if err := s.resolveEntry(ctx, &stale[i]); err != nil {
			s.log.Error().Err(err).
				Str("tx_id", stale[i].ID.String()).
				Msg("failed to resolve stale pending entry")
			continue
		}
		resolved++
	}
	return resolved, nil
}

func (s *ReconcileServiceImpl) resolveEntry(ctx context.Context, entry *domain.Transaction) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, entry.WalletID)
	if err != nil {
		return fmt.Errorf("lock wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("wallet %s not found for pending entry", entry.WalletID)
	}

	entries, err := s.ledgerRepo.ListCompleted(ctx, entry.WalletID)
	if err != nil {
		return fmt.Errorf("list completed entries: %w", err)
	}

	var balance, frozen int64
	for i := range entries {
		balance, frozen = entries[i].Apply(balance, frozen)
	}
	withEntry, withEntryFrozen := entry.Apply(balance, frozen)

	var status domain.TransactionStatus
	switch {
	case wallet.Balance == withEntry && wallet.FrozenBalance == withEntryFrozen:
		// The write landed but the status flip was lost.
		status = domain.TransactionStatusCompleted
	case wallet.Balance == balance && wallet.FrozenBalance == frozen:
		status = domain.TransactionStatusFailed
	default:
		return fmt.Errorf("wallet %s does not match ledger with or without entry %s", wallet.ID, entry.ID)
	}

	if err := s.ledgerRepo.UpdateStatus(ctx, dbTx, entry.ID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info().
		Str("tx_id", entry.ID.String()).
		Str("wallet_id", entry.WalletID.String()).
		Str("status", string(status)).
		Msg("stale pending entry resolved")

	return nil
}
