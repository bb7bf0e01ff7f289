package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const walletColumns = `id, user_id, currency, balance, frozen_balance,
		total_deposited, total_withdrawn, total_spent, total_earned,
		credit_limit, status, freeze_reason, frozen_at, unfreeze_reason,
		unfrozen_at, suspend_reason, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.Currency, w.Balance, w.FrozenBalance,
		w.TotalDeposited, w.TotalWithdrawn, w.TotalSpent, w.TotalEarned,
		w.CreditLimit, w.Status, w.FreezeReason, w.FrozenAt, w.UnfreezeReason,
		w.UnfrozenAt, w.SuspendReason, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByUserID fetches a wallet by user ID and currency (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, userID, currency))
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	w, err := scanWallet(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapLockErr(err)
	}
	return w, nil
}

// GetByUserIDForUpdate fetches a wallet by user ID and currency with
// pessimistic locking. This MUST be called within a transaction.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2 FOR UPDATE`
	w, err := scanWallet(tx.QueryRow(ctx, query, userID, currency))
	if err != nil {
		return nil, wrapLockErr(err)
	}
	return w, nil
}

// wrapLockErr tags lock_timeout expiries with ports.ErrLockNotAcquired so
// the service layer can map them without importing pgx.
func wrapLockErr(err error) error {
	if IsLockTimeout(err) {
		return fmt.Errorf("%w: %w", ports.ErrLockNotAcquired, err)
	}
	return err
}

// Update writes every mutable wallet field within a transaction. The row
// must already be locked by one of the ForUpdate lookups.
func (r *WalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE wallets SET
		balance = $1, frozen_balance = $2,
		total_deposited = $3, total_withdrawn = $4, total_spent = $5, total_earned = $6,
		credit_limit = $7, status = $8,
		freeze_reason = $9, frozen_at = $10, unfreeze_reason = $11, unfrozen_at = $12,
		suspend_reason = $13, updated_at = NOW()
		WHERE id = $14`

	tag, err := tx.Exec(ctx, query,
		w.Balance, w.FrozenBalance,
		w.TotalDeposited, w.TotalWithdrawn, w.TotalSpent, w.TotalEarned,
		w.CreditLimit, w.Status,
		w.FreezeReason, w.FrozenAt, w.UnfreezeReason, w.UnfrozenAt,
		w.SuspendReason, w.ID,
	)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", w.ID)
	}
	return nil
}

// scanWallet scans a single row into a Wallet.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.Currency, &w.Balance, &w.FrozenBalance,
		&w.TotalDeposited, &w.TotalWithdrawn, &w.TotalSpent, &w.TotalEarned,
		&w.CreditLimit, &w.Status, &w.FreezeReason, &w.FrozenAt, &w.UnfreezeReason,
		&w.UnfrozenAt, &w.SuspendReason, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
