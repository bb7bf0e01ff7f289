package ports

import (
	"context"
	"errors"
	"time"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrLockNotAcquired is returned (wrapped) by the ForUpdate lookups when the
// per-wallet row lock could not be acquired within the configured bound.
var ErrLockNotAcquired = errors.New("wallet lock not acquired")

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside a transaction block and rely on
// row-level locking; they are the per-wallet serialization point. Lookups
// return (nil, nil) when no wallet exists.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency string) (*domain.Wallet, error)
	// Update writes every mutable wallet field. The row must already be
	// locked via one of the ForUpdate lookups in the same transaction.
	Update(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// LedgerRepository defines persistence operations for the append-only
// transaction ledger. Completed entries are immutable; UpdateStatus exists
// only for the PENDING -> COMPLETED/FAILED reconciliation path.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByReference(ctx context.Context, walletID uuid.UUID, reference string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error
	List(ctx context.Context, params LedgerListParams) ([]domain.Transaction, int64, error)
	// ListFreezeEvents returns FREEZE/UNFREEZE entries, newest first.
	ListFreezeEvents(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error)
	// ListCompleted returns every COMPLETED entry for the wallet in creation
	// order, oldest first. Used for ledger replay.
	ListCompleted(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	// ListStalePending returns PENDING entries created before the cutoff.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)
	GetStats(ctx context.Context, walletID uuid.UUID) (*LedgerStats, error)
}

// LedgerListParams holds filter + pagination for listing ledger entries.
type LedgerListParams struct {
	WalletID uuid.UUID
	Type     *domain.TransactionType
	Status   *domain.TransactionStatus
	Page     int
	PageSize int
}

// TypeStats aggregates ledger entries of one transaction type.
type TypeStats struct {
	Type    domain.TransactionType `json:"type"`
	Count   int64                  `json:"count"`
	Total   int64                  `json:"total"`   // sum of absolute amounts
	Average int64                  `json:"average"` // Total / Count, minor units
}

// LedgerStats is the per-wallet aggregate view over completed entries.
type LedgerStats struct {
	TotalEntries int64       `json:"total_entries"`
	ByType       []TypeStats `json:"by_type"`
}

// NoteRepository defines persistence for admin notes. Append-only: there is
// deliberately no update or delete method.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.AdminNote) error
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.AdminNote, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
