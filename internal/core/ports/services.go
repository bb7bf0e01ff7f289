package ports

import (
	"context"
	"time"

	"marketplace-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// --- Service Ports (Business Logic) ---

// LedgerService applies signed amounts to a wallet's available balance,
// enforcing the overdraft invariant, atomically with a ledger append.
type LedgerService interface {
	AdjustBalance(ctx context.Context, req AdjustmentRequest) (*domain.Transaction, error)
	// Typed convenience wrappers over AdjustBalance. Amount is positive;
	// the wrapper applies the sign for its transaction type.
	RecordDeposit(ctx context.Context, walletID uuid.UUID, amount int64, description string, reference *string) (*domain.Transaction, error)
	RecordWithdrawal(ctx context.Context, walletID uuid.UUID, amount int64, description string, reference *string) (*domain.Transaction, error)
	RecordPayment(ctx context.Context, walletID uuid.UUID, amount int64, description string, reference *string) (*domain.Transaction, error)
}

// AdjustmentRequest holds validated input for a balance adjustment.
type AdjustmentRequest struct {
	WalletID  uuid.UUID
	Amount    int64 // signed minor units; negative debits
	Type      domain.TransactionType
	Reason    string
	Reference *string // related-entity id; doubles as the idempotency handle
	Actor     string  // admin id, or domain.SystemActor
}

// FreezeService moves funds between the available and frozen pools without
// changing total wealth.
type FreezeService interface {
	Freeze(ctx context.Context, req FreezeRequest) (*domain.Wallet, error)
	Unfreeze(ctx context.Context, req FreezeRequest) (*domain.Wallet, error)
}

// FreezeRequest holds validated input for freeze/unfreeze.
type FreezeRequest struct {
	WalletID uuid.UUID
	Amount   int64 // positive minor units
	Reason   string
	Actor    string
}

// CreditService manages the overdraft limit.
type CreditService interface {
	SetCreditLimit(ctx context.Context, req CreditLimitRequest) (*domain.Wallet, error)
}

// CreditLimitRequest holds validated input for a credit-limit change.
type CreditLimitRequest struct {
	WalletID uuid.UUID
	NewLimit int64 // minor units, >= 0
	Reason   string
	Actor    string
}

// NoteService appends immutable admin notes to a wallet.
type NoteService interface {
	AddNote(ctx context.Context, walletID uuid.UUID, authorID, text string) (*domain.Wallet, error)
}

// WalletService covers wallet lifecycle: lazy creation and administrative
// suspension. Wallets are never deleted.
type WalletService interface {
	EnsureWallet(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	GetByID(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	GetByUser(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	Suspend(ctx context.Context, walletID uuid.UUID, reason, actor string) (*domain.Wallet, error)
	Reinstate(ctx context.Context, walletID uuid.UUID, actor string) (*domain.Wallet, error)
}

// ReportingService is the read-only summary view. It never mutates state
// and never blocks writers.
type ReportingService interface {
	GetWalletDetails(ctx context.Context, walletID uuid.UUID) (*WalletDetails, error)
}

// WalletDetails is the composed admin view of one wallet.
type WalletDetails struct {
	Wallet             *domain.Wallet       `json:"wallet"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
	FreezeHistory      []domain.Transaction `json:"freeze_history"`
	Notes              []domain.AdminNote   `json:"notes"`
	Statistics         *LedgerStats         `json:"statistics"`
}

// ReconcileService verifies and repairs ledger/wallet consistency.
type ReconcileService interface {
	// CheckWallet replays all completed entries from zero and compares the
	// result against the stored balances and lifetime counters.
	CheckWallet(ctx context.Context, walletID uuid.UUID) (*ReconcileReport, error)
	// ResolveStalePending completes or fails PENDING entries older than the
	// configured cutoff. Idempotent: a consistent ledger is left untouched.
	ResolveStalePending(ctx context.Context) (int, error)
}

// ReconcileReport is the outcome of a replay check.
type ReconcileReport struct {
	WalletID        uuid.UUID `json:"wallet_id"`
	StoredBalance   int64     `json:"stored_balance"`
	StoredFrozen    int64     `json:"stored_frozen"`
	LedgerBalance   int64     `json:"ledger_balance"`
	LedgerFrozen    int64     `json:"ledger_frozen"`
	StoredDeposited int64     `json:"stored_deposited"`
	StoredWithdrawn int64     `json:"stored_withdrawn"`
	StoredSpent     int64     `json:"stored_spent"`
	StoredEarned    int64     `json:"stored_earned"`
	LedgerDeposited int64     `json:"ledger_deposited"`
	LedgerWithdrawn int64     `json:"ledger_withdrawn"`
	LedgerSpent     int64     `json:"ledger_spent"`
	LedgerEarned    int64     `json:"ledger_earned"`
	Entries         int64     `json:"entries"`
	Consistent      bool      `json:"consistent"`
}

// TokenService validates admin bearer tokens issued by the admin platform.
type TokenService interface {
	Generate(adminID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AdminID string
}

// DetailsCache is the Redis-backed read cache for the wallet-details view.
// All methods are best-effort from the caller's perspective.
type DetailsCache interface {
	Get(ctx context.Context, walletID uuid.UUID) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, walletID uuid.UUID, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, walletID uuid.UUID) error
}
