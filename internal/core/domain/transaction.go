package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of balance-affecting event.
type TransactionType string

const (
	TransactionTypeDeposit           TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal        TransactionType = "WITHDRAWAL"
	TransactionTypePayment           TransactionType = "PAYMENT"
	TransactionTypeRefund            TransactionType = "REFUND"
	TransactionTypeFreeze            TransactionType = "FREEZE"
	TransactionTypeUnfreeze          TransactionType = "UNFREEZE"
	TransactionTypeAdjustment        TransactionType = "ADJUSTMENT"
	TransactionTypeCreditLimitChange TransactionType = "CREDIT_LIMIT_CHANGE"
)

// TransactionStatus represents the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusReversed  TransactionStatus = "REVERSED"
)

// SystemActor is the CreatedBy value for mutations not initiated by an admin.
const SystemActor = "system"

// Transaction is an append-only ledger entry. Once COMPLETED it is never
// modified; the wallet's stored balance is a materialized view of the
// completed entries.
//
// Amount is signed, in minor units. For FREEZE and UNFREEZE entries it is
// the signed effect on the available pool (negative for freeze, positive
// for unfreeze); the frozen pool moves by the opposite amount, so replay
// conserves the sum of the two pools. CREDIT_LIMIT_CHANGE entries carry a
// zero amount and exist for audit only.
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	WalletID     uuid.UUID         `json:"wallet_id"`
	Type         TransactionType   `json:"type"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Description  string            `json:"description"`
	Status       TransactionStatus `json:"status"`
	Reference    *string           `json:"reference,omitempty"`
	CreatedBy    string            `json:"created_by"`
	BalanceAfter int64             `json:"balance_after"`
	CreatedAt    time.Time         `json:"created_at"`
	ProcessedAt  *time.Time        `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the entry is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusReversed
}

// IsFreezeEvent reports whether the entry records an escrow movement.
func (t *Transaction) IsFreezeEvent() bool {
	return t.Type == TransactionTypeFreeze || t.Type == TransactionTypeUnfreeze
}

// Apply replays the entry against a (balance, frozen) pair, returning the
// resulting pair. Replaying every completed entry for a wallet from (0, 0)
// in creation order must reproduce the stored balances exactly.
func (t *Transaction) Apply(balance, frozen int64) (int64, int64) {
	switch t.Type {
	case TransactionTypeFreeze, TransactionTypeUnfreeze:
		return balance + t.Amount, frozen - t.Amount
	case TransactionTypeCreditLimitChange:
		return balance, frozen
	default:
		return balance + t.Amount, frozen
	}
}

// CounterDelta returns the lifetime-counter increments (deposited,
// withdrawn, spent, earned) produced by this entry. Refunds and credit
// adjustments count as earnings; escrow moves and limit changes count
// toward nothing.
func (t *Transaction) CounterDelta() (deposited, withdrawn, spent, earned int64) {
	abs := t.Amount
	if abs < 0 {
		abs = -abs
	}
	switch t.Type {
	case TransactionTypeDeposit:
		deposited = abs
	case TransactionTypeWithdrawal:
		withdrawn = abs
	case TransactionTypePayment:
		spent = abs
	case TransactionTypeRefund:
		earned = abs
	case TransactionTypeAdjustment:
		if t.Amount > 0 {
			earned = abs
		}
	}
	return deposited, withdrawn, spent, earned
}
