package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletStatus represents the administrative state of a wallet.
type WalletStatus string

const (
	// WalletStatusActive allows all operations.
	WalletStatusActive WalletStatus = "ACTIVE"
	// WalletStatusFrozen blocks debits; credits are still accepted.
	// Set and cleared by the freeze/unfreeze operations.
	WalletStatusFrozen WalletStatus = "FROZEN"
	// WalletStatusSuspended blocks every mutating operation. Wallets are
	// never deleted; suspension is how a wallet is closed.
	WalletStatusSuspended WalletStatus = "SUSPENDED"
)

// Wallet holds a user's balance in a single currency. All amounts are int64
// minor units (cents, etc.); monetary arithmetic never touches floats.
//
// Balance is the available pool and may go negative down to -CreditLimit.
// FrozenBalance is the escrow pool and is always >= 0. Freezing moves funds
// between the two pools without changing their sum.
type Wallet struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"user_id"`
	Currency       string       `json:"currency"`
	Balance        int64        `json:"balance"`
	FrozenBalance  int64        `json:"frozen_balance"`
	TotalDeposited int64        `json:"total_deposited"`
	TotalWithdrawn int64        `json:"total_withdrawn"`
	TotalSpent     int64        `json:"total_spent"`
	TotalEarned    int64        `json:"total_earned"`
	CreditLimit    int64        `json:"credit_limit"`
	Status         WalletStatus `json:"status"`
	FreezeReason   *string      `json:"freeze_reason,omitempty"`
	FrozenAt       *time.Time   `json:"frozen_at,omitempty"`
	UnfreezeReason *string      `json:"unfreeze_reason,omitempty"`
	UnfrozenAt     *time.Time   `json:"unfrozen_at,omitempty"`
	SuspendReason  *string      `json:"suspend_reason,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// CreditUsed returns the drawn portion of the credit limit. It is always
// derived from the balance, never stored.
func (w *Wallet) CreditUsed() int64 {
	if w.Balance < 0 {
		return -w.Balance
	}
	return 0
}

// AvailableCredit returns the remaining overdraft headroom.
func (w *Wallet) AvailableCredit() int64 {
	remaining := w.CreditLimit - w.CreditUsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsSuspended reports whether the wallet is administratively locked.
func (w *Wallet) IsSuspended() bool {
	return w.Status == WalletStatusSuspended
}

// CanDebit reports whether a debit of amount (positive minor units) fits
// within the balance plus the credit limit.
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance-amount >= -w.CreditLimit
}
