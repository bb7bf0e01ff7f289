package dto

import (
	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
)

// EnsureWalletRequest is the request body for wallet creation/lookup.
type EnsureWalletRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	Currency string `json:"currency" binding:"required,len=3"`
}

// AdjustBalanceRequest is the request body for a manual balance adjustment.
// Amount is a signed decimal string in major units ("-25.00").
type AdjustBalanceRequest struct {
	Amount    string  `json:"amount" binding:"required"`
	Type      string  `json:"type,omitempty"`
	Reason    string  `json:"reason" binding:"required,max=500"`
	Reference *string `json:"reference,omitempty" binding:"omitempty,max=100,safe_id"`
}

// FreezeRequest is the request body for freezing funds on a wallet.
type FreezeRequest struct {
	Amount string `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// UnfreezeRequest is the request body for releasing frozen funds. The
// wallet is addressed by owner and currency.
type UnfreezeRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	Currency string `json:"currency" binding:"required,len=3"`
	Amount   string `json:"amount" binding:"required"`
	Reason   string `json:"reason,omitempty" binding:"max=500"`
}

// CreditLimitRequest is the request body for changing the overdraft limit.
type CreditLimitRequest struct {
	CreditLimit string `json:"credit_limit" binding:"required"`
	Reason      string `json:"reason" binding:"required,max=500"`
}

// CreditLimitByUserRequest addresses the wallet by its owner instead of the
// wallet id, like UnfreezeRequest does.
type CreditLimitByUserRequest struct {
	UserID      string `json:"user_id" binding:"required,uuid"`
	Currency    string `json:"currency" binding:"required,len=3"`
	CreditLimit string `json:"credit_limit" binding:"required"`
	Reason      string `json:"reason" binding:"required,max=500"`
}

// NoteRequest is the request body for appending an admin note.
type NoteRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

// SuspendRequest is the request body for suspending a wallet.
type SuspendRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// WalletResponse is the wallet state rendered for the admin interface.
// Monetary fields are decimal strings in major units.
type WalletResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	Currency        string  `json:"currency"`
	Balance         string  `json:"balance"`
	FrozenBalance   string  `json:"frozen_balance"`
	TotalDeposited  string  `json:"total_deposited"`
	TotalWithdrawn  string  `json:"total_withdrawn"`
	TotalSpent      string  `json:"total_spent"`
	TotalEarned     string  `json:"total_earned"`
	CreditLimit     string  `json:"credit_limit"`
	CreditUsed      string  `json:"credit_used"`
	AvailableCredit string  `json:"available_credit"`
	Status          string  `json:"status"`
	FreezeReason    *string `json:"freeze_reason,omitempty"`
	FrozenAt        *string `json:"frozen_at,omitempty"`
	UnfreezeReason  *string `json:"unfreeze_reason,omitempty"`
	UnfrozenAt      *string `json:"unfrozen_at,omitempty"`
	SuspendReason   *string `json:"suspend_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// TransactionResponse is a ledger entry rendered for the admin interface.
type TransactionResponse struct {
	ID           string  `json:"id"`
	WalletID     string  `json:"wallet_id"`
	Type         string  `json:"type"`
	Amount       string  `json:"amount"`
	Currency     string  `json:"currency"`
	Description  string  `json:"description,omitempty"`
	Status       string  `json:"status"`
	Reference    *string `json:"reference,omitempty"`
	CreatedBy    string  `json:"created_by"`
	BalanceAfter string  `json:"balance_after"`
	CreatedAt    string  `json:"created_at"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
}

// NoteResponse is an admin note rendered for the admin interface.
type NoteResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// TypeStatsResponse aggregates ledger entries of one type.
type TypeStatsResponse struct {
	Type    string `json:"type"`
	Count   int64  `json:"count"`
	Total   string `json:"total"`
	Average string `json:"average"`
}

// StatisticsResponse is the per-wallet ledger aggregate.
type StatisticsResponse struct {
	TotalEntries int64               `json:"total_entries"`
	ByType       []TypeStatsResponse `json:"by_type"`
}

// WalletDetailsResponse is the composed admin view of one wallet.
type WalletDetailsResponse struct {
	Wallet             WalletResponse        `json:"wallet"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
	FreezeHistory      []TransactionResponse `json:"freeze_history"`
	Notes              []NoteResponse        `json:"notes"`
	Statistics         StatisticsResponse    `json:"statistics"`
}

// TransactionListResponse wraps a paginated ledger listing.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ReconcileResponse is the outcome of a ledger replay check.
type ReconcileResponse struct {
	WalletID        string `json:"wallet_id"`
	StoredBalance   string `json:"stored_balance"`
	StoredFrozen    string `json:"stored_frozen"`
	LedgerBalance   string `json:"ledger_balance"`
	LedgerFrozen    string `json:"ledger_frozen"`
	StoredDeposited string `json:"stored_deposited"`
	StoredWithdrawn string `json:"stored_withdrawn"`
	StoredSpent     string `json:"stored_spent"`
	StoredEarned    string `json:"stored_earned"`
	LedgerDeposited string `json:"ledger_deposited"`
	LedgerWithdrawn string `json:"ledger_withdrawn"`
	LedgerSpent     string `json:"ledger_spent"`
	LedgerEarned    string `json:"ledger_earned"`
	Entries         int64  `json:"entries"`
	Consistent      bool   `json:"consistent"`
}

// ToWalletResponse converts a domain wallet for the wire.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	resp := WalletResponse{
		ID:              w.ID.String(),
		UserID:          w.UserID.String(),
		Currency:        w.Currency,
		Balance:         FormatAmount(w.Balance, w.Currency),
		FrozenBalance:   FormatAmount(w.FrozenBalance, w.Currency),
		TotalDeposited:  FormatAmount(w.TotalDeposited, w.Currency),
		TotalWithdrawn:  FormatAmount(w.TotalWithdrawn, w.Currency),
		TotalSpent:      FormatAmount(w.TotalSpent, w.Currency),
		TotalEarned:     FormatAmount(w.TotalEarned, w.Currency),
		CreditLimit:     FormatAmount(w.CreditLimit, w.Currency),
		CreditUsed:      FormatAmount(w.CreditUsed(), w.Currency),
		AvailableCredit: FormatAmount(w.AvailableCredit(), w.Currency),
		Status:          string(w.Status),
		FreezeReason:    w.FreezeReason,
		UnfreezeReason:  w.UnfreezeReason,
		SuspendReason:   w.SuspendReason,
		CreatedAt:       w.CreatedAt.Format(timeFormat),
		UpdatedAt:       w.UpdatedAt.Format(timeFormat),
	}
	if w.FrozenAt != nil {
		s := w.FrozenAt.Format(timeFormat)
		resp.FrozenAt = &s
	}
	if w.UnfrozenAt != nil {
		s := w.UnfrozenAt.Format(timeFormat)
		resp.UnfrozenAt = &s
	}
	return resp
}

// ToTransactionResponse converts a domain ledger entry for the wire.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID.String(),
		WalletID:     t.WalletID.String(),
		Type:         string(t.Type),
		Amount:       FormatAmount(t.Amount, t.Currency),
		Currency:     t.Currency,
		Description:  t.Description,
		Status:       string(t.Status),
		Reference:    t.Reference,
		CreatedBy:    t.CreatedBy,
		BalanceAfter: FormatAmount(t.BalanceAfter, t.Currency),
		CreatedAt:    t.CreatedAt.Format(timeFormat),
	}
	if t.ProcessedAt != nil {
		s := t.ProcessedAt.Format(timeFormat)
		resp.ProcessedAt = &s
	}
	return resp
}

// ToTransactionResponses converts a slice of ledger entries.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, ToTransactionResponse(&txns[i]))
	}
	return out
}

// ToWalletDetailsResponse converts the composed details view.
func ToWalletDetailsResponse(d *ports.WalletDetails) WalletDetailsResponse {
	currency := d.Wallet.Currency
	notes := make([]NoteResponse, 0, len(d.Notes))
	for _, n := range d.Notes {
		notes = append(notes, NoteResponse{
			ID:        n.ID.String(),
			AuthorID:  n.AuthorID,
			Text:      n.Text,
			CreatedAt: n.CreatedAt.Format(timeFormat),
		})
	}
	stats := StatisticsResponse{ByType: []TypeStatsResponse{}}
	if d.Statistics != nil {
		stats.TotalEntries = d.Statistics.TotalEntries
		for _, ts := range d.Statistics.ByType {
			stats.ByType = append(stats.ByType, TypeStatsResponse{
				Type:    string(ts.Type),
				Count:   ts.Count,
				Total:   FormatAmount(ts.Total, currency),
				Average: FormatAmount(ts.Average, currency),
			})
		}
	}
	return WalletDetailsResponse{
		Wallet:             ToWalletResponse(d.Wallet),
		RecentTransactions: ToTransactionResponses(d.RecentTransactions),
		FreezeHistory:      ToTransactionResponses(d.FreezeHistory),
		Notes:              notes,
		Statistics:         stats,
	}
}

// ToReconcileResponse converts a replay report for the wire.
func ToReconcileResponse(r *ports.ReconcileReport, currency string) ReconcileResponse {
	return ReconcileResponse{
		WalletID:        r.WalletID.String(),
		StoredBalance:   FormatAmount(r.StoredBalance, currency),
		StoredFrozen:    FormatAmount(r.StoredFrozen, currency),
		LedgerBalance:   FormatAmount(r.LedgerBalance, currency),
		LedgerFrozen:    FormatAmount(r.LedgerFrozen, currency),
		StoredDeposited: FormatAmount(r.StoredDeposited, currency),
		StoredWithdrawn: FormatAmount(r.StoredWithdrawn, currency),
		StoredSpent:     FormatAmount(r.StoredSpent, currency),
		StoredEarned:    FormatAmount(r.StoredEarned, currency),
		LedgerDeposited: FormatAmount(r.LedgerDeposited, currency),
		LedgerWithdrawn: FormatAmount(r.LedgerWithdrawn, currency),
		LedgerSpent:     FormatAmount(r.LedgerSpent, currency),
		LedgerEarned:    FormatAmount(r.LedgerEarned, currency),
		Entries:         r.Entries,
		Consistent:      r.Consistent,
	}
}

const timeFormat = "2006-01-02T15:04:05Z07:00"
