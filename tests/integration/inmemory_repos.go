package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.UserID == w.UserID && existing.Currency == w.Currency {
			return fmt.Errorf("wallet already exists")
		}
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID, currency)
}

func (r *inMemoryWalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.ID]; !ok {
		return fmt.Errorf("wallet not found")
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*domain.Transaction
	order   []uuid.UUID // creation order
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{entries: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.entries[t.ID] = &cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *inMemoryLedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryLedgerRepo) GetByReference(ctx context.Context, walletID uuid.UUID, reference string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.entries {
		if t.WalletID == walletID && t.Reference != nil && *t.Reference == reference &&
			t.Status == domain.TransactionStatusCompleted {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryLedgerRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.entries[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return fmt.Errorf("pending entry not found")
	}
	now := time.Now()
	t.Status = status
	t.ProcessedAt = &now
	return nil
}

func (r *inMemoryLedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	// newest first
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.entries[r.order[i]]
		if t.WalletID != params.WalletID {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		result = append(result, *t)
	}
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryLedgerRepo) ListFreezeEvents(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for i := len(r.order) - 1; i >= 0 && len(result) < limit; i-- {
		t := r.entries[r.order[i]]
		if t.WalletID == walletID && t.IsFreezeEvent() {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r *inMemoryLedgerRepo) ListCompleted(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, id := range r.order {
		t := r.entries[id]
		if t.WalletID == walletID && t.Status == domain.TransactionStatusCompleted {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r *inMemoryLedgerRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, id := range r.order {
		if len(result) >= limit {
			break
		}
		t := r.entries[id]
		if t.Status == domain.TransactionStatusPending && t.CreatedAt.Before(olderThan) {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r *inMemoryLedgerRepo) GetStats(ctx context.Context, walletID uuid.UUID) (*ports.LedgerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.TransactionType]*ports.TypeStats)
	var typeOrder []domain.TransactionType
	stats := &ports.LedgerStats{ByType: []ports.TypeStats{}}
	for _, id := range r.order {
		t := r.entries[id]
		if t.WalletID != walletID || t.Status != domain.TransactionStatusCompleted {
			continue
		}
		stats.TotalEntries++
		ts, ok := counts[t.Type]
		if !ok {
			ts = &ports.TypeStats{Type: t.Type}
			counts[t.Type] = ts
			typeOrder = append(typeOrder, t.Type)
		}
		ts.Count++
		abs := t.Amount
		if abs < 0 {
			abs = -abs
		}
		ts.Total += abs
	}
	for _, typ := range typeOrder {
		ts := counts[typ]
		ts.Average = ts.Total / ts.Count
		stats.ByType = append(stats.ByType, *ts)
	}
	return stats, nil
}

// --- In-Memory Note Repo ---

type inMemoryNoteRepo struct {
	mu    sync.RWMutex
	notes []domain.AdminNote
}

func newInMemoryNoteRepo() *inMemoryNoteRepo {
	return &inMemoryNoteRepo{}
}

func (r *inMemoryNoteRepo) Create(ctx context.Context, note *domain.AdminNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, *note)
	return nil
}

func (r *inMemoryNoteRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.AdminNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.AdminNote
	// newest first
	for i := len(r.notes) - 1; i >= 0; i-- {
		if r.notes[i].WalletID == walletID {
			result = append(result, r.notes[i])
		}
	}
	return result, nil
}

// --- Serializing Transactor ---

// serialTransactor emulates the per-wallet row lock by serializing whole
// transactions behind a single mutex. Begin blocks until the previous
// transaction commits or rolls back, which gives the same
// read-check-write atomicity the production path gets from
// SELECT ... FOR UPDATE.
type serialTransactor struct {
	mu sync.Mutex
}

func newSerialTransactor() *serialTransactor {
	return &serialTransactor{}
}

func (t *serialTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx is a pgx.Tx that only tracks the held lock; the in-memory repos
// apply writes immediately.
type serialTx struct {
	release *sync.Mutex
	done    bool
}

func (t *serialTx) finish() {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) Commit(ctx context.Context) error          { t.finish(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error        { t.finish(); return nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
