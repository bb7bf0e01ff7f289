package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, wallet_id, type, amount, currency, description,
		status, reference, created_by, balance_after, created_at, processed_at`

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends a ledger entry within a database transaction.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Type, t.Amount, t.Currency, t.Description,
		t.Status, t.Reference, t.CreatedBy, t.BalanceAfter, t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by UUID.
func (r *LedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByReference fetches a completed entry by wallet and reference.
// Used for idempotent replay of adjustments carrying a reference.
func (r *LedgerRepo) GetByReference(ctx context.Context, walletID uuid.UUID, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE wallet_id = $1 AND reference = $2 AND status = 'COMPLETED'`
	return scanTransaction(r.pool.QueryRow(ctx, query, walletID, reference))
}

// UpdateStatus flips a PENDING entry to a terminal status within a
// transaction. Completed entries are never updated.
func (r *LedgerRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	query := `UPDATE ledger_entries SET status = $1, processed_at = $2 WHERE id = $3 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update ledger entry status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending ledger entry not found: %s", id)
	}
	return nil
}

// List fetches ledger entries with filtering and pagination, newest first.
func (r *LedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("wallet_id = $%d", argIdx))
	args = append(args, params.WalletID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ledger_entries %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+ledgerColumns+` FROM ledger_entries %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListFreezeEvents returns FREEZE/UNFREEZE entries for a wallet, newest first.
func (r *LedgerRepo) ListFreezeEvents(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE wallet_id = $1 AND type IN ('FREEZE', 'UNFREEZE')
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list freeze events: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListCompleted returns every COMPLETED entry for the wallet, oldest first,
// for ledger replay.
func (r *LedgerRepo) ListCompleted(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE wallet_id = $1 AND status = 'COMPLETED'
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list completed entries: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListStalePending returns PENDING entries created before the cutoff,
// oldest first.
func (r *LedgerRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending entries: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetStats aggregates completed entries per transaction type.
func (r *LedgerRepo) GetStats(ctx context.Context, walletID uuid.UUID) (*ports.LedgerStats, error) {
	query := `SELECT type, COUNT(*), COALESCE(SUM(ABS(amount)), 0)
		FROM ledger_entries
		WHERE wallet_id = $1 AND status = 'COMPLETED'
		GROUP BY type ORDER BY type`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	defer rows.Close()

	stats := &ports.LedgerStats{}
	for rows.Next() {
		var ts ports.TypeStats
		if err := rows.Scan(&ts.Type, &ts.Count, &ts.Total); err != nil {
			return nil, fmt.Errorf("scan ledger stats row: %w", err)
		}
		if ts.Count > 0 {
			ts.Average = ts.Total / ts.Count
		}
		stats.TotalEntries += ts.Count
		stats.ByType = append(stats.ByType, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger stats rows: %w", err)
	}
	return stats, nil
}

// collectTransactions drains rows into a slice.
func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Currency, &t.Description,
			&t.Status, &t.Reference, &t.CreatedBy, &t.BalanceAfter, &t.CreatedAt, &t.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return txns, nil
}

// scanTransaction scans a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Currency, &t.Description,
		&t.Status, &t.Reference, &t.CreatedBy, &t.BalanceAfter, &t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	return t, nil
}
