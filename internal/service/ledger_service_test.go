package service

import (
	"context"
	"fmt"
	"testing"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/internal/core/ports/mocks"
	"marketplace-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	walletRepo *mocks.MockWalletRepository
	ledgerRepo *mocks.MockLedgerRepository
	cache      *mocks.MockDetailsCache
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		ledgerRepo: mocks.NewMockLedgerRepository(ctrl),
		cache:      mocks.NewMockDetailsCache(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.walletRepo, d.ledgerRepo, d.cache, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func activeWallet(id uuid.UUID, balance int64) *domain.Wallet {
	return &domain.Wallet{
		ID:       id,
		UserID:   uuid.New(),
		Currency: "USD",
		Balance:  balance,
		Status:   domain.WalletStatusActive,
	}
}

func TestLedgerService_AdjustBalance_Deposit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(activeWallet(walletID, 1000), nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, w *domain.Wallet) error {
			assert.Equal(t, int64(3500), w.Balance)
			assert.Equal(t, int64(2500), w.TotalDeposited)
			return nil
		})
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   2500,
		Type:     domain.TransactionTypeDeposit,
		Reason:   "order payout",
		Actor:    domain.SystemActor,
	})
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, domain.TransactionTypeDeposit, txn.Type)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, int64(2500), txn.Amount)
	assert.Equal(t, int64(3500), txn.BalanceAfter)
	require.NotNil(t, txn.ProcessedAt)
}

func TestLedgerService_AdjustBalance_ZeroAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	txn, err := d.svc.AdjustBalance(context.Background(), ports.AdjustmentRequest{
		WalletID: uuid.New(),
		Amount:   0,
		Reason:   "noop",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "VAL_001")
}

func TestLedgerService_AdjustBalance_AdjustmentRequiresReason(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	txn, err := d.svc.AdjustBalance(context.Background(), ports.AdjustmentRequest{
		WalletID: uuid.New(),
		Amount:   100,
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "VAL_002")
}

func TestLedgerService_AdjustBalance_RejectsFreezeType(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	txn, err := d.svc.AdjustBalance(context.Background(), ports.AdjustmentRequest{
		WalletID: uuid.New(),
		Amount:   100,
		Type:     domain.TransactionTypeFreeze,
		Reason:   "nope",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "VAL_000")
}

func TestLedgerService_AdjustBalance_WalletNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(nil, nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   100,
		Reason:   "manual correction",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "WAL_001")
}

func TestLedgerService_AdjustBalance_Suspended(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 1000)
	wallet.Status = domain.WalletStatusSuspended

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   100,
		Reason:   "manual correction",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "WAL_003")
}

func TestLedgerService_AdjustBalance_FrozenBlocksDebit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 1000)
	wallet.Status = domain.WalletStatusFrozen
	wallet.FrozenBalance = 500

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   -100,
		Type:     domain.TransactionTypePayment,
		Reason:   "order",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "WAL_002")
}

func TestLedgerService_AdjustBalance_FrozenAllowsCredit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 1000)
	wallet.Status = domain.WalletStatusFrozen
	wallet.FrozenBalance = 500

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   300,
		Type:     domain.TransactionTypeRefund,
		Reason:   "return accepted",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1300), txn.BalanceAfter)
}

func TestLedgerService_AdjustBalance_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 1000)
	wallet.CreditLimit = 500

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   -1501,
		Type:     domain.TransactionTypePayment,
		Reason:   "order",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "BAL_001")
}

func TestLedgerService_AdjustBalance_DebitIntoCredit(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 1000)
	wallet.CreditLimit = 5000

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, w *domain.Wallet) error {
			assert.Equal(t, int64(-2000), w.Balance)
			assert.Equal(t, int64(3000), w.TotalSpent)
			return nil
		})
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   -3000,
		Type:     domain.TransactionTypePayment,
		Reason:   "order",
		Actor:    domain.SystemActor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-2000), txn.BalanceAfter)
}

func TestLedgerService_AdjustBalance_IdempotentReference(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	ref := "ORDER-42"

	existing := &domain.Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    2500,
		Status:    domain.TransactionStatusCompleted,
		Reference: &ref,
	}
	d.ledgerRepo.EXPECT().GetByReference(ctx, walletID, ref).Return(existing, nil)

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID:  walletID,
		Amount:    2500,
		Type:      domain.TransactionTypeDeposit,
		Reason:    "order payout",
		Reference: &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, txn.ID)
}

func TestLedgerService_AdjustBalance_LockTimeout(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).
		Return(nil, fmt.Errorf("%w: canceling statement due to lock timeout", ports.ErrLockNotAcquired))

	txn, err := d.svc.AdjustBalance(ctx, ports.AdjustmentRequest{
		WalletID: walletID,
		Amount:   100,
		Reason:   "manual correction",
	})
	assert.Nil(t, txn)
	assertAppError(t, err, "SYS_002")
}

func TestLedgerService_RecordWithdrawal(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(activeWallet(walletID, 5000), nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, w *domain.Wallet) error {
			assert.Equal(t, int64(2000), w.TotalWithdrawn)
			return nil
		})
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	txn, err := d.svc.RecordWithdrawal(ctx, walletID, 2000, "payout to bank", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-2000), txn.Amount)
	assert.Equal(t, int64(3000), txn.BalanceAfter)
	assert.Equal(t, domain.SystemActor, txn.CreatedBy)
}

func TestLedgerService_RecordDeposit_NegativeAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	txn, err := d.svc.RecordDeposit(context.Background(), uuid.New(), -100, "bad", nil)
	assert.Nil(t, txn)
	assertAppError(t, err, "VAL_001")
}
