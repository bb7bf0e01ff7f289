package service

import (
	"context"
	"testing"

	"marketplace-wallet/internal/core/domain"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type freezeTestDeps struct {
	svc        *FreezeServiceImpl
	walletRepo *mocks.MockWalletRepository
	ledgerRepo *mocks.MockLedgerRepository
	cache      *mocks.MockDetailsCache
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupFreezeService(t *testing.T) *freezeTestDeps {
	ctrl := gomock.NewController(t)
	d := &freezeTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		ledgerRepo: mocks.NewMockLedgerRepository(ctrl),
		cache:      mocks.NewMockDetailsCache(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewFreezeService(d.walletRepo, d.ledgerRepo, d.cache, d.transactor, zerolog.Nop())
	return d
}

func TestFreezeService_Freeze_Success(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(activeWallet(walletID, 7000), nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeFreeze, txn.Type)
			assert.Equal(t, int64(-1500), txn.Amount)
			assert.Equal(t, int64(5500), txn.BalanceAfter)
			return nil
		})
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	wallet, err := d.svc.Freeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   1500,
		Reason:   "dispute opened",
		Actor:    "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5500), wallet.Balance)
	assert.Equal(t, int64(1500), wallet.FrozenBalance)
	assert.Equal(t, domain.WalletStatusFrozen, wallet.Status)
	require.NotNil(t, wallet.FreezeReason)
	assert.Equal(t, "dispute opened", *wallet.FreezeReason)
	require.NotNil(t, wallet.FrozenAt)
}

func TestFreezeService_Freeze_ExceedsAvailable(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(activeWallet(walletID, 1000), nil)

	wallet, err := d.svc.Freeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   1001,
		Reason:   "dispute",
	})
	assert.Nil(t, wallet)
	assertAppError(t, err, "FRZ_001")
}

func TestFreezeService_Freeze_CreditNotFreezable(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	// Negative balance: wallet is in credit, nothing to freeze.
	wallet := activeWallet(walletID, -200)
	wallet.CreditLimit = 1000

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)

	got, err := d.svc.Freeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   100,
		Reason:   "dispute",
	})
	assert.Nil(t, got)
	assertAppError(t, err, "FRZ_001")
}

func TestFreezeService_Freeze_RequiresReason(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	wallet, err := d.svc.Freeze(context.Background(), ports.FreezeRequest{
		WalletID: uuid.New(),
		Amount:   100,
	})
	assert.Nil(t, wallet)
	assertAppError(t, err, "VAL_002")
}

func TestFreezeService_Freeze_Suspended(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 1000)
	wallet.Status = domain.WalletStatusSuspended

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)

	got, err := d.svc.Freeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   100,
		Reason:   "dispute",
	})
	assert.Nil(t, got)
	assertAppError(t, err, "WAL_003")
}

func TestFreezeService_Unfreeze_Partial(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 500)
	wallet.Status = domain.WalletStatusFrozen
	wallet.FrozenBalance = 1500

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionTypeUnfreeze, txn.Type)
			assert.Equal(t, int64(600), txn.Amount)
			return nil
		})
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	got, err := d.svc.Unfreeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   600,
		Reason:   "partial release",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1100), got.Balance)
	assert.Equal(t, int64(900), got.FrozenBalance)
	// Funds remain frozen, status unchanged.
	assert.Equal(t, domain.WalletStatusFrozen, got.Status)
}

func TestFreezeService_Unfreeze_FullRestoresActive(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 0)
	wallet.Status = domain.WalletStatusFrozen
	wallet.FrozenBalance = 1500

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)
	d.ledgerRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.walletRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, walletID).Return(nil)

	got, err := d.svc.Unfreeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   1500,
		Reason:   "dispute resolved",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Balance)
	assert.Equal(t, int64(0), got.FrozenBalance)
	assert.Equal(t, domain.WalletStatusActive, got.Status)
	require.NotNil(t, got.UnfreezeReason)
	assert.Equal(t, "dispute resolved", *got.UnfreezeReason)
	require.NotNil(t, got.UnfrozenAt)
}

func TestFreezeService_Unfreeze_ExceedsFrozen(t *testing.T) {
	d := setupFreezeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	wallet := activeWallet(walletID, 0)
	wallet.Status = domain.WalletStatusFrozen
	wallet.FrozenBalance = 500

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(wallet, nil)

	got, err := d.svc.Unfreeze(ctx, ports.FreezeRequest{
		WalletID: walletID,
		Amount:   501,
		Reason:   "release",
	})
	assert.Nil(t, got)
	assertAppError(t, err, "FRZ_002")
}
