package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

type walletFixture struct {
	txManager  *mocks.MockTransactionManager
	walletRepo *mocks.MockWalletRepository
	itemRepo   *mocks.MockWalletItemRepository
	outboxRepo *mocks.MockOutboxRepository
	idGen      *mocks.MockIDGenerator
	metrics    *mocks.MockMetricsRecorder

	wallets *usecase.WalletUseCase
	items   *usecase.WalletItemUseCase
}

func newWalletFixture() *walletFixture {
	f := &walletFixture{
		txManager:  mocks.NewMockTransactionManager(),
		walletRepo: mocks.NewMockWalletRepository(),
		itemRepo:   mocks.NewMockWalletItemRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		idGen:      mocks.NewMockIDGenerator(),
		metrics:    mocks.NewMockMetricsRecorder(),
	}
	f.wallets = usecase.NewWalletUseCase(f.txManager, f.walletRepo, f.itemRepo, f.outboxRepo, f.idGen, f.metrics)
	f.items = usecase.NewWalletItemUseCase(f.txManager, f.walletRepo, f.itemRepo, f.outboxRepo, f.idGen, f.metrics)
	return f
}

func (f *walletFixture) createWallet(t *testing.T, name, initial string) *domain.Wallet {
	t.Helper()
	w, err := f.wallets.CreateWallet(context.Background(), usecase.CreateWalletInput{
		Name:         name,
		InitialValue: decimal.RequireFromString(initial),
	})
	require.NoError(t, err)
	return w
}

func (f *walletFixture) createItem(t *testing.T, walletID string, itemType domain.ItemType, value string, date time.Time) *domain.WalletItem {
	t.Helper()
	item, err := f.items.CreateWalletItem(context.Background(), itemInput(walletID, itemType, value, date))
	require.NoError(t, err)
	return item
}

// assertConsistent checks that the cached balance equals the signed item sum.
func (f *walletFixture) assertConsistent(t *testing.T, walletID, expected string) {
	t.Helper()
	ctx := context.Background()

	w, err := f.walletRepo.GetByID(ctx, walletID)
	require.NoError(t, err)
	sum, err := f.itemRepo.SumByWallet(ctx, walletID)
	require.NoError(t, err)

	want := decimal.RequireFromString(expected)
	require.True(t, w.Value.Equal(want), "wallet value: expected %s, got %s", want, w.Value)
	require.True(t, sum.Equal(want), "item sum: expected %s, got %s", want, sum)
}

func itemInput(walletID string, itemType domain.ItemType, value string, date time.Time) usecase.CreateWalletItemInput {
	v := decimal.RequireFromString(value)
	return usecase.CreateWalletItemInput{
		WalletID:    walletID,
		Date:        &date,
		Type:        &itemType,
		Description: "test item",
		Value:       &v,
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
