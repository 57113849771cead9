package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/gomocks"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

func TestWalletUseCase_CreateWallet(t *testing.T) {
	tests := []struct {
		name         string
		input        usecase.CreateWalletInput
		expectErr    error
		expectMsgs   []string
		expectItems  int
		expectEvents int
	}{
		{
			name:         "with initial value records opening item",
			input:        usecase.CreateWalletInput{Name: "Groceries", InitialValue: decimal.NewFromInt(250)},
			expectItems:  1,
			expectEvents: 1,
		},
		{
			name:         "zero initial value records no item",
			input:        usecase.CreateWalletInput{Name: "Savings"},
			expectItems:  0,
			expectEvents: 1,
		},
		{
			name:       "empty name and negative value",
			input:      usecase.CreateWalletInput{Name: "  ", InitialValue: decimal.NewFromInt(-1)},
			expectErr:  domain.ErrValidation,
			expectMsgs: []string{"name must not be empty", "initial value must not be negative"},
		},
		{
			name:       "initial value finer than the stored scale",
			input:      usecase.CreateWalletInput{Name: "Main", InitialValue: decimal.RequireFromString("0.00004")},
			expectErr:  domain.ErrValidation,
			expectMsgs: []string{"initial value must have at most 4 decimal places"},
		},
		{
			name:       "initial value above the item cap",
			input:      usecase.CreateWalletInput{Name: "Main", InitialValue: decimal.RequireFromString("1e20")},
			expectErr:  domain.ErrValidation,
			expectMsgs: []string{"initial value must not exceed " + domain.MaxItemValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWalletFixture()

			wallet, err := f.wallets.CreateWallet(context.Background(), tt.input)

			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				assert.Equal(t, tt.expectMsgs, domain.ValidationMessages(err))
				assert.Equal(t, 0, f.metrics.Created)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Name, wallet.Name)
			assert.NotEmpty(t, wallet.ID)
			assert.True(t, wallet.Value.Equal(tt.input.InitialValue))

			items, err := f.itemRepo.FindByWalletAndType(context.Background(), wallet.ID, domain.ItemTypeInflow)
			require.NoError(t, err)
			require.Len(t, items, tt.expectItems)
			if tt.expectItems > 0 {
				assert.Equal(t, domain.OpeningBalanceDescription, items[0].Description)
			}

			events := f.outboxRepo.Events()
			require.Len(t, events, tt.expectEvents)
			assert.Equal(t, domain.EventTypeWalletCreated, events[0].EventType)
			assert.Equal(t, 1, f.metrics.Created)

			f.assertConsistent(t, wallet.ID, tt.input.InitialValue.String())
		})
	}
}

func TestWalletUseCase_CreateWallet_RepositoryError(t *testing.T) {
	f := newWalletFixture()
	f.walletRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
		return errors.New("insert failed")
	}

	_, err := f.wallets.CreateWallet(context.Background(), usecase.CreateWalletInput{Name: "w"})
	require.ErrorIs(t, err, domain.ErrConsistency)

	var cerr *domain.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, usecase.OpCreateWallet, cerr.Op)
	assert.Equal(t, 0, f.metrics.Created)
	assert.Equal(t, 1, f.metrics.Failures[usecase.OpCreateWallet+":consistency"])
}

func TestWalletUseCase_CreateWallet_OpeningItemError(t *testing.T) {
	f := newWalletFixture()
	f.itemRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
		return errors.New("check constraint violated")
	}

	_, err := f.wallets.CreateWallet(context.Background(), usecase.CreateWalletInput{Name: "w", InitialValue: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, domain.ErrConsistency)
	assert.Equal(t, 1, f.metrics.Failures[usecase.OpCreateWallet+":consistency"])
	assert.Empty(t, f.outboxRepo.Events())
}

func TestWalletUseCase_UpdateValue_RejectsUnstorableValue(t *testing.T) {
	f := newWalletFixture()
	w := f.createWallet(t, "Main", "100")

	_, err := f.wallets.UpdateValue(context.Background(), w.ID, decimal.RequireFromString("12.34567"))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"value must have at most 4 decimal places"}, domain.ValidationMessages(err))

	f.assertConsistent(t, w.ID, "100")
}

func TestWalletUseCase_GetWallet(t *testing.T) {
	f := newWalletFixture()
	created := f.createWallet(t, "Main", "10")

	got, err := f.wallets.GetWallet(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.wallets.GetWallet(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalletUseCase_ListWallets(t *testing.T) {
	f := newWalletFixture()
	f.createWallet(t, "a", "0")
	f.createWallet(t, "b", "0")
	f.createWallet(t, "c", "0")

	wallets, err := f.wallets.ListWallets(context.Background(), usecase.ListWalletsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, wallets, 2)

	wallets, err = f.wallets.ListWallets(context.Background(), usecase.ListWalletsInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}

func TestWalletUseCase_UpdateValue(t *testing.T) {
	f := newWalletFixture()
	w := f.createWallet(t, "Main", "100")

	updated, err := f.wallets.UpdateValue(context.Background(), w.ID, decimal.NewFromInt(42))
	require.NoError(t, err)
	assert.True(t, updated.Value.Equal(decimal.NewFromInt(42)))

	stored, err := f.walletRepo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, stored.Value.Equal(decimal.NewFromInt(42)))

	events := f.outboxRepo.Events()
	assert.Equal(t, domain.EventTypeWalletValueSet, events[len(events)-1].EventType)

	_, err = f.wallets.UpdateValue(context.Background(), "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestWalletUseCase_UpdateValue_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := gomocks.NewMockTransaction(ctrl)
	tx.EXPECT().Commit(gomock.Any()).Return(errors.New("connection reset"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	txManager := gomocks.NewMockTransactionManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)

	walletRepo := gomocks.NewMockWalletRepository(ctrl)
	walletRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, "w1").
		Return(&domain.Wallet{ID: "w1", Value: decimal.NewFromInt(5)}, nil)
	walletRepo.EXPECT().UpdateValue(gomock.Any(), tx, "w1", decimal.NewFromInt(9), gomock.Any()).Return(nil)

	outboxRepo := gomocks.NewMockOutboxRepository(ctrl)
	outboxRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)

	metrics := gomocks.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().MutationFailed(usecase.OpSetWalletValue, "consistency")

	uc := usecase.NewWalletUseCase(txManager, walletRepo, gomocks.NewMockWalletItemRepository(ctrl), outboxRepo, mocks.NewMockIDGenerator(), metrics)

	_, err := uc.UpdateValue(context.Background(), "w1", decimal.NewFromInt(9))
	require.ErrorIs(t, err, domain.ErrConsistency)

	var cerr *domain.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, usecase.OpSetWalletValue, cerr.Op)
}

func TestWalletUseCase_CreateWallet_Timeout(t *testing.T) {
	f := newWalletFixture()
	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(usecase.DefaultTransactionTimeout), deadline, time.Second)
		return &mocks.MockTransaction{}, nil
	}

	_, err := f.wallets.CreateWallet(context.Background(), usecase.CreateWalletInput{Name: "w"})
	require.NoError(t, err)
}
