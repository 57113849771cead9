package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
)

func lockCount(s *Store) int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func TestStore_LocksReleasedAfterTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	wallets := NewWalletRepository(store)

	for i := range 10 {
		tx, err := txm.Begin(ctx)
		require.NoError(t, err)

		w := &domain.Wallet{ID: fmt.Sprintf("w-%d", i), Name: "Main", Value: decimal.Zero}
		require.NoError(t, wallets.Create(ctx, tx, w))
		require.NoError(t, tx.Commit(ctx))

		tx, err = txm.Begin(ctx)
		require.NoError(t, err)
		_, err = wallets.GetByIDForUpdate(ctx, tx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, lockCount(store))
		require.NoError(t, tx.Rollback(ctx))
	}

	assert.Equal(t, 0, lockCount(store))
}

func TestStore_LockEntryKeptWhileWaiting(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.lock(context.Background(), "wallet:1"))

	acquired := make(chan error, 1)
	go func() {
		acquired <- store.lock(context.Background(), "wallet:1")
	}()

	require.Eventually(t, func() bool {
		store.locksMu.Lock()
		defer store.locksMu.Unlock()
		return store.locks["wallet:1"].refs == 2
	}, time.Second, time.Millisecond)

	store.unlock("wallet:1")
	require.NoError(t, <-acquired)
	assert.Equal(t, 1, lockCount(store))

	store.unlock("wallet:1")
	assert.Equal(t, 0, lockCount(store))
}

func TestStore_CancelledWaiterDropsReference(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.lock(context.Background(), "item:1"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := store.lock(ctx, "item:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	store.unlock("item:1")
	assert.Equal(t, 0, lockCount(store))
}
