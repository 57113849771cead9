// Package memory is an in-process implementation of the usecase repositories.
// Writes made inside a transaction are staged and applied atomically on
// commit; SELECT ... FOR UPDATE is emulated with per-row locks held until the
// transaction ends.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

// Store holds every table of the in-memory backend.
type Store struct {
	mu sync.RWMutex

	wallets     map[string]*domain.Wallet
	items       map[string]*storedItem
	users       map[string]*domain.User
	userWallets []*domain.UserWallet
	outbox      []*domain.OutboxEvent
	seq         int64

	locksMu sync.Mutex
	locks   map[string]*rowLock
}

type storedItem struct {
	item domain.WalletItem
	seq  int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		wallets: make(map[string]*domain.Wallet),
		items:   make(map[string]*storedItem),
		users:   make(map[string]*domain.User),
		locks:   make(map[string]*rowLock),
	}
}

// rowLock is a one-slot semaphore. refs counts the holder and every waiter so
// the entry can be dropped once nobody references it.
type rowLock struct {
	ch   chan struct{}
	refs int
}

// lock blocks until the row lock for key is free or ctx is done.
func (s *Store) lock(ctx context.Context, key string) error {
	s.locksMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		s.release(key, l)
		return ctx.Err()
	}
}

func (s *Store) unlock(key string) {
	s.locksMu.Lock()
	l := s.locks[key]
	s.locksMu.Unlock()

	<-l.ch
	s.release(key, l)
}

func (s *Store) release(key string, l *rowLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

// TxManager implements usecase.TransactionManager for the store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	return &Tx{store: m.store, held: make(map[string]struct{})}, nil
}

// Tx stages writes until Commit.
type Tx struct {
	store *Store
	mu    sync.Mutex
	ops   []func(*Store)
	held  map[string]struct{}
	done  bool
}

// Commit applies every staged write atomically and releases the row locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}

	t.store.mu.Lock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards staged writes and releases the row locks.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.ops = nil
	for key := range t.held {
		t.store.unlock(key)
	}
	t.held = nil
}

func (t *Tx) stage(op func(*Store)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.ops = append(t.ops, op)
	return nil
}

// lockRow takes the row lock for key unless this transaction already holds it.
func (t *Tx) lockRow(ctx context.Context, key string) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return ErrTxDone
	}
	if _, ok := t.held[key]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.store.lock(ctx, key); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		t.store.unlock(key)
		return ErrTxDone
	}
	t.held[key] = struct{}{}
	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, errors.New("memory: transaction was not started by memory.TxManager")
	}
	return t, nil
}

func walletKey(id string) string { return "wallet:" + id }

func itemKey(id string) string { return "item:" + id }

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
