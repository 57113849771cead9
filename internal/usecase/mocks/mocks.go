package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error)
	UpdateValueFunc      func(ctx context.Context, tx usecase.Transaction, id string, value decimal.Decimal, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

func (m *MockWalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w := *wallet
	m.wallets[wallet.ID] = &w
	return nil
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockWalletRepository) UpdateValue(ctx context.Context, tx usecase.Transaction, id string, value decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateValueFunc != nil {
		return m.UpdateValueFunc(ctx, tx, id, value, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Value = value
	w.UpdatedAt = updatedAt
	return nil
}

func (m *MockWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, w := range m.wallets {
		c := *w
		wallets = append(wallets, &c)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return page(wallets, limit, offset), nil
}

// MockWalletItemRepository is a mock implementation of WalletItemRepository.
// Items are kept in insertion order.
type MockWalletItemRepository struct {
	mu    sync.RWMutex
	items []*domain.WalletItem

	CreateFunc                   func(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error
	GetByIDFunc                  func(ctx context.Context, id string) (*domain.WalletItem, error)
	GetByIDForUpdateFunc         func(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletItem, error)
	UpdateFunc                   func(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error
	DeleteFunc                   func(ctx context.Context, tx usecase.Transaction, id string) error
	FindByWalletAndDateRangeFunc func(ctx context.Context, walletID string, start, end time.Time, limit, offset int) ([]*domain.WalletItem, int64, error)
	FindByWalletAndTypeFunc      func(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error)
	SumByWalletFunc              func(ctx context.Context, walletID string) (decimal.Decimal, error)
}

func NewMockWalletItemRepository() *MockWalletItemRepository {
	return &MockWalletItemRepository{}
}

func (m *MockWalletItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *item
	m.items = append(m.items, &c)
	return nil
}

func (m *MockWalletItemRepository) GetByID(ctx context.Context, id string) (*domain.WalletItem, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items {
		if it.ID == id {
			c := *it
			return &c, nil
		}
	}
	return nil, domain.ErrWalletItemNotFound
}

func (m *MockWalletItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletItem, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockWalletItemRepository) Update(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.ID == item.ID {
			c := *item
			m.items[i] = &c
			return nil
		}
	}
	return domain.ErrWalletItemNotFound
}

func (m *MockWalletItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrWalletItemNotFound
}

func (m *MockWalletItemRepository) FindByWalletAndDateRange(ctx context.Context, walletID string, start, end time.Time, limit, offset int) ([]*domain.WalletItem, int64, error) {
	if m.FindByWalletAndDateRangeFunc != nil {
		return m.FindByWalletAndDateRangeFunc(ctx, walletID, start, end, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.WalletItem
	for _, it := range m.items {
		if it.WalletID == walletID && !it.Date.Before(start) && !it.Date.After(end) {
			c := *it
			matched = append(matched, &c)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })
	return page(matched, limit, offset), int64(len(matched)), nil
}

func (m *MockWalletItemRepository) FindByWalletAndType(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error) {
	if m.FindByWalletAndTypeFunc != nil {
		return m.FindByWalletAndTypeFunc(ctx, walletID, itemType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.WalletItem
	for _, it := range m.items {
		if it.WalletID == walletID && it.Type == itemType {
			c := *it
			matched = append(matched, &c)
		}
	}
	return matched, nil
}

func (m *MockWalletItemRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error) {
	if m.SumByWalletFunc != nil {
		return m.SumByWalletFunc(ctx, walletID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.WalletItem
	for _, it := range m.items {
		if it.WalletID == walletID {
			items = append(items, it)
		}
	}
	return domain.SignedSum(items), nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// MockUserWalletRepository is a mock implementation of UserWalletRepository.
type MockUserWalletRepository struct {
	mu          sync.RWMutex
	userWallets []*domain.UserWallet
	wallets     *MockWalletRepository

	CreateFunc            func(ctx context.Context, userWallet *domain.UserWallet) error
	ExistsFunc            func(ctx context.Context, userID, walletID string) (bool, error)
	ListWalletsByUserFunc func(ctx context.Context, userID string) ([]*domain.Wallet, error)
}

// NewMockUserWalletRepository resolves listed wallets through wallets, which may be nil.
func NewMockUserWalletRepository(wallets *MockWalletRepository) *MockUserWalletRepository {
	return &MockUserWalletRepository{wallets: wallets}
}

func (m *MockUserWalletRepository) Create(ctx context.Context, userWallet *domain.UserWallet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userWallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *userWallet
	m.userWallets = append(m.userWallets, &c)
	return nil
}

func (m *MockUserWalletRepository) Exists(ctx context.Context, userID, walletID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, userID, walletID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, uw := range m.userWallets {
		if uw.UserID == userID && uw.WalletID == walletID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	if m.ListWalletsByUserFunc != nil {
		return m.ListWalletsByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, uw := range m.userWallets {
		if uw.UserID != userID || m.wallets == nil {
			continue
		}
		w, err := m.wallets.GetByID(ctx, uw.WalletID)
		if err != nil {
			return nil, fmt.Errorf("resolve wallet %s: %w", uw.WalletID, err)
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = fmt.Sprintf("event-%d", len(m.events)+1)
	}
	c := *event
	m.events = append(m.events, &c)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			c := *e
			events = append(events, &c)
		}
	}
	return page(events, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
		}
	}
	return nil
}

// Events returns a copy of every recorded event.
func (m *MockOutboxRepository) Events() []domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]domain.OutboxEvent, 0, len(m.events))
	for _, e := range m.events {
		events = append(events, *e)
	}
	return events
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%03d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockMetricsRecorder counts recorded wallet metrics.
type MockMetricsRecorder struct {
	mu sync.Mutex

	Created    int
	Mutations  map[string]int
	Failures   map[string]int
	Mismatches []string
}

func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{
		Mutations: make(map[string]int),
		Failures:  make(map[string]int),
	}
}

func (m *MockMetricsRecorder) WalletCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created++
}

func (m *MockMetricsRecorder) ItemMutated(operation string, itemType domain.ItemType, value decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations[operation]++
}

func (m *MockMetricsRecorder) MutationFailed(operation, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[operation+":"+reason]++
}

func (m *MockMetricsRecorder) BalanceMismatch(walletID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mismatches = append(m.Mismatches, walletID)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
