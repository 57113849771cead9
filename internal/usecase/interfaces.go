package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=gomocks/mock_interfaces.go -package=gomocks

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	UpdateValue(ctx context.Context, tx Transaction, id string, value decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

// WalletItemRepository defines data access for wallet items.
type WalletItemRepository interface {
	Create(ctx context.Context, tx Transaction, item *domain.WalletItem) error
	GetByID(ctx context.Context, id string) (*domain.WalletItem, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.WalletItem, error)
	Update(ctx context.Context, tx Transaction, item *domain.WalletItem) error
	Delete(ctx context.Context, tx Transaction, id string) error
	FindByWalletAndDateRange(ctx context.Context, walletID string, start, end time.Time, limit, offset int) ([]*domain.WalletItem, int64, error)
	FindByWalletAndType(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error)
	SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWalletRepository defines data access for user-wallet associations.
type UserWalletRepository interface {
	Create(ctx context.Context, userWallet *domain.UserWallet) error
	Exists(ctx context.Context, userID, walletID string) (bool, error)
	ListWalletsByUser(ctx context.Context, userID string) ([]*domain.Wallet, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder receives wallet mutation outcomes.
type MetricsRecorder interface {
	WalletCreated()
	ItemMutated(operation string, itemType domain.ItemType, value decimal.Decimal)
	MutationFailed(operation, reason string)
	BalanceMismatch(walletID string)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release removes a key so the request can be retried.
	Release(ctx context.Context, key string) error
}

type nopMetrics struct{}

func (nopMetrics) WalletCreated() {}

func (nopMetrics) ItemMutated(string, domain.ItemType, decimal.Decimal) {}

func (nopMetrics) MutationFailed(string, string) {}

func (nopMetrics) BalanceMismatch(string) {}
