package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from holding wallet row locks
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is stored under a key while its first request is in flight
	IdempotencyPending = "processing"
)

// Operation labels used in logs and metrics.
const (
	OpCreateWallet     = "create_wallet"
	OpSetWalletValue   = "set_wallet_value"
	OpCreateWalletItem = "create_wallet_item"
	OpUpdateWalletItem = "update_wallet_item"
	OpDeleteWalletItem = "delete_wallet_item"
)
