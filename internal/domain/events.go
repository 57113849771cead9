package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeWalletCreated     = "wallet.created"
	EventTypeWalletValueSet    = "wallet.value_set"
	EventTypeWalletItemCreated = "wallet_item.created"
	EventTypeWalletItemUpdated = "wallet_item.updated"
	EventTypeWalletItemDeleted = "wallet_item.deleted"
)

// Aggregate types
const (
	AggregateTypeWallet = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WalletBalanceChanged is the payload of every wallet event.
type WalletBalanceChanged struct {
	WalletID        string          `json:"wallet_id"`
	ItemID          string          `json:"item_id,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// ToPayload converts the event into the generic outbox payload.
func (e WalletBalanceChanged) ToPayload() map[string]any {
	payload := map[string]any{
		"wallet_id":        e.WalletID,
		"previous_balance": e.PreviousBalance.String(),
		"current_balance":  e.CurrentBalance.String(),
		"occurred_at":      e.OccurredAt.Format(time.RFC3339Nano),
	}
	if e.ItemID != "" {
		payload["item_id"] = e.ItemID
	}
	return payload
}
