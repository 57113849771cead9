package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalanceDescription labels the item recorded for a wallet's initial value.
const OpeningBalanceDescription = "Opening balance"

// Wallet represents a named account holding a running balance.
type Wallet struct {
	ID        string
	Name      string
	Value     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns the balance after adding the item's contribution.
func (w *Wallet) Apply(item *WalletItem) decimal.Decimal {
	return w.Value.Add(item.Contribution())
}

// Revert returns the balance after removing the item's contribution.
func (w *Wallet) Revert(item *WalletItem) decimal.Decimal {
	return w.Value.Sub(item.Contribution())
}

// UserWallet associates a user with a wallet.
type UserWallet struct {
	ID        string
	UserID    string
	WalletID  string
	CreatedAt time.Time
}
