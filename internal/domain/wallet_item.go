package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemType determines the sign of an item's contribution to its wallet.
type ItemType string

const (
	ItemTypeInflow  ItemType = "INFLOW"
	ItemTypeOutflow ItemType = "OUTFLOW"
)

// ParseItemType parses a type code, case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidItemType, s)
	}
	return t, nil
}

// IsValid reports whether t is INFLOW or OUTFLOW.
func (t ItemType) IsValid() bool {
	return t == ItemTypeInflow || t == ItemTypeOutflow
}

// Sign returns 1 for INFLOW, -1 for OUTFLOW and 0 otherwise.
func (t ItemType) Sign() int64 {
	switch t {
	case ItemTypeInflow:
		return 1
	case ItemTypeOutflow:
		return -1
	default:
		return 0
	}
}

// WalletItem is a single dated transaction against a wallet.
type WalletItem struct {
	ID          string
	WalletID    string
	Date        time.Time
	Type        ItemType
	Description string
	Value       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contribution is the signed amount the item adds to its wallet balance.
func (i *WalletItem) Contribution() decimal.Decimal {
	return i.Value.Mul(decimal.NewFromInt(i.Type.Sign()))
}

// SignedSum sums the contributions of items.
func SignedSum(items []*WalletItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Contribution())
	}
	return total
}

// Page is one page of a paginated query together with the total match count.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// TotalPages returns the number of pages needed for Total items.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
