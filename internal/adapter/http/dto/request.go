package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// CreateWalletRequest represents a request to create a wallet.
type CreateWalletRequest struct {
	Name  string           `json:"name"`
	Value *decimal.Decimal `json:"value,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput() usecase.CreateWalletInput {
	input := usecase.CreateWalletInput{Name: r.Name}
	if r.Value != nil {
		input.InitialValue = *r.Value
	}
	return input
}

// SetWalletValueRequest overwrites a wallet's cached balance.
type SetWalletValueRequest struct {
	Value *decimal.Decimal `json:"value"`
}

// CreateWalletItemRequest represents a request to record a wallet item.
type CreateWalletItemRequest struct {
	WalletID    string           `json:"wallet_id"`
	Date        *Date            `json:"date"`
	Type        *string          `json:"type"`
	Description string           `json:"description"`
	Value       *decimal.Decimal `json:"value"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletItemRequest) ToUseCaseInput() usecase.CreateWalletItemInput {
	return usecase.CreateWalletItemInput{
		WalletID:    r.WalletID,
		Date:        r.Date.Ptr(),
		Type:        itemType(r.Type),
		Description: r.Description,
		Value:       r.Value,
	}
}

// UpdateWalletItemRequest carries the fields to change; omitted fields keep
// their current value.
type UpdateWalletItemRequest struct {
	Date        *Date            `json:"date,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Description *string          `json:"description,omitempty"`
	Value       *decimal.Decimal `json:"value,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateWalletItemRequest) ToUseCaseInput(id string) usecase.UpdateWalletItemInput {
	return usecase.UpdateWalletItemInput{
		ID:          id,
		Date:        r.Date.Ptr(),
		Type:        itemType(r.Type),
		Description: r.Description,
		Value:       r.Value,
	}
}

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// CreateUserWalletRequest links a user to a wallet.
type CreateUserWalletRequest struct {
	UserID   string `json:"user_id"`
	WalletID string `json:"wallet_id"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserWalletRequest) ToUseCaseInput() usecase.CreateUserWalletInput {
	return usecase.CreateUserWalletInput{
		UserID:   r.UserID,
		WalletID: r.WalletID,
	}
}

// itemType upper-cases the raw value; the use case reports unknown types.
func itemType(raw *string) *domain.ItemType {
	if raw == nil {
		return nil
	}
	t := domain.ItemType(strings.ToUpper(strings.TrimSpace(*raw)))
	return &t
}
