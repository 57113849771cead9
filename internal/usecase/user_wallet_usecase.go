package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/gowallet/internal/domain"
)

// UserWalletUseCase links users to the wallets they own.
type UserWalletUseCase struct {
	userRepo       UserRepository
	walletRepo     WalletRepository
	userWalletRepo UserWalletRepository
	idGen          IDGenerator
}

// NewUserWalletUseCase creates a new UserWalletUseCase.
func NewUserWalletUseCase(
	userRepo UserRepository,
	walletRepo WalletRepository,
	userWalletRepo UserWalletRepository,
	idGen IDGenerator,
) *UserWalletUseCase {
	return &UserWalletUseCase{
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		userWalletRepo: userWalletRepo,
		idGen:          idGen,
	}
}

// CreateUserWalletInput represents input for associating a user with a wallet.
type CreateUserWalletInput struct {
	UserID   string
	WalletID string
}

// CreateUserWallet associates an existing user with an existing wallet.
func (uc *UserWalletUseCase) CreateUserWallet(ctx context.Context, input CreateUserWalletInput) (*domain.UserWallet, error) {
	var v domain.Validator

	if strings.TrimSpace(input.UserID) == "" {
		v.AddError("user is required")
	} else if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		v.AddError("user not found")
	}

	if strings.TrimSpace(input.WalletID) == "" {
		v.AddError("wallet is required")
	} else if _, err := uc.walletRepo.GetByID(ctx, input.WalletID); err != nil {
		if !errors.Is(err, domain.ErrWalletNotFound) {
			return nil, err
		}
		v.AddError("wallet not found")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	exists, err := uc.userWalletRepo.Exists(ctx, input.UserID, input.WalletID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserWalletExists
	}

	userWallet := &domain.UserWallet{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		WalletID:  input.WalletID,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.userWalletRepo.Create(ctx, userWallet); err != nil {
		return nil, err
	}

	return userWallet, nil
}

// ListWalletsByUser lists the wallets associated with a user.
func (uc *UserWalletUseCase) ListWalletsByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return uc.userWalletRepo.ListWalletsByUser(ctx, userID)
}
