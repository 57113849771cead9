package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

func TestUserUseCase_CreateUser(t *testing.T) {
	tests := []struct {
		name       string
		input      usecase.CreateUserInput
		setup      func(*mocks.MockUserRepository)
		expectErr  error
		expectMsgs []string
	}{
		{
			name:  "successful user creation",
			input: usecase.CreateUserInput{Email: "Ada@Example.com", Name: "Ada", Password: "secret123"},
		},
		{
			name:       "every field invalid",
			input:      usecase.CreateUserInput{Email: "nope", Name: "", Password: "123"},
			expectErr:  domain.ErrValidation,
			expectMsgs: []string{"email is invalid", "name is required", "password must be at least 6 characters"},
		},
		{
			name:  "duplicate email",
			input: usecase.CreateUserInput{Email: "ada@example.com", Name: "Ada", Password: "secret123"},
			setup: func(repo *mocks.MockUserRepository) {
				_ = repo.Create(context.Background(), &domain.User{ID: "u0", Email: "ada@example.com"})
			},
			expectErr: domain.ErrEmailTaken,
		},
		{
			name:  "lookup failure",
			input: usecase.CreateUserInput{Email: "ada@example.com", Name: "Ada", Password: "secret123"},
			setup: func(repo *mocks.MockUserRepository) {
				repo.GetByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return nil, errors.New("db down")
				}
			},
			expectErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository()
			if tt.setup != nil {
				tt.setup(repo)
			}
			uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator())

			user, err := uc.CreateUser(context.Background(), tt.input)

			if tt.expectErr != nil {
				require.Error(t, err)
				if errors.Is(tt.expectErr, domain.ErrValidation) || errors.Is(tt.expectErr, domain.ErrConflict) {
					assert.ErrorIs(t, err, tt.expectErr)
				} else {
					assert.EqualError(t, err, tt.expectErr.Error())
				}
				assert.Equal(t, tt.expectMsgs, domain.ValidationMessages(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", user.Email)
			assert.Empty(t, user.HashedPassword)

			stored, err := repo.GetByID(context.Background(), user.ID)
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte(tt.input.Password)))
		})
	}
}

func TestUserUseCase_GetUser(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	require.NoError(t, repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@b.co", HashedPassword: "hash"}))
	uc := usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator())

	user, err := uc.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Empty(t, user.HashedPassword)

	_, err = uc.GetUser(context.Background(), "u2")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
