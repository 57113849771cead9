package memory

import (
	"context"
	"strings"

	"github.com/iho/gowallet/internal/domain"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create stores a user. Emails are unique, case-insensitively.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}

	c := *user
	r.store.users[user.ID] = &c
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
