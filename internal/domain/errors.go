package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every not-found error.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrConsistency is matched by every *ConsistencyError.
	ErrConsistency = errors.New("balance update could not complete atomically")
	// ErrConflict is returned when a unique resource already exists.
	ErrConflict = errors.New("already exists")

	// Wallet errors
	ErrWalletNotFound     = fmt.Errorf("wallet %w", ErrNotFound)
	ErrWalletItemNotFound = fmt.Errorf("wallet item %w", ErrNotFound)

	// User errors
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("user with this email %w", ErrConflict)
	ErrUserWalletExists = fmt.Errorf("user wallet association %w", ErrConflict)

	ErrInvalidItemType = errors.New("invalid wallet item type")
)

// ValidationError carries every field violation found on a request.
type ValidationError struct {
	Messages []string
}

// NewValidationError returns a ValidationError with the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConsistencyError reports a wallet balance transaction that was rolled back.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrConsistency.Error(), e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConsistency) succeed.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}

// ValidationMessages returns the messages of a ValidationError in err's chain.
func ValidationMessages(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages
	}
	return nil
}
