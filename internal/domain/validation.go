package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxWalletNameLength  = 255
	MaxDescriptionLength = 500
	MaxUserNameLength    = 255
	MinPasswordLength    = 6
	MaxPasswordLength    = 128
	MaxItemValue         = "1000000000000" // 1 trillion
	MaxWalletValue       = "9999999999999999.9999"
	// MaxValueScale matches the NUMERIC(20,4) amount columns.
	MaxValueScale = 4
)

// Pagination defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	maxItemValue   = decimal.RequireFromString(MaxItemValue)
	maxWalletValue = decimal.RequireFromString(MaxWalletValue)
)

// Validator accumulates field violations instead of stopping at the first one.
type Validator struct {
	Errors []string
}

// HasErrors reports whether any violation was recorded.
func (v *Validator) HasErrors() bool {
	return len(v.Errors) != 0
}

// AddError records a violation.
func (v *Validator) AddError(message string) {
	v.Errors = append(v.Errors, message)
}

// Check records message when ok is false.
func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

// Err returns a *ValidationError with every recorded violation, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return NewValidationError(v.Errors...)
}

// CheckWalletName validates a wallet name.
func (v *Validator) CheckWalletName(name string) {
	name = strings.TrimSpace(name)
	v.Check(name != "", "name must not be empty")
	v.Check(len(name) <= MaxWalletNameLength, fmt.Sprintf("name must not exceed %d characters", MaxWalletNameLength))
}

// CheckItemValue validates a wallet item amount. A nil value means it was omitted.
func (v *Validator) CheckItemValue(value *decimal.Decimal) {
	if value == nil {
		v.AddError("value is required")
		return
	}
	v.Check(value.IsPositive(), "value must be greater than zero")
	v.Check(value.LessThanOrEqual(maxItemValue), fmt.Sprintf("value must not exceed %s", MaxItemValue))
	v.checkScale(*value, "value")
}

// CheckInitialValue validates the opening balance of a new wallet.
func (v *Validator) CheckInitialValue(value decimal.Decimal) {
	v.Check(!value.IsNegative(), "initial value must not be negative")
	v.Check(value.LessThanOrEqual(maxItemValue), fmt.Sprintf("initial value must not exceed %s", MaxItemValue))
	v.checkScale(value, "initial value")
}

// CheckWalletValue validates a cached balance set directly. It may be
// negative but must fit the balance column.
func (v *Validator) CheckWalletValue(value decimal.Decimal) {
	v.Check(value.Abs().LessThanOrEqual(maxWalletValue), fmt.Sprintf("value must not exceed %s in magnitude", MaxWalletValue))
	v.checkScale(value, "value")
}

// checkScale rejects amounts that would be rounded when stored. Trailing
// zeros are fine: 12.30000 is 12.3.
func (v *Validator) checkScale(value decimal.Decimal, field string) {
	v.Check(value.Equal(value.Round(MaxValueScale)), fmt.Sprintf("%s must have at most %d decimal places", field, MaxValueScale))
}

// CheckItemType validates a wallet item type. A nil type means it was omitted.
func (v *Validator) CheckItemType(t *ItemType) {
	if t == nil || *t == "" {
		v.AddError("type is required")
		return
	}
	v.Check(t.IsValid(), fmt.Sprintf("type must be one of %s, %s", ItemTypeInflow, ItemTypeOutflow))
}

// CheckDescription validates a wallet item description.
func (v *Validator) CheckDescription(description string) {
	description = strings.TrimSpace(description)
	v.Check(description != "", "description is required")
	v.Check(len(description) <= MaxDescriptionLength, fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength))
}

// CheckDate validates a wallet item date. A nil or zero date means it was omitted.
func (v *Validator) CheckDate(date *time.Time) {
	v.Check(date != nil && !date.IsZero(), "date is required")
}

// CheckEmail validates an email address.
func (v *Validator) CheckEmail(email string) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		v.AddError("email is required")
		return
	}
	v.Check(emailRegex.MatchString(email), "email is invalid")
}

// CheckPassword validates password length.
func (v *Validator) CheckPassword(password string) {
	v.Check(len(password) >= MinPasswordLength, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	v.Check(len(password) <= MaxPasswordLength, fmt.Sprintf("password must not exceed %d characters", MaxPasswordLength))
}

// NormalizePage clamps zero-based page and page size to sane values.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}

// ValidatePagination validates and limits limit/offset parameters.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
