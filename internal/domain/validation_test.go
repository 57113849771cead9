package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidator_AggregatesViolations(t *testing.T) {
	t.Parallel()

	var v Validator
	v.CheckItemValue(nil)
	v.CheckItemType(nil)
	v.CheckDescription("")
	v.CheckDate(nil)

	err := v.Err()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	msgs := ValidationMessages(err)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d: %v", len(msgs), msgs)
	}
}

func TestValidator_NoErrors(t *testing.T) {
	t.Parallel()

	value := decimal.NewFromInt(10)
	typ := ItemTypeInflow
	date := time.Now()

	var v Validator
	v.CheckItemValue(&value)
	v.CheckItemType(&typ)
	v.CheckDescription("Conta de Luz")
	v.CheckDate(&date)

	if err := v.Err(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidator_CheckItemValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value decimal.Decimal
		ok    bool
	}{
		{name: "positive", value: decimal.RequireFromString("0.01"), ok: true},
		{name: "zero", value: decimal.Zero, ok: false},
		{name: "negative", value: decimal.NewFromInt(-5), ok: false},
		{name: "too large", value: decimal.RequireFromString(MaxItemValue).Add(decimal.NewFromInt(1)), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Validator
			v.CheckItemValue(&tt.value)
			if v.HasErrors() == tt.ok {
				t.Fatalf("value %s: expected ok=%v, errors=%v", tt.value, tt.ok, v.Errors)
			}
		})
	}
}

func TestValidator_CheckItemType(t *testing.T) {
	t.Parallel()

	bad := ItemType("SD")
	var v Validator
	v.CheckItemType(&bad)
	if !v.HasErrors() || !strings.Contains(v.Errors[0], "INFLOW") {
		t.Fatalf("expected type violation naming the allowed values, got %v", v.Errors)
	}
}

func TestValidator_CheckWalletName(t *testing.T) {
	t.Parallel()

	var v Validator
	v.CheckWalletName("   ")
	if !v.HasErrors() {
		t.Fatal("expected blank name to be rejected")
	}

	v = Validator{}
	v.CheckWalletName(strings.Repeat("a", MaxWalletNameLength+1))
	if !v.HasErrors() {
		t.Fatal("expected long name to be rejected")
	}

	v = Validator{}
	v.CheckWalletName("carteira Teste")
	if v.HasErrors() {
		t.Fatalf("expected valid name, got %v", v.Errors)
	}
}

func TestValidator_CheckEmailAndPassword(t *testing.T) {
	t.Parallel()

	var v Validator
	v.CheckEmail("not-an-email")
	v.CheckPassword("123")
	if len(v.Errors) != 2 {
		t.Fatalf("expected 2 violations, got %v", v.Errors)
	}

	v = Validator{}
	v.CheckEmail("Email@Teste.com")
	v.CheckPassword("123456")
	if v.HasErrors() {
		t.Fatalf("expected no violations, got %v", v.Errors)
	}
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	page, size := NormalizePage(-1, 0)
	if page != 0 || size != DefaultPageSize {
		t.Fatalf("expected defaults, got page=%d size=%d", page, size)
	}

	_, size = NormalizePage(2, 5000)
	if size != MaxPageSize {
		t.Fatalf("expected size capped at %d, got %d", MaxPageSize, size)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -3)
	if limit != DefaultPageSize || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}
}

func TestValidator_AmountScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"0.0001", true},
		{"12.3456", true},
		{"12.30000", true},
		{"0.00004", false},
		{"0.00005", false},
		{"12.34567", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			value := decimal.RequireFromString(tt.value)

			var item Validator
			item.CheckItemValue(&value)

			var initial Validator
			initial.CheckInitialValue(value)

			var balance Validator
			balance.CheckWalletValue(value.Neg())

			for name, v := range map[string]*Validator{"item": &item, "initial": &initial, "balance": &balance} {
				if v.HasErrors() == tt.valid {
					t.Fatalf("%s: value %s valid=%v, errors=%v", name, tt.value, tt.valid, v.Errors)
				}
			}
			if !tt.valid && item.Errors[0] != "value must have at most 4 decimal places" {
				t.Fatalf("unexpected message %q", item.Errors[0])
			}
		})
	}
}

func TestValidator_CheckInitialValueBounds(t *testing.T) {
	t.Parallel()

	var v Validator
	v.CheckInitialValue(decimal.RequireFromString("1e20"))
	v.CheckInitialValue(decimal.NewFromInt(-5))

	want := []string{"initial value must not exceed " + MaxItemValue, "initial value must not be negative"}
	if len(v.Errors) != len(want) || v.Errors[0] != want[0] || v.Errors[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, v.Errors)
	}
}

func TestValidator_CheckWalletValueBounds(t *testing.T) {
	t.Parallel()

	var v Validator
	v.CheckWalletValue(decimal.RequireFromString("-9999999999999999.9999"))
	if v.HasErrors() {
		t.Fatalf("expected column maximum to pass, got %v", v.Errors)
	}

	v.CheckWalletValue(decimal.RequireFromString("1e16"))
	if len(v.Errors) != 1 {
		t.Fatalf("expected overflow to be rejected, got %v", v.Errors)
	}
}
