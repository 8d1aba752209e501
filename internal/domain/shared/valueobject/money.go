package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/shared"
)

// Currency represents one of the two currencies the ledger understands
type Currency string

const (
	USD Currency = "USD" // US Dollar
	VES Currency = "VES" // Venezuelan Bolívar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// MoneyScale is the number of decimal places carried by stored balances
const MoneyScale int32 = 2

// IsValid reports whether c is USD or VES
func (c Currency) IsValid() bool {
	return c == USD || c == VES
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// ParseCurrency parses a currency code, case-insensitively
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewDomainError(shared.CodeUnsupportedCurrency, fmt.Sprintf("unsupported currency: %q", s))
	}
	return c, nil
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency.
// Amounts finer than MoneyScale are rejected so that what is stored is
// exactly what the domain checked.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, shared.NewDomainError(shared.CodeUnsupportedCurrency, fmt.Sprintf("unsupported currency: %q", currency))
	}
	if !WithinMoneyScale(amount) {
		return Money{}, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("amount %s has more than %d decimal places", amount.String(), MoneyScale))
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// WithinMoneyScale reports whether d has no significant digits past MoneyScale.
// Trailing zeros do not count, so a stored 100.0000 is accepted.
func WithinMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// NewMoneyFromInt creates Money from an int64 value
func NewMoneyFromInt(amount int64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount), currency)
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid amount %q", amount))
	}
	return NewMoney(d, currency)
}

// MustMoney builds Money from a string and panics on error. Intended for
// constants and tests.
func MustMoney(amount string, currency Currency) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func mismatch(op string, a, b Currency) error {
	return shared.NewDomainError(shared.CodeCurrencyMismatch,
		fmt.Sprintf("cannot %s %s and %s", op, a, b))
}

// Add returns a new Money with the sum of both amounts.
// Amounts in different currencies are never summed; convert first.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, mismatch("add", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, mismatch("subtract", m.currency, other.currency)
	}
	return Money{
		amount:   m.amount.Sub(other.amount),
		currency: m.currency,
	}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(factor),
		currency: m.currency,
	}
}

// Round returns a new Money rounded to the specified decimal places
func (m Money) Round(places int32) Money {
	return Money{
		amount:   m.amount.Round(places),
		currency: m.currency,
	}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Compare returns -1, 0 or 1. Comparing different currencies is an error.
func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, mismatch("compare", m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Compare(other)
	return c > 0, err
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(MoneyScale), m.currency)
}

// StringFixed returns the amount as a string with fixed decimal places
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(MoneyScale),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler and validates the currency
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer. Only the amount is stored; the currency
// lives in its own column.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Allocate divides money into n parts. Every part but the last is the
// quotient truncated to cents; the last part absorbs the remainder so the
// parts always sum to the original amount.
func (m Money) Allocate(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "parts must be positive")
	}
	if parts == 1 {
		return []Money{m}, nil
	}

	base := m.amount.Div(decimal.NewFromInt(int64(parts))).Truncate(MoneyScale)
	last := m.amount.Sub(base.Mul(decimal.NewFromInt(int64(parts - 1))))

	result := make([]Money, parts)
	for i := range parts - 1 {
		result[i] = Money{amount: base, currency: m.currency}
	}
	result[parts-1] = Money{amount: last, currency: m.currency}
	return result, nil
}

// Sum adds up amounts that must all share currency
func Sum(currency Currency, items ...Money) (Money, error) {
	total := Zero(currency)
	for _, item := range items {
		var err error
		if total, err = total.Add(item); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
