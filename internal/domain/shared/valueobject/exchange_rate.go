package valueobject

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/shared"
)

// ExchangeRate is the number of bolívares one US dollar buys at a point in time
type ExchangeRate struct {
	usdToVes    decimal.Decimal
	effectiveAt time.Time
	source      string
}

// NewExchangeRate validates and builds an ExchangeRate
func NewExchangeRate(usdToVes decimal.Decimal, effectiveAt time.Time, source string) (ExchangeRate, error) {
	if !usdToVes.IsPositive() {
		return ExchangeRate{}, shared.NewDomainError(shared.CodeInvalidInput, "exchange rate must be positive")
	}
	if effectiveAt.IsZero() {
		return ExchangeRate{}, shared.NewDomainError(shared.CodeInvalidInput, "exchange rate needs an effective time")
	}
	return ExchangeRate{usdToVes: usdToVes, effectiveAt: effectiveAt, source: source}, nil
}

// UsdToVes returns the rate
func (r ExchangeRate) UsdToVes() decimal.Decimal { return r.usdToVes }

// EffectiveAt returns when the rate took effect
func (r ExchangeRate) EffectiveAt() time.Time { return r.effectiveAt }

// Source returns where the rate came from
func (r ExchangeRate) Source() string { return r.source }

// IsZero reports whether r is the zero value
func (r ExchangeRate) IsZero() bool { return r.usdToVes.IsZero() }

// Convert converts money into target using rate. USD to VES multiplies by the
// rate, VES to USD divides by it. Results are rounded to cents.
func Convert(money Money, target Currency, rate ExchangeRate) (Money, error) {
	if !money.currency.IsValid() || !target.IsValid() {
		return Money{}, shared.NewDomainError(shared.CodeUnsupportedCurrency,
			fmt.Sprintf("cannot convert %s to %s", money.currency, target))
	}
	if money.currency == target {
		return money, nil
	}
	if !rate.usdToVes.IsPositive() {
		return Money{}, shared.NewDomainError(shared.CodeInvalidInput, "exchange rate must be positive")
	}

	var amount decimal.Decimal
	if money.currency == USD {
		amount = money.amount.Mul(rate.usdToVes)
	} else {
		amount = money.amount.Div(rate.usdToVes)
	}
	return Money{amount: amount.Round(MoneyScale), currency: target}, nil
}
