package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// AggregateTypeSale is the aggregate type name used on events
const AggregateTypeSale = "Sale"

// PaymentMethod is how a sale was settled at the counter
type PaymentMethod string

const (
	PaymentMethodUSD       PaymentMethod = "usd"
	PaymentMethodZelle     PaymentMethod = "zelle"
	PaymentMethodVES       PaymentMethod = "ves"
	PaymentMethodPagoMovil PaymentMethod = "pago_movil"
	PaymentMethodMixed     PaymentMethod = "mixed"  // Part USD, part VES
	PaymentMethodCredit    PaymentMethod = "credit" // Collected later through a receivable
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodUSD, PaymentMethodZelle, PaymentMethodVES,
		PaymentMethodPagoMovil, PaymentMethodMixed, PaymentMethodCredit:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// LineItem is a priced product line, in both currencies
type LineItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
	UnitPriceVES decimal.Decimal `json:"unit_price_ves"`
}

// Validate checks a single line
func (li LineItem) Validate() error {
	if li.Description == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Line description cannot be empty")
	}
	if !li.Quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Quantity of %q must be positive", li.Description))
	}
	if li.UnitPriceUSD.IsNegative() || li.UnitPriceVES.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Price of %q cannot be negative", li.Description))
	}
	return nil
}

// LineTotals returns the rounded sum of items in each currency
func LineTotals(items []LineItem) (valueobject.Money, valueobject.Money) {
	usdTotal, vesTotal := decimal.Zero, decimal.Zero
	for _, li := range items {
		usdTotal = usdTotal.Add(li.Quantity.Mul(li.UnitPriceUSD))
		vesTotal = vesTotal.Add(li.Quantity.Mul(li.UnitPriceVES))
	}
	// rounded to MoneyScale in a fixed currency, so NewMoney cannot fail
	u, _ := valueobject.NewMoney(usdTotal.Round(valueobject.MoneyScale), valueobject.USD)
	v, _ := valueobject.NewMoney(vesTotal.Round(valueobject.MoneyScale), valueobject.VES)
	return u, v
}

// Sale is a recorded sale. Mixed sales carry the two independently
// collected portions in PaidUSD and PaidVES; they are never converted into
// each other.
type Sale struct {
	shared.OrgAggregateRoot
	SaleNumber    string
	CustomerID    *uuid.UUID
	CustomerName  string
	Items         []LineItem
	TotalUSD      valueobject.Money
	TotalVES      valueobject.Money
	PaidUSD       valueobject.Money
	PaidVES       valueobject.Money
	PaymentMethod PaymentMethod
	QuotationID   *uuid.UUID
}

// NewSaleParams holds the inputs for NewSale
type NewSaleParams struct {
	OrganizationID uuid.UUID
	SaleNumber     string
	CustomerID     *uuid.UUID
	CustomerName   string
	Items          []LineItem
	PaymentMethod  PaymentMethod
	PaidUSD        valueobject.Money // mixed only
	PaidVES        valueobject.Money // mixed only
	QuotationID    *uuid.UUID
	CreatedAt      time.Time
}

// NewSale validates and builds a sale, computing totals from its items
func NewSale(p NewSaleParams) (*Sale, error) {
	if p.OrganizationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Organization ID cannot be empty")
	}
	if !p.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown payment method %q", p.PaymentMethod))
	}
	if len(p.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale must have at least one item")
	}
	for _, li := range p.Items {
		if err := li.Validate(); err != nil {
			return nil, err
		}
	}
	if p.PaymentMethod == PaymentMethodCredit && p.CustomerID == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Credit sales need a customer")
	}

	paidUSD, paidVES := valueobject.Zero(valueobject.USD), valueobject.Zero(valueobject.VES)
	if p.PaymentMethod == PaymentMethodMixed {
		if p.PaidUSD.Currency() != valueobject.USD || p.PaidVES.Currency() != valueobject.VES {
			return nil, shared.NewDomainError(shared.CodeCurrencyMismatch, "Mixed sales need a USD and a VES portion")
		}
		if p.PaidUSD.IsNegative() || p.PaidVES.IsNegative() || (p.PaidUSD.IsZero() && p.PaidVES.IsZero()) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Mixed sale portions must be non-negative and not both zero")
		}
		paidUSD, paidVES = p.PaidUSD, p.PaidVES
	}

	totalUSD, totalVES := LineTotals(p.Items)

	s := &Sale{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(p.OrganizationID),
		CustomerID:       p.CustomerID,
		CustomerName:     p.CustomerName,
		Items:            append([]LineItem(nil), p.Items...),
		TotalUSD:         totalUSD,
		TotalVES:         totalVES,
		PaidUSD:          paidUSD,
		PaidVES:          paidVES,
		PaymentMethod:    p.PaymentMethod,
		QuotationID:      p.QuotationID,
	}
	if !p.CreatedAt.IsZero() {
		s.CreatedAt = p.CreatedAt
		s.UpdatedAt = p.CreatedAt
	}
	s.SaleNumber = p.SaleNumber
	if s.SaleNumber == "" {
		s.SaleNumber = SaleNumberFor(s.ID)
	}

	s.AddDomainEvent(NewSaleRecordedEvent(s))

	return s, nil
}

// SaleNumberFor derives a human-readable sale number from its ID
func SaleNumberFor(id uuid.UUID) string {
	return "V-" + strings.ToUpper(id.String()[:8])
}

// Collected returns what this sale actually brought in, in currency.
// usd and zelle sales collect TotalUSD, ves and pago_movil collect TotalVES,
// mixed sales collect their portion in that currency, credit sales collect
// nothing at the counter.
func (s *Sale) Collected(currency valueobject.Currency) valueobject.Money {
	zero := valueobject.Zero(currency)
	switch s.PaymentMethod {
	case PaymentMethodUSD, PaymentMethodZelle:
		if currency == valueobject.USD {
			return s.TotalUSD
		}
	case PaymentMethodVES, PaymentMethodPagoMovil:
		if currency == valueobject.VES {
			return s.TotalVES
		}
	case PaymentMethodMixed:
		if currency == valueobject.USD {
			return s.PaidUSD
		}
		if currency == valueobject.VES {
			return s.PaidVES
		}
	}
	return zero
}
