package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// LineItemRequest represents one priced line of a quotation or sale
type LineItemRequest struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Description  string          `json:"description" binding:"required,min=1,max=200"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
	UnitPriceVES decimal.Decimal `json:"unit_price_ves"`
}

// PaymentTermsRequest asks for the converted sale to be collected on credit
type PaymentTermsRequest struct {
	DueInDays int    `json:"due_in_days" binding:"min=0,max=365"`
	Currency  string `json:"currency" binding:"required,currency"`
}

// CreateQuotationRequest represents a request to draft a quotation
type CreateQuotationRequest struct {
	QuotationNumber string               `json:"quotation_number" binding:"required,min=1,max=50"`
	CustomerID      uuid.UUID            `json:"customer_id" binding:"required"`
	CustomerName    string               `json:"customer_name" binding:"required,min=1,max=200"`
	Items           []LineItemRequest    `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   string               `json:"payment_method" binding:"omitempty,oneof=usd zelle ves pago_movil credit"`
	PaymentTerms    *PaymentTermsRequest `json:"payment_terms"`
	ValidUntil      time.Time            `json:"valid_until" binding:"required"`
}

// RejectQuotationRequest represents a customer refusal
type RejectQuotationRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RecordSaleRequest represents a sale made at the counter
type RecordSaleRequest struct {
	SaleNumber    string            `json:"sale_number" binding:"max=50"`
	CustomerID    *uuid.UUID        `json:"customer_id"`
	CustomerName  string            `json:"customer_name" binding:"max=200"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=usd zelle ves pago_movil mixed credit"`
	PaidUSD       string            `json:"paid_usd" binding:"omitempty,decimal_nonnegative,money_scale"`
	PaidVES       string            `json:"paid_ves" binding:"omitempty,decimal_nonnegative,money_scale"`
}

// QuotationListFilter represents query parameters for listing quotations
type QuotationListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT SENT APPROVED REJECTED EXPIRED CONVERTED"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// SaleListFilter represents query parameters for listing sales
type SaleListFilter struct {
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=usd zelle ves pago_movil mixed credit"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// LineItemResponse represents one line in API responses
type LineItemResponse struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
	UnitPriceVES decimal.Decimal `json:"unit_price_ves"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrganizationID    uuid.UUID           `json:"organization_id"`
	QuotationNumber   string              `json:"quotation_number"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	CustomerName      string              `json:"customer_name"`
	Items             []LineItemResponse  `json:"items"`
	TotalUSD          valueobject.Money   `json:"total_usd"`
	TotalVES          valueobject.Money   `json:"total_ves"`
	PaymentMethod     string              `json:"payment_method"`
	PaymentTerms      *sales.PaymentTerms `json:"payment_terms,omitempty"`
	ValidUntil        time.Time           `json:"valid_until"`
	Status            string              `json:"status"`
	RejectReason      string              `json:"reject_reason,omitempty"`
	ConvertedToSaleID *uuid.UUID          `json:"converted_to_sale_id,omitempty"`
	ConvertedAt       *time.Time          `json:"converted_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	OrganizationID uuid.UUID          `json:"organization_id"`
	SaleNumber     string             `json:"sale_number"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name,omitempty"`
	Items          []LineItemResponse `json:"items"`
	TotalUSD       valueobject.Money  `json:"total_usd"`
	TotalVES       valueobject.Money  `json:"total_ves"`
	PaidUSD        valueobject.Money  `json:"paid_usd"`
	PaidVES        valueobject.Money  `json:"paid_ves"`
	PaymentMethod  string             `json:"payment_method"`
	QuotationID    *uuid.UUID         `json:"quotation_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ConversionResponse is returned after a quotation becomes a sale
type ConversionResponse struct {
	SaleID       uuid.UUID         `json:"sale_id"`
	SaleNumber   string            `json:"sale_number"`
	Quotation    QuotationResponse `json:"quotation"`
	ReceivableID *uuid.UUID        `json:"receivable_id,omitempty"`
}

// ExpiryResult reports what one quotation expiry sweep did
type ExpiryResult struct {
	AsOf       time.Time `json:"as_of"`
	Candidates int       `json:"candidates"`
	Expired    int       `json:"expired"`
	Skipped    int       `json:"skipped"`
}

func toLineItems(reqs []LineItemRequest) []sales.LineItem {
	items := make([]sales.LineItem, len(reqs))
	for i, r := range reqs {
		items[i] = sales.LineItem{
			ProductID:    r.ProductID,
			Description:  r.Description,
			Quantity:     r.Quantity,
			UnitPriceUSD: r.UnitPriceUSD,
			UnitPriceVES: r.UnitPriceVES,
		}
	}
	return items
}

func toLineItemResponses(items []sales.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, li := range items {
		out[i] = LineItemResponse(li)
	}
	return out
}

// ToQuotationResponse converts a domain quotation to a response
func ToQuotationResponse(q *sales.Quotation) QuotationResponse {
	return QuotationResponse{
		ID:                q.ID,
		OrganizationID:    q.OrganizationID,
		QuotationNumber:   q.QuotationNumber,
		CustomerID:        q.CustomerID,
		CustomerName:      q.CustomerName,
		Items:             toLineItemResponses(q.Items),
		TotalUSD:          q.TotalUSD,
		TotalVES:          q.TotalVES,
		PaymentMethod:     string(q.PaymentMethod),
		PaymentTerms:      q.PaymentTerms,
		ValidUntil:        q.ValidUntil,
		Status:            string(q.Status),
		RejectReason:      q.RejectReason,
		ConvertedToSaleID: q.ConvertedToSaleID,
		ConvertedAt:       q.ConvertedAt,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
		Version:           q.Version,
	}
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		SaleNumber:     s.SaleNumber,
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		Items:          toLineItemResponses(s.Items),
		TotalUSD:       s.TotalUSD,
		TotalVES:       s.TotalVES,
		PaidUSD:        s.PaidUSD,
		PaidVES:        s.PaidVES,
		PaymentMethod:  string(s.PaymentMethod),
		QuotationID:    s.QuotationID,
		CreatedAt:      s.CreatedAt,
	}
}

// ToDomainFilter converts query parameters to a repository filter
func (f QuotationListFilter) ToDomainFilter() sales.QuotationFilter {
	filter := sales.QuotationFilter{
		Filter:     shared.NewFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir),
		CustomerID: f.CustomerID,
	}
	if f.Status != "" {
		status := sales.QuotationStatus(f.Status)
		filter.Status = &status
	}
	return filter
}

// ToDomainFilter converts query parameters to a repository filter
func (f SaleListFilter) ToDomainFilter() sales.SaleFilter {
	filter := sales.SaleFilter{
		Filter:     shared.NewFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir),
		From:       f.From,
		To:         f.To,
		CustomerID: f.CustomerID,
	}
	if f.PaymentMethod != "" {
		method := sales.PaymentMethod(f.PaymentMethod)
		filter.PaymentMethod = &method
	}
	return filter
}
