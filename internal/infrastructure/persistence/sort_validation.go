package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"due_date":           true,
	"amount":             true,
	"paid_amount":        true,
	"status":             true,
	"reference_number":   true,
	"counterparty_name":  true,
	"installment_number": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"created_at":     true,
	"sale_number":    true,
	"customer_name":  true,
	"total_usd":      true,
	"total_ves":      true,
	"payment_method": true,
}

// QuotationSortFields contains allowed sort fields for quotations
var QuotationSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"quotation_number": true,
	"customer_name":    true,
	"valid_until":      true,
	"status":           true,
}

// applyPage orders the query by a whitelisted column and applies pagination.
// An empty filter sorts by defaultField, newest first. A zero PageSize
// leaves the query unbounded. The id tie-breaker keeps pages stable.
func applyPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir).Order("id ASC")

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
