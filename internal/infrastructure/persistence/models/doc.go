// Package models holds the GORM table mappings for the ledger. Domain types
// in internal/domain carry no ORM tags; each model here converts to
// its domain counterpart: ToDomain reads a row, and the *ModelFromDomain
// constructors build one for writing.
//
// Tables:
//   - ledger_entries, payment_records, installment_plans (ledger.go)
//   - sales, sale_items, quotations, quotation_items (sales.go)
//   - exchange_rates (exchange.go)
//   - products (product.go), read only for the low stock count
package models
