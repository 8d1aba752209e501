// Package shared holds contracts used by more than one application service.
package shared

import (
	"context"

	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
)

// TransactionScope provides transactional boundaries for multi-aggregate operations.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - Entries: LedgerEntry aggregates; every balance change goes through SaveWithLock.
//   - Payments: append-only audit rows written next to the entry they settle.
//   - Plans: installment plan headers; the installments are entries.
//   - Sales / Quotations: quotation conversion writes both plus a receivable.
//   - Stock: read-only product stock for consistent dashboard reads.
type TransactionalRepositories interface {
	Entries() ledger.LedgerEntryRepository
	Payments() ledger.PaymentRecordRepository
	Plans() ledger.InstallmentPlanRepository
	Sales() sales.SaleRepository
	Quotations() sales.QuotationRepository
	Stock() dashboard.StockReader
}
