package persistence

import (
	"context"

	"gorm.io/gorm"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// Errors returned by fn are passed through unchanged; failures to begin or
// commit the transaction surface as STORAGE_UNAVAILABLE.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormTransactionalRepositories{tx: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return shared.WrapStorageError(err, "commit transaction")
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Entries returns the ledger entry repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Entries() ledger.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

// Payments returns the payment record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() ledger.PaymentRecordRepository {
	return NewGormPaymentRecordRepository(r.tx)
}

// Plans returns the installment plan repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Plans() ledger.InstallmentPlanRepository {
	return NewGormInstallmentPlanRepository(r.tx)
}

// Sales returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Sales() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Quotations returns the quotation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Quotations() sales.QuotationRepository {
	return NewGormQuotationRepository(r.tx)
}

// Stock returns the product stock reader scoped to the current transaction.
func (r *gormTransactionalRepositories) Stock() dashboard.StockReader {
	return NewGormProductStockReader(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
