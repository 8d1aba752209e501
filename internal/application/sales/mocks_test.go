package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/dashboard"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
)

type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) Create(ctx context.Context, q *sales.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuotationRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*sales.Quotation, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter sales.QuotationFilter) ([]sales.Quotation, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]sales.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindExpirable(ctx context.Context, asOf time.Time) ([]sales.Quotation, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]sales.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) ExistsByNumber(ctx context.Context, orgID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, orgID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotationRepository) SaveWithLock(ctx context.Context, q *sales.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

// MockLedgerEntryRepository only implements what conversion touches
type MockLedgerEntryRepository struct {
	mock.Mock
	ledger.LedgerEntryRepository
}

func (m *MockLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type fakeTxScope struct {
	quotations *MockQuotationRepository
	sales      *MockSaleRepository
	entries    *MockLedgerEntryRepository
	calls      int
}

func newFakeTxScope() *fakeTxScope {
	return &fakeTxScope{
		quotations: new(MockQuotationRepository),
		sales:      new(MockSaleRepository),
		entries:    new(MockLedgerEntryRepository),
	}
}

func (f *fakeTxScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	f.calls++
	return fn(f)
}

func (f *fakeTxScope) Entries() ledger.LedgerEntryRepository    { return f.entries }
func (f *fakeTxScope) Payments() ledger.PaymentRecordRepository { return nil }
func (f *fakeTxScope) Plans() ledger.InstallmentPlanRepository  { return nil }
func (f *fakeTxScope) Sales() sales.SaleRepository              { return f.sales }
func (f *fakeTxScope) Quotations() sales.QuotationRepository    { return f.quotations }
func (f *fakeTxScope) Stock() dashboard.StockReader             { return nil }
