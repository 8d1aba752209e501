package ledger

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

// =============================================================================
// Mock Ledger Entry Repository
// =============================================================================

type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerEntryRepository) FindSweepCandidates(ctx context.Context, asOf time.Time) ([]ledger.LedgerEntry, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]ledger.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) ExistsByReference(ctx context.Context, orgID uuid.UUID, kind ledger.EntryKind, reference string) (bool, error) {
	args := m.Called(ctx, orgID, kind, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerEntryRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) DeleteForOrg(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// =============================================================================
// Mock Payment Record and Plan Repositories
// =============================================================================

type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) Create(ctx context.Context, record *ledger.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRecordRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]ledger.PaymentRecord, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).([]ledger.PaymentRecord), args.Error(1)
}

type MockInstallmentPlanRepository struct {
	mock.Mock
}

func (m *MockInstallmentPlanRepository) Create(ctx context.Context, plan *ledger.InstallmentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockInstallmentPlanRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*ledger.InstallmentPlan, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.InstallmentPlan), args.Error(1)
}

// =============================================================================
// Mock Event Publisher and Idempotency Store
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}

// =============================================================================
// Fake Transaction Scope
// =============================================================================

// fakeTxScope runs fn directly against the mocked repositories and records
// how many transactions were opened
type fakeTxScope struct {
	entries  *MockLedgerEntryRepository
	payments *MockPaymentRecordRepository
	plans    *MockInstallmentPlanRepository
	calls    int
}

func newFakeTxScope() *fakeTxScope {
	return &fakeTxScope{
		entries:  new(MockLedgerEntryRepository),
		payments: new(MockPaymentRecordRepository),
		plans:    new(MockInstallmentPlanRepository),
	}
}

func (f *fakeTxScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	f.calls++
	return fn(f)
}

func (f *fakeTxScope) Entries() ledger.LedgerEntryRepository     { return f.entries }
func (f *fakeTxScope) Payments() ledger.PaymentRecordRepository  { return f.payments }
func (f *fakeTxScope) Plans() ledger.InstallmentPlanRepository   { return f.plans }
func (f *fakeTxScope) Sales() sales.SaleRepository               { return nil }
func (f *fakeTxScope) Quotations() sales.QuotationRepository     { return nil }
func (f *fakeTxScope) Stock() dashboard.StockReader              { return nil }
