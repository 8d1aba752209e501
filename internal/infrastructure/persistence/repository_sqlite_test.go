package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/exchange"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
	"github.com/flowi/backend/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func newTestEntry(t *testing.T, orgID uuid.UUID, ref string, amount string, due time.Time) *ledger.LedgerEntry {
	t.Helper()
	e, err := ledger.NewLedgerEntry(ledger.NewEntryParams{
		OrganizationID:   orgID,
		Kind:             ledger.EntryKindReceivable,
		CounterpartyID:   uuid.New(),
		CounterpartyName: "Bodega La Esquina",
		ReferenceNumber:  ref,
		Amount:           valueobject.MustMoney(amount, valueobject.USD),
		DueDate:          due,
	})
	require.NoError(t, err)
	return e
}

func TestGormLedgerEntryRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	entry := newTestEntry(t, orgID, "FAC-001", "120.50", due)
	require.NoError(t, repo.Create(ctx, entry))

	found, err := repo.FindByIDForOrg(ctx, orgID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-001", found.ReferenceNumber)
	assert.True(t, found.Amount.Equals(valueobject.MustMoney("120.50", valueobject.USD)))
	assert.True(t, found.PaidAmount.IsZero())
	assert.Equal(t, ledger.EntryStatusPending, found.Status)
	assert.Equal(t, 1, found.Version)

	_, err = repo.FindByIDForOrg(ctx, uuid.New(), entry.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormLedgerEntryRepository_DuplicateReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTestEntry(t, orgID, "FAC-002", "10", due)))

	exists, err := repo.ExistsByReference(ctx, orgID, ledger.EntryKindReceivable, "FAC-002")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, newTestEntry(t, orgID, "FAC-002", "20", due))
	assert.True(t, errors.Is(err, shared.ErrDuplicateReference))

	// Same reference in another organization is fine
	require.NoError(t, repo.Create(ctx, newTestEntry(t, uuid.New(), "FAC-002", "20", due)))
}

func TestGormLedgerEntryRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	entry := newTestEntry(t, orgID, "FAC-003", "100", due)
	require.NoError(t, repo.Create(ctx, entry))

	first, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)

	at := due.Add(-24 * time.Hour)
	_, err = first.ApplyPayment(ledger.PaymentInput{
		Amount: valueobject.MustMoney("40", valueobject.USD), Method: ledger.PaymentMethodCash, ProcessedAt: at,
	})
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, first))

	_, err = second.ApplyPayment(ledger.PaymentInput{
		Amount: valueobject.MustMoney("70", valueobject.USD), Method: ledger.PaymentMethodCash, ProcessedAt: at,
	})
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, second)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	stored, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equals(valueobject.MustMoney("40", valueobject.USD)))
	assert.Equal(t, ledger.EntryStatusPartial, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestGormLedgerEntryRepository_FindSweepCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	asOf := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	past := newTestEntry(t, orgID, "PAST", "10", asOf.AddDate(0, 0, -3))
	future := newTestEntry(t, orgID, "FUTURE", "10", asOf.AddDate(0, 0, 3))
	cancelled := newTestEntry(t, orgID, "CANCELLED", "10", asOf.AddDate(0, 0, -5))
	require.NoError(t, cancelled.Cancel("duplicate invoice", asOf.AddDate(0, 0, -6)))
	for _, e := range []*ledger.LedgerEntry{past, future, cancelled} {
		require.NoError(t, repo.Create(ctx, e))
	}

	candidates, err := repo.FindSweepCandidates(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, past.ID, candidates[0].ID)
}

func TestGormLedgerEntryRepository_FilterAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	base := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	for i, ref := range []string{"A", "B", "C", "D"} {
		require.NoError(t, repo.Create(ctx, newTestEntry(t, orgID, ref, "5", base.AddDate(0, 0, i))))
	}

	filter := ledger.EntryFilter{
		Filter:   shared.Filter{Page: 2, PageSize: 2, OrderBy: "due_date", OrderDir: "asc"},
		Statuses: []ledger.EntryStatus{ledger.EntryStatusPending},
	}
	page, err := repo.FindAllForOrg(ctx, orgID, filter)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].ReferenceNumber)
	assert.Equal(t, "D", page[1].ReferenceNumber)

	total, err := repo.CountForOrg(ctx, orgID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	require.NoError(t, repo.DeleteForOrg(ctx, orgID, page[0].ID))
	assert.True(t, errors.Is(repo.DeleteForOrg(ctx, orgID, page[0].ID), shared.ErrNotFound))
}

func TestGormLedgerEntryRepository_DefaultOrderNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	older := newTestEntry(t, orgID, "OLD", "5", created.AddDate(0, 1, 0))
	older.CreatedAt = created
	newer := newTestEntry(t, orgID, "NEW", "5", created.AddDate(0, 2, 0))
	newer.CreatedAt = created.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.FindAllForOrg(ctx, orgID, ledger.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "NEW", list[0].ReferenceNumber)
	assert.Equal(t, "OLD", list[1].ReferenceNumber)
}

func TestGormPaymentRecordRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRecordRepository(db)
	ctx := context.Background()
	entryID := uuid.New()
	at := time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)

	for i, amount := range []string{"15", "25"} {
		require.NoError(t, repo.Create(ctx, &ledger.PaymentRecord{
			ID:             uuid.New(),
			OrganizationID: uuid.New(),
			LedgerEntryID:  entryID,
			Amount:         valueobject.MustMoney(amount, valueobject.VES),
			Method:         ledger.PaymentMethodMobile,
			ProcessedAt:    at.Add(time.Duration(i) * time.Hour),
		}))
	}

	records, err := repo.FindByEntry(ctx, entryID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Amount.Equals(valueobject.MustMoney("15", valueobject.VES)))
	assert.Equal(t, valueobject.VES, records[1].Amount.Currency())
}

func TestGormSaleAndQuotationRepositories(t *testing.T) {
	db := setupTestDB(t)
	saleRepo := NewGormSaleRepository(db)
	quoteRepo := NewGormQuotationRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	customerID := uuid.New()
	now := time.Date(2026, 10, 10, 12, 0, 0, 0, time.UTC)

	items := []sales.LineItem{
		{ProductID: uuid.New(), Description: "Harina PAN", Quantity: decimal.NewFromInt(2),
			UnitPriceUSD: decimal.RequireFromString("1.50"), UnitPriceVES: decimal.RequireFromString("55")},
		{ProductID: uuid.New(), Description: "Aceite", Quantity: decimal.NewFromInt(1),
			UnitPriceUSD: decimal.RequireFromString("4.00"), UnitPriceVES: decimal.RequireFromString("146")},
	}

	q, err := sales.NewQuotation(sales.NewQuotationParams{
		OrganizationID:  orgID,
		QuotationNumber: "COT-0001",
		CustomerID:      customerID,
		CustomerName:    "Panadería Sol",
		Items:           items,
		PaymentTerms:    &sales.PaymentTerms{DueInDays: 15, Currency: valueobject.USD},
		ValidUntil:      now.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	require.NoError(t, quoteRepo.Create(ctx, q))

	loaded, err := quoteRepo.FindByIDForOrg(ctx, orgID, q.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "Harina PAN", loaded.Items[0].Description)
	require.NotNil(t, loaded.PaymentTerms)
	assert.Equal(t, 15, loaded.PaymentTerms.DueInDays)
	assert.True(t, loaded.TotalUSD.Equals(valueobject.MustMoney("7.00", valueobject.USD)))

	require.NoError(t, loaded.Send(ctx, now))
	require.NoError(t, quoteRepo.SaveWithLock(ctx, loaded))

	exists, err := quoteRepo.ExistsByNumber(ctx, orgID, "COT-0001")
	require.NoError(t, err)
	assert.True(t, exists)

	expirable, err := quoteRepo.FindExpirable(ctx, now.AddDate(0, 0, 8))
	require.NoError(t, err)
	require.Len(t, expirable, 1)
	assert.Equal(t, sales.QuotationStatusSent, expirable[0].Status)

	sale, err := sales.NewSale(sales.NewSaleParams{
		OrganizationID: orgID,
		CustomerID:     &customerID,
		CustomerName:   "Panadería Sol",
		Items:          items,
		PaymentMethod:  sales.PaymentMethodMixed,
		PaidUSD:        valueobject.MustMoney("3", valueobject.USD),
		PaidVES:        valueobject.MustMoney("146", valueobject.VES),
		CreatedAt:      now,
	})
	require.NoError(t, err)
	require.NoError(t, saleRepo.Create(ctx, sale))

	from, to := now.Add(-time.Hour), now.Add(time.Hour)
	list, err := saleRepo.FindAllForOrg(ctx, orgID, sales.SaleFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)
	assert.True(t, list[0].PaidVES.Equals(valueobject.MustMoney("146", valueobject.VES)))
}

func TestGormExchangeRateRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormExchangeRateRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	day := func(d int) time.Time { return time.Date(2026, 9, d, 9, 0, 0, 0, time.UTC) }

	for d, v := range map[int]string{1: "36.50", 3: "38.10", 5: "39.00"} {
		rate, err := valueobject.NewExchangeRate(decimal.RequireFromString(v), day(d), "bcv")
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, &exchange.RateRecord{
			ID: uuid.New(), OrganizationID: orgID, Rate: rate, CreatedAt: day(d),
		}))
	}

	latest, err := repo.EffectiveAt(ctx, orgID, day(9))
	require.NoError(t, err)
	assert.True(t, latest.Rate.UsdToVes().Equal(decimal.RequireFromString("39")))

	local := day(4).In(time.FixedZone("VET", -4*60*60))
	asOfLocal, err := repo.EffectiveAt(ctx, orgID, local)
	require.NoError(t, err)
	assert.True(t, asOfLocal.Rate.UsdToVes().Equal(decimal.RequireFromString("38.10")))

	asOf, err := repo.EffectiveAt(ctx, orgID, day(4))
	require.NoError(t, err)
	assert.True(t, asOf.Rate.UsdToVes().Equal(decimal.RequireFromString("38.10")))

	_, err = repo.EffectiveAt(ctx, orgID, day(1).Add(-time.Hour))
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	history, err := repo.History(ctx, orgID, day(1), day(5))
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestGormProductStockReader(t *testing.T) {
	db := setupTestDB(t)
	orgID := uuid.New()
	now := time.Now().UTC()

	for _, p := range []models.ProductModel{
		{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, OrganizationID: orgID,
			Code: "P1", Name: "Arroz", Stock: decimal.NewFromInt(3), Active: true},
		{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, OrganizationID: orgID,
			Code: "P2", Name: "Café", Stock: decimal.NewFromInt(40), Active: true},
	} {
		require.NoError(t, db.Create(&p).Error)
	}
	// Inactive products are not counted
	require.NoError(t, db.Exec("INSERT INTO products (id, created_at, updated_at, organization_id, code, name, stock, active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		uuid.New(), now, now, orgID, "P3", "Azúcar", 0, false).Error)

	levels, err := NewGormProductStockReader(db).ListStockLevels(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "Arroz", levels[0].Name)
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	orgID := uuid.New()
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	entry := newTestEntry(t, orgID, "TX-1", "50", due)

	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.Entries().Create(ctx, entry); err != nil {
			return err
		}
		return shared.ErrOverpayment
	})
	assert.True(t, errors.Is(err, shared.ErrOverpayment))

	_, err = NewGormLedgerEntryRepository(db).FindByID(ctx, entry.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	err = scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return repos.Entries().Create(ctx, entry)
	})
	require.NoError(t, err)
	_, err = NewGormLedgerEntryRepository(db).FindByID(ctx, entry.ID)
	assert.NoError(t, err)
}
