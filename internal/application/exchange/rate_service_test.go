package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flowi/backend/internal/domain/exchange"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/infrastructure/persistence"
)

var fixedNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Append(ctx context.Context, record *exchange.RateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRateRepository) EffectiveAt(ctx context.Context, orgID uuid.UUID, t time.Time) (*exchange.RateRecord, error) {
	args := m.Called(ctx, orgID, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.RateRecord), args.Error(1)
}

func (m *MockRateRepository) History(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]exchange.RateRecord, error) {
	args := m.Called(ctx, orgID, from, to)
	return args.Get(0).([]exchange.RateRecord), args.Error(1)
}

func newSQLiteRateService(t *testing.T, orgID uuid.UUID) *RateService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	return NewRateService(RateServiceConfig{
		Repo:           persistence.NewGormExchangeRateRepository(db),
		OrganizationID: orgID,
		Now:            func() time.Time { return fixedNow },
	})
}

func at(d time.Duration) *time.Time {
	t := fixedNow.Add(d)
	return &t
}

func TestRateService_History(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteRateService(t, uuid.New())

	_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: "36.10", EffectiveAt: at(-48 * time.Hour), Source: "bcv"})
	require.NoError(t, err)
	_, err = svc.SetRate(ctx, SetRateRequest{UsdToVes: "36.50", EffectiveAt: at(-24 * time.Hour), Source: "bcv"})
	require.NoError(t, err)
	_, err = svc.SetRate(ctx, SetRateRequest{UsdToVes: "37.00", Source: "manual"})
	require.NoError(t, err)

	t.Run("current is the latest effective rate", func(t *testing.T) {
		rate, err := svc.Current(ctx)
		require.NoError(t, err)
		assert.True(t, rate.UsdToVes().Equal(decimal.RequireFromString("37")))
		assert.Equal(t, "manual", rate.Source())
	})

	t.Run("future dated rate is not current yet", func(t *testing.T) {
		_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: "99", EffectiveAt: at(10 * 24 * time.Hour), Source: "bcv"})
		require.NoError(t, err)

		current, err := svc.Current(ctx)
		require.NoError(t, err)
		asOf, err := svc.AsOf(ctx, fixedNow)
		require.NoError(t, err)
		assert.True(t, current.UsdToVes().Equal(decimal.RequireFromString("37")), current.UsdToVes().String())
		assert.True(t, current.UsdToVes().Equal(asOf.UsdToVes()))

		later, err := svc.AsOf(ctx, fixedNow.AddDate(0, 0, 11))
		require.NoError(t, err)
		assert.True(t, later.UsdToVes().Equal(decimal.RequireFromString("99")))
	})

	t.Run("as of picks the rate in effect at that time", func(t *testing.T) {
		rate, err := svc.AsOf(ctx, fixedNow.Add(-30*time.Hour))
		require.NoError(t, err)
		assert.True(t, rate.UsdToVes().Equal(decimal.RequireFromString("36.10")))

		rate, err = svc.AsOf(ctx, fixedNow.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.True(t, rate.UsdToVes().Equal(decimal.RequireFromString("36.50")))
	})

	t.Run("before the first rate is not found", func(t *testing.T) {
		_, err := svc.AsOf(ctx, fixedNow.AddDate(0, 0, -10))
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("history is oldest first and keeps every entry", func(t *testing.T) {
		out, err := svc.History(ctx, HistoryFilter{To: at(time.Minute)})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.True(t, out[0].UsdToVes.Equal(decimal.RequireFromString("36.10")))
		assert.True(t, out[2].UsdToVes.Equal(decimal.RequireFromString("37")))
	})
}

func TestRateService_SetRate(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("rejects a non-positive rate", func(t *testing.T) {
		repo := new(MockRateRepository)
		svc := NewRateService(RateServiceConfig{Repo: repo, OrganizationID: orgID})

		_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: "0"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		_, err = svc.SetRate(ctx, SetRateRequest{UsdToVes: "abc"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("no rate recorded yet", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("EffectiveAt", ctx, orgID, fixedNow).Return(nil, shared.ErrNotFound)
		svc := NewRateService(RateServiceConfig{Repo: repo, OrganizationID: orgID, Now: func() time.Time { return fixedNow }})

		_, err := svc.Current(ctx)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("storage failure notifies nobody", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("Append", ctx, mock.Anything).Return(shared.WrapStorageError(errors.New("timeout"), "append"))
		svc := NewRateService(RateServiceConfig{Repo: repo, OrganizationID: orgID, Now: func() time.Time { return fixedNow }})
		ch, cancel := svc.Subscribe()
		defer cancel()

		_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: "40"})
		assert.True(t, errors.Is(err, shared.ErrStorageUnavailable))
		assert.Empty(t, ch)
	})
}

func TestRateService_Subscribe(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	repo := new(MockRateRepository)
	repo.On("Append", ctx, mock.Anything).Return(nil)
	svc := NewRateService(RateServiceConfig{
		Repo:             repo,
		OrganizationID:   orgID,
		SubscriberBuffer: 1,
		Now:              func() time.Time { return fixedNow },
	})

	t.Run("subscribers receive new rates", func(t *testing.T) {
		ch, cancel := svc.Subscribe()
		defer cancel()

		_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: "38.25", Source: "bcv"})
		require.NoError(t, err)

		select {
		case rate := <-ch:
			assert.True(t, rate.UsdToVes().Equal(decimal.RequireFromString("38.25")))
			assert.Equal(t, fixedNow, rate.EffectiveAt())
		case <-time.After(time.Second):
			t.Fatal("no rate delivered")
		}
	})

	t.Run("a slow subscriber never blocks the writer", func(t *testing.T) {
		ch, cancel := svc.Subscribe()
		defer cancel()

		for _, v := range []string{"39", "40", "41"} {
			_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: v})
			require.NoError(t, err)
		}
		require.Len(t, ch, 1)
		rate := <-ch
		assert.True(t, rate.UsdToVes().Equal(decimal.RequireFromString("39")))
	})

	t.Run("cancel closes the channel and is safe to repeat", func(t *testing.T) {
		ch, cancel := svc.Subscribe()
		cancel()
		cancel()

		_, ok := <-ch
		assert.False(t, ok)

		_, err := svc.SetRate(ctx, SetRateRequest{UsdToVes: "42"})
		require.NoError(t, err)
	})
}
