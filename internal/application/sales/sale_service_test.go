package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

func TestSaleService_RecordSale(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("mixed sale keeps both portions as collected", func(t *testing.T) {
		repo := new(MockSaleRepository)
		publisher := new(MockEventPublisher)
		svc := NewSaleService(repo, publisher, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)
		publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.RecordSale(ctx, orgID, RecordSaleRequest{
			Items:         testItems(),
			PaymentMethod: "mixed",
			PaidUSD:       "10",
			PaidVES:       "300.50",
		})
		require.NoError(t, err)
		assert.Equal(t, "mixed", resp.PaymentMethod)
		assert.True(t, resp.PaidUSD.Equals(valueobject.MustMoney("10", valueobject.USD)))
		assert.True(t, resp.PaidVES.Equals(valueobject.MustMoney("300.50", valueobject.VES)))
		assert.NotEmpty(t, resp.SaleNumber)
		publisher.AssertExpectations(t)
	})

	t.Run("mixed sale needs a portion", func(t *testing.T) {
		repo := new(MockSaleRepository)
		svc := NewSaleService(repo, nil, nil)

		_, err := svc.RecordSale(ctx, orgID, RecordSaleRequest{Items: testItems(), PaymentMethod: "mixed"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("credit sale needs a customer", func(t *testing.T) {
		repo := new(MockSaleRepository)
		svc := NewSaleService(repo, nil, nil)

		_, err := svc.RecordSale(ctx, orgID, RecordSaleRequest{Items: testItems(), PaymentMethod: "credit"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("list maps filter parameters", func(t *testing.T) {
		repo := new(MockSaleRepository)
		svc := NewSaleService(repo, nil, nil)
		method := sales.PaymentMethodVES
		expected := sales.SaleFilter{
			Filter:        shared.Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc"},
			PaymentMethod: &method,
		}
		repo.On("FindAllForOrg", ctx, orgID, expected).Return([]sales.Sale{}, nil)

		out, err := svc.ListSales(ctx, orgID, SaleListFilter{PaymentMethod: "ves"})
		require.NoError(t, err)
		assert.Empty(t, out)
		repo.AssertExpectations(t)
	})
}
