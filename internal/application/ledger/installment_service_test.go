package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

func TestInstallmentService_CreatePlan(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	req := CreatePlanRequest{
		CounterpartyID:   uuid.New(),
		CounterpartyName: "Maria Perez",
		ReferencePrefix:  "CRED-12",
		TotalAmount:      "100",
		Currency:         "USD",
		Count:            3,
		Frequency:        "MONTHLY",
		FirstDueDate:     time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	t.Run("stores the header and every installment in one transaction", func(t *testing.T) {
		scope := newFakeTxScope()
		publisher := new(MockEventPublisher)
		svc := NewInstallmentService(scope, scope.plans, scope.entries, publisher, nil)

		scope.plans.On("Create", ctx, mock.AnythingOfType("*ledger.InstallmentPlan")).Return(nil)
		scope.entries.On("ExistsByReference", ctx, orgID, ledger.EntryKindInstallment, mock.Anything).Return(false, nil)
		scope.entries.On("Create", ctx, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil).Times(3)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == ledger.EventTypeInstallmentPlanCreated
		})).Return(nil)

		resp, err := svc.CreatePlan(ctx, orgID, req)
		require.NoError(t, err)
		assert.Equal(t, 1, scope.calls)
		require.Len(t, resp.Installments, 3)

		assert.Equal(t, "CRED-12-1/3", resp.Installments[0].ReferenceNumber)
		assert.Equal(t, "CRED-12-3/3", resp.Installments[2].ReferenceNumber)
		assert.True(t, resp.Installments[0].Amount.Equals(valueobject.MustMoney("33.33", valueobject.USD)))
		assert.True(t, resp.Installments[2].Amount.Equals(valueobject.MustMoney("33.34", valueobject.USD)))
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), resp.Installments[1].DueDate)
		assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), resp.Installments[2].DueDate)
		for i, inst := range resp.Installments {
			assert.Equal(t, i+1, inst.InstallmentNumber)
			assert.Equal(t, "INSTALLMENT", inst.Kind)
			require.NotNil(t, inst.PlanID)
			assert.Equal(t, resp.ID, *inst.PlanID)
		}
		scope.entries.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("a reference clash aborts the whole plan", func(t *testing.T) {
		scope := newFakeTxScope()
		svc := NewInstallmentService(scope, scope.plans, scope.entries, nil, nil)

		scope.plans.On("Create", ctx, mock.Anything).Return(nil)
		scope.entries.On("ExistsByReference", ctx, orgID, ledger.EntryKindInstallment, "CRED-12-1/3").Return(false, nil)
		scope.entries.On("ExistsByReference", ctx, orgID, ledger.EntryKindInstallment, "CRED-12-2/3").Return(true, nil)
		scope.entries.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.CreatePlan(ctx, orgID, req)
		assert.True(t, errors.Is(err, shared.ErrDuplicateReference))
	})

	t.Run("rejects an invalid frequency", func(t *testing.T) {
		scope := newFakeTxScope()
		svc := NewInstallmentService(scope, scope.plans, scope.entries, nil, nil)
		bad := req
		bad.Frequency = "DAILY"

		_, err := svc.CreatePlan(ctx, orgID, bad)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Equal(t, 0, scope.calls)
	})
}

func TestInstallmentService_GetPlan(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	plan, err := ledger.NewInstallmentPlan(ledger.NewPlanParams{
		OrganizationID:   orgID,
		CounterpartyID:   uuid.New(),
		CounterpartyName: "Maria Perez",
		ReferencePrefix:  "CRED-13",
		TotalAmount:      valueobject.MustMoney("900", valueobject.VES),
		Count:            2,
		Frequency:        ledger.FrequencyBiweekly,
		FirstDueDate:     fixedNow,
	})
	require.NoError(t, err)

	planRepo := new(MockInstallmentPlanRepository)
	entryRepo := new(MockLedgerEntryRepository)
	svc := NewInstallmentService(newFakeTxScope(), planRepo, entryRepo, nil, nil)

	header := *plan
	header.Installments = nil
	planRepo.On("FindByIDForOrg", ctx, orgID, plan.ID).Return(&header, nil)
	planID := plan.ID
	entryRepo.On("FindAllForOrg", ctx, orgID, ledger.EntryFilter{PlanID: &planID}).
		Return([]ledger.LedgerEntry{*plan.Installments[1], *plan.Installments[0]}, nil)

	resp, err := svc.GetPlan(ctx, orgID, plan.ID)
	require.NoError(t, err)
	require.Len(t, resp.Installments, 2)
	assert.Equal(t, 1, resp.Installments[0].InstallmentNumber)
	assert.Equal(t, 2, resp.Installments[1].InstallmentNumber)
	assert.True(t, resp.Outstanding.Equals(valueobject.MustMoney("900", valueobject.VES)))
}
