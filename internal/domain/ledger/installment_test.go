package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

func planParams(total valueobject.Money, count int, freq Frequency, first time.Time) NewPlanParams {
	return NewPlanParams{
		OrganizationID:   uuid.New(),
		CounterpartyID:   uuid.New(),
		CounterpartyName: "María Pérez",
		ReferencePrefix:  "PLAN-42",
		TotalAmount:      total,
		Count:            count,
		Frequency:        freq,
		FirstDueDate:     first,
	}
}

func TestNewInstallmentPlan_EvenMonthlySplit(t *testing.T) {
	first := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	plan, err := NewInstallmentPlan(planParams(usd("300"), 3, FrequencyMonthly, first))
	require.NoError(t, err)

	require.Len(t, plan.Installments, 3)
	for i, inst := range plan.Installments {
		assert.True(t, inst.Amount.Equals(usd("100")))
		assert.Equal(t, EntryKindInstallment, inst.Kind)
		assert.Equal(t, i+1, inst.InstallmentNumber)
		require.NotNil(t, inst.PlanID)
		assert.Equal(t, plan.ID, *inst.PlanID)
		assert.Equal(t, plan.OrganizationID, inst.OrganizationID)
	}
	assert.Equal(t, "PLAN-42-1/3", plan.Installments[0].ReferenceNumber)
	assert.Equal(t, "PLAN-42-3/3", plan.Installments[2].ReferenceNumber)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), plan.Installments[1].DueDate)
	assert.NoError(t, plan.CheckSum())
}

func TestNewInstallmentPlan_RemainderOnLastInstallment(t *testing.T) {
	plan, err := NewInstallmentPlan(planParams(ves("1000"), 3, FrequencyWeekly, time.Now()))
	require.NoError(t, err)

	assert.True(t, plan.Installments[0].Amount.Equals(ves("333.33")))
	assert.True(t, plan.Installments[1].Amount.Equals(ves("333.33")))
	assert.True(t, plan.Installments[2].Amount.Equals(ves("333.34")))
	assert.True(t, plan.Outstanding().Equals(ves("1000")))
}

func TestFrequency_DueDate(t *testing.T) {
	jan31 := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		freq  Frequency
		first time.Time
		index int
		want  time.Time
	}{
		{"weekly", FrequencyWeekly, jan31, 2, time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)},
		{"biweekly", FrequencyBiweekly, jan31, 1, time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)},
		{"monthly clamps to february end", FrequencyMonthly, jan31, 1, time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)},
		{"monthly returns to day 31", FrequencyMonthly, jan31, 2, time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC)},
		{"monthly into leap february", FrequencyMonthly, time.Date(2028, 1, 30, 0, 0, 0, 0, time.UTC), 1, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"monthly across year end", FrequencyMonthly, time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"first installment", FrequencyMonthly, jan31, 0, jan31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.freq.DueDate(tt.first, tt.index))
		})
	}
}

func TestNewInstallmentPlan_DueDatesAscending(t *testing.T) {
	plan, err := NewInstallmentPlan(planParams(usd("1200"), 12, FrequencyBiweekly, time.Now()))
	require.NoError(t, err)
	for i := 1; i < len(plan.Installments); i++ {
		assert.True(t, plan.Installments[i].DueDate.After(plan.Installments[i-1].DueDate))
	}
}

func TestNewInstallmentPlan_Validation(t *testing.T) {
	tests := []struct {
		name string
		p    NewPlanParams
	}{
		{"zero installments", planParams(usd("100"), 0, FrequencyMonthly, time.Now())},
		{"too many installments", planParams(usd("100000"), MaxInstallments+1, FrequencyMonthly, time.Now())},
		{"unknown frequency", planParams(usd("100"), 2, "DAILY", time.Now())},
		{"non-positive total", planParams(usd("0"), 2, FrequencyMonthly, time.Now())},
		{"total smaller than one cent per installment", planParams(usd("0.02"), 3, FrequencyMonthly, time.Now())},
		{"total finer than cents", planParams(subCent("100.001", valueobject.USD), 2, FrequencyMonthly, time.Now())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstallmentPlan(tt.p)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput), "got %v", err)
		})
	}
}
