package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// AggregateTypeInstallmentPlan is the aggregate type name used on events
const AggregateTypeInstallmentPlan = "InstallmentPlan"

// MaxInstallments caps the number of slices in one plan
const MaxInstallments = 120

// Frequency sets the spacing between installment due dates
type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

// IsValid checks if the frequency is known
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// DueDate returns the due date of the installment at zero-based index i.
// Monthly plans keep the first due day, clamped to the end of shorter months.
func (f Frequency) DueDate(first time.Time, i int) time.Time {
	switch f {
	case FrequencyWeekly:
		return first.AddDate(0, 0, 7*i)
	case FrequencyBiweekly:
		return first.AddDate(0, 0, 14*i)
	default:
		return addMonthsClamped(first, i)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	lastDay := time.Date(y, m+time.Month(months)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(y, m+time.Month(months), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// InstallmentPlan splits a total into N installment entries
type InstallmentPlan struct {
	shared.OrgAggregateRoot
	CounterpartyID   uuid.UUID
	CounterpartyName string
	ReferencePrefix  string
	TotalAmount      valueobject.Money
	Count            int
	Frequency        Frequency
	FirstDueDate     time.Time
	Installments     []*LedgerEntry // ordered by due date, numbered 1..Count
}

// NewPlanParams holds the inputs for NewInstallmentPlan
type NewPlanParams struct {
	OrganizationID   uuid.UUID
	CounterpartyID   uuid.UUID
	CounterpartyName string
	ReferencePrefix  string
	TotalAmount      valueobject.Money
	Count            int
	Frequency        Frequency
	FirstDueDate     time.Time
}

// NewInstallmentPlan builds a plan and its installment entries. The total is
// split with Money.Allocate, so the final installment carries any leftover
// cents and the installments always sum to the total.
func NewInstallmentPlan(p NewPlanParams) (*InstallmentPlan, error) {
	if p.Count < 1 || p.Count > MaxInstallments {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Installment count must be between 1 and %d", MaxInstallments))
	}
	if !p.Frequency.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown frequency %q", p.Frequency))
	}
	if p.ReferencePrefix == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Reference prefix cannot be empty")
	}
	if !p.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Total amount must be positive")
	}
	if !valueobject.WithinMoneyScale(p.TotalAmount.Amount()) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Total amount %s is finer than %d decimal places", p.TotalAmount.Amount(), valueobject.MoneyScale))
	}

	parts, err := p.TotalAmount.Allocate(p.Count)
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		if !part.IsPositive() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Total %s is too small for %d installments", p.TotalAmount, p.Count))
		}
	}

	plan := &InstallmentPlan{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(p.OrganizationID),
		CounterpartyID:   p.CounterpartyID,
		CounterpartyName: p.CounterpartyName,
		ReferencePrefix:  p.ReferencePrefix,
		TotalAmount:      p.TotalAmount,
		Count:            p.Count,
		Frequency:        p.Frequency,
		FirstDueDate:     p.FirstDueDate,
		Installments:     make([]*LedgerEntry, 0, p.Count),
	}

	for i, part := range parts {
		entry, err := NewLedgerEntry(NewEntryParams{
			OrganizationID:   p.OrganizationID,
			Kind:             EntryKindInstallment,
			CounterpartyID:   p.CounterpartyID,
			CounterpartyName: p.CounterpartyName,
			ReferenceNumber:  InstallmentReference(p.ReferencePrefix, i+1, p.Count),
			Amount:           part,
			DueDate:          p.Frequency.DueDate(p.FirstDueDate, i),
		})
		if err != nil {
			return nil, err
		}
		planID := plan.ID
		entry.PlanID = &planID
		entry.InstallmentNumber = i + 1
		plan.Installments = append(plan.Installments, entry)
	}

	if err := plan.CheckSum(); err != nil {
		return nil, err
	}

	plan.AddDomainEvent(NewInstallmentPlanCreatedEvent(plan))

	return plan, nil
}

// InstallmentReference formats the reference number of installment i of n
func InstallmentReference(prefix string, i, n int) string {
	return fmt.Sprintf("%s-%d/%d", prefix, i, n)
}

// CheckSum verifies the installments add up to the plan total
func (p *InstallmentPlan) CheckSum() error {
	amounts := make([]valueobject.Money, 0, len(p.Installments))
	for _, inst := range p.Installments {
		amounts = append(amounts, inst.Amount)
	}
	sum, err := valueobject.Sum(p.TotalAmount.Currency(), amounts...)
	if err != nil {
		return err
	}
	if !sum.Equals(p.TotalAmount) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Installments sum to %s, plan total is %s", sum, p.TotalAmount))
	}
	return nil
}

// Outstanding sums what is still owed across all installments
func (p *InstallmentPlan) Outstanding() valueobject.Money {
	total := valueobject.Zero(p.TotalAmount.Currency())
	for _, inst := range p.Installments {
		if inst.Status == EntryStatusCancelled {
			continue
		}
		if next, err := total.Add(inst.Outstanding()); err == nil {
			total = next
		}
	}
	return total
}
