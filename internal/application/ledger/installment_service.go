package ledger

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
)

// InstallmentService creates and reads installment plans
type InstallmentService struct {
	txScope        appshared.TransactionScope
	planRepo       ledger.InstallmentPlanRepository
	entryRepo      ledger.LedgerEntryRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	txScope appshared.TransactionScope,
	planRepo ledger.InstallmentPlanRepository,
	entryRepo ledger.LedgerEntryRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *InstallmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallmentService{
		txScope:        txScope,
		planRepo:       planRepo,
		entryRepo:      entryRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreatePlan stores the plan header and all of its installment entries in one
// transaction. A clash on any installment reference rolls everything back.
func (s *InstallmentService) CreatePlan(ctx context.Context, orgID uuid.UUID, req CreatePlanRequest) (*PlanResponse, error) {
	total, err := parseMoney(req.TotalAmount, req.Currency)
	if err != nil {
		return nil, err
	}

	plan, err := ledger.NewInstallmentPlan(ledger.NewPlanParams{
		OrganizationID:   orgID,
		CounterpartyID:   req.CounterpartyID,
		CounterpartyName: req.CounterpartyName,
		ReferencePrefix:  req.ReferencePrefix,
		TotalAmount:      total,
		Count:            req.Count,
		Frequency:        ledger.Frequency(req.Frequency),
		FirstDueDate:     req.FirstDueDate,
	})
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.Plans().Create(ctx, plan); err != nil {
			return err
		}
		for _, inst := range plan.Installments {
			exists, err := repos.Entries().ExistsByReference(ctx, orgID, inst.Kind, inst.ReferenceNumber)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError(shared.CodeDuplicateReference,
					"Installment "+inst.ReferenceNumber+" already exists")
			}
			if err := repos.Entries().Create(ctx, inst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("total", plan.TotalAmount.String()),
		zap.Int("count", plan.Count),
		zap.String("frequency", string(plan.Frequency)),
	)

	// installment creation events are noise next to the plan event
	for _, inst := range plan.Installments {
		inst.ClearDomainEvents()
	}
	appshared.PublishEvents(ctx, s.eventPublisher, s.logger, plan)

	resp := ToPlanResponse(plan)
	return &resp, nil
}

// GetPlan returns a plan with its installments ordered by number
func (s *InstallmentService) GetPlan(ctx context.Context, orgID, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByIDForOrg(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	id := plan.ID
	entries, err := s.entryRepo.FindAllForOrg(ctx, orgID, ledger.EntryFilter{PlanID: &id})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].InstallmentNumber < entries[j].InstallmentNumber
	})
	plan.Installments = make([]*ledger.LedgerEntry, len(entries))
	for i := range entries {
		plan.Installments[i] = &entries[i]
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}
