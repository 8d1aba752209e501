package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
)

// EntryService handles receivable and payable bookkeeping that does not move money
type EntryService struct {
	entryRepo      ledger.LedgerEntryRepository
	paymentRepo    ledger.PaymentRecordRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// EntryServiceConfig holds the dependencies of EntryService
type EntryServiceConfig struct {
	EntryRepo      ledger.LedgerEntryRepository
	PaymentRepo    ledger.PaymentRecordRepository
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewEntryService creates a new EntryService
func NewEntryService(cfg EntryServiceConfig) *EntryService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &EntryService{
		entryRepo:      cfg.EntryRepo,
		paymentRepo:    cfg.PaymentRepo,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
		now:            now,
	}
}

// CreateEntry opens a receivable or payable. The (kind, organization,
// reference) triple is checked here and again by the unique index.
func (s *EntryService) CreateEntry(ctx context.Context, orgID uuid.UUID, req CreateEntryRequest) (*EntryResponse, error) {
	amount, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	kind := ledger.EntryKind(req.Kind)
	if kind == ledger.EntryKindInstallment {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Installments are created through installment plans")
	}

	exists, err := s.entryRepo.ExistsByReference(ctx, orgID, kind, req.ReferenceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeDuplicateReference,
			fmt.Sprintf("%s %s already exists", kind, req.ReferenceNumber))
	}

	entry, err := ledger.NewLedgerEntry(ledger.NewEntryParams{
		OrganizationID:   orgID,
		Kind:             kind,
		CounterpartyID:   req.CounterpartyID,
		CounterpartyName: req.CounterpartyName,
		ReferenceNumber:  req.ReferenceNumber,
		Amount:           amount,
		DueDate:          req.DueDate,
		SourceID:         req.SourceID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("ledger entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("kind", string(entry.Kind)),
		zap.String("reference", entry.ReferenceNumber),
		zap.String("amount", entry.Amount.String()),
	)
	s.publish(ctx, entry)

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// GetEntry returns one entry of the organization
func (s *EntryService) GetEntry(ctx context.Context, orgID, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// GetOutstanding returns amount minus paid amount in the entry's own currency
func (s *EntryService) GetOutstanding(ctx context.Context, orgID, id uuid.UUID) (*OutstandingResponse, error) {
	entry, err := s.entryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return &OutstandingResponse{
		EntryID:     entry.ID,
		Outstanding: entry.Outstanding(),
		Status:      string(entry.Status),
	}, nil
}

// ListEntries returns a page of entries matching filter
func (s *EntryService) ListEntries(ctx context.Context, orgID uuid.UUID, f EntryListFilter) (*shared.Paginated[EntryResponse], error) {
	filter, err := f.ToDomainFilter()
	if err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.entryRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToEntryResponses(entries), total, filter.Filter)
	return &page, nil
}

// ListPayments returns the payment audit trail of an entry, oldest first
func (s *EntryService) ListPayments(ctx context.Context, orgID, entryID uuid.UUID) ([]PaymentRecordResponse, error) {
	if _, err := s.entryRepo.FindByIDForOrg(ctx, orgID, entryID); err != nil {
		return nil, err
	}
	records, err := s.paymentRepo.FindByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentRecordResponse, len(records))
	for i := range records {
		out[i] = ToPaymentRecordResponse(&records[i])
	}
	return out, nil
}

// CancelEntry cancels an entry that has nothing paid
func (s *EntryService) CancelEntry(ctx context.Context, orgID, id uuid.UUID, req CancelEntryRequest) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := entry.Cancel(req.Reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("ledger entry cancelled",
		zap.String("entry_id", entry.ID.String()),
		zap.String("reference", entry.ReferenceNumber),
		zap.String("reason", req.Reason),
	)
	s.publish(ctx, entry)

	resp := ToEntryResponse(entry)
	return &resp, nil
}

// DeleteEntry removes an entry outright while nothing has been paid on it
func (s *EntryService) DeleteEntry(ctx context.Context, orgID, id uuid.UUID) error {
	entry, err := s.entryRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := entry.CanDelete(); err != nil {
		return err
	}
	if err := s.entryRepo.DeleteForOrg(ctx, orgID, id); err != nil {
		return err
	}
	s.logger.Info("ledger entry deleted",
		zap.String("entry_id", id.String()),
		zap.String("reference", entry.ReferenceNumber),
	)
	return nil
}

func (s *EntryService) publish(ctx context.Context, agg shared.AggregateRoot) {
	appshared.PublishEvents(ctx, s.eventPublisher, s.logger, agg)
}
