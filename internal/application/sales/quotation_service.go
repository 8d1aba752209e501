package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// QuotationService handles the quotation lifecycle and its conversion into a sale
type QuotationService struct {
	txScope        appshared.TransactionScope
	quotationRepo  sales.QuotationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// QuotationServiceConfig holds the dependencies of QuotationService
type QuotationServiceConfig struct {
	TxScope        appshared.TransactionScope
	QuotationRepo  sales.QuotationRepository
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(cfg QuotationServiceConfig) *QuotationService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &QuotationService{
		txScope:        cfg.TxScope,
		quotationRepo:  cfg.QuotationRepo,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
		now:            now,
	}
}

// CreateQuotation drafts a new quotation
func (s *QuotationService) CreateQuotation(ctx context.Context, orgID uuid.UUID, req CreateQuotationRequest) (*QuotationResponse, error) {
	exists, err := s.quotationRepo.ExistsByNumber(ctx, orgID, req.QuotationNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeDuplicateReference,
			fmt.Sprintf("Quotation %s already exists", req.QuotationNumber))
	}

	var terms *sales.PaymentTerms
	if req.PaymentTerms != nil {
		cur, err := valueobject.ParseCurrency(req.PaymentTerms.Currency)
		if err != nil {
			return nil, err
		}
		terms = &sales.PaymentTerms{DueInDays: req.PaymentTerms.DueInDays, Currency: cur}
	}

	q, err := sales.NewQuotation(sales.NewQuotationParams{
		OrganizationID:  orgID,
		QuotationNumber: req.QuotationNumber,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		Items:           toLineItems(req.Items),
		PaymentMethod:   sales.PaymentMethod(req.PaymentMethod),
		PaymentTerms:    terms,
		ValidUntil:      req.ValidUntil,
	})
	if err != nil {
		return nil, err
	}

	if err := s.quotationRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("quotation created",
		zap.String("quotation_id", q.ID.String()),
		zap.String("quotation_number", q.QuotationNumber),
		zap.String("total_usd", q.TotalUSD.String()),
		zap.String("total_ves", q.TotalVES.String()),
	)

	resp := ToQuotationResponse(q)
	return &resp, nil
}

// GetQuotation returns one quotation of the organization
func (s *QuotationService) GetQuotation(ctx context.Context, orgID, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// ListQuotations returns quotations matching filter
func (s *QuotationService) ListQuotations(ctx context.Context, orgID uuid.UUID, f QuotationListFilter) ([]QuotationResponse, error) {
	list, err := s.quotationRepo.FindAllForOrg(ctx, orgID, f.ToDomainFilter())
	if err != nil {
		return nil, err
	}
	out := make([]QuotationResponse, len(list))
	for i := range list {
		out[i] = ToQuotationResponse(&list[i])
	}
	return out, nil
}

// SendQuotation marks a draft as sent to the customer
func (s *QuotationService) SendQuotation(ctx context.Context, orgID, id uuid.UUID) (*QuotationResponse, error) {
	return s.update(ctx, orgID, id, "sent", func(q *sales.Quotation, now time.Time) error {
		return q.Send(ctx, now)
	})
}

// ApproveQuotation records customer acceptance. Quotations past their
// validity cannot be approved.
func (s *QuotationService) ApproveQuotation(ctx context.Context, orgID, id uuid.UUID) (*QuotationResponse, error) {
	return s.update(ctx, orgID, id, "approved", func(q *sales.Quotation, now time.Time) error {
		return q.Approve(ctx, now)
	})
}

// RejectQuotation records customer refusal
func (s *QuotationService) RejectQuotation(ctx context.Context, orgID, id uuid.UUID, req RejectQuotationRequest) (*QuotationResponse, error) {
	return s.update(ctx, orgID, id, "rejected", func(q *sales.Quotation, now time.Time) error {
		return q.Reject(ctx, req.Reason, now)
	})
}

func (s *QuotationService) update(ctx context.Context, orgID, id uuid.UUID, action string, fn func(*sales.Quotation, time.Time) error) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(q, s.now()); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("quotation "+action,
		zap.String("quotation_id", q.ID.String()),
		zap.String("quotation_number", q.QuotationNumber),
	)
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// ConvertToSale turns an approved, still valid quotation into a sale.
//
// The sale, the receivable (when the quotation carries payment terms) and the
// quotation's CONVERTED status are written in one transaction, so a failure at
// any step leaves no sale or receivable behind. Validity is checked against
// the clock here, not only by the expiry sweep.
func (s *QuotationService) ConvertToSale(ctx context.Context, orgID, quotationID uuid.UUID) (*ConversionResponse, error) {
	var (
		q     *sales.Quotation
		sale  *sales.Sale
		entry *ledger.LedgerEntry
	)

	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		q, err = repos.Quotations().FindByIDForOrg(ctx, orgID, quotationID)
		if err != nil {
			return err
		}

		now := s.now()
		sale, err = q.ToSale(now)
		if err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}

		if amount, ok := q.ReceivableAmount(); ok {
			saleID := sale.ID
			entry, err = ledger.NewLedgerEntry(ledger.NewEntryParams{
				OrganizationID:   orgID,
				Kind:             ledger.EntryKindReceivable,
				CounterpartyID:   q.CustomerID,
				CounterpartyName: q.CustomerName,
				ReferenceNumber:  sale.SaleNumber,
				Amount:           amount,
				DueDate:          now.AddDate(0, 0, q.PaymentTerms.DueInDays),
				SourceID:         &saleID,
			})
			if err != nil {
				return err
			}
			if err := repos.Entries().Create(ctx, entry); err != nil {
				return err
			}
		}

		if err := q.MarkConverted(ctx, sale.ID, now); err != nil {
			return err
		}
		return repos.Quotations().SaveWithLock(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("quotation_id", q.ID.String()),
		zap.String("quotation_number", q.QuotationNumber),
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
	}
	resp := &ConversionResponse{
		SaleID:     sale.ID,
		SaleNumber: sale.SaleNumber,
		Quotation:  ToQuotationResponse(q),
	}
	aggs := []shared.AggregateRoot{q, sale}
	if entry != nil {
		id := entry.ID
		resp.ReceivableID = &id
		aggs = append(aggs, entry)
		fields = append(fields, zap.String("receivable_id", id.String()), zap.String("receivable_amount", entry.Amount.String()))
	}
	s.logger.Info("quotation converted to sale", fields...)
	appshared.PublishEvents(ctx, s.eventPublisher, s.logger, aggs...)

	return resp, nil
}

// ExpireQuotations closes every open quotation whose validity ended before
// asOf. Quotations modified concurrently are skipped until the next run.
func (s *QuotationService) ExpireQuotations(ctx context.Context, asOf time.Time) (*ExpiryResult, error) {
	candidates, err := s.quotationRepo.FindExpirable(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &ExpiryResult{AsOf: asOf, Candidates: len(candidates)}
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		q := &candidates[i]
		changed, err := q.Expire(ctx, asOf)
		if err != nil {
			return result, err
		}
		if !changed {
			continue
		}
		if err := s.quotationRepo.SaveWithLock(ctx, q); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Expired++
		appshared.PublishEvents(ctx, s.eventPublisher, s.logger, q)
	}

	s.logger.Info("quotation expiry finished",
		zap.Time("as_of", asOf),
		zap.Int("candidates", result.Candidates),
		zap.Int("expired", result.Expired),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
