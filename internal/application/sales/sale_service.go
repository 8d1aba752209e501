package sales

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// SaleService records counter sales
type SaleService struct {
	saleRepo       sales.SaleRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo sales.SaleRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo:       saleRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// RecordSale stores a sale. Mixed sales keep the USD and VES portions exactly
// as collected; neither is converted into the other.
func (s *SaleService) RecordSale(ctx context.Context, orgID uuid.UUID, req RecordSaleRequest) (*SaleResponse, error) {
	params := sales.NewSaleParams{
		OrganizationID: orgID,
		SaleNumber:     req.SaleNumber,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		Items:          toLineItems(req.Items),
		PaymentMethod:  sales.PaymentMethod(req.PaymentMethod),
	}
	if params.PaymentMethod == sales.PaymentMethodMixed {
		var err error
		if params.PaidUSD, err = portion(req.PaidUSD, valueobject.USD); err != nil {
			return nil, err
		}
		if params.PaidVES, err = portion(req.PaidVES, valueobject.VES); err != nil {
			return nil, err
		}
	}

	sale, err := sales.NewSale(params)
	if err != nil {
		return nil, err
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total_usd", sale.TotalUSD.String()),
		zap.String("total_ves", sale.TotalVES.String()),
	)
	appshared.PublishEvents(ctx, s.eventPublisher, s.logger, sale)

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetSale returns one sale of the organization
func (s *SaleService) GetSale(ctx context.Context, orgID, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListSales returns sales matching filter
func (s *SaleService) ListSales(ctx context.Context, orgID uuid.UUID, f SaleListFilter) ([]SaleResponse, error) {
	list, err := s.saleRepo.FindAllForOrg(ctx, orgID, f.ToDomainFilter())
	if err != nil {
		return nil, err
	}
	out := make([]SaleResponse, len(list))
	for i := range list {
		out[i] = ToSaleResponse(&list[i])
	}
	return out, nil
}

func portion(amount string, currency valueobject.Currency) (valueobject.Money, error) {
	if amount == "" {
		return valueobject.Zero(currency), nil
	}
	return valueobject.NewMoneyFromString(amount, currency)
}
