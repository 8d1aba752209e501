package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flowi/backend/internal/domain/exchange"
	"github.com/flowi/backend/internal/domain/shared"
	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

// DefaultSubscriberBuffer is the channel size handed to each subscriber
const DefaultSubscriberBuffer = 4

// RateServiceConfig holds the dependencies of RateService
type RateServiceConfig struct {
	Repo             exchange.RateRepository
	OrganizationID   uuid.UUID
	SubscriberBuffer int
	Logger           *zap.Logger
	Now              func() time.Time
}

// RateService keeps the rate history of one organization and serves it to
// everything that converts money. It implements exchange.RateProvider.
type RateService struct {
	repo   exchange.RateRepository
	orgID  uuid.UUID
	buffer int
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	subs   map[int]chan valueobject.ExchangeRate
	nextID int
}

// NewRateService creates a new RateService
func NewRateService(cfg RateServiceConfig) *RateService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultSubscriberBuffer
	}
	return &RateService{
		repo:   cfg.Repo,
		orgID:  cfg.OrganizationID,
		buffer: cfg.SubscriberBuffer,
		logger: cfg.Logger,
		now:    cfg.Now,
		subs:   make(map[int]chan valueobject.ExchangeRate),
	}
}

// Current returns the rate in force now. Rates recorded with a future
// effective time are not current until that time arrives. NOT_FOUND when
// nothing is in force yet.
func (s *RateService) Current(ctx context.Context) (valueobject.ExchangeRate, error) {
	return s.AsOf(ctx, s.now())
}

// AsOf returns the latest rate effective at or before t
func (s *RateService) AsOf(ctx context.Context, t time.Time) (valueobject.ExchangeRate, error) {
	rec, err := s.repo.EffectiveAt(ctx, s.orgID, t)
	if err != nil {
		return valueobject.ExchangeRate{}, err
	}
	return rec.Rate, nil
}

// Subscribe registers a listener for new rates. Sends never block: a
// subscriber whose buffer is full misses that update.
func (s *RateService) Subscribe() (<-chan valueobject.ExchangeRate, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan valueobject.ExchangeRate, s.buffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// SetRate appends a rate to the history and notifies subscribers
func (s *RateService) SetRate(ctx context.Context, req SetRateRequest) (*RateResponse, error) {
	value, err := decimal.NewFromString(req.UsdToVes)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid exchange rate: "+req.UsdToVes)
	}
	now := s.now()
	effectiveAt := now
	if req.EffectiveAt != nil {
		effectiveAt = *req.EffectiveAt
	}
	rate, err := valueobject.NewExchangeRate(value, effectiveAt, req.Source)
	if err != nil {
		return nil, err
	}

	rec := &exchange.RateRecord{
		ID:             uuid.New(),
		OrganizationID: s.orgID,
		Rate:           rate,
		CreatedAt:      now,
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("exchange rate recorded",
		zap.String("usd_to_ves", value.String()),
		zap.Time("effective_at", effectiveAt),
		zap.String("source", req.Source),
	)
	s.notify(rate)

	resp := ToRateResponse(rec)
	return &resp, nil
}

// History returns the rates effective in [from, to), oldest first
func (s *RateService) History(ctx context.Context, f HistoryFilter) ([]RateResponse, error) {
	to := s.now()
	if f.To != nil {
		to = *f.To
	}
	from := to.AddDate(0, 0, -30)
	if f.From != nil {
		from = *f.From
	}
	if !from.Before(to) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "from must be before to")
	}

	records, err := s.repo.History(ctx, s.orgID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]RateResponse, len(records))
	for i := range records {
		out[i] = ToRateResponse(&records[i])
	}
	return out, nil
}

func (s *RateService) notify(rate valueobject.ExchangeRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- rate:
		default:
			s.logger.Debug("rate subscriber is behind, update dropped", zap.Int("subscriber", id))
		}
	}
}

// Ensure RateService implements RateProvider
var _ exchange.RateProvider = (*RateService)(nil)
