package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
)

// DefaultMaxConflictRetries is used when the config leaves retries unset
const DefaultMaxConflictRetries = 3

// PaymentService applies payments to ledger entries.
//
// Every attempt reads the entry, validates and writes both the entry (guarded
// by its version) and the payment record inside one transaction. A version
// conflict rolls the attempt back and starts over from a fresh read; business
// errors are returned as they are.
type PaymentService struct {
	txScope          appshared.TransactionScope
	idempotencyStore shared.IdempotencyStore
	idempotencyTTL   time.Duration
	eventPublisher   shared.EventPublisher
	maxRetries       int
	logger           *zap.Logger
	now              func() time.Time
}

// PaymentServiceConfig holds the dependencies of PaymentService
type PaymentServiceConfig struct {
	TxScope          appshared.TransactionScope
	IdempotencyStore shared.IdempotencyStore // optional
	IdempotencyTTL   time.Duration
	EventPublisher   shared.EventPublisher
	MaxRetries       int // conflict retries after the first attempt; negative means none
	Logger           *zap.Logger
	Now              func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &PaymentService{
		txScope:          cfg.TxScope,
		idempotencyStore: cfg.IdempotencyStore,
		idempotencyTTL:   ttl,
		eventPublisher:   cfg.EventPublisher,
		maxRetries:       retries,
		logger:           logger,
		now:              now,
	}
}

// ApplyPayment applies a payment to any non-terminal entry
func (s *PaymentService) ApplyPayment(ctx context.Context, orgID, entryID uuid.UUID, req ApplyPaymentRequest) (*PaymentResultResponse, error) {
	return s.apply(ctx, orgID, entryID, req, false)
}

// ApplyInstallmentPayment applies a payment to one installment of a plan.
// Entries that are not installments are rejected.
func (s *PaymentService) ApplyInstallmentPayment(ctx context.Context, orgID, entryID uuid.UUID, req ApplyPaymentRequest) (*PaymentResultResponse, error) {
	return s.apply(ctx, orgID, entryID, req, true)
}

func (s *PaymentService) apply(ctx context.Context, orgID, entryID uuid.UUID, req ApplyPaymentRequest, installmentOnly bool) (*PaymentResultResponse, error) {
	amount, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	input := ledger.PaymentInput{
		Amount:         amount,
		Method:         ledger.PaymentMethod(req.Method),
		Reference:      req.Reference,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
	}

	key := ""
	if req.IdempotencyKey != "" && s.idempotencyStore != nil {
		key = idempotencyKey(orgID, req.IdempotencyKey)
		claimed, err := s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyTTL)
		if err != nil {
			return nil, shared.WrapStorageError(err, "claim idempotency key")
		}
		if !claimed {
			return nil, shared.NewDomainError(shared.CodeDuplicatePayment,
				"A payment with idempotency key "+req.IdempotencyKey+" was already submitted")
		}
	}

	entry, record, err := s.applyWithRetry(ctx, orgID, entryID, input, installmentOnly)
	if err != nil {
		if key != "" {
			if ferr := s.idempotencyStore.Forget(context.WithoutCancel(ctx), key); ferr != nil {
				s.logger.Warn("failed to release idempotency key",
					zap.String("key", key),
					zap.Error(ferr),
				)
			}
		}
		return nil, err
	}

	s.logger.Info("payment applied",
		zap.String("entry_id", entry.ID.String()),
		zap.String("payment_id", record.ID.String()),
		zap.String("amount", record.Amount.String()),
		zap.String("status", string(entry.Status)),
		zap.String("outstanding", entry.Outstanding().String()),
	)
	appshared.PublishEvents(ctx, s.eventPublisher, s.logger, entry)

	return &PaymentResultResponse{
		Entry:   ToEntryResponse(entry),
		Payment: ToPaymentRecordResponse(record),
	}, nil
}

func (s *PaymentService) applyWithRetry(
	ctx context.Context,
	orgID, entryID uuid.UUID,
	input ledger.PaymentInput,
	installmentOnly bool,
) (*ledger.LedgerEntry, *ledger.PaymentRecord, error) {
	var (
		entry  *ledger.LedgerEntry
		record *ledger.PaymentRecord
	)
	for attempt := 0; ; attempt++ {
		err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			var err error
			entry, err = repos.Entries().FindByIDForOrg(ctx, orgID, entryID)
			if err != nil {
				return err
			}
			if installmentOnly && !entry.IsInstallment() {
				return shared.NewDomainError(shared.CodeInvalidInput,
					"Entry "+entry.ReferenceNumber+" is not an installment")
			}
			in := input
			in.ProcessedAt = s.now()
			record, err = entry.ApplyPayment(in)
			if err != nil {
				return err
			}
			if err := repos.Entries().SaveWithLock(ctx, entry); err != nil {
				return err
			}
			return repos.Payments().Create(ctx, record)
		})
		if err == nil {
			return entry, record, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= s.maxRetries {
			return nil, nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		s.logger.Debug("payment hit a version conflict, retrying",
			zap.String("entry_id", entryID.String()),
			zap.Int("attempt", attempt+1),
		)
	}
}

func idempotencyKey(orgID uuid.UUID, key string) string {
	return "payment:" + orgID.String() + ":" + key
}
