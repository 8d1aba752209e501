package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/sales"
	"github.com/flowi/backend/internal/domain/shared"
)

// LoggingHandler writes every ledger and sales event to the log, giving an
// activity trail without a separate store
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHandler{logger: logger.Named("events")}
}

// EventTypes returns the events this handler records
func (h *LoggingHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeLedgerEntryCreated,
		ledger.EventTypePaymentApplied,
		ledger.EventTypeLedgerEntryPaid,
		ledger.EventTypeLedgerEntryOverdue,
		ledger.EventTypeLedgerEntryCancelled,
		ledger.EventTypeInstallmentPlanCreated,
		sales.EventTypeSaleRecorded,
		sales.EventTypeQuotationConverted,
		sales.EventTypeQuotationExpired,
	}
}

// Handle logs event with the fields that matter for its type
func (h *LoggingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("org_id", event.OrganizationID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *ledger.PaymentAppliedEvent:
		fields = append(fields,
			zap.String("amount", e.Amount.String()),
			zap.String("status", string(e.Status)),
			zap.String("outstanding", e.Outstanding.String()),
		)
	case *ledger.LedgerEntryOverdueEvent:
		fields = append(fields, zap.Time("due_date", e.DueDate), zap.String("reference", e.ReferenceNumber))
	case *sales.QuotationConvertedEvent:
		fields = append(fields, zap.String("sale_id", e.SaleID.String()))
	}

	h.logger.Info("domain event", fields...)
	return nil
}

// Ensure LoggingHandler implements EventHandler
var _ shared.EventHandler = (*LoggingHandler)(nil)
