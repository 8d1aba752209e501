package shared

import (
	"context"

	"go.uber.org/zap"

	"github.com/flowi/backend/internal/domain/shared"
)

// PublishEvents hands the pending events of aggs to publisher once the write
// that produced them is committed, then clears them. Publishing failures are
// logged and swallowed; the state change already happened.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggs ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggs {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events",
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}
