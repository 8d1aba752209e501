package ledger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appshared "github.com/flowi/backend/internal/application/shared"
	"github.com/flowi/backend/internal/domain/ledger"
	"github.com/flowi/backend/internal/domain/shared"
)

// SweepService flags past-due entries as overdue
type SweepService struct {
	entryRepo      ledger.LedgerEntryRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSweepService creates a new SweepService
func NewSweepService(entryRepo ledger.LedgerEntryRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{
		entryRepo:      entryRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// SweepOverdue marks every pending or partial entry due before asOf as
// overdue and returns how many changed. Running it twice with the same asOf
// flags nothing the second time. Payments are never touched. An entry whose
// version moved under the sweep (a payment landed concurrently) is skipped;
// the next run picks it up if it is still short.
func (s *SweepService) SweepOverdue(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	candidates, err := s.entryRepo.FindSweepCandidates(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{AsOf: asOf, Candidates: len(candidates)}
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		entry := &candidates[i]
		if !entry.MarkOverdue(asOf) {
			continue
		}
		if err := s.entryRepo.SaveWithLock(ctx, entry); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				result.Skipped++
				s.logger.Debug("entry changed during sweep, skipping",
					zap.String("entry_id", entry.ID.String()),
				)
				continue
			}
			return result, err
		}
		result.Flagged++
		appshared.PublishEvents(ctx, s.eventPublisher, s.logger, entry)
	}

	s.logger.Info("overdue sweep finished",
		zap.Time("as_of", asOf),
		zap.Int("candidates", result.Candidates),
		zap.Int("flagged", result.Flagged),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
