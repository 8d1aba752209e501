package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	ledgerapp "github.com/flowi/backend/internal/application/ledger"
	salesapp "github.com/flowi/backend/internal/application/sales"
)

var (
	// ErrSweepInProgress is returned by RunNow while another run is active
	ErrSweepInProgress = errors.New("sweep already in progress")

	ErrInvalidConfig = errors.New("invalid sweep trigger configuration")
)

// OverdueSweeper flags past-due ledger entries
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, asOf time.Time) (*ledgerapp.SweepResult, error)
}

// QuotationExpirer expires quotations past their validity
type QuotationExpirer interface {
	ExpireQuotations(ctx context.Context, asOf time.Time) (*salesapp.ExpiryResult, error)
}

// SweepTriggerConfig holds configuration for the sweep trigger
type SweepTriggerConfig struct {
	// Interval between two scheduled runs
	Interval time.Duration

	// Timeout bounds a single run
	Timeout time.Duration

	// RunOnStart runs once right after Start instead of waiting a full interval
	RunOnStart bool
}

// DefaultSweepTriggerConfig returns default sweep trigger configuration
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		Interval: time.Hour,
		Timeout:  5 * time.Minute,
	}
}

// RunResult is what one run of the trigger did
type RunResult struct {
	Overdue *ledgerapp.SweepResult `json:"overdue"`
	Expiry  *salesapp.ExpiryResult `json:"expiry,omitempty"`
}

// SweepTrigger periodically runs the overdue sweep followed by quotation
// expiry. At most one run is active at a time; a tick that finds a run in
// progress is skipped, never queued.
type SweepTrigger struct {
	config  SweepTriggerConfig
	sweeper OverdueSweeper
	expirer QuotationExpirer // optional
	logger  *zap.Logger
	now     func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  atomic.Bool
}

// NewSweepTrigger creates a new sweep trigger
func NewSweepTrigger(
	config SweepTriggerConfig,
	sweeper OverdueSweeper,
	expirer QuotationExpirer,
	logger *zap.Logger,
) (*SweepTrigger, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if sweeper == nil {
		return nil, fmt.Errorf("%w: sweeper is required", ErrInvalidConfig)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultSweepTriggerConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepTrigger{
		config:  config,
		sweeper: sweeper,
		expirer: expirer,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Start starts the periodic loop. It stops when ctx is done or Stop is called.
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Duration("timeout", t.config.Timeout),
	)
	return nil
}

// Stop cancels the loop and any active run, then waits for it to finish or
// for ctx to expire
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs a sweep immediately. Returns ErrSweepInProgress if one is
// already running.
func (t *SweepTrigger) RunNow(ctx context.Context) (*RunResult, error) {
	if !t.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer t.inFlight.Store(false)
	return t.run(ctx)
}

func (t *SweepTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.tick(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *SweepTrigger) tick(ctx context.Context) {
	if !t.inFlight.CompareAndSwap(false, true) {
		t.logger.Debug("Sweep still running, tick skipped")
		return
	}
	defer t.inFlight.Store(false)

	if _, err := t.run(ctx); err != nil {
		t.logger.Error("Scheduled sweep failed", zap.Error(err))
	}
}

func (t *SweepTrigger) run(ctx context.Context) (*RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	asOf := t.now()
	result := &RunResult{}

	overdue, err := t.sweeper.SweepOverdue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("overdue sweep: %w", err)
	}
	result.Overdue = overdue

	if t.expirer != nil {
		expiry, err := t.expirer.ExpireQuotations(ctx, asOf)
		if err != nil {
			return result, fmt.Errorf("quotation expiry: %w", err)
		}
		result.Expiry = expiry
	}

	return result, nil
}
