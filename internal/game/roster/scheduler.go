package roster

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bout/internal/game/event"
)

// DayAdvancer advances the injury ledger by one day.
type DayAdvancer interface {
	AdvanceDay(ctx context.Context) ([]event.Event, error)
}

// HealScheduler runs the daily healing tick on a cron schedule. Specs use the
// six-field form with seconds, e.g. "0 0 6 * * *" for 06:00 every day.
type HealScheduler struct {
	cron    *cron.Cron
	ledger  DayAdvancer
	logger  *zap.Logger
	afterFn func(ctx context.Context, healed []event.Event)
}

// SchedulerOption configures a HealScheduler.
type SchedulerOption func(*HealScheduler)

// WithAfterTick calls fn after every successful tick with the events the tick
// produced, e.g. to refresh roster gauges.
func WithAfterTick(fn func(ctx context.Context, healed []event.Event)) SchedulerOption {
	return func(s *HealScheduler) { s.afterFn = fn }
}

// NewHealScheduler creates a stopped scheduler that ticks ledger on spec.
//
// Precondition: ledger and logger must be non-nil.
// Postcondition: Returns an error if spec does not parse.
func NewHealScheduler(spec string, ledger DayAdvancer, logger *zap.Logger, opts ...SchedulerOption) (*HealScheduler, error) {
	s := &HealScheduler{
		cron:   cron.New(cron.WithSeconds()),
		ledger: ledger,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.Tick(context.Background()) }); err != nil {
		return nil, fmt.Errorf("heal schedule %q: %w", spec, err)
	}
	return s, nil
}

// Tick advances the ledger by one day immediately. A failed tick is logged and
// skips the after-tick hook.
func (s *HealScheduler) Tick(ctx context.Context) ([]event.Event, error) {
	healed, err := s.ledger.AdvanceDay(ctx)
	if err != nil {
		s.logger.Error("heal tick failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("heal tick", zap.Int("healed", len(healed)))
	if s.afterFn != nil {
		s.afterFn(ctx, healed)
	}
	return healed, nil
}

// Start begins running scheduled ticks in the background.
func (s *HealScheduler) Start() {
	s.cron.Start()
	s.logger.Info("heal scheduler started")
}

// Stop halts the schedule and waits for a running tick to finish or ctx to
// expire.
func (s *HealScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("heal scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stopping heal scheduler: %w", ctx.Err())
	}
}
