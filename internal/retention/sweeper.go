package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout bounds a single purge run.
const sweepTimeout = 1 * time.Minute

// Purger permanently removes soft-deleted todos, returning how many rows
// were erased.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Sweeper runs the purge operation on a cron schedule, so soft-deleted todos
// do not pile up forever.
type Sweeper struct {
	cron   *cron.Cron
	purger Purger
	logger *zap.Logger
}

// NewSweeper builds a sweeper for the given cron schedule. The schedule uses
// the standard five-field cron syntax, e.g. "0 3 * * *" for daily at 03:00.
func NewSweeper(schedule string, purger Purger, logger *zap.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:   cron.New(),
		purger: purger,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.purger.Purge(ctx)
	if err != nil {
		s.logger.Error("retention_sweep_failed", zap.Error(err))
		return
	}
	s.logger.Info("retention_sweep_completed", zap.Int64("purged", count))
}
