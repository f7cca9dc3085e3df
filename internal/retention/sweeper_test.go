package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

type fakePurger struct {
	calls atomic.Int64
	count int64
	err   error
}

func (f *fakePurger) Purge(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return f.count, f.err
}

func TestNewSweeper_InvalidSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewSweeper("not a cron spec", &fakePurger{}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestNewSweeper_ValidSchedules(t *testing.T) {
	t.Parallel()

	for _, schedule := range []string{"0 3 * * *", "*/5 * * * *", "@daily"} {
		s, err := NewSweeper(schedule, &fakePurger{}, zap.NewNop())
		if err != nil {
			t.Errorf("NewSweeper(%q) returned error: %v", schedule, err)
			continue
		}
		s.Start()
		s.Stop()
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{count: 3}
	s, err := NewSweeper("@daily", purger, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSweeper returned error: %v", err)
	}

	s.sweep()
	if got := purger.calls.Load(); got != 1 {
		t.Errorf("purge calls = %d, want 1", got)
	}
}

func TestSweep_PurgeError(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{err: errors.New("db gone")}
	s, err := NewSweeper("@daily", purger, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSweeper returned error: %v", err)
	}

	// Must not panic; the failure is only logged.
	s.sweep()
	if got := purger.calls.Load(); got != 1 {
		t.Errorf("purge calls = %d, want 1", got)
	}
}
