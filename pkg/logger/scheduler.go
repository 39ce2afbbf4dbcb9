package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionScheduler runs audit pruning on a cron schedule
// (e.g. "0 3 * * *" for daily at 3 AM).
type RetentionScheduler struct {
	sink     *AuditSink
	schedule string
	cron     *cron.Cron
	metrics  *Metrics
	diag     *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRetentionScheduler creates a scheduler for the given audit sink.
// metrics may be nil.
func NewRetentionScheduler(sink *AuditSink, schedule string, metrics *Metrics, diag *slog.Logger) *RetentionScheduler {
	if diag == nil {
		diag = slog.Default()
	}
	return &RetentionScheduler{
		sink:     sink,
		schedule: schedule,
		cron:     cron.New(),
		metrics:  metrics,
		diag:     diag.With("component", "audit.scheduler"),
	}
}

// Start begins scheduled pruning. An empty schedule is a no-op; an invalid
// cron expression is an error.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.diag.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.diag.Info("audit retention scheduler started", "schedule", s.schedule)

	// A non-cancellable context (e.g. context.Background) would park this
	// goroutine forever; the owner stops the scheduler directly instead.
	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			s.Stop()
		}()
	}

	return nil
}

// runPruning executes one pruning cycle.
func (s *RetentionScheduler) runPruning(ctx context.Context) {
	deleted, err := s.sink.Prune(ctx)
	if err != nil {
		s.diag.Error("scheduled audit pruning failed", "error", err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordPruned(deleted)
	}
	if deleted > 0 {
		s.diag.Info("scheduled audit pruning completed", "deleted_count", deleted)
	} else {
		s.diag.Debug("scheduled audit pruning completed, no rows deleted")
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.diag.Info("audit retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *RetentionScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when idle.
func (s *RetentionScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
