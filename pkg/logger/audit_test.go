package logger

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"squadhq/workflow-logger/pkg/config"
)

func newTestAuditSink(t *testing.T, cfg config.AuditConfig) *AuditSink {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	}
	s, err := NewAuditSink(cfg, discardDiag())
	if err != nil {
		t.Fatalf("NewAuditSink() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAuditSink_EmitAndCount(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := newEntry("checkout", LevelInfo, "persisted",
			map[string]any{"n": i},
			map[string]any{"id": i},
			time.Now(),
		)
		if err := s.Emit(ctx, e); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestAuditSink_SuppressedFlagStored(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true})
	ctx := context.Background()

	e := newEntry("checkout", LevelError, "repeated", nil, nil, time.Now())
	e.ExcludeFromSlackNotification = boolPtr(true)
	if err := s.Emit(ctx, e); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var suppressed int
	err := s.db.QueryRowContext(ctx,
		"SELECT suppressed FROM log_entries WHERE id = ?", e.ID).Scan(&suppressed)
	if err != nil {
		t.Fatalf("query suppressed: %v", err)
	}
	if suppressed != 1 {
		t.Errorf("suppressed = %d, want 1", suppressed)
	}
}

func TestAuditSink_PruneByAge(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true, RetentionDays: 30})
	ctx := context.Background()

	old := newEntry("checkout", LevelInfo, "stale", nil, nil,
		time.Now().AddDate(0, 0, -40))
	fresh := newEntry("checkout", LevelInfo, "recent", nil, nil, time.Now())
	for _, e := range []*Entry{old, fresh} {
		if err := s.Emit(ctx, e); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	deleted, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted = %d, want 1", deleted)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after prune = %d, want 1", count)
	}
}

func TestAuditSink_PruneByCount(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true, MaxEntries: 2})
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		e := newEntry("checkout", LevelInfo, "row", nil, nil,
			base.Add(time.Duration(i)*time.Minute))
		if err := s.Emit(ctx, e); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	deleted, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted = %d, want 3", deleted)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() after prune = %d, want 2", count)
	}
}

func TestRetentionScheduler_InvalidSchedule(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true})
	scheduler := NewRetentionScheduler(s, "not a cron expr", nil, discardDiag())

	if err := scheduler.Start(context.Background()); err == nil {
		scheduler.Stop()
		t.Fatal("Start() with invalid schedule succeeded, want error")
	}
	if scheduler.IsRunning() {
		t.Error("scheduler running after failed start")
	}
}

func TestRetentionScheduler_StopsOnContextCancel(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true, RetentionDays: 30})
	scheduler := NewRetentionScheduler(s, "0 3 * * *", nil, discardDiag())

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.After(5 * time.Second)
	for scheduler.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("scheduler still running after context cancellation")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRetentionScheduler_BackgroundContextLeaksNoGoroutine(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true, RetentionDays: 30})

	before := runtime.NumGoroutine()
	scheduler := NewRetentionScheduler(s, "0 3 * * *", nil, discardDiag())
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	scheduler.Stop()

	deadline := time.After(2 * time.Second)
	for runtime.NumGoroutine() > before {
		select {
		case <-deadline:
			t.Fatalf("goroutines leaked after Start/Stop: before=%d after=%d",
				before, runtime.NumGoroutine())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRetentionScheduler_StartStop(t *testing.T) {
	s := newTestAuditSink(t, config.AuditConfig{Enabled: true, RetentionDays: 30})
	scheduler := NewRetentionScheduler(s, "0 3 * * *", nil, discardDiag())

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !scheduler.IsRunning() {
		t.Error("scheduler not running after start")
	}
	if scheduler.NextRun() == nil {
		t.Error("NextRun() = nil for a running scheduler")
	}

	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Error("scheduler running after stop")
	}
}
