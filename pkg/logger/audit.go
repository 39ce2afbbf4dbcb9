package logger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"squadhq/workflow-logger/pkg/config"
)

// auditSchema holds one row per dispatched envelope. Context and event are
// stored as JSON text; time is unix milliseconds for cheap range pruning.
const auditSchema = `
CREATE TABLE IF NOT EXISTS log_entries (
	id         TEXT PRIMARY KEY,
	at         INTEGER NOT NULL,
	level      TEXT NOT NULL,
	service    TEXT NOT NULL,
	message    TEXT NOT NULL,
	suppressed INTEGER NOT NULL DEFAULT 0,
	context    TEXT NOT NULL,
	event      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_log_entries_at ON log_entries(at);
CREATE INDEX IF NOT EXISTS idx_log_entries_level ON log_entries(level);
`

// AuditSink persists envelopes to a local SQLite database so redacted
// events survive process exit and remote outages.
type AuditSink struct {
	db   *sql.DB
	cfg  config.AuditConfig
	diag *slog.Logger
}

// NewAuditSink opens (creating if necessary) the audit database and
// initializes its schema.
func NewAuditSink(cfg config.AuditConfig, diag *slog.Logger) (*AuditSink, error) {
	if diag == nil {
		diag = slog.Default()
	}
	diag = diag.With("component", "sink.audit")

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	s := &AuditSink{db: db, cfg: cfg, diag: diag}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	diag.Info("audit sink initialized",
		"path", cfg.Path,
		"retention_days", cfg.RetentionDays,
		"max_entries", cfg.MaxEntries,
	)
	return s, nil
}

// initialize enables WAL mode and creates the schema.
func (s *AuditSink) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(auditSchema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Name implements Sink.
func (s *AuditSink) Name() string { return "audit" }

// Emit inserts one envelope row.
func (s *AuditSink) Emit(ctx context.Context, e *Entry) error {
	contextJSON, _ := json.Marshal(e.Context)
	eventJSON, _ := json.Marshal(e.Event)

	suppressed := 0
	if e.ExcludeFromSlackNotification != nil && *e.ExcludeFromSlackNotification {
		suppressed = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO log_entries (id, at, level, service, message, suppressed, context, event)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixMilli(), e.Level, e.Service, e.Message,
		suppressed, string(contextJSON), string(eventJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store audit entry: %w", err)
	}
	return nil
}

// Flush implements Sink; inserts are synchronous.
func (s *AuditSink) Flush(ctx context.Context) error { return nil }

// Close closes the database.
func (s *AuditSink) Close() error {
	return s.db.Close()
}

// Prune deletes rows past the retention age and, when a row cap is
// configured, the oldest rows beyond the cap. It returns the number of
// rows deleted.
func (s *AuditSink) Prune(ctx context.Context) (int64, error) {
	var deleted int64

	if s.cfg.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays).UnixMilli()
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM log_entries WHERE at < ?", cutoff)
		if err != nil {
			return deleted, fmt.Errorf("failed to prune by age: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}
	}

	if s.cfg.MaxEntries > 0 {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM log_entries WHERE id NOT IN (
				SELECT id FROM log_entries ORDER BY at DESC LIMIT ?
			)`, s.cfg.MaxEntries)
		if err != nil {
			return deleted, fmt.Errorf("failed to prune by count: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}
	}

	return deleted, nil
}

// Count returns the number of retained rows.
func (s *AuditSink) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM log_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}
