package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"squadhq/workflow-logger/pkg/config"
	"squadhq/workflow-logger/pkg/redact"
)

// Logger is the workflow logging facade. It builds redacted envelopes and
// dispatches them to the configured sinks. Sink failures are reported
// through diagnostics and the returned bool, never as panics or errors
// surfaced to the caller.
type Logger struct {
	cfg       config.Config
	engine    atomic.Pointer[redact.Engine]
	sinks     []Sink
	remote    *RemoteSink
	audit     *AuditSink
	scheduler *RetentionScheduler
	watcher   *config.FileWatcher
	metrics   *Metrics
	diag      *slog.Logger

	// extra holds programmatic allowlist entries so the engine can be
	// rebuilt with them on config reload.
	extra []redact.AllowedField

	mu        sync.Mutex
	lastError time.Time
	now       func() time.Time
}

type options struct {
	diag          *slog.Logger
	consoleWriter io.Writer
	registry      *prometheus.Registry
	allowed       []redact.AllowedField
	sinks         []Sink
	now           func() time.Time
}

// Option customizes logger construction.
type Option func(*options)

// WithDiagnostics sets the logger the facade reports its own problems to.
func WithDiagnostics(diag *slog.Logger) Option {
	return func(o *options) { o.diag = diag }
}

// WithConsoleWriter redirects the console sink away from stdout.
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) { o.consoleWriter = w }
}

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithAllowedFields appends programmatic allowlist entries to the ones
// loaded from configuration. Use redact.Pattern to supply precompiled or
// custom matchers.
func WithAllowedFields(fields ...redact.AllowedField) Option {
	return func(o *options) { o.allowed = append(o.allowed, fields...) }
}

// WithSink appends an additional sink to the dispatch list.
func WithSink(s Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a logger from cfg. Construction fails only on invalid
// configuration; unavailable sinks degrade with a diagnostic instead.
func New(cfg config.Config, opts ...Option) (*Logger, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.diag == nil {
		o.diag = slog.Default()
	}
	if o.consoleWriter == nil {
		o.consoleWriter = os.Stdout
	}
	if o.now == nil {
		o.now = time.Now
	}

	config.ApplyDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	diag := o.diag.With("component", "logger")
	l := &Logger{
		cfg:     cfg,
		metrics: NewMetrics(cfg.Metrics, o.registry),
		diag:    diag,
		extra:   o.allowed,
		now:     o.now,
	}
	l.engine.Store(buildEngine(cfg, o.allowed, diag))

	if cfg.Console.IsEnabled() {
		l.sinks = append(l.sinks, NewConsoleSink(o.consoleWriter))
	}

	if cfg.Remote.Token != "" {
		l.remote = NewRemoteSink(cfg.Remote, diag)
		l.sinks = append(l.sinks, l.remote)
	} else {
		diag.Warn("remote sink disabled, no ingest token configured",
			"service", cfg.ServiceName)
	}

	if cfg.Audit.Enabled {
		audit, err := NewAuditSink(cfg.Audit, diag)
		if err != nil {
			diag.Error("audit sink unavailable", "path", cfg.Audit.Path, "error", err)
		} else {
			l.audit = audit
			l.sinks = append(l.sinks, audit)
			if cfg.Audit.PruneSchedule != "" {
				l.scheduler = NewRetentionScheduler(audit, cfg.Audit.PruneSchedule, l.metrics, diag)
				if err := l.scheduler.Start(context.Background()); err != nil {
					diag.Error("retention scheduler not started",
						"schedule", cfg.Audit.PruneSchedule, "error", err)
					l.scheduler = nil
				}
			}
		}
	}

	l.sinks = append(l.sinks, o.sinks...)
	return l, nil
}

// buildEngine compiles the configured allowlist plus programmatic extras
// into a redaction engine. Invalid configured patterns are skipped with a
// diagnostic.
func buildEngine(cfg config.Config, extra []redact.AllowedField, diag *slog.Logger) *redact.Engine {
	spec := make([]redact.AllowedField, 0, len(cfg.AllowedFields)+len(cfg.AllowedPatterns)+len(extra))
	for _, name := range cfg.AllowedFields {
		spec = append(spec, redact.Field(name))
	}
	for _, expr := range cfg.AllowedPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			diag.Warn("skipping invalid allowlist pattern", "pattern", expr, "error", err)
			continue
		}
		spec = append(spec, redact.Pattern(re))
	}
	spec = append(spec, extra...)
	return redact.NewEngine(spec,
		redact.WithMaxDepth(cfg.MaxDepth),
		redact.WithDiagnostics(diag))
}

// Error logs an error-level entry. The returned bool reports whether at
// least one sink accepted the entry. Repeated errors within the configured
// debounce window carry the notification suppression flag.
func (l *Logger) Error(err error, logContext, event map[string]any) bool {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	suppress := l.noteError()
	if suppress {
		l.metrics.RecordSuppressed()
	}
	return l.log(LevelError, message, logContext, event, &suppress)
}

// Info logs an info-level entry and reports whether any sink accepted it.
func (l *Logger) Info(message string, logContext, event map[string]any) bool {
	return l.log(LevelInfo, message, logContext, event, nil)
}

// Warning logs a warning-level entry and reports whether any sink
// accepted it.
func (l *Logger) Warning(message string, logContext, event map[string]any) bool {
	return l.log(LevelWarning, message, logContext, event, nil)
}

// Redact applies the current allowlist to record without emitting
// anything. The input is not mutated.
func (l *Logger) Redact(record map[string]any) map[string]any {
	return l.engine.Load().Redact(record)
}

// noteError records an error occurrence and reports whether it falls
// within the debounce window of the previous one.
func (l *Logger) noteError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	suppress := !l.lastError.IsZero() && now.Sub(l.lastError) < l.cfg.DebounceWindow
	l.lastError = now
	return suppress
}

func (l *Logger) log(level, message string, logContext, event map[string]any, suppress *bool) bool {
	redacted := l.engine.Load().Redact(event)
	entry := newEntry(l.cfg.ServiceName, level, message, logContext, redacted, l.now())
	entry.ExcludeFromSlackNotification = suppress
	l.metrics.RecordEntry(level)
	return l.dispatch(entry).Accepted()
}

func (l *Logger) dispatch(entry *Entry) DispatchResult {
	ctx := context.Background()
	var result DispatchResult
	for _, sink := range l.sinks {
		if err := sink.Emit(ctx, entry); err != nil {
			l.diag.Error("sink rejected entry",
				"sink", sink.Name(), "entry_id", entry.ID, "error", err)
			l.metrics.RecordDispatch(sink.Name(), "error")
			result.Failed = append(result.Failed, SinkError{Sink: sink.Name(), Err: err})
			continue
		}
		l.metrics.RecordDispatch(sink.Name(), "ok")
		result.Delivered = append(result.Delivered, sink.Name())
	}
	return result
}

// Flush drains buffered entries from every sink. It returns false when
// the remote sink is not configured or when any sink fails to flush.
func (l *Logger) Flush() bool {
	if l.remote == nil {
		l.diag.Warn("flush skipped, remote sink not configured")
		return false
	}
	ctx := context.Background()
	ok := true
	for _, sink := range l.sinks {
		if err := sink.Flush(ctx); err != nil {
			l.diag.Error("sink flush failed", "sink", sink.Name(), "error", err)
			ok = false
		}
	}
	return ok
}

// WatchConfig reloads the allowlist from path whenever the file changes.
// Sink topology is fixed at construction; only redaction settings are
// applied on reload. Blocks until ctx is cancelled or the watcher fails.
func (l *Logger) WatchConfig(ctx context.Context, path string) error {
	watcher, err := config.NewFileWatcher(path, l.diag)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.watcher = watcher
	l.mu.Unlock()

	return watcher.Watch(ctx, func() error {
		cfg, err := config.LoadConfigWithEnvOverrides(path)
		if err != nil {
			return err
		}
		l.engine.Store(buildEngine(*cfg, l.extra, l.diag))
		l.diag.Info("allowlist reloaded",
			"fields", len(cfg.AllowedFields), "patterns", len(cfg.AllowedPatterns))
		return nil
	})
}

// Close stops background work and closes all sinks. Buffered remote
// entries are flushed before shutdown.
func (l *Logger) Close() error {
	if l.scheduler != nil {
		l.scheduler.Stop()
	}

	l.mu.Lock()
	watcher := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	var errs []error
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil {
			l.diag.Error("sink close failed", "sink", sink.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
