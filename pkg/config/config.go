package config

import "time"

// Config is the root configuration for the workflow logger.
type Config struct {
	// ServiceName tags every log entry. Required.
	ServiceName string `yaml:"service_name"`

	// AllowedFields lists literal field names that survive redaction.
	// Entries match case-insensitively against a field's name or its full
	// dotted path (e.g. "data.user_id"). When both AllowedFields and
	// AllowedPatterns are empty, the allowlist defaults to ["id"].
	AllowedFields []string `yaml:"allowed_fields"`

	// AllowedPatterns lists regular expressions that allow fields by name
	// or dotted path. An entry that fails to compile is skipped with a
	// diagnostic; it never fails construction.
	AllowedPatterns []string `yaml:"allowed_patterns"`

	// MaxDepth caps record recursion during redaction. Sub-trees nested
	// deeper collapse to the redaction sentinel.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// DebounceWindow is the interval during which repeated error calls are
	// flagged to suppress downstream notification amplification.
	// Default: 5s
	DebounceWindow time.Duration `yaml:"debounce_window"`

	// Console configures the console sink.
	Console ConsoleConfig `yaml:"console"`

	// Remote configures the remote ingest sink. Without a token the sink
	// is disabled and the logger degrades to the remaining sinks.
	Remote RemoteConfig `yaml:"remote"`

	// Audit configures the optional local SQLite audit sink.
	Audit AuditConfig `yaml:"audit"`

	// Metrics configures Prometheus metrics collection.
	Metrics MetricsConfig `yaml:"metrics"`
}

// ConsoleConfig contains console sink configuration.
type ConsoleConfig struct {
	// Enabled turns the console sink on or off.
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether the console sink is enabled, applying the
// default when unset.
func (c ConsoleConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RemoteConfig contains remote ingest sink configuration.
type RemoteConfig struct {
	// Token is the ingest API credential. Empty disables the remote sink.
	Token string `yaml:"token"`

	// Dataset is the remote dataset entries are ingested into.
	// Required when Token is set.
	Dataset string `yaml:"dataset"`

	// BaseURL is the ingest API base URL.
	// Default: "https://api.axiom.co"
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request HTTP timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transient ingest failures.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// BatchSize is the number of buffered entries that triggers an
	// automatic flush.
	// Default: 100
	BatchSize int `yaml:"batch_size"`

	// FlushInterval is how often buffered entries are flushed in the
	// background regardless of batch size. Negative disables the ticker.
	// Default: 1s
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// AuditConfig contains local audit sink configuration.
type AuditConfig struct {
	// Enabled turns the audit sink on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// RetentionDays is the age in days after which audit rows are pruned.
	// Zero disables age-based pruning.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxEntries caps the number of retained audit rows; the oldest rows
	// beyond the cap are pruned. Zero means no cap.
	MaxEntries int `yaml:"max_entries"`

	// PruneSchedule is a cron expression for automatic pruning
	// (e.g. "0 3 * * *" for daily at 3 AM). Empty disables scheduling.
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "wflog"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "logger"
	Subsystem string `yaml:"subsystem"`
}
