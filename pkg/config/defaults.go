package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultMaxDepth       = 64
	DefaultDebounceWindow = 5 * time.Second
	DefaultRemoteBaseURL  = "https://api.axiom.co"
	DefaultRemoteTimeout  = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultBatchSize      = 100
	DefaultFlushInterval  = time.Second
	DefaultAuditPath      = "data/audit.db"
	DefaultRetentionDays  = 30
	DefaultNamespace      = "wflog"
	DefaultSubsystem      = "logger"
)

// DefaultAllowedFields is the minimal allowlist used when the caller
// provides no fields and no patterns. Every field not in the allowlist is
// redacted, so the default exposes only record identifiers.
func DefaultAllowedFields() []string {
	return []string{"id"}
}

// ApplyDefaults fills unset configuration fields with defaults.
func ApplyDefaults(cfg *Config) {
	if len(cfg.AllowedFields) == 0 && len(cfg.AllowedPatterns) == 0 {
		cfg.AllowedFields = DefaultAllowedFields()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}

	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = DefaultRemoteBaseURL
	}
	if cfg.Remote.Timeout <= 0 {
		cfg.Remote.Timeout = DefaultRemoteTimeout
	}
	if cfg.Remote.MaxRetries <= 0 {
		cfg.Remote.MaxRetries = DefaultMaxRetries
	}
	if cfg.Remote.BatchSize <= 0 {
		cfg.Remote.BatchSize = DefaultBatchSize
	}
	if cfg.Remote.FlushInterval == 0 {
		cfg.Remote.FlushInterval = DefaultFlushInterval
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.Enabled && cfg.Audit.RetentionDays == 0 && cfg.Audit.MaxEntries == 0 {
		cfg.Audit.RetentionDays = DefaultRetentionDays
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultSubsystem
	}
}
