package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the convention
// WFLOG_SECTION_FIELD (e.g. WFLOG_REMOTE_TOKEN) and always take precedence
// over file values.
//
// The loading sequence is:
//  1. Load YAML from file (applies defaults)
//  2. Apply environment variable overrides
//  3. Re-validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies WFLOG_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WFLOG_SERVICE_NAME"); val != "" {
		cfg.ServiceName = val
	}
	if val := os.Getenv("WFLOG_ALLOWED_FIELDS"); val != "" {
		cfg.AllowedFields = splitList(val)
	}
	if val := os.Getenv("WFLOG_ALLOWED_PATTERNS"); val != "" {
		cfg.AllowedPatterns = splitList(val)
	}
	if val := os.Getenv("WFLOG_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.MaxDepth = i
		}
	}
	if val := os.Getenv("WFLOG_DEBOUNCE_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.DebounceWindow = d
		}
	}

	if val := os.Getenv("WFLOG_CONSOLE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Console.Enabled = &b
		}
	}

	if val := os.Getenv("WFLOG_REMOTE_TOKEN"); val != "" {
		cfg.Remote.Token = val
	}
	if val := os.Getenv("WFLOG_REMOTE_DATASET"); val != "" {
		cfg.Remote.Dataset = val
	}
	if val := os.Getenv("WFLOG_REMOTE_BASE_URL"); val != "" {
		cfg.Remote.BaseURL = val
	}
	if val := os.Getenv("WFLOG_REMOTE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Remote.Timeout = d
		}
	}
	if val := os.Getenv("WFLOG_REMOTE_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Remote.MaxRetries = i
		}
	}
	if val := os.Getenv("WFLOG_REMOTE_BATCH_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Remote.BatchSize = i
		}
	}
	if val := os.Getenv("WFLOG_REMOTE_FLUSH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Remote.FlushInterval = d
		}
	}

	if val := os.Getenv("WFLOG_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("WFLOG_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv("WFLOG_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("WFLOG_AUDIT_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.MaxEntries = i
		}
	}
	if val := os.Getenv("WFLOG_AUDIT_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.PruneSchedule = val
	}

	if val := os.Getenv("WFLOG_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("WFLOG_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
	if val := os.Getenv("WFLOG_METRICS_SUBSYSTEM"); val != "" {
		cfg.Metrics.Subsystem = val
	}
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty items.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
