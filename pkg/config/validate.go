package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Validate checks the configuration for errors that should fail
// construction. Allowlist pattern problems are deliberately not treated as
// fatal here; invalid patterns are skipped with a diagnostic at engine
// construction so one bad entry cannot take logging down.
func Validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.ServiceName) == "" {
		errs = append(errs, "service_name is required")
	}

	if cfg.Remote.Token != "" && strings.TrimSpace(cfg.Remote.Dataset) == "" {
		errs = append(errs, "remote.dataset is required when remote.token is set")
	}
	if cfg.Remote.BaseURL != "" && !strings.Contains(cfg.Remote.BaseURL, "://") {
		errs = append(errs, fmt.Sprintf("remote.base_url %q is not a valid URL", cfg.Remote.BaseURL))
	}

	if cfg.Audit.Enabled && strings.TrimSpace(cfg.Audit.Path) == "" {
		errs = append(errs, "audit.path is required when audit sink is enabled")
	}
	if cfg.Audit.RetentionDays < 0 {
		errs = append(errs, "audit.retention_days must not be negative")
	}
	if cfg.Audit.MaxEntries < 0 {
		errs = append(errs, "audit.max_entries must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InvalidPatterns returns the allowlist pattern entries that do not
// compile. Useful for surfacing configuration problems early without
// making them fatal.
func InvalidPatterns(cfg *Config) []string {
	var bad []string
	for _, p := range cfg.AllowedPatterns {
		if _, err := regexp.Compile(p); err != nil {
			bad = append(bad, p)
		}
	}
	return bad
}
