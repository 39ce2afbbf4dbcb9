// Package config provides configuration management for the workflow logger.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides, plus hot reloading of the
// redaction allowlist through a file watcher.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("logger.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("logger.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention WFLOG_SECTION_FIELD.
// For example:
//
//   - WFLOG_SERVICE_NAME overrides service_name
//   - WFLOG_ALLOWED_FIELDS overrides allowed_fields (comma separated)
//   - WFLOG_REMOTE_TOKEN overrides remote.token
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// FileWatcher watches the configuration file and invokes a reload callback
// after a debounced change, so long-running services can pick up allowlist
// edits without restarting.
package config
