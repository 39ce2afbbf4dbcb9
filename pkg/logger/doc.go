// Package logger provides a structured event-logging facade with
// allowlist field redaction.
//
// # Overview
//
// A Logger builds a fixed envelope around every call (level, service
// name, a constant type tag, caller-supplied context, and the event record
// after redaction) and dispatches it to the configured sinks:
//   - Console sink: JSON lines to a writer (enabled by default)
//   - Remote sink: batched HTTP ingest, enabled when a token is configured
//   - Audit sink: local SQLite persistence with scheduled retention pruning
//
// Event records are redacted through pkg/redact before leaving the
// process: every field not on the allowlist is replaced by "[REDACTED]".
// The caller-supplied context mapping is passed through verbatim and is
// the caller's responsibility.
//
// Sink failures are reported through the diagnostics logger and metrics,
// never propagated: logging must not crash the caller.
//
// # Usage
//
//	log, err := logger.New(config.Config{
//	    ServiceName:   "example-service",
//	    AllowedFields: []string{"id", "name", "status"},
//	})
//	if err != nil {
//	    // only construction-contract violations (e.g. missing service name)
//	}
//	defer log.Close()
//
//	ok := log.Info("batch completed",
//	    map[string]any{"request_id": "req-123"},
//	    map[string]any{"id": "batch_456", "record_count": 1000},
//	)
//
// Successive Error calls within the debounce window (default 5s) carry a
// suppress flag in the envelope so downstream notification channels can
// drop rapid repeats.
package logger
