package logger

import "context"

// Sink receives fully built envelopes. Implementations must be safe for
// concurrent use; Emit errors are collected by the Logger, reported via
// diagnostics and metrics, and never propagated to the logging caller.
type Sink interface {
	// Name identifies the sink in diagnostics, metrics, and results.
	Name() string

	// Emit dispatches one envelope. A buffering sink may accept the entry
	// without sending it yet.
	Emit(ctx context.Context, e *Entry) error

	// Flush forces any buffered entries out immediately.
	Flush(ctx context.Context) error

	// Close releases sink resources. Buffered entries are flushed first
	// where possible.
	Close() error
}

// SinkError pairs a sink name with its dispatch error.
type SinkError struct {
	Sink string
	Err  error
}

// DispatchResult reports the per-sink outcome of one logging call.
type DispatchResult struct {
	// Delivered lists sinks that accepted the entry.
	Delivered []string

	// Failed lists sinks that returned an error.
	Failed []SinkError
}

// Accepted reports whether at least one sink accepted the entry.
func (r DispatchResult) Accepted() bool {
	return len(r.Delivered) > 0
}
