// Package redact implements allowlist-based field redaction for nested
// event records.
//
// # Overview
//
// The package walks an arbitrary record (nested maps, slices, scalars) and
// replaces the value of every field that is not explicitly permitted with
// the fixed sentinel "[REDACTED]". Redaction is default-deny: absence of a
// matching allowlist entry means the field is redacted, recursively and
// wholesale (a disallowed sub-tree collapses to the sentinel, it is never
// descended into).
//
// Allowlist entries come in two forms:
//   - Field("id"): a literal field name, matched case-insensitively against
//     the whole field name or its full dotted path (e.g. "data.user_id").
//   - Pattern(regexp.MustCompile(`.*_id$`)): a caller-supplied matcher,
//     applied as-is.
//
// # Usage
//
//	engine := redact.NewEngine([]redact.AllowedField{
//	    redact.Field("id"),
//	    redact.Field("data.user_id"),
//	    redact.Pattern(regexp.MustCompile(`.*_id$`)),
//	})
//
//	clean := engine.Redact(map[string]any{
//	    "id":       "op_123",
//	    "password": "hunter2", // becomes "[REDACTED]"
//	})
//
// # Body unwrapping
//
// A record that is exactly {"body": "<json object string>"} at the top
// level is expanded in place before redaction: the parsed object's fields
// become the record, plus a __body_unwrapped marker that always survives
// redaction. Records that do not match that shape, including bodies that
// fail to parse, pass through unchanged.
package redact
