package redact

import (
	"log/slog"
)

// Sentinel is the fixed replacement value written in place of a disallowed
// field's value.
const Sentinel = "[REDACTED]"

// DefaultMaxDepth is the default recursion depth limit. Records are
// caller-controlled and may be accidentally self-referential; sub-trees
// nested deeper than the limit collapse to the sentinel.
const DefaultMaxDepth = 64

// Engine redacts records against a compiled allowlist. The predicate set
// is built once at construction and immutable afterwards, so an Engine is
// safe for concurrent use without synchronization.
type Engine struct {
	preds    []Matcher
	maxDepth int
	diag     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth overrides the recursion depth limit.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithDiagnostics sets the logger used for non-fatal diagnostics
// (skipped allowlist entries, depth limit hits).
func WithDiagnostics(diag *slog.Logger) Option {
	return func(e *Engine) {
		if diag != nil {
			e.diag = diag
		}
	}
}

// NewEngine compiles the allowlist and returns a ready engine.
// Construction never fails: invalid literal entries are skipped with a
// diagnostic and the remaining entries are compiled.
func NewEngine(spec []AllowedField, opts ...Option) *Engine {
	e := &Engine{
		maxDepth: DefaultMaxDepth,
		diag:     slog.Default().With("component", "redact"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.preds = compile(spec, e.diag)
	return e
}

// IsAllowed reports whether a field survives redaction at the given
// position. path is the dotted chain of ancestor keys, empty at the root.
// A field is allowed if any predicate matches its bare name (so a pattern
// can allow "user_id" at any depth) or its full dotted path (so a literal
// "data.user_id" allows only the nested occurrence). Predicates are tried
// in compiled order with a first-match short-circuit; the result is a
// union and does not depend on order.
func (e *Engine) IsAllowed(field, path string) bool {
	full := field
	if path != "" {
		full = path + "." + field
	}
	for _, pred := range e.preds {
		if pred.MatchString(field) || pred.MatchString(full) {
			return true
		}
	}
	return false
}

// Redact returns a redacted copy of the record. The input is never
// mutated. Every field that fails the allow-check at its level is replaced
// wholesale by the sentinel; allowed mappings and sequences are walked
// recursively. Redacting an already-redacted record is a fixed point.
func (e *Engine) Redact(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	rec, unwrapped := unwrapBody(record)
	out := e.redactMap(rec, "", 0)
	if unwrapped {
		// Injected after the walk so the unwrap survives any allowlist
		// and a parsed body cannot smuggle its own marker value through.
		out[BodyUnwrappedKey] = true
	}
	return out
}

// redactMap redacts one mapping level. depth is the nesting level of the
// mapping itself, 0 at the root.
func (e *Engine) redactMap(m map[string]any, path string, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		// A boolean true under the marker name at the root is the engine's
		// own injection from a previous pass; keeping it makes re-redaction
		// a fixed point. Any other value under that name is caller data and
		// takes the normal allow-check.
		if path == "" && key == BodyUnwrappedKey && value == true {
			out[key] = true
			continue
		}

		if !e.IsAllowed(key, path) {
			out[key] = Sentinel
			continue
		}

		out[key] = e.redactValue(value, childPath(path, key), depth+1)
	}
	return out
}

// redactValue redacts the value of an allowed field. Mappings recurse,
// sequences are walked element-wise, everything else passes through
// unchanged.
func (e *Engine) redactValue(value any, path string, depth int) any {
	switch v := value.(type) {
	case map[string]any:
		if depth > e.maxDepth {
			e.diag.Warn("record exceeds redaction depth limit, collapsing sub-tree",
				"path", path,
				"max_depth", e.maxDepth,
			)
			return Sentinel
		}
		return e.redactMap(v, path, depth)

	case []any:
		// List elements carry no key of their own: map elements are
		// redacted under the parent field's path (no index segment),
		// everything else passes through.
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = e.redactElement(elem, path, depth)
		}
		return out

	case []map[string]any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = e.redactElement(elem, path, depth)
		}
		return out

	default:
		return value
	}
}

// redactElement redacts one sequence element.
func (e *Engine) redactElement(elem any, path string, depth int) any {
	m, ok := elem.(map[string]any)
	if !ok {
		return elem
	}
	if depth > e.maxDepth {
		return Sentinel
	}
	return e.redactMap(m, path, depth)
}

// childPath extends a dotted ancestor path with one more key.
func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
