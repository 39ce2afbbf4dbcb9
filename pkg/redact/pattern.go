package redact

import (
	"log/slog"
	"regexp"
)

// Matcher is the capability an allowlist pattern entry must provide.
// *regexp.Regexp satisfies it. A pattern decides for itself what
// "matched" means, including case sensitivity and anchoring.
type Matcher interface {
	MatchString(s string) bool
}

// AllowedField is a single allowlist entry: either a literal field name or
// a caller-supplied pattern matcher. Use the Field and Pattern constructors;
// the zero value matches nothing.
type AllowedField struct {
	name    string
	pattern Matcher
}

// Field creates a literal allowlist entry. The name is matched
// case-insensitively against the whole field name (or whole dotted path),
// never as a substring: Field("id") matches "ID" but not "identifier".
func Field(name string) AllowedField {
	return AllowedField{name: name}
}

// Pattern creates an allowlist entry from a caller-supplied matcher,
// typically a compiled regular expression.
func Pattern(m Matcher) AllowedField {
	return AllowedField{pattern: m}
}

// Fields is a convenience constructor turning literal names into entries.
func Fields(names ...string) []AllowedField {
	spec := make([]AllowedField, len(names))
	for i, name := range names {
		spec[i] = Field(name)
	}
	return spec
}

// compile turns the allowlist into predicates, one per entry, preserving
// order. Entries are never merged or deduplicated; all are tried at match
// time. A literal that cannot be compiled is skipped with a diagnostic
// rather than failing construction.
func compile(spec []AllowedField, diag *slog.Logger) []Matcher {
	preds := make([]Matcher, 0, len(spec))
	for _, entry := range spec {
		if entry.pattern != nil {
			preds = append(preds, entry.pattern)
			continue
		}

		re, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(entry.name) + `$`)
		if err != nil {
			// Unreachable with QuoteMeta, but compilation must never be fatal.
			diag.Warn("skipping invalid allowlist entry",
				"field", entry.name,
				"error", err,
			)
			continue
		}
		preds = append(preds, re)
	}
	return preds
}
