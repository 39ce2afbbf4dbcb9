package redact

import "encoding/json"

// BodyUnwrappedKey is the marker field injected when a singleton body
// record is expanded in place. The marker always survives redaction.
const BodyUnwrappedKey = "__body_unwrapped"

// unwrapBody applies the body shortcut at the record root. If the record
// has exactly one key, that key is "body", its value is a string, and the
// string parses as a JSON object, the parsed object is returned with
// fired=true. In every other case, including malformed JSON (an expected
// occasional input), the record passes through unchanged with fired=false.
// This is a one-shot, root-only transformation; nested "body" fields are
// left alone. The marker itself is injected by the caller after redaction
// so caller-supplied data cannot impersonate it.
func unwrapBody(record map[string]any) (out map[string]any, fired bool) {
	if len(record) != 1 {
		return record, false
	}

	raw, ok := record["body"]
	if !ok {
		return record, false
	}
	body, ok := raw.(string)
	if !ok {
		return record, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil || parsed == nil {
		return record, false
	}

	return parsed, true
}
