package redact

import (
	"reflect"
	"testing"
)

func TestEngine_Redact_BodyUnwrap(t *testing.T) {
	tests := []struct {
		name  string
		spec  []AllowedField
		input map[string]any
		want  map[string]any
	}{
		{
			name:  "json object body is unwrapped and redacted",
			spec:  Fields("id"),
			input: map[string]any{"body": `{"id": 1, "secret": "x"}`},
			want: map[string]any{
				"id":             float64(1),
				"secret":         Sentinel,
				BodyUnwrappedKey: true,
			},
		},
		{
			name:  "malformed body falls through to normal redaction",
			spec:  Fields("id"),
			input: map[string]any{"body": "not json"},
			want:  map[string]any{"body": Sentinel},
		},
		{
			name:  "malformed body with body allowlisted passes through",
			spec:  Fields("body"),
			input: map[string]any{"body": "not json"},
			want:  map[string]any{"body": "not json"},
		},
		{
			name:  "json array body does not unwrap",
			spec:  Fields("id"),
			input: map[string]any{"body": `[1, 2, 3]`},
			want:  map[string]any{"body": Sentinel},
		},
		{
			name:  "json null body does not unwrap",
			spec:  Fields("id"),
			input: map[string]any{"body": `null`},
			want:  map[string]any{"body": Sentinel},
		},
		{
			name:  "json scalar body does not unwrap",
			spec:  Fields("id"),
			input: map[string]any{"body": `42`},
			want:  map[string]any{"body": Sentinel},
		},
		{
			name:  "non-string body does not unwrap",
			spec:  Fields("id"),
			input: map[string]any{"body": map[string]any{"id": 1}},
			want:  map[string]any{"body": Sentinel},
		},
		{
			name:  "body plus sibling keys does not unwrap",
			spec:  Fields("id"),
			input: map[string]any{"body": `{"id": 1}`, "id": 2},
			want:  map[string]any{"body": Sentinel, "id": 2},
		},
		{
			name: "nested body fields are not unwrapped",
			spec: Fields("data", "body"),
			input: map[string]any{
				"data": map[string]any{"body": `{"id": 1}`},
			},
			want: map[string]any{
				"data": map[string]any{"body": `{"id": 1}`},
			},
		},
		{
			name: "spoofed marker carrying caller data is redacted",
			spec: Fields("id"),
			input: map[string]any{
				BodyUnwrappedKey: map[string]any{"secret": "x"},
				"id":             2,
			},
			want: map[string]any{
				BodyUnwrappedKey: Sentinel,
				"id":             2,
			},
		},
		{
			name: "spoofed non-boolean marker is redacted",
			spec: Fields("id"),
			input: map[string]any{
				BodyUnwrappedKey: "yes",
				"id":             2,
			},
			want: map[string]any{
				BodyUnwrappedKey: Sentinel,
				"id":             2,
			},
		},
		{
			name: "body's own marker field is overridden by the injected boolean",
			spec: Fields("id"),
			input: map[string]any{
				"body": `{"id": 1, "__body_unwrapped": "spoof"}`,
			},
			want: map[string]any{
				"id":             float64(1),
				BodyUnwrappedKey: true,
			},
		},
		{
			name: "unwrapped fields honor nested allowlist paths",
			spec: []AllowedField{
				Field("data"),
				Field("data.user_id"),
			},
			input: map[string]any{
				"body": `{"data": {"user_id": "u_1", "secret": "x"}, "password": "p"}`,
			},
			want: map[string]any{
				"data": map[string]any{
					"user_id": "u_1",
					"secret":  Sentinel,
				},
				"password":       Sentinel,
				BodyUnwrappedKey: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.spec)
			got := engine.Redact(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Redact() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEngine_Redact_UnwrappedRecordFixedPoint(t *testing.T) {
	engine := NewEngine(Fields("id"))

	once := engine.Redact(map[string]any{"body": `{"id": 1, "secret": "x"}`})
	twice := engine.Redact(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-redacting an unwrapped record changed it:\nonce:  %#v\ntwice: %#v", once, twice)
	}
	if twice[BodyUnwrappedKey] != true {
		t.Errorf("marker lost on re-redaction: %#v", twice)
	}
}

func TestEngine_Redact_MarkerSurvivesDenyingPattern(t *testing.T) {
	// A matcher that denies everything, including the marker's own name.
	engine := NewEngine([]AllowedField{Field("id")})

	got := engine.Redact(map[string]any{"body": `{"id": 1}`})
	if got[BodyUnwrappedKey] != true {
		t.Errorf("unwrap marker was redacted: %#v", got)
	}

	// Even an allowlist that could never match the marker keeps it intact.
	engine = NewEngine(nil)
	got = engine.Redact(map[string]any{"body": `{"id": 1}`})
	if got[BodyUnwrappedKey] != true {
		t.Errorf("unwrap marker was redacted under empty allowlist: %#v", got)
	}
	if got["id"] != Sentinel {
		t.Errorf("id should be redacted under empty allowlist, got %v", got["id"])
	}
}
