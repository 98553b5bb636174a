package jsonstream

import (
	"encoding/json"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean passthrough", `{"a":"b"}`, `{"a":"b"}`},
		{"control byte stripped", "{\"a\":\"b\x01c\"}", `{"a":"bc"}`},
		{"control byte outside string stripped", "{\x00\"a\":1}", `{"a":1}`},
		{"newline in string re-escaped", "{\"a\":\"line1\nline2\"}", `{"a":"line1\nline2"}`},
		{"tab in string re-escaped", "{\"a\":\"x\ty\"}", `{"a":"x\ty"}`},
		{"carriage return in string re-escaped", "{\"a\":\"x\ry\"}", `{"a":"x\ry"}`},
		{"newline outside string kept", "{\n\"a\":1\n}", "{\n\"a\":1\n}"},
		{"escaped sequence untouched", `{"a":"x\ny"}`, `{"a":"x\ny"}`},
		{"escaped backslash then newline", "{\"a\":\"x\\\\\n\"}", `{"a":"x\\\n"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			var v any
			if err := json.Unmarshal([]byte(got), &v); err != nil {
				t.Fatalf("sanitized output does not decode: %v", err)
			}
		})
	}
}

func TestSanitize_ExtractThenDecode(t *testing.T) {
	// The full path: raw model text with a literal newline inside a
	// string value, scanned first, sanitized second.
	raw := "prose {\"html\":\"<p>line1\nline2</p>\",\"action\":\"append_to_container\"}"

	obj, _, found := NextObject(raw)
	if !found {
		t.Fatal("no object found")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(Sanitize(obj)), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded["html"] != "<p>line1\nline2</p>" {
		t.Fatalf("html = %q", decoded["html"])
	}
}
