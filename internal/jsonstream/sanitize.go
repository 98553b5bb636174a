package jsonstream

import "strings"

// Sanitize cleans an extracted object immediately before decoding.
// Model output occasionally carries raw control bytes that
// encoding/json rejects: disallowed control bytes (0x00-0x08, 0x0B,
// 0x0C, 0x0E-0x1F) are stripped anywhere, and literal tab, newline,
// and carriage-return bytes inside quoted strings are re-escaped into
// their two-character forms. Already-escaped sequences and bytes
// outside strings are left untouched.
//
// Sanitize runs after brace scanning, never before: the scanner must
// see the buffer verbatim.
func Sanitize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			out.WriteByte(b)
			continue
		}

		if strippedControl(b) {
			continue
		}

		if inString {
			switch b {
			case '\\':
				escape = true
				out.WriteByte(b)
			case '"':
				inString = false
				out.WriteByte(b)
			case '\t':
				out.WriteString(`\t`)
			case '\n':
				out.WriteString(`\n`)
			case '\r':
				out.WriteString(`\r`)
			default:
				out.WriteByte(b)
			}
			continue
		}

		if b == '"' {
			inString = true
		}
		out.WriteByte(b)
	}
	return out.String()
}

// strippedControl reports whether b is a control byte that can never
// appear raw in JSON and has no escapable meaning worth keeping.
// Tab, newline, and carriage return are excluded; inside strings they
// are re-escaped instead.
func strippedControl(b byte) bool {
	if b > 0x1F {
		return false
	}
	switch b {
	case '\t', '\n', '\r':
		return false
	}
	return true
}
