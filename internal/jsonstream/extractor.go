// Package jsonstream recovers complete top-level JSON objects from an
// arbitrarily chunked text stream. The model emits one flat object per
// record with arbitrary prose possible between records; the extractor
// finds object boundaries with a byte-level state machine and leaves
// anything incomplete in the buffer for the next call.
package jsonstream

import "strings"

// Extractor accumulates streamed text and yields complete balanced
// objects, earliest first. It owns one mutable buffer per streaming
// session and is not safe for concurrent use; concurrent sessions need
// independent instances.
//
// Each ExtractNext call re-scans from the buffer start, which is O(n)
// per call and O(n^2) across many small appends. At the target volumes
// (tens of records per response) this is acceptable; retain the scan
// position across calls before pushing this to higher volumes.
type Extractor struct {
	buf strings.Builder
}

// Append adds a chunk to the internal buffer.
func (e *Extractor) Append(chunk string) {
	e.buf.WriteString(chunk)
}

// ExtractNext returns the earliest complete top-level object and
// removes the consumed prefix, including any prose preceding the
// object. When no complete object is buffered it returns found=false
// and leaves the buffer untouched, trailing partial object included.
func (e *Extractor) ExtractNext() (string, bool) {
	obj, rest, found := NextObject(e.buf.String())
	if !found {
		return "", false
	}
	e.buf.Reset()
	e.buf.WriteString(rest)
	return obj, true
}

// Buffer returns the unconsumed text, verbatim.
func (e *Extractor) Buffer() string {
	return e.buf.String()
}

// HasTrailing reports whether non-whitespace text remains buffered,
// such as a never-closed trailing object at end-of-stream.
func (e *Extractor) HasTrailing() bool {
	return strings.TrimSpace(e.buf.String()) != ""
}

// Reset discards the buffer for session reuse.
func (e *Extractor) Reset() {
	e.buf.Reset()
}

// NextObject scans text left to right for the first complete top-level
// balanced object. It tracks quoted-string state, an escape-pending
// flag (a backslash consumes exactly the next byte uninterpreted), and
// a brace-depth counter touched only outside strings. The candidate
// start is recorded on the 0->1 depth transition; completion is the
// return to depth 0. Text between objects is ignored, and a stray
// closing brace at depth 0 is skipped rather than driving the counter
// negative.
//
// Iterating bytes is safe for the ASCII delimiters involved: UTF-8
// guarantees ASCII bytes never appear inside a multi-byte sequence.
func NextObject(text string) (obj, rest string, found bool) {
	depth := 0
	start := -1
	inString := false
	escape := false

	for i := 0; i < len(text); i++ {
		b := text[i]

		if escape {
			escape = false
			continue
		}
		if b == '\\' {
			escape = true
			continue
		}
		if b == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch b {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				return text[start : i+1], text[i+1:], true
			}
		}
	}
	return "", text, false
}

// AllObjects extracts every complete object from text, in order.
func AllObjects(text string) []string {
	var objects []string
	rest := text
	for {
		obj, remaining, found := NextObject(rest)
		if !found {
			return objects
		}
		objects = append(objects, obj)
		rest = remaining
	}
}
