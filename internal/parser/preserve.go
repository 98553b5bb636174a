package parser

import (
	"regexp"
	"strings"
)

// Preserved content passes through to the reader untouched (optionally
// translated) instead of serving as a model instruction. Two inline
// forms exist: the current !===content!=== marker and the legacy
// ===content=== marker; multi-line spans are fenced by lines of '!'
// followed by three or more '='.

var (
	// fenceLineRegex matches a preserve fence line: '!' plus 3+ '='.
	fenceLineRegex = regexp.MustCompile(`^!={3,}\s*$`)

	// inlinePreserveRegex matches the current inline form. Non-greedy
	// and newline-tolerant; takes precedence over the legacy form.
	inlinePreserveRegex = regexp.MustCompile(`(?s)!===(.+?)!===`)

	// legacyInlinePreserveRegex matches the legacy ===content=== form
	// on a single line.
	legacyInlinePreserveRegex = regexp.MustCompile(`^===(.+)=== *$`)
)

// IsPreservedBlock reports whether a trimmed block consists of
// preserved content: a fenced multi-line span or an inline marker.
func IsPreservedBlock(content string) bool {
	lines := strings.Split(content, "\n")
	if len(lines) >= 2 &&
		fenceLineRegex.MatchString(strings.TrimSpace(lines[0])) &&
		fenceLineRegex.MatchString(strings.TrimSpace(lines[len(lines)-1])) {
		return true
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "!===") && strings.HasSuffix(trimmed, "!===") && len(trimmed) > len("!===!===") {
		return true
	}
	return legacyInlinePreserveRegex.MatchString(trimmed)
}

// ExtractPreserved strips the preserve markers from a preserved block
// and returns the inner content. Content blocks without markers are
// returned unchanged.
func ExtractPreserved(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) >= 2 &&
		fenceLineRegex.MatchString(strings.TrimSpace(lines[0])) &&
		fenceLineRegex.MatchString(strings.TrimSpace(lines[len(lines)-1])) {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	if m := inlinePreserveRegex.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := legacyInlinePreserveRegex.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return content
}

// OutputInstructionPrefix and OutputInstructionSuffix delimit verbatim
// output spans inside assembled model instructions.
const (
	OutputInstructionPrefix = "<preserve_or_translate>"
	OutputInstructionSuffix = "</preserve_or_translate>"
)

// ProcessOutputInstructions rewrites inline preserved spans inside a
// content block into explicit output-instruction markers, so the prompt
// layer can tell the model to emit them verbatim. Returns the rewritten
// text and whether any span was rewritten.
func ProcessOutputInstructions(text string) (string, bool) {
	found := false

	out := inlinePreserveRegex.ReplaceAllStringFunc(text, func(m string) string {
		found = true
		inner := inlinePreserveRegex.FindStringSubmatch(m)[1]
		return OutputInstructionPrefix + strings.TrimSpace(inner) + OutputInstructionSuffix
	})

	// Legacy inline form, whole-line only.
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if m := legacyInlinePreserveRegex.FindStringSubmatch(line); m != nil {
			lines[i] = OutputInstructionPrefix + strings.TrimSpace(m[1]) + OutputInstructionSuffix
			found = true
		}
	}

	return strings.Join(lines, "\n"), found
}
