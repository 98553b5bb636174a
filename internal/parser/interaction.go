package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for directive parsing. Callers branch with errors.Is;
// the wrapped message carries the offending text.
var (
	ErrBadFormat             = errors.New("malformed interaction directive")
	ErrInconsistentSeparator = errors.New("mixed | and || separators")
)

// DirectiveKind classifies an interaction directive. The kind is fully
// determined by the presence of a variable marker, the presence of an
// ellipsis, and the option separator.
type DirectiveKind int

const (
	KindButtonsOnly DirectiveKind = iota
	KindButtonsMultiSelect
	KindButtonsWithText
	KindButtonsMultiWithText
	KindNonAssignmentButtons
	KindTextOnly
)

var directiveKindNames = map[DirectiveKind]string{
	KindButtonsOnly:          "buttons_only",
	KindButtonsMultiSelect:   "buttons_multi_select",
	KindButtonsWithText:      "buttons_with_text",
	KindButtonsMultiWithText: "buttons_multi_with_text",
	KindNonAssignmentButtons: "non_assignment_buttons",
	KindTextOnly:             "text_only",
}

func (k DirectiveKind) String() string {
	if name, ok := directiveKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DirectiveKind(%d)", int(k))
}

// Option is one selectable button. Value defaults to Display unless the
// token carried an explicit Display//Value split.
type Option struct {
	Display string
	Value   string
}

// Directive is the structured parse of one interaction block.
type Directive struct {
	Kind     DirectiveKind
	Variable string // empty for non-assignment directives
	Options  []Option
	Prompt   string // free-text prompt after the ellipsis
}

// IsMultiSelect reports whether the directive allows selecting several
// options at once (the || separator).
func (d *Directive) IsMultiSelect() bool {
	return d.Kind == KindButtonsMultiSelect || d.Kind == KindButtonsMultiWithText
}

// AllowsText reports whether free-text input completes the directive.
func (d *Directive) AllowsText() bool {
	switch d.Kind {
	case KindButtonsWithText, KindButtonsMultiWithText, KindTextOnly:
		return true
	}
	return false
}

// ParseDirective parses the text of an interaction block into a
// Directive. Parsing is layered: shape, variable marker, ellipsis
// split, option tokenization. Later layers assume earlier ones matched.
func ParseDirective(raw string) (*Directive, error) {
	// Layer 1: shape. The trimmed text must be exactly one unescaped
	// ?[...] span.
	trimmed := strings.TrimSpace(raw)
	start, end, ok := findDirectiveSpan(trimmed, 0)
	if !ok || start != 0 || end != len(trimmed) {
		return nil, fmt.Errorf("%w: %q", ErrBadFormat, raw)
	}
	inner := strings.TrimSpace(trimmed[start+2 : end-1])
	if inner == "" {
		return nil, fmt.Errorf("%w: empty directive body", ErrBadFormat)
	}

	// Layer 2: leading protected variable marker.
	variable, rest, err := splitVariableMarker(inner)
	if err != nil {
		return nil, err
	}

	// Layer 3: first ellipsis splits options from the free prompt.
	optionsPart := rest
	prompt := ""
	hasEllipsis := false
	if idx := strings.Index(rest, "..."); idx >= 0 {
		hasEllipsis = true
		optionsPart = rest[:idx]
		prompt = strings.TrimSpace(rest[idx+3:])
	}

	// Layer 4: option tokenization.
	options, multi, err := tokenizeOptions(optionsPart)
	if err != nil {
		return nil, err
	}

	return resolveKind(variable, options, multi, hasEllipsis, prompt)
}

// splitVariableMarker detects a leading %{{name}} and strips it.
func splitVariableMarker(inner string) (variable, rest string, err error) {
	if !strings.HasPrefix(inner, "%{{") {
		return "", inner, nil
	}
	name, end, ok := scanVariableName(inner, 3)
	if !ok {
		return "", "", fmt.Errorf("%w: variable marker without a name", ErrBadFormat)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: variable marker without a name", ErrBadFormat)
	}
	return name, strings.TrimSpace(inner[end:]), nil
}

// tokenizeOptions splits the options segment on its separator. Using
// both | and || within one segment is reported, never resolved.
func tokenizeOptions(segment string) (options []Option, multi bool, err error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return nil, false, nil
	}

	single, double := countSeparators(segment)
	if single > 0 && double > 0 {
		return nil, false, fmt.Errorf("%w: %q", ErrInconsistentSeparator, segment)
	}

	var tokens []string
	if double > 0 {
		multi = true
		tokens = strings.Split(segment, "||")
	} else {
		tokens = strings.Split(segment, "|")
	}

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		options = append(options, splitOptionValue(token))
	}
	return options, multi, nil
}

// countSeparators counts runs of '|' in the segment: runs of length one
// are single separators, runs of length two are multi-select
// separators. Longer runs count as both, which surfaces as an
// inconsistent-separator error upstream.
func countSeparators(segment string) (single, double int) {
	run := 0
	flush := func() {
		switch {
		case run == 1:
			single++
		case run == 2:
			double++
		case run > 2:
			single++
			double++
		}
		run = 0
	}
	for i := 0; i < len(segment); i++ {
		if segment[i] == '|' {
			run++
			continue
		}
		flush()
	}
	flush()
	return single, double
}

// splitOptionValue splits Display//Value at the last separator, so a
// display text may itself contain slashes. Value defaults to Display.
func splitOptionValue(token string) Option {
	if idx := strings.LastIndex(token, "//"); idx > 0 && idx < len(token)-2 {
		display := strings.TrimSpace(token[:idx])
		value := strings.TrimSpace(token[idx+2:])
		if display != "" && value != "" {
			return Option{Display: display, Value: value}
		}
	}
	return Option{Display: token, Value: token}
}

// resolveKind applies the deterministic kind table.
func resolveKind(variable string, options []Option, multi, hasEllipsis bool, prompt string) (*Directive, error) {
	d := &Directive{Variable: variable, Options: options, Prompt: prompt}

	switch {
	case variable != "" && len(options) > 0 && hasEllipsis:
		if multi {
			d.Kind = KindButtonsMultiWithText
		} else {
			d.Kind = KindButtonsWithText
		}
	case variable != "" && len(options) > 0:
		if multi {
			d.Kind = KindButtonsMultiSelect
		} else {
			d.Kind = KindButtonsOnly
		}
	case variable != "" && hasEllipsis:
		d.Kind = KindTextOnly
	case variable == "" && len(options) > 0:
		d.Kind = KindNonAssignmentButtons
	default:
		return nil, fmt.Errorf("%w: directive has neither options nor text input", ErrBadFormat)
	}
	return d, nil
}

// findDirectiveSpan locates the next interaction span ?[...] in text at
// or after offset from. A span preceded by a backslash is escaped and
// skipped; a span immediately followed by '(' is a markdown link and
// skipped. The returned end is the offset just past the closing
// bracket. The inner text may not contain ']'.
func findDirectiveSpan(text string, from int) (start, end int, ok bool) {
	for i := from; i+1 < len(text); i++ {
		if text[i] != '?' || text[i+1] != '[' {
			continue
		}
		if i > 0 && text[i-1] == '\\' {
			continue
		}
		close := strings.IndexByte(text[i+2:], ']')
		if close < 0 {
			return 0, 0, false
		}
		closeAt := i + 2 + close
		if closeAt+1 < len(text) && text[closeAt+1] == '(' {
			// Markdown link collision; resume after this span.
			i = closeAt
			continue
		}
		return i, closeAt + 1, true
	}
	return 0, 0, false
}

// ExtractQuestion returns the human-facing question of a directive
// block: the free prompt for text-capable directives, otherwise the
// joined option displays. Used when rendering an interaction through
// the model.
func ExtractQuestion(content string) string {
	d, err := ParseDirective(content)
	if err != nil {
		return ""
	}
	if d.Prompt != "" {
		return d.Prompt
	}
	displays := make([]string, 0, len(d.Options))
	for _, opt := range d.Options {
		displays = append(displays, opt.Display)
	}
	return strings.Join(displays, " | ")
}
