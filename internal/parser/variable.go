package parser

import (
	"sort"
	"strings"
)

// ListSeparator joins multi-valued bindings during substitution.
const ListSeparator = ", "

// Vars maps variable names to bound values. A value may carry multiple
// entries (multi-select input); entries are joined with ListSeparator
// when substituted into text.
type Vars map[string][]string

// ExtractVariables returns the sorted, de-duplicated set of variable
// names referenced as {{name}} in text. Protected references of the
// form %{{name}} are deferred substitutions and are not reported.
//
// The scan is explicit rather than regex-based: the "not preceded by %"
// rule is a lookbehind, which Go's regexp does not support.
func ExtractVariables(text string) []string {
	seen := make(map[string]bool)

	for i := 0; i+1 < len(text); i++ {
		if text[i] != '{' || text[i+1] != '{' {
			continue
		}
		if i > 0 && text[i-1] == '%' {
			continue
		}
		name, end, ok := scanVariableName(text, i+2)
		if !ok {
			continue
		}
		seen[name] = true
		i = end - 1
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubstituteVariables replaces every {{name}} with the bound value and
// reduces every protected %{{name}} to plain {{name}}, enabling a later
// substitution pass. Unbound placeholders are left untouched; the
// function never fails.
func SubstituteVariables(text string, vars Vars) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); {
		// Protected form: %{{name}} -> {{name}}
		if text[i] == '%' && i+2 < len(text) && text[i+1] == '{' && text[i+2] == '{' {
			if name, end, ok := scanVariableName(text, i+3); ok {
				out.WriteString("{{")
				out.WriteString(name)
				out.WriteString("}}")
				i = end
				continue
			}
		}

		if text[i] == '{' && i+1 < len(text) && text[i+1] == '{' {
			if name, end, ok := scanVariableName(text, i+2); ok {
				if values, bound := vars[name]; bound {
					out.WriteString(strings.Join(values, ListSeparator))
				} else {
					out.WriteString(text[i:end])
				}
				i = end
				continue
			}
		}

		out.WriteByte(text[i])
		i++
	}

	return out.String()
}

// scanVariableName reads a name starting at i (just past the opening
// braces) up to the closing }}. The name may not contain a closing
// brace and may not be empty. Returns the name, the offset just past
// the closing braces, and whether a well-formed reference was found.
func scanVariableName(text string, i int) (string, int, bool) {
	j := i
	for j < len(text) && text[j] != '}' {
		j++
	}
	if j == i || j+1 >= len(text) || text[j+1] != '}' {
		return "", 0, false
	}
	return text[i:j], j + 2, true
}
