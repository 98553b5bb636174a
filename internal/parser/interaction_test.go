package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDirective_Kinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Directive
	}{
		{
			name: "buttons only",
			raw:  "?[%{{x}} Yes|No]",
			want: Directive{
				Kind:     KindButtonsOnly,
				Variable: "x",
				Options:  []Option{{Display: "Yes", Value: "Yes"}, {Display: "No", Value: "No"}},
			},
		},
		{
			name: "multi select",
			raw:  "?[%{{x}} Yes||No]",
			want: Directive{
				Kind:     KindButtonsMultiSelect,
				Variable: "x",
				Options:  []Option{{Display: "Yes", Value: "Yes"}, {Display: "No", Value: "No"}},
			},
		},
		{
			name: "text only",
			raw:  "?[%{{x}} ...Enter your name]",
			want: Directive{
				Kind:     KindTextOnly,
				Variable: "x",
				Prompt:   "Enter your name",
			},
		},
		{
			name: "buttons with text",
			raw:  "?[%{{x}} A|B|...Other]",
			want: Directive{
				Kind:     KindButtonsWithText,
				Variable: "x",
				Options:  []Option{{Display: "A", Value: "A"}, {Display: "B", Value: "B"}},
				Prompt:   "Other",
			},
		},
		{
			name: "multi buttons with text",
			raw:  "?[%{{x}} A||B||...Other]",
			want: Directive{
				Kind:     KindButtonsMultiWithText,
				Variable: "x",
				Options:  []Option{{Display: "A", Value: "A"}, {Display: "B", Value: "B"}},
				Prompt:   "Other",
			},
		},
		{
			name: "non-assignment buttons",
			raw:  "?[Continue|Stop]",
			want: Directive{
				Kind:    KindNonAssignmentButtons,
				Options: []Option{{Display: "Continue", Value: "Continue"}, {Display: "Stop", Value: "Stop"}},
			},
		},
		{
			name: "display value split",
			raw:  "?[%{{level}} Beginner//1|Expert//3]",
			want: Directive{
				Kind:     KindButtonsOnly,
				Variable: "level",
				Options:  []Option{{Display: "Beginner", Value: "1"}, {Display: "Expert", Value: "3"}},
			},
		},
		{
			name: "display with slashes splits at last separator",
			raw:  "?[%{{p}} a/b//c]",
			want: Directive{
				Kind:     KindButtonsOnly,
				Variable: "p",
				Options:  []Option{{Display: "a/b", Value: "c"}},
			},
		},
		{
			name: "whitespace tolerated",
			raw:  "  ?[%{{ x }}  Yes | No ]  ",
			want: Directive{
				Kind:     KindButtonsOnly,
				Variable: "x",
				Options:  []Option{{Display: "Yes", Value: "Yes"}, {Display: "No", Value: "No"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDirective(tt.raw)
			if err != nil {
				t.Fatalf("ParseDirective(%q) error = %v", tt.raw, err)
			}
			if diff := cmp.Diff(&tt.want, got); diff != "" {
				t.Fatalf("ParseDirective(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestParseDirective_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not a directive", "just text", ErrBadFormat},
		{"empty body", "?[]", ErrBadFormat},
		{"whitespace body", "?[   ]", ErrBadFormat},
		{"variable without name", "?[%{{}} A|B]", ErrBadFormat},
		{"variable without options or ellipsis", "?[%{{x}}]", ErrBadFormat},
		{"mixed separators", "?[%{{x}} A|B||C]", ErrInconsistentSeparator},
		{"triple pipe", "?[%{{x}} A|||B]", ErrInconsistentSeparator},
		{"trailing text after span", "?[%{{x}} A|B] and more", ErrBadFormat},
		{"unclosed span", "?[%{{x}} A|B", ErrBadFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDirective(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseDirective(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}
}

func TestFindDirectiveSpan(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		end   int
		ok    bool
	}{
		{"plain", "?[A|B]", 0, 6, true},
		{"embedded", "before ?[A|B] after", 7, 13, true},
		{"escaped", `\?[A|B]`, 0, 0, false},
		{"markdown link", "?[docs](url)", 0, 0, false},
		{"link then directive", "?[docs](url) ?[A|B]", 13, 19, true},
		{"unclosed", "?[A|B", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := findDirectiveSpan(tt.text, 0)
			if ok != tt.ok || start != tt.start || end != tt.end {
				t.Fatalf("findDirectiveSpan(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tt.text, start, end, ok, tt.start, tt.end, tt.ok)
			}
		})
	}
}

func TestExtractQuestion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"?[%{{x}} ...What is your name?]", "What is your name?"},
		{"?[%{{x}} Red|Blue]", "Red | Blue"},
		{"not a directive", ""},
	}
	for _, tt := range tests {
		if got := ExtractQuestion(tt.raw); got != tt.want {
			t.Fatalf("ExtractQuestion(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
