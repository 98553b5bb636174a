package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSplitBlocks_SeparatorAndDirective(t *testing.T) {
	doc := `Welcome, {{name}}!

---

Pick a color.

?[%{{color}} Red|Blue]

---

Done.`

	got := SplitBlocks(doc)

	want := []Block{
		{Content: "Welcome, {{name}}!", Type: BlockContent, Index: 0, Variables: []string{"name"}},
		{Content: "Pick a color.", Type: BlockContent, Index: 1},
		{Content: "?[%{{color}} Red|Blue]", Type: BlockInteraction, Index: 2},
		{Content: "Done.", Type: BlockContent, Index: 3},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("SplitBlocks mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitBlocks_DirectiveMidText(t *testing.T) {
	doc := "Intro text\n?[%{{lang}} Go|Rust]\nOutro text"

	got := SplitBlocks(doc)
	if len(got) != 3 {
		t.Fatalf("got %d blocks, want 3", len(got))
	}
	if got[0].Type != BlockContent || got[1].Type != BlockInteraction || got[2].Type != BlockContent {
		t.Fatalf("types = %v %v %v, want content interaction content", got[0].Type, got[1].Type, got[2].Type)
	}
	if got[1].Content != "?[%{{lang}} Go|Rust]" {
		t.Fatalf("interaction content = %q", got[1].Content)
	}
	for i, b := range got {
		if b.Index != i {
			t.Fatalf("block %d has index %d", i, b.Index)
		}
	}
}

func TestSplitBlocks_EscapedDirectiveStaysContent(t *testing.T) {
	got := SplitBlocks(`Literal \?[not a directive] here`)
	if len(got) != 1 {
		t.Fatalf("got %d blocks, want 1", len(got))
	}
	if got[0].Type != BlockContent {
		t.Fatalf("type = %v, want content", got[0].Type)
	}
}

func TestSplitBlocks_MarkdownLinkNotDirective(t *testing.T) {
	got := SplitBlocks(`Is this a link?[docs](https://example.com) yes`)
	if len(got) != 1 {
		t.Fatalf("got %d blocks, want 1: %+v", len(got), got)
	}
	if got[0].Type != BlockContent {
		t.Fatalf("type = %v, want content", got[0].Type)
	}
}

func TestSplitBlocks_PreservedBlock(t *testing.T) {
	doc := "Before\n\n---\n\n!===\nExact wording here\n!===\n\n---\n\nAfter"

	got := SplitBlocks(doc)
	if len(got) != 3 {
		t.Fatalf("got %d blocks, want 3", len(got))
	}
	if got[1].Type != BlockPreserved {
		t.Fatalf("middle block type = %v, want preserved", got[1].Type)
	}
}

func TestSplitBlocks_EmptySegmentsDropped(t *testing.T) {
	doc := "A\n\n---\n\n\n\n---\n\nB"

	got := SplitBlocks(doc)
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(got), got)
	}
	if got[0].Content != "A" || got[1].Content != "B" {
		t.Fatalf("contents = %q, %q", got[0].Content, got[1].Content)
	}
}

func TestSplitBlocks_EmptyDocument(t *testing.T) {
	if got := SplitBlocks(""); len(got) != 0 {
		t.Fatalf("got %d blocks for empty document", len(got))
	}
	if got := SplitBlocks("  \n\t\n "); len(got) != 0 {
		t.Fatalf("got %d blocks for whitespace document", len(got))
	}
}

func TestSplitBlocks_Deterministic(t *testing.T) {
	doc := "One\n---\n?[%{{x}} A|B]\n---\nTwo"
	first := SplitBlocks(doc)
	second := SplitBlocks(doc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("parse is not deterministic:\n%s", diff)
	}
}

func TestSplitBlocks_DashesInsideTextNotSeparator(t *testing.T) {
	// A --- needs its own line; inline dashes stay in the text.
	got := SplitBlocks("a --- b")
	if len(got) != 1 {
		t.Fatalf("got %d blocks, want 1", len(got))
	}
}
