package markup

import (
	"testing"

	"github.com/yuin/goldmark/ast"
)

// Every directive node must satisfy the goldmark node contract. Promoted
// methods from the embedded base types are easy to shadow with a field of
// the same name, which silently drops the interface.
var (
	_ ast.Node = (*ShortDescription)(nil)
	_ ast.Node = (*InlineImage)(nil)
	_ ast.Node = (*Category)(nil)
	_ ast.Node = (*CitationRef)(nil)
	_ ast.Node = (*FootnoteRef)(nil)
	_ ast.Node = (*HeaderImage)(nil)
	_ ast.Node = (*PullQuote)(nil)
	_ ast.Node = (*PublicationInfobox)(nil)
	_ ast.Node = (*CoverGrid)(nil)
	_ ast.Node = (*DownloadsBox)(nil)
	_ ast.Node = (*CitationList)(nil)
	_ ast.Node = (*FootnoteList)(nil)
	_ ast.Node = (*CategoryList)(nil)
)

func TestShortDescriptionKeepsNodeTextMethod(t *testing.T) {
	n := buildShortDescription("A one line summary").(*ShortDescription)
	if n.Summary != "A one line summary" {
		t.Fatalf("summary = %q", n.Summary)
	}
	// Text on a childless inline node comes from the embedded base and
	// must remain callable.
	if got := n.Text([]byte("source")); len(got) != 0 {
		t.Fatalf("Text() = %q, want empty", got)
	}
	if n.Kind() != KindShortDescription {
		t.Fatalf("kind = %v", n.Kind())
	}
}
