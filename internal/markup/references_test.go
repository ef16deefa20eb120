package markup

import "testing"

func TestReferenceCollectorSharesNumbersForIdenticalPayloads(t *testing.T) {
	c := newReferenceCollector(FamilyCitation)

	first := buildCitationRef("Smith 2020").(*CitationRef)
	second := buildCitationRef("Smith 2020").(*CitationRef)
	third := buildCitationRef("Jones 2021").(*CitationRef)

	c.visit(first)
	c.visit(second)
	c.visit(third)

	if first.Number != 1 || second.Number != 1 {
		t.Fatalf("identical payloads must share a number: %d, %d", first.Number, second.Number)
	}
	if third.Number != 2 {
		t.Fatalf("distinct payload should take the next number, got %d", third.Number)
	}
	if first.AnchorID == second.AnchorID {
		t.Fatalf("occurrences must keep distinct anchors: %q", first.AnchorID)
	}
	if len(c.ordered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(c.ordered))
	}
	if got := c.ordered[0].ReferencedBy; len(got) != 2 {
		t.Fatalf("back-reference anchors not accumulated: %v", got)
	}
}

func TestReferenceCollectorTrimsPayloadForIdentity(t *testing.T) {
	c := newReferenceCollector(FamilyFootnote)

	plain := buildFootnoteRef("See appendix").(*FootnoteRef)
	padded := buildFootnoteRef("  See appendix  ").(*FootnoteRef)

	c.visit(plain)
	c.visit(padded)

	if plain.ContentID != padded.ContentID {
		t.Fatalf("whitespace-padded payloads must collapse: %q vs %q", plain.ContentID, padded.ContentID)
	}
	if plain.Number != padded.Number {
		t.Fatalf("collapsed payloads must share a number: %d vs %d", plain.Number, padded.Number)
	}
}

func TestReferenceCollectorIsDeterministic(t *testing.T) {
	run := func() string {
		c := newReferenceCollector(FamilyCitation)
		c.visit(buildCitationRef("Smith 2020").(*CitationRef))
		return c.ordered[0].ContentID
	}
	if run() != run() {
		t.Fatal("content ids must be stable across runs")
	}
}

func TestAnchorIDFormats(t *testing.T) {
	if got := refAnchorID(FamilyCitation, 3, 2); got != "cite_ref-3-2" {
		t.Fatalf("unexpected citation anchor: %q", got)
	}
	if got := noteAnchorID(FamilyFootnote, 4); got != "fn_note-4" {
		t.Fatalf("unexpected footnote note anchor: %q", got)
	}
}
