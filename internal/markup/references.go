package markup

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-wiki/internal/identity"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// ReferenceFamily distinguishes the two repeatable, numbered directive
// families handled by the cross-reference pass.
type ReferenceFamily string

const (
	FamilyCitation ReferenceFamily = "citation"
	FamilyFootnote ReferenceFamily = "footnote"
)

// ReferenceRecord is one deduplicated citation or footnote entry. Number is
// assigned once, in first-occurrence document order, and is stable for the
// remainder of the render. ReferencedBy lists the per-occurrence anchor ids
// in the order the marks appear.
type ReferenceRecord struct {
	ContentID    string
	Number       int
	RawText      string
	Properties   Attributes
	ReferencedBy []string
}

// NoteAnchor is the id of the record's entry in the aggregator list.
func (r *ReferenceRecord) NoteAnchor(family ReferenceFamily) string {
	return noteAnchorID(family, r.Number)
}

// referenceCollector dedupes reference marks by content id for one family.
type referenceCollector struct {
	family  ReferenceFamily
	byID    map[string]*ReferenceRecord
	ordered []*ReferenceRecord
}

func newReferenceCollector(family ReferenceFamily) *referenceCollector {
	return &referenceCollector{
		family: family,
		byID:   map[string]*ReferenceRecord{},
	}
}

// visit numbers one inline mark. Marks with byte-identical trimmed payloads
// collapse onto the same record and displayed number while keeping distinct
// back-reference anchors.
func (c *referenceCollector) visit(mark referenceNode) {
	d := mark.directive()
	data := mark.ref()
	trimmed := strings.TrimSpace(d.Raw)
	contentID := identity.ReferenceContentID(string(c.family), trimmed)

	record, exists := c.byID[contentID]
	if !exists {
		record = &ReferenceRecord{
			ContentID:  contentID,
			Number:     len(c.ordered) + 1,
			RawText:    trimmed,
			Properties: DecodeAttributes(d.Raw),
		}
		c.byID[contentID] = record
		c.ordered = append(c.ordered, record)
	}

	occurrence := len(record.ReferencedBy) + 1
	anchor := refAnchorID(c.family, record.Number, occurrence)
	record.ReferencedBy = append(record.ReferencedBy, anchor)

	data.ContentID = contentID
	data.Number = record.Number
	data.AnchorID = anchor
}

// reprocess runs the cross-reference pass: it numbers citation and footnote
// marks in document order, attaches the completed record lists to their
// aggregator blocks, and folds category and short-description directives
// into the render state. Numbering proceeds even when an aggregator block is
// absent; only the aggregated list is then missing from the output.
func reprocess(doc ast.Node, state *renderState) {
	citations := newReferenceCollector(FamilyCitation)
	footnotes := newReferenceCollector(FamilyFootnote)

	var citationList *CitationList
	var footnoteList *FootnoteList
	var categoryList *CategoryList

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *CitationRef:
			citations.visit(node)
		case *FootnoteRef:
			footnotes.visit(node)
		case *Category:
			state.addCategory(node.Name)
		case *ShortDescription:
			state.setMetaFirstWins(interfaces.MetaShortDescriptionText, node.Summary)
		case *CitationList:
			if citationList == nil {
				citationList = node
			}
		case *FootnoteList:
			if footnoteList == nil {
				footnoteList = node
			}
		case *CategoryList:
			if categoryList == nil {
				categoryList = node
			}
		}
		return ast.WalkContinue, nil
	})

	if citationList != nil {
		citationList.Records = citations.ordered
	}
	if footnoteList != nil {
		footnoteList.Records = footnotes.ordered
	}
	if categoryList != nil {
		categoryList.Names = state.categories
	}
}

func refAnchorID(family ReferenceFamily, number, occurrence int) string {
	return fmt.Sprintf("%s-%d-%d", refAnchorPrefix(family), number, occurrence)
}

func noteAnchorID(family ReferenceFamily, number int) string {
	return fmt.Sprintf("%s-%d", noteAnchorPrefix(family), number)
}

func refAnchorPrefix(family ReferenceFamily) string {
	if family == FamilyFootnote {
		return "fn_ref"
	}
	return "cite_ref"
}

func noteAnchorPrefix(family ReferenceFamily) string {
	if family == FamilyFootnote {
		return "fn_note"
	}
	return "cite_note"
}
