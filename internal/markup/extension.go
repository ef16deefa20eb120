package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Parser and renderer priorities. Directive block parsers run ahead of every
// built-in block parser so a `{{HeaderImage ...}}` line never becomes a
// paragraph; inline parsers run before the link parser (200).
const (
	priorityDirectiveBlock    = 90
	priorityDirectiveInline   = 150
	priorityDirectiveRenderer = 500
)

// directiveSet wires every directive parser and renderer into a goldmark
// instance. A set is constructed fresh per render and closes over that
// render's state; sharing one across renders would leak numbering, caches,
// and accumulated lists between unrelated documents.
type directiveSet struct {
	state *renderState
}

func newDirectiveSet(state *renderState) goldmark.Extender {
	return &directiveSet{state: state}
}

func (s *directiveSet) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(newBlockDirectiveParser("HeaderImage", func() directiveBlock { return &HeaderImage{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("PublicationIssueInfobox", func() directiveBlock { return &PublicationInfobox{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("CoverGrid", func() directiveBlock { return &CoverGrid{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("DownloadsBox", func() directiveBlock { return &DownloadsBox{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("PullQuote", func() directiveBlock { return &PullQuote{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("Citations", func() directiveBlock { return &CitationList{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("Footnotes", func() directiveBlock { return &FootnoteList{} }), priorityDirectiveBlock),
			util.Prioritized(newBlockDirectiveParser("Categories", func() directiveBlock { return &CategoryList{} }), priorityDirectiveBlock),
		),
		parser.WithInlineParsers(
			util.Prioritized(newInlineDirectiveParser("ShortDescription", buildShortDescription), priorityDirectiveInline),
			util.Prioritized(newInlineDirectiveParser("Image", buildInlineImage), priorityDirectiveInline),
			util.Prioritized(newInlineDirectiveParser("Category", buildCategory), priorityDirectiveInline),
			util.Prioritized(newInlineDirectiveParser("Citation", buildCitationRef), priorityDirectiveInline),
			util.Prioritized(newInlineDirectiveParser("Footnote", buildFootnoteRef), priorityDirectiveInline),
			// The aggregators also register inline: mid-line occurrences
			// never reach the block parsers, and the reprocessor and
			// renderer dispatch on node type, not position.
			util.Prioritized(newInlineDirectiveParser("Citations", buildCitationList), priorityDirectiveInline),
			util.Prioritized(newInlineDirectiveParser("Footnotes", buildFootnoteList), priorityDirectiveInline),
			util.Prioritized(newInlineDirectiveParser("Categories", buildCategoryList), priorityDirectiveInline),
		),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(newNodeRenderer(s.state), priorityDirectiveRenderer),
	))
}

func buildShortDescription(raw string) ast.Node {
	n := &ShortDescription{}
	n.Raw = raw
	n.Attrs = DecodeAttributes(raw)
	n.Summary = strings.TrimSpace(raw)
	if text, ok := n.Attrs.Get("text"); ok {
		n.Summary = text
	}
	return n
}

func buildInlineImage(raw string) ast.Node {
	n := &InlineImage{}
	n.Raw = raw
	arg, rest := SplitLeadingArgument(raw)
	n.Attrs = DecodeAttributes(rest)
	if arg == "" {
		arg, _ = n.Attrs.Get("file")
	}
	n.SlugRef = StripFilePrefix(arg)
	return n
}

func buildCategory(raw string) ast.Node {
	n := &Category{}
	n.Raw = raw
	arg, rest := SplitLeadingArgument(raw)
	n.Attrs = DecodeAttributes(rest)
	if arg == "" {
		arg, _ = n.Attrs.Get("name")
	}
	n.Name = strings.TrimSpace(arg)
	return n
}

func buildCitationRef(raw string) ast.Node {
	n := &CitationRef{}
	n.Raw = raw
	n.Attrs = DecodeAttributes(raw)
	return n
}

func buildFootnoteRef(raw string) ast.Node {
	n := &FootnoteRef{}
	n.Raw = raw
	n.Attrs = DecodeAttributes(raw)
	return n
}

func buildCitationList(raw string) ast.Node {
	n := &CitationList{}
	n.Raw = raw
	n.Attrs = DecodeAttributes(raw)
	return n
}

func buildFootnoteList(raw string) ast.Node {
	n := &FootnoteList{}
	n.Raw = raw
	n.Attrs = DecodeAttributes(raw)
	return n
}

func buildCategoryList(raw string) ast.Node {
	n := &CategoryList{}
	n.Raw = raw
	n.Attrs = DecodeAttributes(raw)
	return n
}
