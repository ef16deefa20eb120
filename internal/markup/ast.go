package markup

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Node kinds for every directive recognized by the wiki markup layer.
var (
	KindShortDescription   = ast.NewNodeKind("WikiShortDescription")
	KindInlineImage        = ast.NewNodeKind("WikiInlineImage")
	KindCategory           = ast.NewNodeKind("WikiCategory")
	KindCitationRef        = ast.NewNodeKind("WikiCitationRef")
	KindFootnoteRef        = ast.NewNodeKind("WikiFootnoteRef")
	KindHeaderImage        = ast.NewNodeKind("WikiHeaderImage")
	KindPullQuote          = ast.NewNodeKind("WikiPullQuote")
	KindPublicationInfobox = ast.NewNodeKind("WikiPublicationInfobox")
	KindCoverGrid          = ast.NewNodeKind("WikiCoverGrid")
	KindDownloadsBox       = ast.NewNodeKind("WikiDownloadsBox")
	KindCitationList       = ast.NewNodeKind("WikiCitationList")
	KindFootnoteList       = ast.NewNodeKind("WikiFootnoteList")
	KindCategoryList       = ast.NewNodeKind("WikiCategoryList")
)

// ResolutionState tags the lifecycle of a node's resolution cache.
type ResolutionState uint8

const (
	// ResolutionUnresolved is the initial state set by the parser.
	ResolutionUnresolved ResolutionState = iota
	// ResolutionResolved indicates the enrichment pass attached summaries.
	ResolutionResolved
	// ResolutionMissing indicates no current record exists; the renderer
	// emits the configured placeholder instead of branching on emptiness.
	ResolutionMissing
)

// Resolution is the write-once cache populated by the enrichment pass for
// directives that reference external data.
type Resolution struct {
	State   ResolutionState
	Article *interfaces.ArticleSummary
	File    *interfaces.FileSummary
}

// set writes the cache exactly once; later writes are ignored.
func (r *Resolution) set(state ResolutionState, article *interfaces.ArticleSummary, file *interfaces.FileSummary) {
	if r.State != ResolutionUnresolved {
		return
	}
	r.State = state
	r.Article = article
	r.File = file
}

// Directive carries the verbatim payload captured by the parser and the
// decoded attribute multimap. Raw is never mutated after the parser closes
// the node.
type Directive struct {
	Raw   string
	Attrs Attributes

	closed bool
	buf    strings.Builder
}

func (d *Directive) appendRawLine(line []byte) {
	if d.buf.Len() > 0 {
		d.buf.WriteByte('\n')
	}
	d.buf.Write(line)
}

// finalize fixes Raw and decodes attributes once block accumulation ends.
// An unterminated block keeps whatever partial payload was captured.
func (d *Directive) finalize() {
	if d.buf.Len() > 0 {
		d.Raw = d.buf.String()
		d.buf.Reset()
	}
	d.Attrs = DecodeAttributes(d.Raw)
}

func dumpAttrs(d *Directive) map[string]string {
	return map[string]string{"Raw": d.Raw}
}

// ShortDescription captures the article's one-line summary. It renders no
// markup of its own; the summary is exposed through document metadata. The
// field must not be named Text or it would shadow the ast.Node method of
// that name.
type ShortDescription struct {
	ast.BaseInline
	Directive
	Summary string
}

func (n *ShortDescription) Kind() ast.NodeKind { return KindShortDescription }
func (n *ShortDescription) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// InlineImage is an {{Image slug}} reference resolved against the article
// and file stores.
type InlineImage struct {
	ast.BaseInline
	Directive
	SlugRef    string
	Resolution Resolution
}

func (n *InlineImage) Kind() ast.NodeKind { return KindInlineImage }
func (n *InlineImage) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// Category tags the document with a category name. Collected into document
// metadata and the category list block; renders nothing inline.
type Category struct {
	ast.BaseInline
	Directive
	Name string
}

func (n *Category) Kind() ast.NodeKind { return KindCategory }
func (n *Category) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// refData is the numbering state assigned to a reference mark by the
// cross-reference pass. Number and AnchorID are written at most once and are
// stable for the remainder of the render.
type refData struct {
	ContentID string
	Number    int
	AnchorID  string
}

// CitationRef is an inline citation mark.
type CitationRef struct {
	ast.BaseInline
	Directive
	refData
}

func (n *CitationRef) Kind() ast.NodeKind { return KindCitationRef }
func (n *CitationRef) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// FootnoteRef is an inline footnote mark.
type FootnoteRef struct {
	ast.BaseInline
	Directive
	refData
}

func (n *FootnoteRef) Kind() ast.NodeKind { return KindFootnoteRef }
func (n *FootnoteRef) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// referenceNode is implemented by both reference mark variants so the
// cross-reference pass can process the two families with the same walk.
type referenceNode interface {
	ast.Node
	directive() *Directive
	ref() *refData
}

func (n *CitationRef) directive() *Directive { return &n.Directive }
func (n *CitationRef) ref() *refData         { return &n.refData }
func (n *FootnoteRef) directive() *Directive { return &n.Directive }
func (n *FootnoteRef) ref() *refData         { return &n.refData }

// directiveBlock is implemented by every block-level directive node so the
// shared block parser machinery can accumulate payload lines.
type directiveBlock interface {
	ast.Node
	blockDirective() *Directive
}

// HeaderImage selects the page header image. The first resolved occurrence
// also feeds the document metadata map.
type HeaderImage struct {
	ast.BaseBlock
	Directive
	SlugRef    string
	Resolution Resolution
}

func (n *HeaderImage) Kind() ast.NodeKind          { return KindHeaderImage }
func (n *HeaderImage) IsRaw() bool                 { return true }
func (n *HeaderImage) blockDirective() *Directive  { return &n.Directive }
func (n *HeaderImage) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// PullQuote renders an emphasized quotation block. No external data.
type PullQuote struct {
	ast.BaseBlock
	Directive
}

func (n *PullQuote) Kind() ast.NodeKind          { return KindPullQuote }
func (n *PullQuote) IsRaw() bool                 { return true }
func (n *PullQuote) blockDirective() *Directive  { return &n.Directive }
func (n *PullQuote) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// PublicationInfobox renders the issue infobox; its cover attribute resolves
// through the article and file stores like an image reference.
type PublicationInfobox struct {
	ast.BaseBlock
	Directive
	CoverSlug  string
	Resolution Resolution
}

func (n *PublicationInfobox) Kind() ast.NodeKind         { return KindPublicationInfobox }
func (n *PublicationInfobox) IsRaw() bool                { return true }
func (n *PublicationInfobox) blockDirective() *Directive { return &n.Directive }
func (n *PublicationInfobox) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// CoverEntry is one cover cell in a CoverGrid, with its own resolution cache.
type CoverEntry struct {
	SlugRef    string
	Caption    string
	Resolution Resolution
}

// CoverGrid lays out a grid of cover scans referenced by slug.
type CoverGrid struct {
	ast.BaseBlock
	Directive
	Covers []*CoverEntry
}

func (n *CoverGrid) Kind() ast.NodeKind          { return KindCoverGrid }
func (n *CoverGrid) IsRaw() bool                 { return true }
func (n *CoverGrid) blockDirective() *Directive  { return &n.Directive }
func (n *CoverGrid) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// DownloadEntry is one hash-keyed row in a DownloadsBox.
type DownloadEntry struct {
	Hash   string
	State  ResolutionState
	Record *interfaces.DownloadRecord
}

// DownloadsBox lists downloadable assets referenced by content hash.
type DownloadsBox struct {
	ast.BaseBlock
	Directive
	Entries []*DownloadEntry
}

func (n *DownloadsBox) Kind() ast.NodeKind          { return KindDownloadsBox }
func (n *DownloadsBox) IsRaw() bool                 { return true }
func (n *DownloadsBox) blockDirective() *Directive  { return &n.Directive }
func (n *DownloadsBox) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// CitationList is the aggregator block for the citation family. Records is
// attached by the cross-reference pass, ordered by number ascending.
type CitationList struct {
	ast.BaseBlock
	Directive
	Records []*ReferenceRecord
}

func (n *CitationList) Kind() ast.NodeKind          { return KindCitationList }
func (n *CitationList) IsRaw() bool                 { return true }
func (n *CitationList) blockDirective() *Directive  { return &n.Directive }
func (n *CitationList) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// FootnoteList is the aggregator block for the footnote family.
type FootnoteList struct {
	ast.BaseBlock
	Directive
	Records []*ReferenceRecord
}

func (n *FootnoteList) Kind() ast.NodeKind          { return KindFootnoteList }
func (n *FootnoteList) IsRaw() bool                 { return true }
func (n *FootnoteList) blockDirective() *Directive  { return &n.Directive }
func (n *FootnoteList) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}

// CategoryList is the aggregator block for category tags.
type CategoryList struct {
	ast.BaseBlock
	Directive
	Names []string
}

func (n *CategoryList) Kind() ast.NodeKind          { return KindCategoryList }
func (n *CategoryList) IsRaw() bool                 { return true }
func (n *CategoryList) blockDirective() *Directive  { return &n.Directive }
func (n *CategoryList) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, dumpAttrs(&n.Directive), nil)
}
