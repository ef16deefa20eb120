package markup

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Reserved attribute keys consumed by earlier passes or by the renderer's
// own element shape; everything else is displayed in authored order.
var (
	reservedImageKeys   = map[string]struct{}{"file": {}, "width": {}, "align": {}, "caption": {}}
	reservedInfoboxKeys = map[string]struct{}{"cover": {}, "title": {}}
)

// nodeRenderer emits HTML for every directive kind. It is constructed fresh
// per render and reads only write-once caches populated by the enrichment
// and cross-reference passes; it performs no I/O and never fails a render
// over unresolved data.
type nodeRenderer struct {
	state *renderState
}

func newNodeRenderer(state *renderState) renderer.NodeRenderer {
	return &nodeRenderer{state: state}
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindShortDescription, r.renderNothing)
	reg.Register(KindCategory, r.renderNothing)
	reg.Register(KindInlineImage, r.renderInlineImage)
	reg.Register(KindCitationRef, r.renderCitationRef)
	reg.Register(KindFootnoteRef, r.renderFootnoteRef)
	reg.Register(KindHeaderImage, r.renderHeaderImage)
	reg.Register(KindPullQuote, r.renderPullQuote)
	reg.Register(KindPublicationInfobox, r.renderInfobox)
	reg.Register(KindCoverGrid, r.renderCoverGrid)
	reg.Register(KindDownloadsBox, r.renderDownloadsBox)
	reg.Register(KindCitationList, r.renderCitationList)
	reg.Register(KindFootnoteList, r.renderFootnoteList)
	reg.Register(KindCategoryList, r.renderCategoryList)
}

// renderNothing handles directives whose payload surfaces through document
// metadata rather than markup.
func (r *nodeRenderer) renderNothing(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderInlineImage(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*InlineImage)
	r.writeImage(w, &node.Directive, node.SlugRef, node.Resolution, "wiki-image")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderHeaderImage(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*HeaderImage)
	_, _ = w.WriteString(`<figure class="wiki-header-image">`)
	r.writeImage(w, &node.Directive, node.SlugRef, node.Resolution, "wiki-header")
	if caption, ok := node.Attrs.Get("caption"); ok && caption != "" {
		_, _ = w.WriteString(`<figcaption>` + escape(caption) + `</figcaption>`)
	}
	_, _ = w.WriteString("</figure>\n")
	return ast.WalkSkipChildren, nil
}

// writeImage emits one image reference, linking resolved files back to their
// article and falling back to the configured placeholder otherwise.
func (r *nodeRenderer) writeImage(w util.BufWriter, d *Directive, slugRef string, res Resolution, class string) {
	if res.State == ResolutionResolved && res.File != nil {
		title := ""
		if res.Article != nil {
			title = res.Article.Title
		}
		if caption, ok := d.Attrs.Get("caption"); ok && caption != "" {
			title = caption
		}
		_, _ = w.WriteString(`<a href="` + escape(r.state.links.ArticleURL(articleSlug(res))) + `" class="` + class + `">`)
		_, _ = w.WriteString(`<img src="` + escape(r.state.links.FileURL(res.File.Filename)) + `" alt="` + escape(title) + `"`)
		if width, ok := d.Attrs.Get("width"); ok && width != "" {
			_, _ = w.WriteString(` width="` + escape(width) + `"`)
		}
		if align, ok := d.Attrs.Get("align"); ok && align != "" {
			_, _ = w.WriteString(` class="align-` + escape(align) + `"`)
		}
		writeDataAttrs(w, d.Attrs, reservedImageKeys)
		_, _ = w.WriteString(`></a>`)
		return
	}

	_, _ = w.WriteString(`<img src="` + escape(r.state.placeholderImage) + `" alt="` + escape(r.state.placeholderTitle) + `" class="` + class + ` wiki-missing">`)
	r.diagnostic(w, "unresolved image "+strconv.Quote(slugRef))
}

func (r *nodeRenderer) renderPullQuote(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*PullQuote)
	quote, ok := node.Attrs.Get("quote")
	if !ok || quote == "" {
		quote = strings.TrimSpace(node.Raw)
	}
	_, _ = w.WriteString(`<blockquote class="wiki-pull-quote"><p>` + escape(quote) + `</p>`)
	if src, ok := node.Attrs.Get("source"); ok && src != "" {
		_, _ = w.WriteString(`<footer>` + escape(src) + `</footer>`)
	}
	_, _ = w.WriteString("</blockquote>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderInfobox(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*PublicationInfobox)
	_, _ = w.WriteString(`<aside class="wiki-infobox">`)
	if title, ok := node.Attrs.Get("title"); ok && title != "" {
		_, _ = w.WriteString(`<h3>` + escape(title) + `</h3>`)
	}
	if node.CoverSlug != "" {
		r.writeImage(w, &node.Directive, node.CoverSlug, node.Resolution, "wiki-infobox-cover")
	}
	rows := displayKeys(node.Attrs, reservedInfoboxKeys)
	if len(rows) > 0 {
		_, _ = w.WriteString(`<table><tbody>`)
		for _, key := range rows {
			for _, value := range node.Attrs.Values(key) {
				_, _ = w.WriteString(`<tr><th>` + escape(key) + `</th><td>` + escape(value) + `</td></tr>`)
			}
		}
		_, _ = w.WriteString(`</tbody></table>`)
	}
	_, _ = w.WriteString("</aside>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderCoverGrid(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*CoverGrid)
	_, _ = w.WriteString(`<div class="wiki-cover-grid">`)
	for _, cover := range node.Covers {
		_, _ = w.WriteString(`<figure class="wiki-cover">`)
		if cover.Resolution.State == ResolutionResolved && cover.Resolution.File != nil {
			_, _ = w.WriteString(`<a href="` + escape(r.state.links.ArticleURL(articleSlug(cover.Resolution))) + `">`)
			_, _ = w.WriteString(`<img src="` + escape(r.state.links.FileURL(cover.Resolution.File.Filename)) + `" alt="` + escape(cover.Caption) + `">`)
			_, _ = w.WriteString(`</a>`)
		} else {
			_, _ = w.WriteString(`<img src="` + escape(r.state.placeholderImage) + `" alt="` + escape(r.state.placeholderTitle) + `" class="wiki-missing">`)
			r.diagnostic(w, "unresolved cover "+strconv.Quote(cover.SlugRef))
		}
		if cover.Caption != "" {
			_, _ = w.WriteString(`<figcaption>` + escape(cover.Caption) + `</figcaption>`)
		}
		_, _ = w.WriteString(`</figure>`)
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderDownloadsBox(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*DownloadsBox)
	_, _ = w.WriteString(`<section class="wiki-downloads">`)
	if title, ok := node.Attrs.Get("title"); ok && title != "" {
		_, _ = w.WriteString(`<h3>` + escape(title) + `</h3>`)
	}
	_, _ = w.WriteString(`<ul>`)
	for _, entry := range node.Entries {
		if entry.State == ResolutionResolved && entry.Record != nil {
			record := entry.Record
			_, _ = w.WriteString(`<li>`)
			if len(record.URLs) > 0 {
				_, _ = w.WriteString(`<a href="` + escape(record.URLs[0]) + `">` + escape(record.Filename) + `</a>`)
			} else {
				_, _ = w.WriteString(escape(record.Filename))
			}
			_, _ = w.WriteString(` <span class="download-size">` + strconv.FormatInt(record.Size, 10) + `</span>`)
			if record.Quality != "" {
				_, _ = w.WriteString(` <span class="download-quality">` + escape(record.Quality) + `</span>`)
			}
			_, _ = w.WriteString(`</li>`)
			continue
		}
		_, _ = w.WriteString(`<li class="wiki-download-missing">` + escape(entry.Hash) + `</li>`)
		r.diagnostic(w, "unresolved download "+strconv.Quote(entry.Hash))
	}
	_, _ = w.WriteString("</ul></section>\n")
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderCitationRef(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*CitationRef)
	writeRefMark(w, "wiki-citation", node.AnchorID, noteAnchorID(FamilyCitation, node.Number), node.Number)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderFootnoteRef(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*FootnoteRef)
	writeRefMark(w, "wiki-footnote", node.AnchorID, noteAnchorID(FamilyFootnote, node.Number), node.Number)
	return ast.WalkContinue, nil
}

func writeRefMark(w util.BufWriter, class, anchorID, noteID string, number int) {
	num := strconv.Itoa(number)
	_, _ = w.WriteString(`<sup class="` + class + `" id="` + escape(anchorID) + `">`)
	_, _ = w.WriteString(`<a href="#` + escape(noteID) + `">[` + num + `]</a></sup>`)
}

func (r *nodeRenderer) renderCitationList(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*CitationList)
	writeReferenceList(w, "wiki-citations", FamilyCitation, node.Records)
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderFootnoteList(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*FootnoteList)
	writeReferenceList(w, "wiki-footnotes", FamilyFootnote, node.Records)
	return ast.WalkSkipChildren, nil
}

// writeReferenceList emits the aggregator markup, ascending by number. With
// no records the aggregator suppresses its container entirely.
func writeReferenceList(w util.BufWriter, class string, family ReferenceFamily, records []*ReferenceRecord) {
	if len(records) == 0 {
		return
	}
	_, _ = w.WriteString(`<ol class="` + class + `">`)
	for _, record := range records {
		_, _ = w.WriteString(`<li id="` + escape(record.NoteAnchor(family)) + `">`)
		writeBackRefs(w, record.ReferencedBy)
		_, _ = w.WriteString(`<span class="wiki-ref-text">` + escape(referenceText(record)) + `</span></li>`)
	}
	_, _ = w.WriteString("</ol>\n")
}

func writeBackRefs(w util.BufWriter, anchors []string) {
	if len(anchors) == 0 {
		return
	}
	_, _ = w.WriteString(`<span class="wiki-backrefs">`)
	if len(anchors) == 1 {
		_, _ = w.WriteString(`<a href="#` + escape(anchors[0]) + `">&#8593;</a>`)
	} else {
		for i, anchor := range anchors {
			if i > 0 {
				_, _ = w.WriteString(" ")
			}
			label := string(rune('a' + i%26))
			_, _ = w.WriteString(`<a href="#` + escape(anchor) + `">` + label + `</a>`)
		}
	}
	_, _ = w.WriteString(`</span> `)
}

// referenceText flattens a record for display: authored attributes in order
// when present, the raw trimmed payload otherwise.
func referenceText(record *ReferenceRecord) string {
	if record.Properties.Len() == 0 {
		return record.RawText
	}
	parts := make([]string, 0, record.Properties.Len())
	for _, key := range record.Properties.Keys() {
		for _, value := range record.Properties.Values(key) {
			parts = append(parts, key+": "+value)
		}
	}
	return strings.Join(parts, "; ")
}

func (r *nodeRenderer) renderCategoryList(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*CategoryList)
	if len(node.Names) == 0 {
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<nav class="wiki-categories"><ul>`)
	for _, name := range node.Names {
		href := r.state.links.ArticleURL("category:" + NormalizeSlug(name))
		_, _ = w.WriteString(`<li><a href="` + escape(href) + `">` + escape(name) + `</a></li>`)
	}
	_, _ = w.WriteString("</ul></nav>\n")
	return ast.WalkSkipChildren, nil
}

// diagnostic emits an HTML comment only when diagnostics are enabled for
// this render.
func (r *nodeRenderer) diagnostic(w util.BufWriter, message string) {
	if !r.state.opts.Diagnostics {
		return
	}
	_, _ = w.WriteString(`<!-- wiki: ` + strings.ReplaceAll(message, "--", "- -") + ` -->`)
}

func articleSlug(res Resolution) string {
	if res.Article != nil {
		return res.Article.Slug
	}
	return ""
}

// displayKeys filters the authored key order down to displayable keys.
func displayKeys(attrs Attributes, reserved map[string]struct{}) []string {
	keys := make([]string, 0, attrs.Len())
	for _, key := range attrs.Keys() {
		if _, skip := reserved[key]; skip {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// writeDataAttrs emits non-reserved attributes as data-* attributes in
// authored order so no authored information is silently dropped.
func writeDataAttrs(w util.BufWriter, attrs Attributes, reserved map[string]struct{}) {
	for _, key := range displayKeys(attrs, reserved) {
		name := strings.ReplaceAll(key, " ", "-")
		for _, value := range attrs.Values(key) {
			_, _ = w.WriteString(` data-` + name + `="` + escape(value) + `"`)
		}
	}
}
