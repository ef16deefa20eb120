// Package htmlfmt normalizes rendered HTML fragments: it reparses the
// fragment, collapses insignificant whitespace, and reindents block
// structure so output is stable regardless of how the upstream renderers
// interleaved their writes. Content inside preformatted scopes is carried
// through byte for byte.
package htmlfmt

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Options struct {
	// Indent is the per-depth indentation unit. Empty disables
	// reindentation but whitespace collapsing still applies.
	Indent string
}

type Formatter struct {
	indent string
}

func NewFormatter(opts Options) *Formatter {
	return &Formatter{indent: opts.Indent}
}

// Format parses src as a body fragment and re-emits it normalized. Parse
// errors surface to the caller; the html package itself is error tolerant,
// so in practice only reader failures return here.
func (f *Formatter) Format(src []byte) ([]byte, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(src), ctx)
	if err != nil {
		return nil, err
	}

	p := &printer{indent: f.indent}
	for _, n := range nodes {
		p.node(n, 0)
	}
	out := p.buf.Bytes()
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "details": {},
	"dd": {}, "div": {}, "dl": {}, "dt": {}, "fieldset": {}, "figcaption": {},
	"figure": {}, "footer": {}, "form": {}, "h1": {}, "h2": {}, "h3": {},
	"h4": {}, "h5": {}, "h6": {}, "header": {}, "hr": {}, "li": {}, "main": {},
	"nav": {}, "ol": {}, "p": {}, "pre": {}, "section": {}, "table": {},
	"tbody": {}, "td": {}, "tfoot": {}, "th": {}, "thead": {}, "tr": {}, "ul": {},
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "param": {}, "source": {},
	"track": {}, "wbr": {},
}

var preservedElements = map[string]struct{}{
	"pre": {}, "code": {}, "script": {}, "style": {}, "textarea": {}, "template": {},
}

// contentElements own their text directly; whitespace at their inner edges
// is presentation noise, so the first and last text children are trimmed.
var contentElements = map[string]struct{}{
	"p": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"li": {}, "td": {}, "th": {}, "caption": {}, "figcaption": {},
	"blockquote": {}, "dt": {}, "dd": {}, "summary": {},
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	_, ok := blockElements[n.Data]
	return ok
}

// isPreserved reports whether the element's subtree must pass through
// untouched: preformatted tags, editable regions, and explicit
// white-space styling all qualify.
func isPreserved(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, ok := preservedElements[n.Data]; ok {
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "contenteditable":
			if !strings.EqualFold(attr.Val, "false") {
				return true
			}
		case "style":
			style := strings.ToLower(attr.Val)
			if strings.Contains(style, "white-space") &&
				(strings.Contains(style, "pre") || strings.Contains(style, "nowrap")) {
				return true
			}
		}
	}
	return false
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

type printer struct {
	buf    bytes.Buffer
	indent string
	atLine bool
}

func (p *printer) newline(depth int) {
	if p.buf.Len() > 0 && !p.atLine {
		p.buf.WriteByte('\n')
	}
	for i := 0; i < depth; i++ {
		p.buf.WriteString(p.indent)
	}
	p.atLine = false
}

func (p *printer) write(s string) {
	if s != "" {
		p.atLine = false
	}
	p.buf.WriteString(s)
}

func (p *printer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.TextNode:
		p.write(escapeText(collapseSpace(n.Data)))
	case html.CommentNode:
		p.write("<!--" + n.Data + "-->")
	case html.ElementNode:
		p.element(n, depth)
	case html.DoctypeNode, html.ErrorNode:
		// fragments never carry these
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.node(c, depth)
		}
	}
}

func (p *printer) element(n *html.Node, depth int) {
	block := isBlock(n)
	if block && p.indent != "" {
		p.newline(depth)
	}

	p.write("<" + n.Data)
	for _, attr := range n.Attr {
		p.write(" " + attr.Key + `="` + escapeAttr(attr.Val) + `"`)
	}
	p.write(">")

	if _, void := voidElements[n.Data]; void {
		return
	}

	if isPreserved(n) {
		p.raw(n)
		p.write("</" + n.Data + ">")
		return
	}

	if _, content := contentElements[n.Data]; content {
		if c := n.FirstChild; c != nil && c.Type == html.TextNode {
			c.Data = strings.TrimLeft(c.Data, spaceBytes)
		}
		if c := n.LastChild; c != nil && c.Type == html.TextNode {
			c.Data = strings.TrimRight(c.Data, spaceBytes)
		}
	}

	nested := hasBlockChild(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && nested && strings.TrimSpace(c.Data) == "" {
			continue
		}
		p.node(c, depth+1)
	}
	if nested && p.indent != "" {
		p.newline(depth)
	}
	p.write("</" + n.Data + ">")
}

// raw serializes a preserved subtree without any normalization.
func (p *printer) raw(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		var sub bytes.Buffer
		if err := html.Render(&sub, c); err != nil {
			continue
		}
		p.write(sub.String())
	}
}

// collapseSpace folds any run of whitespace into a single space, keeping
// leading and trailing runs as single spaces so inline joins survive.
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpaceByte(s[0]) {
		out = " " + out
	}
	if isSpaceByte(s[len(s)-1]) {
		out += " "
	}
	return out
}

const spaceBytes = " \t\n\r\f"

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
