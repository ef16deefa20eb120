package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	directiveOpen  = []byte("{{")
	directiveClose = []byte("}}")
)

// matchDirectiveMarker matches `{{Name` at the start of line, optionally
// followed by a single space. It returns the offset where the payload begins.
// The name match is exact and bounded: `{{Category` does not match a
// `{{Categories` marker.
func matchDirectiveMarker(line []byte, name []byte) (payloadStart int, ok bool) {
	if !bytes.HasPrefix(line, directiveOpen) {
		return 0, false
	}
	rest := line[len(directiveOpen):]
	if !bytes.HasPrefix(rest, name) {
		return 0, false
	}
	pos := len(directiveOpen) + len(name)
	if pos < len(line) && isMarkerNameByte(line[pos]) {
		return 0, false
	}
	if pos < len(line) && line[pos] == ' ' {
		pos++
	}
	return pos, true
}

func isMarkerNameByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// inlineDirectiveParser recognizes single-line `{{Name ...}}` constructs.
// When the terminator is absent the parse fails without consuming input and
// the base engine treats the text as ordinary literal content.
type inlineDirectiveParser struct {
	name  []byte
	build func(raw string) ast.Node
}

func newInlineDirectiveParser(name string, build func(raw string) ast.Node) parser.InlineParser {
	return &inlineDirectiveParser{name: []byte(name), build: build}
}

func (p *inlineDirectiveParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *inlineDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	payloadStart, ok := matchDirectiveMarker(line, p.name)
	if !ok {
		return nil
	}
	idx := bytes.Index(line[payloadStart:], directiveClose)
	if idx < 0 {
		// No terminator before end of line: restore by not consuming.
		return nil
	}
	raw := string(line[payloadStart : payloadStart+idx])
	block.Advance(payloadStart + idx + len(directiveClose))
	return p.build(raw)
}

// blockDirectiveParser recognizes `{{Name ...}}` constructs whose payload may
// span multiple lines. Lines accumulate into the node until a line containing
// the terminator closes the block; at end of input an unterminated node keeps
// its partial payload.
type blockDirectiveParser struct {
	name []byte
	open func() directiveBlock
}

func newBlockDirectiveParser(name string, open func() directiveBlock) parser.BlockParser {
	return &blockDirectiveParser{name: []byte(name), open: open}
}

func (p *blockDirectiveParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *blockDirectiveParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || line[pos] != '{' {
		return nil, parser.NoChildren
	}
	payloadStart, ok := matchDirectiveMarker(line[pos:], p.name)
	if !ok {
		return nil, parser.NoChildren
	}
	node := p.open()
	d := node.blockDirective()
	rest := trimLineEnding(line[pos+payloadStart:])
	if idx := bytes.Index(rest, directiveClose); idx >= 0 {
		d.appendRawLine(rest[:idx])
		d.closed = true
	} else {
		d.appendRawLine(rest)
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *blockDirectiveParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	d := node.(directiveBlock).blockDirective()
	if d.closed {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	trimmed := trimLineEnding(line)
	if idx := bytes.Index(trimmed, directiveClose); idx >= 0 {
		d.appendRawLine(trimmed[:idx])
		d.closed = true
		reader.Advance(segment.Len() - 1)
		return parser.Close
	}
	d.appendRawLine(trimmed)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *blockDirectiveParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	node.(directiveBlock).blockDirective().finalize()

	// Derive per-directive lookup fields now that Raw and Attrs are final.
	switch n := node.(type) {
	case *HeaderImage:
		arg, _ := SplitLeadingArgument(n.Raw)
		if arg == "" {
			arg, _ = n.Attrs.Get("file")
		}
		n.SlugRef = StripFilePrefix(arg)
	case *PublicationInfobox:
		if cover, ok := n.Attrs.Get("cover"); ok {
			n.CoverSlug = StripFilePrefix(cover)
		}
	case *CoverGrid:
		captions := n.Attrs.Values("caption")
		for i, cover := range n.Attrs.Values("cover") {
			entry := &CoverEntry{SlugRef: StripFilePrefix(cover)}
			if i < len(captions) {
				entry.Caption = captions[i]
			}
			n.Covers = append(n.Covers, entry)
		}
	case *DownloadsBox:
		for _, h := range n.Attrs.Values("hash") {
			hash := strings.ToLower(strings.TrimSpace(h))
			if hash == "" {
				continue
			}
			n.Entries = append(n.Entries, &DownloadEntry{Hash: hash})
		}
	}
}

func (p *blockDirectiveParser) CanInterruptParagraph() bool {
	return true
}

func (p *blockDirectiveParser) CanAcceptIndentedLine() bool {
	return false
}

func trimLineEnding(line []byte) []byte {
	return bytes.TrimRight(line, "\r\n")
}
