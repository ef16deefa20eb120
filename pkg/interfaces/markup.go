package interfaces

import (
	"context"
	"time"
)

// Well-known document metadata keys exposed to the calling page layer.
const (
	MetaHeaderImageURL       = "header_image_url"
	MetaShortDescriptionText = "short_description_text"
)

// RenderOptions carries per-render settings. SiteID and Culture scope the
// external lookups performed by the enrichment pass; Diagnostics enables
// HTML comment annotations on placeholder output.
type RenderOptions struct {
	SiteID      string
	Culture     string
	Diagnostics bool
	// SkipNormalize bypasses the output whitespace normalizer. Intended for
	// tests and tooling that inspect the raw renderer output.
	SkipNormalize bool
}

// RenderResult is the outcome of a full pipeline run: the normalized HTML
// plus the document metadata map accumulated by the directive passes.
type RenderResult struct {
	HTML []byte
	Meta map[string]string
	// Categories lists the category names collected from the document in
	// authored order, deduplicated case-insensitively.
	Categories []string
}

// HeaderImageURL returns the resolved header image URL, if any directive
// produced one.
func (r *RenderResult) HeaderImageURL() string {
	if r == nil {
		return ""
	}
	return r.Meta[MetaHeaderImageURL]
}

// ShortDescription returns the short description text, if any.
func (r *RenderResult) ShortDescription() string {
	if r == nil {
		return ""
	}
	return r.Meta[MetaShortDescriptionText]
}

// MarkupService renders wiki source (Markdown plus {{Directive}} markup)
// into normalized HTML.
type MarkupService interface {
	Render(ctx context.Context, source []byte, opts RenderOptions) (*RenderResult, error)
}

// WikiDocument is a wiki source file loaded from disk, with its frontmatter
// split from the body.
type WikiDocument struct {
	FilePath     string
	Title        string
	Slug         string
	Description  string
	Tags         []string
	Custom       map[string]any
	Body         []byte
	LastModified time.Time
}
