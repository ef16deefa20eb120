package markup

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-wiki/internal/htmlfmt"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// renderState is the per-render arena shared by the directive parsers, the
// enrichment and cross-reference passes, and the renderers. It is owned by a
// single Render call and never outlives it.
type renderState struct {
	opts             interfaces.RenderOptions
	meta             map[string]string
	categories       []string
	categorySeen     map[string]struct{}
	links            *LinkBuilder
	placeholderImage string
	placeholderTitle string
	logger           interfaces.Logger
}

func newRenderState(opts interfaces.RenderOptions, links *LinkBuilder, render runtimeconfig.RenderConfig, logger interfaces.Logger) *renderState {
	return &renderState{
		opts:             opts,
		meta:             map[string]string{},
		categorySeen:     map[string]struct{}{},
		links:            links,
		placeholderImage: render.PlaceholderImage,
		placeholderTitle: render.PlaceholderTitle,
		logger:           logger,
	}
}

// setMetaFirstWins records a metadata value unless an earlier directive
// already claimed the key.
func (s *renderState) setMetaFirstWins(key, value string) {
	if value == "" {
		return
	}
	if _, exists := s.meta[key]; exists {
		return
	}
	s.meta[key] = value
}

func (s *renderState) addCategory(name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	canonical := strings.ToLower(trimmed)
	if _, seen := s.categorySeen[canonical]; seen {
		return
	}
	s.categorySeen[canonical] = struct{}{}
	s.categories = append(s.categories, trimmed)
}

// Pipeline renders wiki source through the full pass sequence:
// parse, enrich, renumber, render, normalize. A Pipeline is safe for
// concurrent use; all mutable per-document state lives in a fresh
// renderState owned by each Render call.
type Pipeline struct {
	cfg       runtimeconfig.Config
	resolvers interfaces.ResolverSet
	links     *LinkBuilder
	logger    interfaces.Logger
	formatter *htmlfmt.Formatter
}

// PipelineOption configures optional collaborators.
type PipelineOption func(*Pipeline)

// WithLogger overrides the pipeline logger.
func WithLogger(logger interfaces.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLinkBuilder overrides URL construction for article and file links.
func WithLinkBuilder(links *LinkBuilder) PipelineOption {
	return func(p *Pipeline) {
		if links != nil {
			p.links = links
		}
	}
}

// NewPipeline constructs a render pipeline bound to the supplied resolver
// set. Any resolver may be nil; the enrichment pass then marks every
// reference of that kind missing.
func NewPipeline(cfg runtimeconfig.Config, resolvers interfaces.ResolverSet, opts ...PipelineOption) *Pipeline {
	cfg = cfg.Normalize()
	p := &Pipeline{
		cfg:       cfg,
		resolvers: resolvers,
		links:     NewLinkBuilder(cfg.Links, nil),
		logger:    logging.NoOp(),
		formatter: htmlfmt.NewFormatter(htmlfmt.Options{Indent: cfg.Render.Indent}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ interfaces.MarkupService = (*Pipeline)(nil)

// Render runs the full pipeline over source. The passes are strictly
// sequential; only the enrichment pass performs I/O. Cancellation is checked
// at pass boundaries since there are no external writes to roll back.
func (p *Pipeline) Render(ctx context.Context, source []byte, opts interfaces.RenderOptions) (*interfaces.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(opts.SiteID) == "" {
		opts.SiteID = p.cfg.SiteID
	}
	if strings.TrimSpace(opts.Culture) == "" {
		opts.Culture = p.cfg.DefaultCulture
	}
	if p.cfg.Render.Diagnostics {
		opts.Diagnostics = true
	}

	state := newRenderState(opts, p.links, p.cfg.Render, p.logger)

	// The engine is built per call so the directive set closes over this
	// render's state only.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, newDirectiveSet(state)),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	doc := md.Parser().Parse(text.NewReader(source))

	enricher := newEnricher(p.resolvers, p.logger)
	if err := enricher.Enrich(ctx, doc, state); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reprocess(doc, state)

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("markup render: %w", err)
	}

	out := buf.Bytes()
	if !p.cfg.Render.DisableNormalize && !opts.SkipNormalize {
		formatted, err := p.formatter.Format(out)
		if err != nil {
			p.logger.Warn("markup.normalize_failed", "error", err)
		} else {
			out = formatted
		}
	}

	return &interfaces.RenderResult{
		HTML:       out,
		Meta:       state.meta,
		Categories: state.categories,
	}, nil
}
