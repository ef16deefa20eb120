package markup

import (
	"net/url"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-wiki/internal/runtimeconfig"
)

// LinkBuilder produces site-relative URLs for article and file references
// emitted by the directive renderers. When a go-urlkit route manager is
// configured the named routes are used; otherwise URLs fall back to simple
// base-path joins so rendering never depends on router availability.
type LinkBuilder struct {
	manager *urlkit.RouteManager

	group        string
	articleRoute string
	fileRoute    string
	slugParam    string
	fileParam    string

	articleBase string
	fileBase    string
}

// NewLinkBuilder constructs a builder from the links configuration. manager
// may be nil.
func NewLinkBuilder(cfg runtimeconfig.LinksConfig, manager *urlkit.RouteManager) *LinkBuilder {
	slugParam := strings.TrimSpace(cfg.URLKit.SlugParam)
	if slugParam == "" {
		slugParam = "slug"
	}
	fileParam := strings.TrimSpace(cfg.URLKit.FileParam)
	if fileParam == "" {
		fileParam = "filename"
	}
	return &LinkBuilder{
		manager:      manager,
		group:        strings.TrimSpace(cfg.URLKit.Group),
		articleRoute: strings.TrimSpace(cfg.URLKit.ArticleRoute),
		fileRoute:    strings.TrimSpace(cfg.URLKit.FileRoute),
		slugParam:    slugParam,
		fileParam:    fileParam,
		articleBase:  strings.TrimRight(cfg.ArticleBasePath, "/"),
		fileBase:     strings.TrimRight(cfg.FileBasePath, "/"),
	}
}

// ArticleURL builds the link target for an article slug.
func (b *LinkBuilder) ArticleURL(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return b.articleBase + "/"
	}
	if built, ok := b.buildRoute(b.articleRoute, b.slugParam, slug); ok {
		return built
	}
	return b.articleBase + "/" + url.PathEscape(slug)
}

// FileURL builds the link target for a stored file.
func (b *LinkBuilder) FileURL(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	if built, ok := b.buildRoute(b.fileRoute, b.fileParam, filename); ok {
		return built
	}
	return b.fileBase + "/" + url.PathEscape(filename)
}

func (b *LinkBuilder) buildRoute(route, param, value string) (built string, ok bool) {
	if b == nil || b.manager == nil || b.group == "" || route == "" {
		return "", false
	}
	defer func() {
		// urlkit panics on unknown groups and routes; fall back to path joins.
		if rec := recover(); rec != nil {
			built, ok = "", false
		}
	}()
	target, err := b.manager.Group(b.group).Builder(route).WithParam(param, value).Build()
	if err != nil {
		return "", false
	}
	return target, true
}
