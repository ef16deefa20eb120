package markup

import (
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-wiki/internal/runtimeconfig"
)

func TestLinkBuilderBasePathFallback(t *testing.T) {
	links := NewLinkBuilder(runtimeconfig.LinksConfig{
		ArticleBasePath: "/wiki",
		FileBasePath:    "/files",
	}, nil)

	if got := links.ArticleURL("issue-12"); got != "/wiki/issue-12" {
		t.Fatalf("unexpected article url: %q", got)
	}
	if got := links.FileURL("cover image.jpg"); got != "/files/cover%20image.jpg" {
		t.Fatalf("unexpected file url: %q", got)
	}
	if got := links.FileURL(""); got != "" {
		t.Fatalf("empty filename must produce empty url: %q", got)
	}
}

func TestLinkBuilderUsesRouteManager(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "wiki",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"article": "/w/:slug",
					"file":    "/media/:filename",
				},
			},
		},
	})

	links := NewLinkBuilder(runtimeconfig.LinksConfig{
		ArticleBasePath: "/wiki",
		FileBasePath:    "/files",
		URLKit: runtimeconfig.URLKitLinksConfig{
			Group:        "wiki",
			ArticleRoute: "article",
			FileRoute:    "file",
		},
	}, manager)

	if got := links.ArticleURL("issue-12"); got != "https://example.com/w/issue-12" {
		t.Fatalf("route manager not used for articles: %q", got)
	}
	if got := links.FileURL("cover.jpg"); got != "https://example.com/media/cover.jpg" {
		t.Fatalf("route manager not used for files: %q", got)
	}
}

func TestLinkBuilderUnknownRouteFallsBack(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{Name: "wiki", BaseURL: "https://example.com", Paths: map[string]string{}},
		},
	})

	links := NewLinkBuilder(runtimeconfig.LinksConfig{
		ArticleBasePath: "/wiki",
		FileBasePath:    "/files",
		URLKit: runtimeconfig.URLKitLinksConfig{
			Group:        "wiki",
			ArticleRoute: "nope",
		},
	}, manager)

	if got := links.ArticleURL("issue-12"); got != "/wiki/issue-12" {
		t.Fatalf("unknown route must fall back to base path: %q", got)
	}
}
