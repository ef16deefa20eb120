package markup

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

type fakeArticleResolver struct {
	calls    int32
	lastSet  []string
	bySlug   map[string]interfaces.ArticleSummary
	failWith error
}

func (f *fakeArticleResolver) ResolveCurrentBySlugSet(ctx context.Context, siteID, culture string, slugs []string) ([]interfaces.ArticleSummary, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastSet = append([]string(nil), slugs...)
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]interfaces.ArticleSummary, 0, len(slugs))
	for _, slug := range slugs {
		if summary, ok := f.bySlug[slug]; ok {
			summary.Slug = slug
			out = append(out, summary)
		}
	}
	return out, nil
}

type fakeFileResolver struct {
	calls   int32
	lastSet []string
	byID    map[string]interfaces.FileSummary
}

func (f *fakeFileResolver) ResolveCurrentFileBySet(ctx context.Context, fileIDs []string) ([]interfaces.FileSummary, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastSet = append([]string(nil), fileIDs...)
	out := make([]interfaces.FileSummary, 0, len(fileIDs))
	for _, id := range fileIDs {
		if summary, ok := f.byID[id]; ok {
			out = append(out, summary)
		}
	}
	return out, nil
}

type fakeDownloadResolver struct {
	calls   int32
	lastSet []string
	byHash  map[string]interfaces.DownloadRecord
}

func (f *fakeDownloadResolver) ResolveDownloadsByHashSet(ctx context.Context, siteID string, hashes []string) ([]interfaces.DownloadRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastSet = append([]string(nil), hashes...)
	out := make([]interfaces.DownloadRecord, 0, len(hashes))
	for _, hash := range hashes {
		if record, ok := f.byHash[hash]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func TestEnrichBatchesAllLookups(t *testing.T) {
	coverSlug := NormalizeSlug("Cover.jpg")
	backSlug := NormalizeSlug("Back.jpg")

	articles := &fakeArticleResolver{bySlug: map[string]interfaces.ArticleSummary{
		coverSlug: {Title: "Cover scan", CanonicalFileID: "file-1"},
		backSlug:  {Title: "Back scan", CanonicalFileID: "file-2"},
	}}
	files := &fakeFileResolver{byID: map[string]interfaces.FileSummary{
		"file-1": {ID: "file-1", Filename: "cover.jpg"},
		"file-2": {ID: "file-2", Filename: "back.jpg"},
	}}
	downloads := &fakeDownloadResolver{byHash: map[string]interfaces.DownloadRecord{
		"abc123": {Hash: "abc123", Filename: "issue-12.cbz", Size: 1024, URLs: []string{"https://mirror.example/issue-12.cbz"}},
	}}

	p := newTestPipeline(interfaces.ResolverSet{Articles: articles, Files: files, Downloads: downloads})

	// Five slug references over two unique slugs, plus two hashes with one
	// repeat across directives.
	source := "{{HeaderImage File:Cover.jpg}}\n\n" +
		"Inline {{Image File:Cover.jpg}} and {{Image File:Back.jpg}} again {{Image File:Cover.jpg}}.\n\n" +
		"{{CoverGrid cover=File:Back.jpg|#|caption=Back cover}}\n\n" +
		"{{DownloadsBox hash=ABC123|#|hash=def456|#|hash=abc123}}\n"

	_, html := renderHTML(t, p, source)

	if got := atomic.LoadInt32(&articles.calls); got != 1 {
		t.Fatalf("expected exactly one article lookup, got %d", got)
	}
	if got := atomic.LoadInt32(&files.calls); got != 1 {
		t.Fatalf("expected exactly one file lookup, got %d", got)
	}
	if got := atomic.LoadInt32(&downloads.calls); got != 1 {
		t.Fatalf("expected exactly one download lookup, got %d", got)
	}

	if len(articles.lastSet) != 2 {
		t.Fatalf("slug set not deduplicated: %v", articles.lastSet)
	}
	if len(files.lastSet) != 2 {
		t.Fatalf("file id set not deduplicated: %v", files.lastSet)
	}
	if len(downloads.lastSet) != 2 {
		t.Fatalf("hash set not deduplicated case-insensitively: %v", downloads.lastSet)
	}

	if !strings.Contains(html, "/files/cover.jpg") || !strings.Contains(html, "/files/back.jpg") {
		t.Fatalf("resolved file links missing: %s", html)
	}
	if !strings.Contains(html, "issue-12.cbz") {
		t.Fatalf("resolved download missing: %s", html)
	}
	if !strings.Contains(html, `class="wiki-download-missing">def456<`) {
		t.Fatalf("unknown hash should render as missing entry: %s", html)
	}
}

func TestEnrichHeaderImageFeedsMetadata(t *testing.T) {
	coverSlug := NormalizeSlug("Cover.jpg")
	articles := &fakeArticleResolver{bySlug: map[string]interfaces.ArticleSummary{
		coverSlug: {Title: "Cover scan", CanonicalFileID: "file-1"},
	}}
	files := &fakeFileResolver{byID: map[string]interfaces.FileSummary{
		"file-1": {ID: "file-1", Filename: "cover.jpg"},
	}}

	p := newTestPipeline(interfaces.ResolverSet{Articles: articles, Files: files})

	result, _ := renderHTML(t, p, "{{HeaderImage File:Cover.jpg}}\n\n{{HeaderImage File:Other.jpg}}\n")

	if got := result.HeaderImageURL(); got != "/files/cover.jpg" {
		t.Fatalf("first resolved header image should feed metadata, got %q", got)
	}
}

func TestEnrichResolverErrorDegradesToMissing(t *testing.T) {
	articles := &fakeArticleResolver{failWith: errors.New("archive offline")}

	p := newTestPipeline(interfaces.ResolverSet{Articles: articles})

	result, err := p.Render(context.Background(), []byte("{{Image File:Cover.jpg}}\n"), interfaces.RenderOptions{SkipNormalize: true})
	if err != nil {
		t.Fatalf("resolver failure must not fail the render: %v", err)
	}
	if !strings.Contains(string(result.HTML), "wiki-missing") {
		t.Fatalf("expected placeholder on resolver failure: %s", result.HTML)
	}
}

func TestEnrichArticleWithoutCurrentFileIsMissing(t *testing.T) {
	coverSlug := NormalizeSlug("Cover.jpg")
	articles := &fakeArticleResolver{bySlug: map[string]interfaces.ArticleSummary{
		coverSlug: {Title: "Cover scan", CanonicalFileID: "file-gone"},
	}}
	files := &fakeFileResolver{byID: map[string]interfaces.FileSummary{}}

	p := newTestPipeline(interfaces.ResolverSet{Articles: articles, Files: files})

	_, html := renderHTML(t, p, "{{Image File:Cover.jpg}}\n")

	if !strings.Contains(html, "wiki-missing") {
		t.Fatalf("article without current file must render placeholder: %s", html)
	}
}

func TestEnrichNilResolversRenderPlaceholders(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	_, html := renderHTML(t, p, "{{Image File:Cover.jpg}}\n\n{{DownloadsBox hash=abc123}}\n")

	if !strings.Contains(html, "wiki-missing") {
		t.Fatalf("nil resolvers must degrade images to placeholders: %s", html)
	}
	if !strings.Contains(html, "wiki-download-missing") {
		t.Fatalf("nil resolvers must degrade downloads to missing entries: %s", html)
	}
}
