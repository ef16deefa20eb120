package markup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-wiki/internal/runtimeconfig"
	"github.com/goliatone/go-wiki/pkg/interfaces"
	"github.com/goliatone/go-wiki/pkg/testsupport"
)

func newTestPipeline(resolvers interfaces.ResolverSet) *Pipeline {
	return NewPipeline(runtimeconfig.DefaultConfig(), resolvers)
}

func renderHTML(t *testing.T, p *Pipeline, source string) (*interfaces.RenderResult, string) {
	t.Helper()
	result, err := p.Render(context.Background(), []byte(source), interfaces.RenderOptions{SkipNormalize: true})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return result, string(result.HTML)
}

func TestRenderShortDescriptionFeedsMetadata(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	result, html := renderHTML(t, p, "{{ShortDescription A compact history of analytical engines}}\n\nBody text.\n")

	if got := result.ShortDescription(); got != "A compact history of analytical engines" {
		t.Fatalf("unexpected short description: %q", got)
	}
	if strings.Contains(html, "ShortDescription") {
		t.Fatalf("directive leaked into output: %s", html)
	}
	if !strings.Contains(html, "Body text.") {
		t.Fatalf("body text missing from output: %s", html)
	}
}

func TestRenderShortDescriptionFirstWins(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	result, _ := renderHTML(t, p, "{{ShortDescription First}}\n\n{{ShortDescription Second}}\n")

	if got := result.ShortDescription(); got != "First" {
		t.Fatalf("expected first directive to win, got %q", got)
	}
}

func TestRenderUnterminatedInlineDirectiveFallsBack(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	_, html := renderHTML(t, p, "See {{Citation unterminated reference\nnext line.\n")

	if !strings.Contains(html, "{{Citation unterminated reference") {
		t.Fatalf("unterminated directive should render literally, got: %s", html)
	}
}

func TestRenderDuplicateCitationsShareNumber(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "First claim.{{Citation Smith 2020}}\n\n" +
		"Second claim.{{Citation Smith 2020}}\n\n" +
		"Third claim.{{Citation Jones 2021}}\n\n" +
		"{{Citations}}\n"

	_, html := renderHTML(t, p, source)

	if got := strings.Count(html, ">[1]</a>"); got != 2 {
		t.Fatalf("expected duplicate citation marks to share number 1 twice, got %d in: %s", got, html)
	}
	if got := strings.Count(html, ">[2]</a>"); got != 1 {
		t.Fatalf("expected one mark numbered 2, got %d", got)
	}
	if !strings.Contains(html, `id="cite_ref-1-1"`) || !strings.Contains(html, `id="cite_ref-1-2"`) {
		t.Fatalf("duplicate marks must keep distinct anchors: %s", html)
	}
	if got := strings.Count(html, `id="cite_note-1"`); got != 1 {
		t.Fatalf("expected one aggregated entry for number 1, got %d", got)
	}
	if !strings.Contains(html, `<ol class="wiki-citations">`) {
		t.Fatalf("citation list missing: %s", html)
	}
}

func TestRenderCitationAndFootnoteFamiliesNumberIndependently(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "Claim.{{Citation Smith 2020}} Note.{{Footnote See appendix}}\n\n" +
		"{{Citations}}\n\n{{Footnotes}}\n"

	_, html := renderHTML(t, p, source)

	if !strings.Contains(html, `id="cite_ref-1-1"`) {
		t.Fatalf("citation family did not start at 1: %s", html)
	}
	if !strings.Contains(html, `id="fn_ref-1-1"`) {
		t.Fatalf("footnote family did not start at 1: %s", html)
	}
	if !strings.Contains(html, `id="fn_note-1"`) {
		t.Fatalf("footnote list entry missing: %s", html)
	}
}

func TestRenderEmptyAggregatorEmitsNothing(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	_, html := renderHTML(t, p, "No references here.\n\n{{Citations}}\n\n{{Footnotes}}\n")

	if strings.Contains(html, "wiki-citations") || strings.Contains(html, "wiki-footnotes") {
		t.Fatalf("empty aggregators must suppress their container: %s", html)
	}
}

func TestRenderCategoriesDeduplicateCaseInsensitively(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "{{Category Science}}{{Category science}}{{Category History}}\n\n{{Categories}}\n"

	result, html := renderHTML(t, p, source)

	want := []string{"Science", "History"}
	if len(result.Categories) != len(want) {
		t.Fatalf("unexpected categories: %v", result.Categories)
	}
	for i, name := range want {
		if result.Categories[i] != name {
			t.Fatalf("category order wrong at %d: %v", i, result.Categories)
		}
	}
	if got := strings.Count(html, "<li>"); got != 2 {
		t.Fatalf("expected 2 category entries, got %d: %s", got, html)
	}
}

func TestRenderCategoryMarkerBoundary(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	// "{{Categories}}" must hit the aggregator block, never the singular
	// Category inline parser.
	result, html := renderHTML(t, p, "{{Categories}}\n")

	if len(result.Categories) != 0 {
		t.Fatalf("aggregator alone must not create categories: %v", result.Categories)
	}
	if strings.Contains(html, "wiki-categories") {
		t.Fatalf("empty category list should emit nothing: %s", html)
	}
}

func TestRenderMissingImageUsesPlaceholder(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	_, html := renderHTML(t, p, "Look: {{Image File:Nope.jpg}}\n")

	if !strings.Contains(html, "/static/images/file-missing.svg") {
		t.Fatalf("placeholder image missing: %s", html)
	}
	if !strings.Contains(html, "wiki-missing") {
		t.Fatalf("missing marker class absent: %s", html)
	}
}

func TestRenderDiagnosticsAnnotatesPlaceholders(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	result, err := p.Render(context.Background(), []byte("{{Image File:Nope.jpg}}\n"), interfaces.RenderOptions{
		Diagnostics:   true,
		SkipNormalize: true,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(string(result.HTML), "<!-- wiki: unresolved image") {
		t.Fatalf("diagnostic comment missing: %s", result.HTML)
	}
}

func TestRenderPullQuote(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "{{PullQuote quote=The machine was ahead of its time.|#|source=Menabrea}}\n"

	_, html := renderHTML(t, p, source)

	if !strings.Contains(html, `<blockquote class="wiki-pull-quote">`) {
		t.Fatalf("pull quote block missing: %s", html)
	}
	if !strings.Contains(html, "The machine was ahead of its time.") {
		t.Fatalf("quote text missing: %s", html)
	}
	if !strings.Contains(html, "<footer>Menabrea</footer>") {
		t.Fatalf("source footer missing: %s", html)
	}
}

func TestRenderInfoboxRowsKeepAuthoredOrder(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "{{PublicationIssueInfobox title=Issue 12|#|publisher=Acme Press|#|year=1987|#|pages=64}}\n"

	_, html := renderHTML(t, p, source)

	if !strings.Contains(html, "<h3>Issue 12</h3>") {
		t.Fatalf("infobox title missing: %s", html)
	}
	publisher := strings.Index(html, "<th>publisher</th>")
	year := strings.Index(html, "<th>year</th>")
	pages := strings.Index(html, "<th>pages</th>")
	if publisher < 0 || year < 0 || pages < 0 || !(publisher < year && year < pages) {
		t.Fatalf("infobox rows out of authored order: %s", html)
	}
}

func TestRenderMultilineBlockDirective(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "{{PublicationIssueInfobox title=Issue 12\n|#|publisher=Acme Press\n|#|year=1987}}\n"

	_, html := renderHTML(t, p, source)

	if !strings.Contains(html, "<th>publisher</th>") || !strings.Contains(html, "<td>Acme Press</td>") {
		t.Fatalf("multiline payload not captured: %s", html)
	}
}

func TestRenderContextCancellation(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Render(ctx, []byte("text"), interfaces.RenderOptions{}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestRenderConcurrentStateIsolation(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := fmt.Sprintf("Topic%d", i)
			source := fmt.Sprintf("{{Category %s}}{{Citation Ref %d}}\n\n{{Citations}}\n", tag, i)
			result, err := p.Render(context.Background(), []byte(source), interfaces.RenderOptions{SkipNormalize: true})
			if err != nil {
				errs <- err
				return
			}
			if len(result.Categories) != 1 || result.Categories[0] != tag {
				errs <- fmt.Errorf("render %d saw foreign categories: %v", i, result.Categories)
				return
			}
			html := string(result.HTML)
			if !strings.Contains(html, `id="cite_ref-1-1"`) {
				errs <- fmt.Errorf("render %d numbering leaked: %s", i, html)
				return
			}
			if strings.Count(html, "<li") != 1 {
				errs <- fmt.Errorf("render %d saw foreign citations: %s", i, html)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestRenderFixtureDocument(t *testing.T) {
	source, err := testsupport.LoadFixture(filepath.Join("testdata", "issue.md"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	doc, err := ParseDocument(source)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if doc.Title != "Issue 12" {
		t.Fatalf("fixture frontmatter wrong: %+v", doc)
	}

	p := newTestPipeline(interfaces.ResolverSet{})
	result, err := p.Render(context.Background(), doc.Body, interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := result.ShortDescription(); got != "The winter issue, restored from scans" {
		t.Fatalf("short description wrong: %q", got)
	}
	if len(result.Categories) != 2 {
		t.Fatalf("categories wrong: %v", result.Categories)
	}

	html := string(result.HTML)
	for _, fragment := range []string{
		"wiki-header-image",
		"wiki-pull-quote",
		"wiki-infobox",
		"wiki-downloads",
		`id="cite_note-1"`,
		"wiki-categories",
	} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, html)
		}
	}
	// Both citation marks share the single ledger entry.
	if got := strings.Count(html, `id="cite_note-`); got != 1 {
		t.Fatalf("expected one citation entry, got %d", got)
	}
}

func TestRenderNormalizedOutputIsStable(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "# Title\n\nSome   spaced    text.\n"
	first, err := p.Render(context.Background(), []byte(source), interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	second, err := p.Render(context.Background(), []byte(source), interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if string(first.HTML) != string(second.HTML) {
		t.Fatalf("normalized output unstable:\n%s\nvs\n%s", first.HTML, second.HTML)
	}
	if strings.Contains(string(first.HTML), "spaced    text") {
		t.Fatalf("whitespace not collapsed: %s", first.HTML)
	}
}

func TestRenderInlineCitationsAggregator(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "Intro {{Citation source=Menabrea 1842}} text {{Citation source=Menabrea 1842}} more {{Citations}}\n"

	_, html := renderHTML(t, p, source)

	if strings.Contains(html, "{{Citations}}") {
		t.Fatalf("mid-line aggregator leaked literally: %s", html)
	}
	if !strings.Contains(html, `id="cite_ref-1-1"`) || !strings.Contains(html, `id="cite_ref-1-2"`) {
		t.Fatalf("occurrence anchors missing: %s", html)
	}
	if got := strings.Count(html, `id="cite_note-1"`); got != 1 {
		t.Fatalf("expected one aggregator entry, got %d: %s", got, html)
	}
	if !strings.Contains(html, "wiki-citations") {
		t.Fatalf("aggregator list missing: %s", html)
	}
}

func TestRenderInlineFootnotesAndCategoriesAggregators(t *testing.T) {
	p := newTestPipeline(interfaces.ResolverSet{})

	source := "Text {{Footnote First noted in 1843}} and {{Category Science}} end {{Footnotes}} then {{Categories}}\n"

	result, html := renderHTML(t, p, source)

	if strings.Contains(html, "{{Footnotes}}") || strings.Contains(html, "{{Categories}}") {
		t.Fatalf("mid-line aggregators leaked literally: %s", html)
	}
	if !strings.Contains(html, `id="fn_note-1"`) {
		t.Fatalf("footnote aggregator entry missing: %s", html)
	}
	if !strings.Contains(html, "wiki-categories") {
		t.Fatalf("category list missing: %s", html)
	}
	if len(result.Categories) != 1 || result.Categories[0] != "Science" {
		t.Fatalf("unexpected categories: %v", result.Categories)
	}
}

func TestRenderStructLiteralConfigKeepsNormalizer(t *testing.T) {
	p := NewPipeline(runtimeconfig.Config{}, interfaces.ResolverSet{})

	result, err := p.Render(context.Background(), []byte("# Title\n\nSome   spaced    text.\n"), interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := string(result.HTML)
	if strings.Contains(html, "spaced    text") {
		t.Fatalf("normalizer skipped under zero-value config: %s", html)
	}
	if !strings.HasSuffix(html, "\n") {
		t.Fatalf("normalized output missing trailing newline: %q", html)
	}
}
