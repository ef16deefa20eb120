package markup

import (
	"context"
	"sync"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// slugTarget pairs one normalized slug with the resolution cache it feeds.
type slugTarget struct {
	slug string
	res  *Resolution
}

// enricher eliminates per-node I/O by batching every external lookup per
// directive kind: one article query for the whole slug set, at most one file
// query for the canonical file ids referenced by the resolved articles, and
// one download query for the whole hash set.
type enricher struct {
	resolvers interfaces.ResolverSet
	logger    interfaces.Logger
}

func newEnricher(resolvers interfaces.ResolverSet, logger interfaces.Logger) *enricher {
	return &enricher{resolvers: resolvers, logger: logger}
}

// Enrich walks the document once to collect unresolved directive nodes,
// issues the batched lookups, and writes each node's cache exactly once.
// Resolver failures degrade the affected nodes to missing placeholders
// rather than failing the render; only context cancellation is returned.
func (e *enricher) Enrich(ctx context.Context, doc ast.Node, state *renderState) error {
	targets, headers, downloads := collectEnrichment(doc)
	if len(targets) == 0 && len(downloads) == 0 {
		return nil
	}

	slugs := make([]string, 0, len(targets))
	slugSeen := map[string]struct{}{}
	for _, target := range targets {
		if target.slug == "" {
			continue
		}
		if _, seen := slugSeen[target.slug]; seen {
			continue
		}
		slugSeen[target.slug] = struct{}{}
		slugs = append(slugs, target.slug)
	}

	hashes := make([]string, 0)
	hashSeen := map[string]struct{}{}
	for _, box := range downloads {
		for _, entry := range box.Entries {
			if _, seen := hashSeen[entry.Hash]; seen {
				continue
			}
			hashSeen[entry.Hash] = struct{}{}
			hashes = append(hashes, entry.Hash)
		}
	}

	// The two lookup chains are read-only and mutually independent, so they
	// run concurrently and join before any node cache is written.
	var (
		wg             sync.WaitGroup
		articlesBySlug map[string]interfaces.ArticleSummary
		filesByID      map[string]interfaces.FileSummary
		recordsByHash  map[string]interfaces.DownloadRecord
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		articlesBySlug, filesByID = e.resolveArticleChain(ctx, state, slugs)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		recordsByHash = e.resolveDownloads(ctx, state, hashes)
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, target := range targets {
		article, ok := articlesBySlug[target.slug]
		if !ok {
			target.res.set(ResolutionMissing, nil, nil)
			continue
		}
		file, ok := filesByID[article.CanonicalFileID]
		if !ok {
			target.res.set(ResolutionMissing, &article, nil)
			continue
		}
		target.res.set(ResolutionResolved, &article, &file)
	}

	for _, box := range downloads {
		for _, entry := range box.Entries {
			if record, ok := recordsByHash[entry.Hash]; ok {
				entry.State = ResolutionResolved
				entry.Record = &record
				continue
			}
			entry.State = ResolutionMissing
		}
	}

	// The first resolved header image feeds document metadata; later
	// occurrences never overwrite it.
	for _, header := range headers {
		if header.Resolution.State != ResolutionResolved || header.Resolution.File == nil {
			continue
		}
		state.setMetaFirstWins(interfaces.MetaHeaderImageURL, state.links.FileURL(header.Resolution.File.Filename))
		break
	}

	return nil
}

// collectEnrichment gathers every node with pending external references in a
// single traversal, preserving document order.
func collectEnrichment(doc ast.Node) (targets []*slugTarget, headers []*HeaderImage, downloads []*DownloadsBox) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *InlineImage:
			if node.Resolution.State == ResolutionUnresolved {
				targets = append(targets, &slugTarget{slug: NormalizeSlug(node.SlugRef), res: &node.Resolution})
			}
		case *HeaderImage:
			if node.Resolution.State == ResolutionUnresolved {
				targets = append(targets, &slugTarget{slug: NormalizeSlug(node.SlugRef), res: &node.Resolution})
			}
			headers = append(headers, node)
		case *PublicationInfobox:
			if node.Resolution.State == ResolutionUnresolved {
				targets = append(targets, &slugTarget{slug: NormalizeSlug(node.CoverSlug), res: &node.Resolution})
			}
		case *CoverGrid:
			for _, cover := range node.Covers {
				if cover.Resolution.State == ResolutionUnresolved {
					targets = append(targets, &slugTarget{slug: NormalizeSlug(cover.SlugRef), res: &cover.Resolution})
				}
			}
		case *DownloadsBox:
			downloads = append(downloads, node)
		}
		return ast.WalkContinue, nil
	})
	return targets, headers, downloads
}

func (e *enricher) resolveArticleChain(ctx context.Context, state *renderState, slugs []string) (map[string]interfaces.ArticleSummary, map[string]interfaces.FileSummary) {
	articlesBySlug := map[string]interfaces.ArticleSummary{}
	filesByID := map[string]interfaces.FileSummary{}

	if len(slugs) == 0 || e.resolvers.Articles == nil {
		return articlesBySlug, filesByID
	}

	articles, err := e.resolvers.Articles.ResolveCurrentBySlugSet(ctx, state.opts.SiteID, state.opts.Culture, slugs)
	if err != nil {
		e.logger.Error("markup.enrich.articles_failed", "site_id", state.opts.SiteID, "slugs", len(slugs), "error", err)
		return articlesBySlug, filesByID
	}

	fileIDs := make([]string, 0, len(articles))
	fileSeen := map[string]struct{}{}
	for _, article := range articles {
		articlesBySlug[article.Slug] = article
		if article.CanonicalFileID == "" {
			continue
		}
		if _, seen := fileSeen[article.CanonicalFileID]; seen {
			continue
		}
		fileSeen[article.CanonicalFileID] = struct{}{}
		fileIDs = append(fileIDs, article.CanonicalFileID)
	}

	if len(fileIDs) == 0 || e.resolvers.Files == nil {
		return articlesBySlug, filesByID
	}

	files, err := e.resolvers.Files.ResolveCurrentFileBySet(ctx, fileIDs)
	if err != nil {
		e.logger.Error("markup.enrich.files_failed", "file_ids", len(fileIDs), "error", err)
		return articlesBySlug, filesByID
	}
	for _, file := range files {
		filesByID[file.ID] = file
	}
	return articlesBySlug, filesByID
}

func (e *enricher) resolveDownloads(ctx context.Context, state *renderState, hashes []string) map[string]interfaces.DownloadRecord {
	recordsByHash := map[string]interfaces.DownloadRecord{}
	if len(hashes) == 0 || e.resolvers.Downloads == nil {
		return recordsByHash
	}
	records, err := e.resolvers.Downloads.ResolveDownloadsByHashSet(ctx, state.opts.SiteID, hashes)
	if err != nil {
		e.logger.Error("markup.enrich.downloads_failed", "site_id", state.opts.SiteID, "hashes", len(hashes), "error", err)
		return recordsByHash
	}
	for _, record := range records {
		recordsByHash[record.Hash] = record
	}
	return recordsByHash
}
