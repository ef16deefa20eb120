package interfaces

import "context"

// ArticleSummary is the read-only projection of an article revision used by
// the enrichment pass. CanonicalFileID is empty when the article has no
// associated media file.
type ArticleSummary struct {
	Slug            string
	Title           string
	CanonicalFileID string
}

// FileSummary is the read-only projection of a stored media file.
type FileSummary struct {
	ID       string
	Filename string
}

// DownloadRecord describes a downloadable asset addressed by content hash.
type DownloadRecord struct {
	Hash     string
	Filename string
	Size     int64
	Quality  string
	URLs     []string
}

// ArticleResolver resolves the current revision of every article in a slug
// set with a single lookup. Unknown slugs are simply absent from the result;
// implementations must not treat them as errors.
type ArticleResolver interface {
	ResolveCurrentBySlugSet(ctx context.Context, siteID, culture string, slugs []string) ([]ArticleSummary, error)
}

// FileResolver resolves the current version of every file in an id set with
// a single lookup.
type FileResolver interface {
	ResolveCurrentFileBySet(ctx context.Context, fileIDs []string) ([]FileSummary, error)
}

// DownloadResolver resolves download records for a set of content hashes
// with a single lookup.
type DownloadResolver interface {
	ResolveDownloadsByHashSet(ctx context.Context, siteID string, hashes []string) ([]DownloadRecord, error)
}

// ResolverSet bundles the three lookup contracts consumed by the enrichment
// pass. Any member may be nil; the pipeline then treats every reference of
// that kind as missing.
type ResolverSet struct {
	Articles  ArticleResolver
	Files     FileResolver
	Downloads DownloadResolver
}
