package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	goslug "github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-wiki/internal/identity"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Open creates a bun database handle from storage configuration. The zero
// driver defaults to sqlite3 with an in-memory database, which keeps tests
// and preview tooling dependency free.
func Open(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// Store implements the three resolver contracts over bun repositories. All
// resolver lookups are single batched queries; per-item fetching is never
// performed regardless of set size.
type Store struct {
	db        *bun.DB
	articles  repository.Repository[*Article]
	files     repository.Repository[*File]
	downloads repository.Repository[*Download]
	logger    interfaces.Logger
}

type StoreOption func(*Store)

// WithCache wraps every repository in the read-through cache layer.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) StoreOption {
	return func(s *Store) {
		if service == nil || serializer == nil {
			return
		}
		s.articles = repositorycache.New(s.articles, service, serializer)
		s.files = repositorycache.New(s.files, service, serializer)
		s.downloads = repositorycache.New(s.downloads, service, serializer)
	}
}

func WithStoreLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(db *bun.DB, opts ...StoreOption) (*Store, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	store := &Store{
		db:        db,
		articles:  NewArticleRepository(db),
		files:     NewFileRepository(db),
		downloads: NewDownloadRepository(db),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Migrate creates the archive tables and lookup indexes when absent.
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{(*Article)(nil), (*File)(nil), (*Download)(nil)}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("archive: create table: %w", err)
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{"idx_wiki_articles_lookup", (*Article)(nil), []string{"site_id", "culture", "slug", "is_current"}},
		{"idx_wiki_files_current", (*File)(nil), []string{"id", "is_current"}},
		{"idx_wiki_downloads_lookup", (*Download)(nil), []string{"site_id", "hash", "is_current"}},
	}
	for _, idx := range indexes {
		if _, err := s.db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("archive: create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// ResolveCurrentBySlugSet returns the current revision of every known slug
// with one query. Slugs are normalized before matching so resolver keys
// line up with the markup layer's normalized references.
func (s *Store) ResolveCurrentBySlugSet(ctx context.Context, siteID, culture string, slugs []string) ([]interfaces.ArticleSummary, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(slugs))
	for _, raw := range slugs {
		if cleaned := normalizeSlug(raw); cleaned != "" {
			normalized = append(normalized, cleaned)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	records, _, err := s.articles.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.site_id = ?", siteID).
				Where("?TableAlias.culture = ?", culture).
				Where("?TableAlias.slug IN (?)", bun.In(normalized)).
				Where("?TableAlias.is_current = TRUE")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve articles: %w", err)
	}
	s.logger.Debug("archive.resolve_articles", "requested", len(normalized), "found", len(records))

	summaries := make([]interfaces.ArticleSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, interfaces.ArticleSummary{
			Slug:            record.Slug,
			Title:           record.Title,
			CanonicalFileID: record.CanonicalFileID,
		})
	}
	return summaries, nil
}

// ResolveCurrentFileBySet returns the current version of every known file
// id with one query.
func (s *Store) ResolveCurrentFileBySet(ctx context.Context, fileIDs []string) ([]interfaces.FileSummary, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}

	records, _, err := s.files.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id IN (?)", bun.In(fileIDs)).
				Where("?TableAlias.is_current = TRUE")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve files: %w", err)
	}

	summaries := make([]interfaces.FileSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, interfaces.FileSummary{
			ID:       record.ID.String(),
			Filename: record.Filename,
		})
	}
	return summaries, nil
}

// ResolveDownloadsByHashSet returns download records for every known hash
// with one query. Hashes match case insensitively.
func (s *Store) ResolveDownloadsByHashSet(ctx context.Context, siteID string, hashes []string) ([]interfaces.DownloadRecord, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		if cleaned := strings.ToLower(strings.TrimSpace(hash)); cleaned != "" {
			lowered = append(lowered, cleaned)
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	records, _, err := s.downloads.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.site_id = ?", siteID).
				Where("?TableAlias.hash IN (?)", bun.In(lowered)).
				Where("?TableAlias.is_current = TRUE")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve downloads: %w", err)
	}

	results := make([]interfaces.DownloadRecord, 0, len(records))
	for _, record := range records {
		results = append(results, interfaces.DownloadRecord{
			Hash:     record.Hash,
			Filename: record.Filename,
			Size:     record.Size,
			Quality:  record.Quality,
			URLs:     append([]string(nil), record.URLs...),
		})
	}
	return results, nil
}

// ArticleInput is the write-side payload for SaveArticle.
type ArticleInput struct {
	SiteID          string
	Culture         string
	Slug            string
	Title           string
	CanonicalFileID string
}

// SaveArticle records a new current revision for the slug, demoting any
// previous current revision inside the same transaction. IDs are
// deterministic per site, culture, slug, and revision so repeated seeds of
// identical content are idempotent.
func (s *Store) SaveArticle(ctx context.Context, input ArticleInput) (*Article, error) {
	if strings.TrimSpace(input.SiteID) == "" {
		return nil, ErrSiteIDRequired
	}
	normalized := normalizeSlug(input.Slug)
	if normalized == "" {
		return nil, ErrSlugRequired
	}

	var created *Article
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current Article
		revision := 1
		err := tx.NewSelect().Model(&current).
			Where("?TableAlias.site_id = ?", input.SiteID).
			Where("?TableAlias.culture = ?", input.Culture).
			Where("?TableAlias.slug = ?", normalized).
			Where("?TableAlias.is_current = TRUE").
			Scan(ctx)
		switch {
		case err == nil:
			revision = current.Revision + 1
			if _, err := tx.NewUpdate().Model((*Article)(nil)).
				Set("is_current = FALSE").
				Set("updated_at = ?", time.Now().UTC()).
				Where("?TableAlias.id = ?", current.ID).
				Exec(ctx); err != nil {
				return err
			}
		case err == sql.ErrNoRows:
			// first revision for this slug
		default:
			return err
		}

		record := &Article{
			ID:              identity.ArticleUUID(input.SiteID, input.Culture, fmt.Sprintf("%s#%d", normalized, revision)),
			SiteID:          input.SiteID,
			Culture:         input.Culture,
			Slug:            normalized,
			Title:           input.Title,
			CanonicalFileID: input.CanonicalFileID,
			IsCurrent:       true,
			Revision:        revision,
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive: save article: %w", err)
	}
	return created, nil
}

// SaveFile upserts a media file record keyed by its deterministic id.
func (s *Store) SaveFile(ctx context.Context, file *File) (*File, error) {
	if file == nil || strings.TrimSpace(file.Filename) == "" {
		return nil, ErrFilenameRequired
	}
	if file.ID == uuid.Nil {
		file.ID = identity.FileUUID(file.Filename)
	}
	file.IsCurrent = true

	if _, err := s.db.NewInsert().Model(file).
		On("CONFLICT (id) DO UPDATE").
		Set("filename = EXCLUDED.filename").
		Set("mime_type = EXCLUDED.mime_type").
		Set("size = EXCLUDED.size").
		Set("is_current = EXCLUDED.is_current").
		Set("updated_at = ?", time.Now().UTC()).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("archive: save file: %w", err)
	}
	return file, nil
}

// SaveDownload upserts a download record keyed by site and hash.
func (s *Store) SaveDownload(ctx context.Context, dl *Download) (*Download, error) {
	if dl == nil || strings.TrimSpace(dl.Hash) == "" {
		return nil, ErrHashRequired
	}
	if strings.TrimSpace(dl.SiteID) == "" {
		return nil, ErrSiteIDRequired
	}
	dl.Hash = strings.ToLower(strings.TrimSpace(dl.Hash))
	if dl.ID == uuid.Nil {
		dl.ID = identity.DownloadUUID(dl.SiteID, dl.Hash)
	}
	dl.IsCurrent = true

	if _, err := s.db.NewInsert().Model(dl).
		On("CONFLICT (id) DO UPDATE").
		Set("filename = EXCLUDED.filename").
		Set("size = EXCLUDED.size").
		Set("quality = EXCLUDED.quality").
		Set("urls = EXCLUDED.urls").
		Set("is_current = EXCLUDED.is_current").
		Set("updated_at = ?", time.Now().UTC()).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("archive: save download: %w", err)
	}
	return dl, nil
}

// GetArticleBySlug returns the current revision for a single slug with one
// query. Intended for tooling; the render path always goes through the
// batched resolvers.
func (s *Store) GetArticleBySlug(ctx context.Context, siteID, culture, slug string) (*Article, error) {
	cleaned := normalizeSlug(slug)
	if cleaned == "" {
		return nil, ErrSlugRequired
	}
	records, _, err := s.articles.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.site_id = ?", siteID).
				Where("?TableAlias.culture = ?", culture).
				Where("?TableAlias.slug = ?", cleaned).
				Where("?TableAlias.is_current = TRUE").
				Limit(1)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "article", cleaned)
	}
	if len(records) == 0 {
		return nil, mapRepositoryError(sql.ErrNoRows, "article", cleaned)
	}
	return records[0], nil
}

// ResolverSet exposes the store through the contracts the markup pipeline
// consumes.
func (s *Store) ResolverSet() interfaces.ResolverSet {
	return interfaces.ResolverSet{
		Articles:  s,
		Files:     s,
		Downloads: s,
	}
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows || errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("archive: %s %q not found", resource, key)
	}
	return fmt.Errorf("archive: %s repository error: %w", resource, err)
}

// normalizeSlug mirrors the markup layer's slug normalization so stored
// slugs and queried slugs always agree.
func normalizeSlug(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "file:") {
		trimmed = trimmed[len("file:"):]
	}
	normalized, err := goslug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return strings.ToLower(strings.TrimSpace(trimmed))
	}
	return normalized
}

var (
	_ interfaces.ArticleResolver  = (*Store)(nil)
	_ interfaces.FileResolver     = (*Store)(nil)
	_ interfaces.DownloadResolver = (*Store)(nil)
)
