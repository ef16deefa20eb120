package wiki

import (
	"context"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-wiki/internal/archive"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/logging/gologger"
	"github.com/goliatone/go-wiki/internal/markup"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// MarkupService exports the render service contract for consumers of the
// wiki package.
type MarkupService = interfaces.MarkupService

// RenderOptions exports per-render settings.
type RenderOptions = interfaces.RenderOptions

// RenderResult exports the pipeline output type.
type RenderResult = interfaces.RenderResult

// ResolverSet exports the enrichment lookup contracts so hosts can plug in
// their own article, file, and download sources.
type ResolverSet = interfaces.ResolverSet

// WikiDocument exports the loaded-document type.
type WikiDocument = interfaces.WikiDocument

// RenderFileRequest exports the file-render request payload.
type RenderFileRequest = markup.RenderFileRequest

// RenderedDocument exports the file-render response payload.
type RenderedDocument = markup.RenderedDocument

// ArchiveStore exports the bun-backed resolver store.
type ArchiveStore = archive.Store

// Module is the top level wiki runtime facade: a configured render
// pipeline plus the optional archive store backing its resolvers.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	store    *archive.Store
	pipeline *markup.Pipeline
}

// Option overrides pieces of the module wiring before the pipeline is
// assembled.
type Option func(*moduleDeps)

type moduleDeps struct {
	db        *bun.DB
	resolvers *interfaces.ResolverSet
	provider  interfaces.LoggerProvider
	cache     repocache.CacheService
	keys      repocache.KeySerializer
}

// WithDB supplies an existing database handle instead of opening one from
// Config.Storage.
func WithDB(db *bun.DB) Option {
	return func(d *moduleDeps) { d.db = db }
}

// WithResolvers bypasses the archive store entirely and wires the provided
// resolver set into the pipeline.
func WithResolvers(resolvers ResolverSet) Option {
	return func(d *moduleDeps) { d.resolvers = &resolvers }
}

// WithLoggerProvider overrides the logger provider built from
// Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(d *moduleDeps) { d.provider = provider }
}

// WithCache supplies the read-through cache used by the archive
// repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(d *moduleDeps) {
		d.cache = service
		d.keys = serializer
	}
}

// New constructs a wiki module from configuration. Unless resolvers are
// supplied, an archive store is opened from Config.Storage and migrated on
// first use via Migrate.
func New(cfg Config, opts ...Option) (*Module, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var deps moduleDeps
	for _, opt := range opts {
		opt(&deps)
	}

	provider := deps.provider
	if provider == nil {
		var err error
		provider, err = buildLoggerProvider(cfg)
		if err != nil {
			return nil, err
		}
	}

	m := &Module{cfg: cfg, provider: provider}

	var resolvers interfaces.ResolverSet
	if deps.resolvers != nil {
		resolvers = *deps.resolvers
	} else {
		db := deps.db
		if db == nil {
			opened, err := archive.Open(cfg.Storage)
			if err != nil {
				return nil, err
			}
			db = opened
		}

		storeOpts := []archive.StoreOption{
			archive.WithStoreLogger(logging.ArchiveLogger(provider)),
		}
		if cfg.Cache.Enabled {
			service, serializer := deps.cache, deps.keys
			if service == nil {
				cacheCfg := repocache.DefaultConfig()
				if cfg.Cache.DefaultTTL > 0 {
					cacheCfg.TTL = cfg.Cache.DefaultTTL
				}
				built, err := repocache.NewCacheService(cacheCfg)
				if err == nil {
					service = built
					serializer = repocache.NewDefaultKeySerializer()
				}
			}
			if service != nil && serializer != nil {
				storeOpts = append(storeOpts, archive.WithCache(service, serializer))
			}
		}

		store, err := archive.NewStore(db, storeOpts...)
		if err != nil {
			return nil, err
		}
		m.store = store
		resolvers = store.ResolverSet()
	}

	var manager *urlkit.RouteManager
	if cfg.Links.RouteConfig != nil {
		manager = urlkit.NewRouteManager(cfg.Links.RouteConfig)
	}

	m.pipeline = markup.NewPipeline(cfg, resolvers,
		markup.WithLogger(logging.MarkupLogger(provider)),
		markup.WithLinkBuilder(markup.NewLinkBuilder(cfg.Links, manager)),
	)
	return m, nil
}

func buildLoggerProvider(cfg Config) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return noopProvider{}, nil
	}
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

// Markup returns the configured render service.
func (m *Module) Markup() MarkupService {
	return m.pipeline
}

// Render is a convenience passthrough to the pipeline.
func (m *Module) Render(ctx context.Context, source []byte, opts RenderOptions) (*RenderResult, error) {
	return m.pipeline.Render(ctx, source, opts)
}

// RenderFile loads a wiki source file from disk and renders its body.
func (m *Module) RenderFile(ctx context.Context, req RenderFileRequest) (*RenderedDocument, error) {
	return m.pipeline.RenderFile(ctx, req)
}

// Archive returns the backing store, or nil when the module was built with
// external resolvers.
func (m *Module) Archive() *ArchiveStore {
	if m == nil {
		return nil
	}
	return m.store
}

// Migrate creates the archive schema when the module owns its store.
func (m *Module) Migrate(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	return m.store.Migrate(ctx)
}
