package runtimeconfig

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-urlkit"
)

var ErrSiteIDRequired = errors.New("wiki config: site id is required")
var ErrDefaultCultureRequired = errors.New("wiki config: default culture is required")
var ErrLoggingProviderUnknown = errors.New("wiki config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("wiki config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("wiki config: logging format is invalid")
var ErrCacheTTLInvalid = errors.New("wiki config: cache ttl must be zero or positive")
var ErrPlaceholderImageRequired = errors.New("wiki config: placeholder image path is required")

// Config aggregates settings for the wiki markup module. Fields intentionally
// use simple types so host applications can extend them later.
type Config struct {
	SiteID         string
	DefaultCulture string
	Render         RenderConfig
	Links          LinksConfig
	Storage        StorageConfig
	Cache          CacheConfig
	Logging        LoggingConfig
}

// RenderConfig captures pipeline-level rendering behaviour.
type RenderConfig struct {
	// Diagnostics emits HTML comment annotations wherever a placeholder is
	// rendered in place of an unresolved reference.
	Diagnostics bool
	// PlaceholderImage is the path emitted for image references that resolve
	// to no current file.
	PlaceholderImage string
	// PlaceholderTitle is the title text paired with PlaceholderImage.
	PlaceholderTitle string
	// DisableNormalize skips the output whitespace normalizer after
	// rendering. The zero value keeps the pass on so a struct-literal
	// config cannot silently drop it.
	DisableNormalize bool
	// Indent is the indentation unit used by the output normalizer.
	Indent string
}

// LinksConfig configures URL construction for article and file references.
type LinksConfig struct {
	// ArticleBasePath prefixes article slugs when no urlkit route manager is
	// configured, e.g. "/wiki".
	ArticleBasePath string
	// FileBasePath prefixes filenames for direct file links, e.g. "/files".
	FileBasePath string
	// RouteConfig, when set, builds a urlkit route manager for link
	// construction instead of the base-path fallback.
	RouteConfig *urlkit.Config
	// URLKit selects named urlkit routes when a route manager is supplied.
	URLKit URLKitLinksConfig
}

// URLKitLinksConfig names the go-urlkit group and routes used to build links.
type URLKitLinksConfig struct {
	Group        string
	ArticleRoute string
	FileRoute    string
	SlugParam    string
	FileParam    string
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig captures read-cache behaviour for the archive resolvers.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the baseline configuration used when the host
// application does not override anything.
func DefaultConfig() Config {
	return Config{
		SiteID:         "default",
		DefaultCulture: "en",
		Render: RenderConfig{
			PlaceholderImage: "/static/images/file-missing.svg",
			PlaceholderTitle: "Missing file",
			Indent:           "\t",
		},
		Links: LinksConfig{
			ArticleBasePath: "/wiki",
			FileBasePath:    "/files",
		},
		Storage: StorageConfig{Driver: "sqlite3"},
		Logging: LoggingConfig{Provider: "noop", Level: "info", Format: "json"},
	}
}

// Normalize fills zero-valued fields with defaults so downstream consumers
// never branch on empty settings.
func (c Config) Normalize() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.SiteID) == "" {
		c.SiteID = defaults.SiteID
	}
	if strings.TrimSpace(c.DefaultCulture) == "" {
		c.DefaultCulture = defaults.DefaultCulture
	}
	if strings.TrimSpace(c.Render.PlaceholderImage) == "" {
		c.Render.PlaceholderImage = defaults.Render.PlaceholderImage
	}
	if strings.TrimSpace(c.Render.PlaceholderTitle) == "" {
		c.Render.PlaceholderTitle = defaults.Render.PlaceholderTitle
	}
	if c.Render.Indent == "" {
		c.Render.Indent = defaults.Render.Indent
	}
	if strings.TrimSpace(c.Links.ArticleBasePath) == "" {
		c.Links.ArticleBasePath = defaults.Links.ArticleBasePath
	}
	if strings.TrimSpace(c.Links.FileBasePath) == "" {
		c.Links.FileBasePath = defaults.Links.FileBasePath
	}
	if strings.TrimSpace(c.Storage.Driver) == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if strings.TrimSpace(c.Logging.Provider) == "" {
		c.Logging.Provider = defaults.Logging.Provider
	}
	return c
}

// Validate reports configuration combinations the runtime cannot honour.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SiteID) == "" {
		return ErrSiteIDRequired
	}
	if strings.TrimSpace(c.DefaultCulture) == "" {
		return ErrDefaultCultureRequired
	}
	if strings.TrimSpace(c.Render.PlaceholderImage) == "" {
		return ErrPlaceholderImageRequired
	}
	if c.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Provider)) {
	case "", "noop", "gologger":
	default:
		return ErrLoggingProviderUnknown
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}
	return nil
}
