package wiki

import "github.com/goliatone/go-wiki/internal/runtimeconfig"

var (
	ErrSiteIDRequired           = runtimeconfig.ErrSiteIDRequired
	ErrDefaultCultureRequired   = runtimeconfig.ErrDefaultCultureRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrPlaceholderImageRequired = runtimeconfig.ErrPlaceholderImageRequired
)

type (
	Config            = runtimeconfig.Config
	RenderConfig      = runtimeconfig.RenderConfig
	LinksConfig       = runtimeconfig.LinksConfig
	URLKitLinksConfig = runtimeconfig.URLKitLinksConfig
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
