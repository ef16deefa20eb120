package runtimeconfig

import (
	"testing"
	"time"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{}.Normalize()

	if cfg.SiteID != "default" {
		t.Fatalf("site id default missing: %q", cfg.SiteID)
	}
	if cfg.DefaultCulture != "en" {
		t.Fatalf("culture default missing: %q", cfg.DefaultCulture)
	}
	if cfg.Render.PlaceholderImage == "" {
		t.Fatal("placeholder image default missing")
	}
	if cfg.Links.ArticleBasePath != "/wiki" || cfg.Links.FileBasePath != "/files" {
		t.Fatalf("link base defaults missing: %+v", cfg.Links)
	}
	if cfg.Logging.Provider != "noop" {
		t.Fatalf("logging provider default missing: %q", cfg.Logging.Provider)
	}
	if cfg.Render.DisableNormalize {
		t.Fatal("output normalizer must stay enabled for a zero-value config")
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{SiteID: "zine", DefaultCulture: "de"}.Normalize()

	if cfg.SiteID != "zine" || cfg.DefaultCulture != "de" {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing site", func(c *Config) { c.SiteID = " " }, ErrSiteIDRequired},
		{"missing culture", func(c *Config) { c.DefaultCulture = "" }, ErrDefaultCultureRequired},
		{"bad provider", func(c *Config) { c.Logging.Provider = "syslog" }, ErrLoggingProviderUnknown},
		{"bad level", func(c *Config) { c.Logging.Level = "shout" }, ErrLoggingLevelInvalid},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, ErrLoggingFormatInvalid},
		{"negative ttl", func(c *Config) { c.Cache.DefaultTTL = -time.Second }, ErrCacheTTLInvalid},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}
