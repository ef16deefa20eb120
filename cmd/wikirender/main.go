package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	wiki "github.com/goliatone/go-wiki"
)

func main() {
	var (
		filePath    = flag.String("file", "", "Wiki source file to render")
		siteID      = flag.String("site", "", "Site scope for resolver lookups (defaults to config)")
		culture     = flag.String("culture", "", "Culture for article resolution (defaults to config)")
		dsn         = flag.String("dsn", "", "Archive database DSN (defaults to in-memory sqlite)")
		diagnostics = flag.Bool("diagnostics", false, "Annotate placeholder output with HTML comments")
		showMeta    = flag.Bool("meta", true, "Print the collected document metadata")
		logLevel    = flag.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	)

	flag.Parse()

	if *filePath == "" {
		log.Fatalf("--file is required")
	}

	cfg := wiki.DefaultConfig()
	cfg.Storage.DSN = *dsn
	cfg.Render.Diagnostics = *diagnostics
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = "console"

	module, err := wiki.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap wiki module: %v", err)
	}

	ctx := context.Background()

	if err := module.Migrate(ctx); err != nil {
		log.Fatalf("migrate archive: %v", err)
	}

	rendered, err := module.RenderFile(ctx, wiki.RenderFileRequest{
		Path:        *filePath,
		SiteID:      *siteID,
		Culture:     *culture,
		Diagnostics: *diagnostics,
	})
	if err != nil {
		log.Fatalf("render wiki document: %v", err)
	}

	doc := rendered.Document
	fmt.Fprintf(os.Stdout, "Path: %s\nSlug: %s\nTitle: %s\n\n", doc.FilePath, doc.Slug, doc.Title)

	if *showMeta {
		meta, err := json.MarshalIndent(map[string]any{
			"meta":       rendered.Result.Meta,
			"categories": rendered.Result.Categories,
		}, "", "  ")
		if err == nil {
			fmt.Fprintf(os.Stdout, "Metadata:\n%s\n\n", meta)
		}
	}

	fmt.Fprintf(os.Stdout, "Rendered HTML:\n%s\n", string(rendered.Result.HTML))
}
