package markup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

type documentEnvelope struct {
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Custom      map[string]any `yaml:",inline"`
}

// ParseDocument splits frontmatter from the wiki source body. Sources
// without a frontmatter block parse as an empty envelope with the full
// input as body.
func ParseDocument(source []byte) (*interfaces.WikiDocument, error) {
	var meta documentEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	custom := meta.Custom
	if custom == nil {
		custom = map[string]any{}
	}

	return &interfaces.WikiDocument{
		Title:       meta.Title,
		Slug:        meta.Slug,
		Description: meta.Description,
		Tags:        append([]string(nil), meta.Tags...),
		Custom:      custom,
		Body:        body,
	}, nil
}

// LoadDocument reads a wiki source file from disk. A missing frontmatter
// slug falls back to the normalized base filename so every loaded document
// is addressable.
func LoadDocument(path string) (*interfaces.WikiDocument, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	doc, err := ParseDocument(source)
	if err != nil {
		return nil, err
	}

	doc.FilePath = path
	doc.LastModified = info.ModTime()
	if doc.Slug == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		doc.Slug = NormalizeSlug(base)
	}
	return doc, nil
}

// RenderFileRequest asks the service to load a wiki source file and render
// its body through the directive pipeline.
type RenderFileRequest struct {
	// Path selects the filesystem path (relative or absolute) of the wiki source file.
	Path string `json:"path"`
	// SiteID overrides the configured site scope for resolver lookups.
	SiteID string `json:"site_id,omitempty"`
	// Culture overrides the configured culture for article resolution.
	Culture string `json:"culture,omitempty"`
	// Diagnostics toggles HTML comment annotations on placeholder output.
	Diagnostics bool `json:"diagnostics,omitempty"`
}

// Validate ensures a path is present before the service touches the
// filesystem.
func (req RenderFileRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Path, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("wiki.markup.render_file.path_required", "path is required")
			}
			return nil
		})),
	)
}

// RenderedDocument couples a loaded document with its pipeline output.
type RenderedDocument struct {
	Document *interfaces.WikiDocument
	Result   *interfaces.RenderResult
	Rendered time.Time
}

// RenderFile loads the document at req.Path and renders its body. The
// frontmatter description seeds the short description metadata when the
// body carries no directive of its own.
func (p *Pipeline) RenderFile(ctx context.Context, req RenderFileRequest) (*RenderedDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := LoadDocument(req.Path)
	if err != nil {
		return nil, err
	}

	result, err := p.Render(ctx, doc.Body, interfaces.RenderOptions{
		SiteID:      req.SiteID,
		Culture:     req.Culture,
		Diagnostics: req.Diagnostics,
	})
	if err != nil {
		return nil, err
	}

	if result.Meta[interfaces.MetaShortDescriptionText] == "" && doc.Description != "" {
		result.Meta[interfaces.MetaShortDescriptionText] = doc.Description
	}

	return &RenderedDocument{
		Document: doc,
		Result:   result,
		Rendered: time.Now().UTC(),
	}, nil
}
