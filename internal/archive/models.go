// Package archive is the bun-backed store behind the enrichment resolvers.
// Articles and downloads are versioned; resolvers only ever surface the
// current revision, and every lookup is a single batched query over the
// caller's full reference set.
package archive

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Article is one revision of a wiki article. IsCurrent marks the revision
// resolvers serve; older revisions stay queryable for history tooling.
type Article struct {
	bun.BaseModel `bun:"table:wiki_articles,alias:a"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SiteID          string    `bun:"site_id,notnull" json:"site_id"`
	Culture         string    `bun:"culture,notnull" json:"culture"`
	Slug            string    `bun:"slug,notnull" json:"slug"`
	Title           string    `bun:"title,notnull" json:"title"`
	CanonicalFileID string    `bun:"canonical_file_id" json:"canonical_file_id,omitempty"`
	IsCurrent       bool      `bun:"is_current,notnull,default:false" json:"is_current"`
	Revision        int       `bun:"revision,notnull,default:1" json:"revision"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// File is a stored media file referenced by articles through
// CanonicalFileID.
type File struct {
	bun.BaseModel `bun:"table:wiki_files,alias:f"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Filename  string    `bun:"filename,notnull" json:"filename"`
	MimeType  string    `bun:"mime_type" json:"mime_type,omitempty"`
	Size      int64     `bun:"size,notnull,default:0" json:"size"`
	IsCurrent bool      `bun:"is_current,notnull,default:true" json:"is_current"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Download is a downloadable asset addressed by content hash. URLs stores
// the mirror list in priority order.
type Download struct {
	bun.BaseModel `bun:"table:wiki_downloads,alias:d"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SiteID    string    `bun:"site_id,notnull" json:"site_id"`
	Hash      string    `bun:"hash,notnull" json:"hash"`
	Filename  string    `bun:"filename,notnull" json:"filename"`
	Size      int64     `bun:"size,notnull,default:0" json:"size"`
	Quality   string    `bun:"quality" json:"quality,omitempty"`
	URLs      []string  `bun:"urls,type:jsonb" json:"urls,omitempty"`
	IsCurrent bool      `bun:"is_current,notnull,default:true" json:"is_current"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
