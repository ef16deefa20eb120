package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ReferenceContentID derives the dedup key for a repeatable reference
// directive (citation or footnote) from its trimmed raw payload. Two
// directives with byte-identical trimmed payloads always map to the same id.
func ReferenceContentID(family, rawText string) string {
	return UUID("go-wiki:" + family + ":" + strings.TrimSpace(rawText)).String()
}

// ArticleUUID derives a stable id for an article record scoped by site and culture.
func ArticleUUID(siteID, culture, slug string) uuid.UUID {
	return UUID("go-wiki:article:" + strings.TrimSpace(siteID) + ":" + strings.ToLower(strings.TrimSpace(culture)) + ":" + strings.TrimSpace(slug))
}

// FileUUID derives a stable id for a stored media file.
func FileUUID(filename string) uuid.UUID {
	return UUID("go-wiki:file:" + strings.TrimSpace(filename))
}

// DownloadUUID derives a stable id for a download record keyed by content hash.
func DownloadUUID(siteID, hash string) uuid.UUID {
	return UUID("go-wiki:download:" + strings.TrimSpace(siteID) + ":" + strings.ToLower(strings.TrimSpace(hash)))
}
