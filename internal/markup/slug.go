package markup

import (
	"strings"

	slug "github.com/goliatone/go-slug"
)

// NormalizeSlug converts a human-entered slug into the canonical lookup key
// used by the enrichment pass. A leading "file:" prefix is stripped first.
// When the slug library rejects the input the lowercased trimmed form is used
// so a lookup is still attempted rather than the reference failing outright.
func NormalizeSlug(value string) string {
	stripped := StripFilePrefix(value)
	if stripped == "" {
		return ""
	}
	normalized, err := slug.Normalize(stripped)
	if err != nil || normalized == "" {
		return strings.ToLower(stripped)
	}
	return normalized
}
