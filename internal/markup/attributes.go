package markup

import "strings"

// AttributeSeparator is the reserved token splitting directive arguments.
// It must not appear unescaped inside an attribute value.
const AttributeSeparator = "|#|"

const filePrefix = "file:"

// Attributes stores decoded directive arguments as an ordered multimap.
// Keys compare case-insensitively; repeated keys append values in authored
// order rather than overwriting.
type Attributes struct {
	keys   []string
	values map[string][]string
}

// DecodeAttributes splits the raw payload on the attribute separator and
// decodes each token as Key=Value on the first "=". Tokens without "=" or
// with an empty key are silently discarded; a directive still renders with
// whatever attributes did parse.
func DecodeAttributes(raw string) Attributes {
	attrs := Attributes{}
	if strings.TrimSpace(raw) == "" {
		return attrs
	}
	for _, token := range strings.Split(raw, AttributeSeparator) {
		idx := strings.Index(token, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(token[:idx])
		if key == "" {
			continue
		}
		attrs.add(key, strings.TrimSpace(token[idx+1:]))
	}
	return attrs
}

// SplitLeadingArgument separates a positional first token from the rest of a
// payload. Directives such as Image and HeaderImage accept a bare slug before
// any Key=Value attributes; the slug token carries no "=".
func SplitLeadingArgument(raw string) (arg string, rest string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}
	head := trimmed
	if idx := strings.Index(trimmed, AttributeSeparator); idx >= 0 {
		head = trimmed[:idx]
		rest = trimmed[idx+len(AttributeSeparator):]
	}
	if strings.Contains(head, "=") {
		return "", trimmed
	}
	return strings.TrimSpace(head), rest
}

// StripFilePrefix removes an optional leading "file:" marker from a
// slug-valued argument. The comparison is case-insensitive.
func StripFilePrefix(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= len(filePrefix) && strings.EqualFold(trimmed[:len(filePrefix)], filePrefix) {
		return strings.TrimSpace(trimmed[len(filePrefix):])
	}
	return trimmed
}

func (a *Attributes) add(key, value string) {
	canonical := strings.ToLower(key)
	if a.values == nil {
		a.values = map[string][]string{}
	}
	if _, seen := a.values[canonical]; !seen {
		a.keys = append(a.keys, canonical)
	}
	a.values[canonical] = append(a.values[canonical], value)
}

// Get returns the first value recorded for key.
func (a Attributes) Get(key string) (string, bool) {
	values := a.values[strings.ToLower(key)]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Values returns every value recorded for key in authored order.
func (a Attributes) Values(key string) []string {
	return a.values[strings.ToLower(key)]
}

// Has reports whether key was authored at least once.
func (a Attributes) Has(key string) bool {
	return len(a.values[strings.ToLower(key)]) > 0
}

// Keys returns the canonical keys in first-authored order.
func (a Attributes) Keys() []string {
	return a.keys
}

// Len counts distinct keys.
func (a Attributes) Len() int {
	return len(a.keys)
}
