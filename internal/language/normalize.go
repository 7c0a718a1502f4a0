// Package language canonicalizes caller-supplied locale tags before they
// reach a translation provider.
package language

import "strings"

// Auto is the sentinel source tag meaning "let the provider detect".
const Auto = "auto"

// CanonicalTag rewrites a locale tag into the provider-facing convention:
// lowercase primary subtag, uppercase qualifiers, "-" separators (for
// example "EN_us" becomes "en-US", "es_419" becomes "es-419"). Returns an
// empty string for blank or malformed values. The Auto sentinel passes
// through unchanged.
func CanonicalTag(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, Auto) {
		return Auto
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := strings.Split(trimmed, "-")
	canonical := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isAlphanumeric(part) {
			return ""
		}
		if len(canonical) == 0 {
			canonical = append(canonical, strings.ToLower(part))
			continue
		}
		canonical = append(canonical, strings.ToUpper(part))
	}

	if len(canonical) == 0 {
		return ""
	}
	return strings.Join(canonical, "-")
}

// RootCode returns the primary language subtag of a canonicalized tag
// (for example "en" from "en-US").
func RootCode(raw string) string {
	tag := CanonicalTag(raw)
	if tag == "" || tag == Auto {
		return tag
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

func isAlphanumeric(value string) bool {
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
