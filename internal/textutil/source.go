package textutil

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// bvPattern matches a Bilibili video id anywhere in a source string.
var bvPattern = regexp.MustCompile(`(?i)\bBV[0-9A-Za-z]{10}\b`)

// SourceSlug derives a filesystem-safe stem for source. A BV id wins when one
// is present; otherwise the last path element without its extension is used.
// Returns "unknown" when nothing usable remains.
func SourceSlug(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return "unknown"
	}
	if id := bvPattern.FindString(source); id != "" {
		return "BV" + id[2:]
	}

	candidate := source
	if u, err := url.Parse(source); err == nil && u.Host != "" {
		candidate = u.Path
	}
	candidate = strings.ReplaceAll(candidate, "\\", "/")
	candidate = path.Base(strings.TrimRight(candidate, "/"))
	candidate = strings.TrimSuffix(candidate, path.Ext(candidate))
	if candidate == "." || candidate == "/" {
		candidate = ""
	}
	slug := SanitizeFileName(candidate)
	if slug == "" {
		return "unknown"
	}
	return slug
}
