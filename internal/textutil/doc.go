// Package textutil provides filename sanitization for content sources.
//
// SourceSlug turns a BV id, video URL, or backend-local path into a short,
// filesystem-safe stem used when naming saved summaries. SanitizeFileName and
// SanitizeToken are the lower-level helpers it builds on.
package textutil
