// Package presets resolves the processing modes offered to the user. The
// backend catalogue is preferred; when it cannot be trusted a fixed local list
// is used instead so the caller always has something to choose from.
package presets

import (
	"context"
	"log/slog"
	"slices"

	"bilisum/internal/backend"
	"bilisum/internal/logging"
)

// DefaultKey is selected when present in the resolved list.
const DefaultKey = "bilibili_summary"

// Preset is one selectable processing mode.
type Preset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Fallback returns the locally held preset list used when the backend
// catalogue is unavailable. A fresh slice is returned on every call.
func Fallback() []Preset {
	return []Preset{
		{Key: "bilibili_summary", Label: "📄 Video summary (fallback)"},
		{Key: "meeting_summary", Label: "📝 Meeting minutes"},
		{Key: "translation", Label: "🌏 Full translation"},
	}
}

// Selection is the resolved preset list plus the default choice.
type Selection struct {
	Presets []Preset `json:"presets"`
	Default string   `json:"default"`
	// Degraded is true when Presets came from Fallback.
	Degraded bool `json:"degraded"`
}

// Contains reports whether key names a preset in the selection.
func (s Selection) Contains(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Lookup returns the preset with the given key.
func (s Selection) Lookup(key string) (Preset, bool) {
	idx := slices.IndexFunc(s.Presets, func(p Preset) bool { return p.Key == key })
	if idx < 0 {
		return Preset{}, false
	}
	return s.Presets[idx], true
}

// Keys returns preset keys in display order.
func (s Selection) Keys() []string {
	keys := make([]string, 0, len(s.Presets))
	for _, p := range s.Presets {
		keys = append(keys, p.Key)
	}
	return keys
}

// Catalog fetches presets from the backend.
type Catalog interface {
	Presets(ctx context.Context) ([]backend.Preset, error)
}

// Source resolves the preset selection.
type Source struct {
	catalog   Catalog
	preferred string
	logger    *slog.Logger
}

// Option customizes a Source.
type Option func(*Source)

// WithPreferred makes key the default when the resolved list contains it.
func WithPreferred(key string) Option {
	return func(s *Source) {
		s.preferred = key
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logging.NewComponentLogger(logger, "presets")
	}
}

// NewSource builds a Source over catalog.
func NewSource(catalog Catalog, opts ...Option) *Source {
	s := &Source{
		catalog: catalog,
		logger:  logging.NewComponentLogger(nil, "presets"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch issues one catalogue request and returns the list verbatim. Any
// failure (HTTP, transport, parse, empty list) yields Fallback instead; the
// failure is logged and never returned.
func (s *Source) Fetch(ctx context.Context) Selection {
	var (
		remote []backend.Preset
		err    error
	)
	if s.catalog != nil {
		remote, err = s.catalog.Presets(ctx)
	}

	if s.catalog == nil || err != nil || len(remote) == 0 {
		reason := "backend returned no presets"
		if s.catalog == nil {
			reason = "no backend configured"
		}
		attrs := []logging.Attr{
			logging.String(logging.FieldImpact, "fallback presets offered"),
			logging.String(logging.FieldErrorHint, "check that the local service is running"),
			logging.String("reason", reason),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "preset fetch degraded", "preset_fetch_degraded", attrs...)
		list := Fallback()
		return Selection{Presets: list, Default: s.pickDefault(list), Degraded: true}
	}

	list := make([]Preset, 0, len(remote))
	for _, p := range remote {
		list = append(list, Preset{Key: p.Key, Label: p.Label})
	}
	selection := Selection{Presets: list, Default: s.pickDefault(list)}
	s.logger.Debug("presets loaded",
		logging.Int("count", len(list)),
		logging.String("default", selection.Default),
	)
	return selection
}

func (s *Source) pickDefault(list []Preset) string {
	if len(list) == 0 {
		return ""
	}
	for _, key := range []string{s.preferred, DefaultKey} {
		if key == "" {
			continue
		}
		if slices.ContainsFunc(list, func(p Preset) bool { return p.Key == key }) {
			return key
		}
	}
	return list[0].Key
}
