// internal/core/domain/slug.go
package domain

import (
	"sort"
	"strings"
)

// DiscoveredSlug es un hit crudo producido por un conector.
type DiscoveredSlug struct {
	Engine        string        `json:"engine"`
	Slug          string        `json:"slug"`
	SourceURL     string        `json:"source_url"`
	ArchiveSource ArchiveSource `json:"archive_source"`
	// Timestamp en el formato del archivo; vacío si la fuente no lo aporta.
	Timestamp string `json:"timestamp,omitempty"`
}

// Key retorna la clave de deduplicación (slug en minúsculas).
func (d DiscoveredSlug) Key() string {
	return strings.ToLower(d.Slug)
}

// SlugSet es un conjunto de slugs comparado sin distinguir mayúsculas.
// Un SlugSet nil es un conjunto vacío válido.
type SlugSet map[string]struct{}

// NewSlugSet construye un conjunto con los slugs dados, normalizados a minúsculas.
func NewSlugSet(slugs ...string) SlugSet {
	s := make(SlugSet, len(slugs))
	for _, slug := range slugs {
		s.Add(slug)
	}
	return s
}

// Add inserta slug normalizado. Slugs vacíos se ignoran.
func (s SlugSet) Add(slug string) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return
	}
	s[slug] = struct{}{}
}

// Contains indica si slug (en cualquier capitalización) está en el conjunto.
func (s SlugSet) Contains(slug string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.ToLower(slug)]
	return ok
}

// Len retorna el número de slugs.
func (s SlugSet) Len() int {
	return len(s)
}

// SourceSet es el conjunto de fuentes habilitadas para una ejecución.
type SourceSet map[ArchiveSource]bool

// NewSourceSet construye un conjunto con las fuentes dadas.
func NewSourceSet(sources ...ArchiveSource) SourceSet {
	s := make(SourceSet, len(sources))
	for _, src := range sources {
		s[src] = true
	}
	return s
}

// DefaultBatchSources retorna las fuentes que usa el descubrimiento por lotes por defecto.
func DefaultBatchSources() SourceSet {
	return NewSourceSet(SourceWayback, SourceCommonCrawl, SourceAlienVault, SourceURLScan)
}

// AllSourcesSet retorna las ocho fuentes.
func AllSourcesSet() SourceSet {
	return NewSourceSet(allArchiveSources...)
}

// ParseSourceSet interpreta una lista de nombres; "all" habilita todas.
func ParseSourceSet(names []string) (SourceSet, error) {
	s := make(SourceSet, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if strings.EqualFold(n, "all") {
			return AllSourcesSet(), nil
		}
		src, err := ParseArchiveSource(n)
		if err != nil {
			return nil, err
		}
		s[src] = true
	}
	return s, nil
}

// Enabled indica si la fuente está habilitada.
func (s SourceSet) Enabled(src ArchiveSource) bool {
	return s[src]
}

// Ordered retorna las fuentes habilitadas en orden canónico.
func (s SourceSet) Ordered() []ArchiveSource {
	out := make([]ArchiveSource, 0, len(s))
	for src, on := range s {
		if on && src.IsValid() {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}

// Names retorna los nombres de las fuentes habilitadas en orden canónico.
func (s SourceSet) Names() []string {
	ordered := s.Ordered()
	out := make([]string, len(ordered))
	for i, src := range ordered {
		out[i] = src.String()
	}
	return out
}
