// internal/core/usecases/dedupe_service.go
package usecases

import (
	"slugscout/internal/core/domain"
)

// DedupeService elimina duplicados y slugs ya conocidos de los hits de un engine.
type DedupeService struct{}

// NewDedupeService crea una nueva instancia del servicio.
func NewDedupeService() *DedupeService {
	return &DedupeService{}
}

// Deduplicate conserva la primera aparición de cada slug (sin distinguir
// mayúsculas), aunque venga de fuentes distintas. El orden de entrada se preserva.
func (d *DedupeService) Deduplicate(slugs []domain.DiscoveredSlug) []domain.DiscoveredSlug {
	if len(slugs) == 0 {
		return slugs
	}

	seen := make(map[string]struct{}, len(slugs))
	result := make([]domain.DiscoveredSlug, 0, len(slugs))

	for _, s := range slugs {
		key := s.Key()
		if _, found := seen[key]; found {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, s)
	}

	return result
}

// FilterKnown descarta los slugs presentes en known. Con known vacío retorna la entrada.
func (d *DedupeService) FilterKnown(slugs []domain.DiscoveredSlug, known domain.SlugSet) []domain.DiscoveredSlug {
	if known.Len() == 0 {
		return slugs
	}

	filtered := make([]domain.DiscoveredSlug, 0, len(slugs))
	for _, s := range slugs {
		if known.Contains(s.Slug) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

// CountBySource agrupa las cuentas de hits por fuente.
func (d *DedupeService) CountBySource(slugs []domain.DiscoveredSlug) map[domain.ArchiveSource]int {
	counts := make(map[domain.ArchiveSource]int)
	for _, s := range slugs {
		counts[s.ArchiveSource]++
	}
	return counts
}
