// internal/core/domain/run.go
package domain

import "time"

// EngineResult es el resultado final de un engine con sus cuentas por etapa.
type EngineResult struct {
	Engine    string                `json:"engine"`
	Raw       int                   `json:"raw"`
	Deduped   int                   `json:"deduped"`
	Filtered  int                   `json:"filtered"`
	PerSource map[ArchiveSource]int `json:"per_source"`
	// NewBySource cuenta los slugs nuevos según la fuente que los vio primero.
	NewBySource map[ArchiveSource]int `json:"new_by_source"`
	Slugs       []DiscoveredSlug      `json:"slugs"`
}

// RunResult agrupa los resultados de una ejecución por lotes.
type RunResult struct {
	RunID      string                   `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Sources    []string                 `json:"sources"`
	Engines    map[string]*EngineResult `json:"engines"`
}

// NewRunResult crea un resultado vacío.
func NewRunResult(runID string, sources SourceSet) *RunResult {
	return &RunResult{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Sources:   sources.Names(),
		Engines:   make(map[string]*EngineResult),
	}
}

// Duration retorna la duración de la ejecución.
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SlugsByEngine retorna el mapa engine -> slugs finales.
func (r *RunResult) SlugsByEngine() map[string][]DiscoveredSlug {
	out := make(map[string][]DiscoveredSlug, len(r.Engines))
	for name, er := range r.Engines {
		out[name] = er.Slugs
	}
	return out
}

// TotalSlugs suma los slugs finales de todos los engines.
func (r *RunResult) TotalSlugs() int {
	total := 0
	for _, er := range r.Engines {
		total += len(er.Slugs)
	}
	return total
}
