// internal/patterns/registry.go
package patterns

import (
	"fmt"
	"sort"

	"slugscout/internal/core/domain"
)

// Registry es una lista inmutable de EnginePattern indexada por nombre.
// Overlay produce un registry nuevo; el original no cambia.
type Registry struct {
	ordered []domain.EnginePattern
	byName  map[string]int
}

// NewRegistry construye un registry y rechaza nombres duplicados.
func NewRegistry(patterns ...domain.EnginePattern) (*Registry, error) {
	r := &Registry{
		ordered: make([]domain.EnginePattern, 0, len(patterns)),
		byName:  make(map[string]int, len(patterns)),
	}
	for _, p := range patterns {
		if p.IsZero() {
			return nil, fmt.Errorf("%w: zero pattern", domain.ErrEmptyEngineName)
		}
		if _, dup := r.byName[p.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEngine, p.Name())
		}
		r.byName[p.Name()] = len(r.ordered)
		r.ordered = append(r.ordered, p)
	}
	return r, nil
}

// FromSpecs valida cada spec (incluidos los dominios) y construye el registry.
func FromSpecs(specs []domain.PatternSpec) (*Registry, error) {
	patterns := make([]domain.EnginePattern, 0, len(specs))
	for _, spec := range specs {
		p, err := Build(spec)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return NewRegistry(patterns...)
}

// Build construye un EnginePattern y valida sus dominios contra la lista de sufijos públicos.
func Build(spec domain.PatternSpec) (domain.EnginePattern, error) {
	p, err := domain.NewEnginePattern(spec)
	if err != nil {
		return domain.EnginePattern{}, err
	}
	for _, d := range p.Domains() {
		if err := ValidateDomain(d); err != nil {
			return domain.EnginePattern{}, fmt.Errorf("engine %s: %w", p.Name(), err)
		}
	}
	return p, nil
}

// Get retorna el patrón del engine.
func (r *Registry) Get(name string) (domain.EnginePattern, bool) {
	i, ok := r.byName[name]
	if !ok {
		return domain.EnginePattern{}, false
	}
	return r.ordered[i], true
}

// Lookup es Get con error tipado.
func (r *Registry) Lookup(name string) (domain.EnginePattern, error) {
	p, ok := r.Get(name)
	if !ok {
		return domain.EnginePattern{}, fmt.Errorf("%w: %q (known: %v)", domain.ErrUnknownEngine, name, r.Names())
	}
	return p, nil
}

// All retorna los patrones en orden de registro.
func (r *Registry) All() []domain.EnginePattern {
	out := make([]domain.EnginePattern, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names retorna los nombres en orden de registro.
func (r *Registry) Names() []string {
	out := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		out[i] = p.Name()
	}
	return out
}

// SortedNames retorna los nombres en orden alfabético.
func (r *Registry) SortedNames() []string {
	out := r.Names()
	sort.Strings(out)
	return out
}

// Len retorna el número de engines.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Overlay retorna un registry nuevo donde los specs con nombre existente
// reemplazan al patrón en su posición y los nuevos se agregan al final.
func (r *Registry) Overlay(specs []domain.PatternSpec) (*Registry, error) {
	merged := r.All()
	index := make(map[string]int, len(r.byName))
	for k, v := range r.byName {
		index[k] = v
	}

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		p, err := Build(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.Name()]; dup {
			return nil, fmt.Errorf("%w in overlay: %s", domain.ErrDuplicateEngine, p.Name())
		}
		seen[p.Name()] = struct{}{}

		if i, ok := index[p.Name()]; ok {
			merged[i] = p
			continue
		}
		index[p.Name()] = len(merged)
		merged = append(merged, p)
	}
	return NewRegistry(merged...)
}
