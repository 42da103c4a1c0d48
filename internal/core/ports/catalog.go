// internal/core/ports/catalog.go
package ports

import "slugscout/internal/core/domain"

// PatternCatalog es el port de lectura sobre el registro de patrones de engine.
type PatternCatalog interface {
	// Lookup retorna el patrón del engine o domain.ErrUnknownEngine
	Lookup(name string) (domain.EnginePattern, error)

	// All retorna todos los patrones en orden de registro
	All() []domain.EnginePattern
}
