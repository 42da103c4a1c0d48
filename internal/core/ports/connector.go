// internal/core/ports/connector.go
package ports

import (
	"context"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/platform/resilience"
)

// Connector es el port que implementa cada fuente de archivo u OSINT.
type Connector interface {
	// Name retorna la fuente que el conector representa.
	Name() domain.ArchiveSource

	// Fetch consulta la fuente para un engine y retorna los hits crudos en orden
	// de paginación. Los hits siempre son válidos aunque err no sea nil: un error
	// solo indica que la fuente quedó degradada (fallos HTTP, respuestas malformadas).
	// Los rate limits gestionados por la política del conector no son errores.
	Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error)

	// Close libera los recursos del conector (conexiones HTTP ociosas, etc.).
	Close() error
}

// ConnectorConfig contiene la configuración de un conector.
type ConnectorConfig struct {
	// Enabled indica si el conector está habilitado
	Enabled bool

	// Timeout por request HTTP
	Timeout time.Duration

	// Retries reintentos ante errores de transporte o 5xx
	Retries int

	// RateLimit límite de requests por segundo del cliente (0 = sin límite)
	RateLimit float64

	// PageDelay pausa entre páginas o índices (0 = default de la fuente, <0 = sin pausa)
	PageDelay time.Duration

	// APIKey credencial de la fuente, si aplica
	APIKey string

	// BaseURL sustituye el endpoint por defecto (mirrors, tests)
	BaseURL string

	// Sleep sustituye las esperas de rate limit (tests). nil = resilience.Sleep
	Sleep resilience.SleepFunc

	// Custom configuración específica del conector (limit, max_pages, mode, ...)
	Custom map[string]interface{}
}

// DefaultConnectorConfig retorna una configuración por defecto.
func DefaultConnectorConfig() ConnectorConfig {
	return ConnectorConfig{
		Enabled: true,
		Timeout: 60 * time.Second,
		Retries: 2,
		Custom:  make(map[string]interface{}),
	}
}

// ConnectorMetadata describe un conector registrado.
type ConnectorMetadata struct {
	Name        domain.ArchiveSource
	Description string

	// RequiresAuth la fuente no devuelve nada sin APIKey
	RequiresAuth bool

	// DomainKeyed la fuente consulta por EnginePattern.Domains()
	DomainKeyed bool

	// NeedsSubdomainRegex la fuente solo aplica a engines con slug en DNS
	NeedsSubdomainRegex bool

	// DefaultPageDelay pausa recomendada entre páginas
	DefaultPageDelay time.Duration

	// RateLimitScope qué abandona la fuente al agotar su política de rate limit
	RateLimitScope resilience.Scope
}
