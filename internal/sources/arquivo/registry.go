// internal/sources/arquivo/registry.go
package arquivo

import (
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/registry"
	"slugscout/internal/platform/resilience"
)

// Auto-registro al importar el paquete
func init() {
	registry.Global().MustRegister(
		domain.SourceArquivo,
		factory,
		ports.ConnectorMetadata{
			Description:      "Arquivo.pt CDX index, domain match",
			DomainKeyed:      true,
			DefaultPageDelay: 500 * time.Millisecond,
			RateLimitScope:   resilience.ScopeDomain,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	limit := registry.GetIntConfig(cfg.Custom, "limit", defaultLimit)
	if err := registry.ValidatePositiveInt("arquivo.limit", limit); err != nil {
		return nil, err
	}
	return New(cfg, logger, limit), nil
}
