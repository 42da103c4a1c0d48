// internal/sources/alienvault/registry.go
package alienvault

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
		domain.SourceAlienVault,
		factory,
		ports.ConnectorMetadata{
			Description:      "AlienVault OTX passive URL list per domain",
			DomainKeyed:      true,
			DefaultPageDelay: time.Second,
			RateLimitScope:   resilience.ScopeDomain,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	maxPages := registry.GetIntConfig(cfg.Custom, "max_pages", defaultMaxPages)
	if err := registry.ValidatePositiveInt("alienvault.max_pages", maxPages); err != nil {
		return nil, err
	}
	return New(cfg, logger, maxPages), nil
}
