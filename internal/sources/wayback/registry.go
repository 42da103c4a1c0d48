// internal/sources/wayback/registry.go
package wayback

import (
	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/registry"
)

// Auto-registro al importar el paquete
func init() {
	registry.Global().MustRegister(
		domain.SourceWayback,
		factory,
		ports.ConnectorMetadata{
			Description: "Wayback Machine CDX server (Internet Archive)",
			DomainKeyed: false,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	limit := registry.GetIntConfig(cfg.Custom, "limit", defaultLimit)
	if err := registry.ValidatePositiveInt("wayback.limit", limit); err != nil {
		return nil, err
	}
	return New(cfg, logger, limit), nil
}
