// internal/sources/github/registry.go
package github

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
		domain.SourceGitHub,
		factory,
		ports.ConnectorMetadata{
			Description:      "GitHub code search text matches",
			RequiresAuth:     true,
			DomainKeyed:      true,
			DefaultPageDelay: 2 * time.Second,
			RateLimitScope:   resilience.ScopeSource,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	maxPages := registry.GetIntConfig(cfg.Custom, "max_pages", defaultMaxPages)
	if err := registry.ValidateIntRange("github.max_pages", maxPages, 1, 10); err != nil {
		return nil, err
	}
	c, err := New(cfg, logger, maxPages)
	if err != nil {
		return nil, err
	}
	return c, nil
}
