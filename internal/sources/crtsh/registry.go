// internal/sources/crtsh/registry.go
package crtsh

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
		domain.SourceCrtSh,
		factory,
		ports.ConnectorMetadata{
			Description:         "Certificate Transparency names via crt.sh (Postgres replica, HTTP fallback)",
			DomainKeyed:         true,
			NeedsSubdomainRegex: true,
			RateLimitScope:      resilience.ScopeDomain,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	var lookup NameLookup
	if registry.GetBoolConfig(cfg.Custom, "use_postgres", true) {
		timeout := registry.GetDurationConfig(cfg.Custom, "postgres_timeout", defaultQueryTimeout)
		if err := registry.ValidatePositiveDuration("crtsh.postgres_timeout", timeout); err != nil {
			return nil, err
		}
		lookup = NewPostgresLookup(
			registry.GetStringConfig(cfg.Custom, "postgres_dsn", DefaultDSN),
			timeout,
		)
	}
	return New(cfg, logger, lookup), nil
}

const defaultQueryTimeout = 30 * time.Second
