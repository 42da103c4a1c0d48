// internal/sources/urlscan/registry.go
package urlscan

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
		domain.SourceURLScan,
		factory,
		ports.ConnectorMetadata{
			Description:      "urlscan.io search API with search_after cursor",
			DomainKeyed:      true,
			DefaultPageDelay: time.Second,
			RateLimitScope:   resilience.ScopeDomain,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	opts := Options{
		MaxResults:  registry.GetIntConfig(cfg.Custom, "max_results", defaultMaxResults),
		MaxRetries:  registry.GetIntConfig(cfg.Custom, "max_retries", defaultMaxRetries),
		DefaultWait: registry.GetDurationConfig(cfg.Custom, "default_wait", defaultRetryWait),
	}
	if err := registry.ValidateIntRange("urlscan.max_results", opts.MaxResults, 1, defaultMaxResults); err != nil {
		return nil, err
	}
	if err := registry.ValidatePositiveInt("urlscan.max_retries", opts.MaxRetries); err != nil {
		return nil, err
	}
	if err := registry.ValidatePositiveDuration("urlscan.default_wait", opts.DefaultWait); err != nil {
		return nil, err
	}
	return New(cfg, logger, opts), nil
}
