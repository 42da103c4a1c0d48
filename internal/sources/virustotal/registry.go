// internal/sources/virustotal/registry.go
package virustotal

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
		domain.SourceVirusTotal,
		factory,
		ports.ConnectorMetadata{
			Description:      "VirusTotal v3 domain URL relationships",
			RequiresAuth:     true,
			DomainKeyed:      true,
			DefaultPageDelay: 15 * time.Second,
			RateLimitScope:   resilience.ScopeDomain,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	opts := Options{
		MaxPages:  registry.GetIntConfig(cfg.Custom, "max_pages", defaultMaxPages),
		RetryWait: registry.GetDurationConfig(cfg.Custom, "retry_wait", defaultRetryWait),
	}
	if err := registry.ValidatePositiveInt("virustotal.max_pages", opts.MaxPages); err != nil {
		return nil, err
	}
	if err := registry.ValidatePositiveDuration("virustotal.retry_wait", opts.RetryWait); err != nil {
		return nil, err
	}
	return New(cfg, logger, opts), nil
}
