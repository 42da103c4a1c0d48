// internal/sources/commoncrawl/registry.go
package commoncrawl

import (
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/registry"
)

// Auto-registro al importar el paquete
func init() {
	registry.Global().MustRegister(
		domain.SourceCommonCrawl,
		factory,
		ports.ConnectorMetadata{
			Description:      "Common Crawl CDX indexes (latest or historical sweep)",
			DefaultPageDelay: defaultIndexDelay,
		},
	)
}

func factory(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error) {
	opts := Options{
		Mode:       Mode(registry.GetStringConfig(cfg.Custom, "mode", string(ModeHistorical))),
		IndexCount: registry.GetIntConfig(cfg.Custom, "indexes", DefaultIndexCount),
		Limit:      registry.GetIntConfig(cfg.Custom, "limit", defaultLimit),
	}
	if err := registry.ValidateEnum("commoncrawl.mode", string(opts.Mode), []string{string(ModeHistorical), string(ModeLatest)}); err != nil {
		return nil, err
	}
	if err := registry.ValidatePositiveInt("commoncrawl.indexes", opts.IndexCount); err != nil {
		return nil, err
	}
	if err := registry.ValidatePositiveInt("commoncrawl.limit", opts.Limit); err != nil {
		return nil, err
	}
	return New(cfg, logger, opts), nil
}

const defaultIndexDelay = 300 * time.Millisecond
