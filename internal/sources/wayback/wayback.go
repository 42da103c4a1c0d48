// internal/sources/wayback/wayback.go

// Package wayback consulta el servidor CDX del Internet Archive buscando capturas
// que coincidan con la plantilla de URL archivada del engine.
package wayback

import (
	"context"
	"net/url"
	"strconv"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/sources/common"
)

const (
	defaultBaseURL = "https://web.archive.org"
	cdxPath        = "/cdx/search/cdx"
	defaultLimit   = 10000
)

// Connector implementa ports.Connector para la Wayback Machine.
type Connector struct {
	*common.BaseConnector
	limit int
}

// New crea el conector de Wayback. limit acota las filas que retorna el servidor CDX.
func New(cfg ports.ConnectorConfig, logger logx.Logger, limit int) *Connector {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:           domain.SourceWayback,
			DefaultBaseURL: defaultBaseURL,
		}, logger),
		limit: limit,
	}
}

// Fetch lanza una única consulta CDX. Los errores se retornan junto con las
// filas que se llegaron a parsear.
func (c *Connector) Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	template := pattern.ArchiveURLTemplate()
	if template == "" {
		c.Logger().Debug("no archive template, skipping", "engine", pattern.Name())
		return nil, nil
	}

	resp, err := c.Get(ctx, c.queryURL(template), nil)
	if err != nil {
		c.Logger().Warn("wayback request failed", "engine", pattern.Name(), "error", err.Error())
		return nil, err
	}
	if err := c.CheckOK(resp); err != nil {
		c.Logger().Warn("wayback returned error status", "engine", pattern.Name(), "status", resp.Status)
		return nil, err
	}

	rows, err := parseRows(resp.Body)
	if err != nil {
		c.Logger().Warn("wayback response malformed", "engine", pattern.Name(), "error", err.Error())
		return nil, errors.Wrapf(err, "wayback %s", pattern.Name())
	}

	hits := make([]domain.DiscoveredSlug, 0, len(rows))
	for _, row := range rows {
		if hit, ok := c.ExtractHit(pattern, row.original, row.timestamp); ok {
			hits = append(hits, hit)
		}
	}

	c.Logger().Info("wayback query completed",
		"engine", pattern.Name(),
		"captures", len(rows),
		"hits", len(hits),
	)
	return hits, nil
}

func (c *Connector) queryURL(template string) string {
	q := url.Values{}
	q.Set("url", template)
	q.Set("output", "json")
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("fl", "original,timestamp")
	q.Set("collapse", "urlkey")
	q.Set("filter", "statuscode:200")
	return c.BaseURL() + cdxPath + "?" + q.Encode()
}
