// internal/sources/arquivo/arquivo.go

// Package arquivo consulta el índice CDX de Arquivo.pt por cada dominio del engine.
package arquivo

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/resilience"
	"slugscout/internal/sources/common"
)

const (
	defaultBaseURL = "https://arquivo.pt"
	defaultLimit   = 5000
)

var throttlePolicy = resilience.GiveUp(resilience.ScopeDomain)

// Connector implementa ports.Connector para Arquivo.pt.
type Connector struct {
	*common.BaseConnector
	limit int
}

// New crea el conector de Arquivo.pt.
func New(cfg ports.ConnectorConfig, logger logx.Logger, limit int) *Connector {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:             domain.SourceArquivo,
			DefaultBaseURL:   defaultBaseURL,
			DefaultPageDelay: 500 * time.Millisecond,
		}, logger),
		limit: limit,
	}
}

// Fetch lanza una consulta CDX por dominio.
func (c *Connector) Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	if c.SkipWithoutDomains(pattern) {
		return nil, nil
	}

	var hits []domain.DiscoveredSlug
	var errs []error
	for _, d := range pattern.Domains() {
		if err := c.Pace(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		domainHits, err := c.fetchDomain(ctx, pattern, d)
		hits = append(hits, domainHits...)
		if err != nil {
			c.Logger().Warn("arquivo query failed", "domain", d, "error", err.Error())
			errs = append(errs, err)
		}
	}
	return hits, errors.Join(errs...)
}

func (c *Connector) fetchDomain(ctx context.Context, pattern domain.EnginePattern, d string) ([]domain.DiscoveredSlug, error) {
	q := url.Values{}
	q.Set("url", d)
	q.Set("matchType", "domain")
	q.Set("output", "json")
	q.Set("limit", strconv.Itoa(c.limit))

	resp, throttled, err := c.GetWithPolicy(ctx, c.BaseURL()+"/wayback/cdx?"+q.Encode(), nil, throttlePolicy)
	if err != nil {
		return nil, errors.Wrapf(err, "arquivo %s", d)
	}
	if throttled {
		c.Logger().Warn("arquivo rate limited, skipping domain", "domain", d)
		return nil, nil
	}
	if err := c.CheckOK(resp); err != nil {
		return nil, errors.Wrapf(err, "arquivo %s", d)
	}

	rows, err := parseRows(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "arquivo %s", d)
	}

	var hits []domain.DiscoveredSlug
	for _, r := range rows {
		if hit, ok := c.ExtractHit(pattern, r.original, r.timestamp); ok {
			hits = append(hits, hit)
		}
	}
	c.Logger().Debug("arquivo domain completed", "engine", pattern.Name(), "domain", d, "rows", len(rows), "hits", len(hits))
	return hits, nil
}
