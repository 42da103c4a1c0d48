// internal/sources/alienvault/alienvault.go

// Package alienvault consulta la lista de URLs de AlienVault OTX por cada dominio del engine.
package alienvault

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/resilience"
	"slugscout/internal/sources/common"
)

const (
	defaultBaseURL  = "https://otx.alienvault.com"
	pageSize        = 500
	defaultMaxPages = 100
)

// Un 429 termina el dominio actual; el siguiente dominio se consulta igual.
var throttlePolicy = resilience.GiveUp(resilience.ScopeDomain)

// Connector implementa ports.Connector para AlienVault OTX.
type Connector struct {
	*common.BaseConnector
	maxPages int
}

type urlListResponse struct {
	URLList []struct {
		URL  string `json:"url"`
		Date string `json:"date"`
	} `json:"url_list"`
	HasNext bool `json:"has_next"`
}

// New crea el conector de AlienVault. La API key es opcional.
func New(cfg ports.ConnectorConfig, logger logx.Logger, maxPages int) *Connector {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:             domain.SourceAlienVault,
			DefaultBaseURL:   defaultBaseURL,
			DefaultPageDelay: time.Second,
		}, logger),
		maxPages: maxPages,
	}
}

// Fetch recorre la lista de URLs de cada dominio página a página.
func (c *Connector) Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	if c.SkipWithoutDomains(pattern) {
		return nil, nil
	}

	var hits []domain.DiscoveredSlug
	var errs []error
	for _, d := range pattern.Domains() {
		domainHits, err := c.fetchDomain(ctx, pattern, d)
		hits = append(hits, domainHits...)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return hits, errors.Join(errs...)
}

func (c *Connector) fetchDomain(ctx context.Context, pattern domain.EnginePattern, d string) ([]domain.DiscoveredSlug, error) {
	var headers map[string]string
	if key := c.APIKey(); key != "" {
		headers = map[string]string{"X-OTX-API-KEY": key}
	}

	var hits []domain.DiscoveredSlug
	for page := 1; page <= c.maxPages; page++ {
		if err := c.Pace(ctx); err != nil {
			return hits, err
		}

		resp, throttled, err := c.GetWithPolicy(ctx, c.pageURL(d, page), headers, throttlePolicy)
		if err != nil {
			c.Logger().Warn("otx request failed", "domain", d, "page", page, "error", err.Error())
			return hits, errors.Wrapf(err, "alienvault %s page %d", d, page)
		}
		if throttled {
			c.Logger().Warn("otx rate limited, skipping rest of domain", "domain", d, "page", page)
			return hits, nil
		}
		if err := c.CheckOK(resp); err != nil {
			return hits, errors.Wrapf(err, "alienvault %s page %d", d, page)
		}

		var body urlListResponse
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return hits, errors.Wrapf(errors.ErrInvalidResponse, "alienvault %s page %d: %v", d, page, err)
		}

		for _, entry := range body.URLList {
			if hit, ok := c.ExtractHit(pattern, entry.URL, entry.Date); ok {
				hits = append(hits, hit)
			}
		}

		if !body.HasNext || len(body.URLList) == 0 {
			break
		}
	}

	c.Logger().Debug("otx domain completed", "engine", pattern.Name(), "domain", d, "hits", len(hits))
	return hits, nil
}

func (c *Connector) pageURL(d string, page int) string {
	return fmt.Sprintf("%s/api/v1/indicators/domain/%s/url_list?limit=%d&page=%d",
		c.BaseURL(), url.PathEscape(d), pageSize, page)
}
