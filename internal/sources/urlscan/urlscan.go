// internal/sources/urlscan/urlscan.go

// Package urlscan pagina los resultados de búsqueda de urlscan.io por cada dominio del engine.
package urlscan

import (
	"context"
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
	defaultBaseURL    = "https://urlscan.io"
	pageSize          = 100
	defaultMaxResults = 10000
	defaultMaxRetries = 5
	defaultRetryWait  = 5 * time.Second
)

// Options ajusta la paginación y la política ante 429.
type Options struct {
	// MaxResults acota los resultados por dominio.
	MaxResults int
	// MaxRetries es el número de 429 consecutivos tolerados en una página.
	MaxRetries int
	// DefaultWait se usa cuando Retry-After falta o no se puede parsear.
	DefaultWait time.Duration
}

// Connector implementa ports.Connector para urlscan.io.
type Connector struct {
	*common.BaseConnector
	maxResults int
	policy     resilience.Policy
}

// New crea el conector de urlscan. Los campos en cero toman el default.
func New(cfg ports.ConnectorConfig, logger logx.Logger, opts Options) *Connector {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.DefaultWait <= 0 {
		opts.DefaultWait = defaultRetryWait
	}

	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:             domain.SourceURLScan,
			DefaultBaseURL:   defaultBaseURL,
			DefaultPageDelay: time.Second,
		}, logger),
		maxResults: opts.MaxResults,
		policy: resilience.Policy{
			MaxAttempts:     opts.MaxRetries,
			BaseDelay:       opts.DefaultWait,
			HonorRetryAfter: true,
			Scope:           resilience.ScopeDomain,
		},
	}
}

// Fetch busca cada dominio por turno.
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
		headers = map[string]string{"API-Key": key}
	}

	var hits []domain.DiscoveredSlug
	cursor := ""
	fetched := 0

	for fetched < c.maxResults {
		if err := c.Pace(ctx); err != nil {
			return hits, err
		}

		resp, throttled, err := c.GetWithPolicy(ctx, c.searchURL(d, cursor), headers, c.policy)
		if err != nil {
			return hits, errors.Wrapf(err, "urlscan %s", d)
		}
		if throttled {
			c.Logger().Warn("urlscan retries exhausted, abandoning domain", "domain", d, "fetched", fetched)
			return hits, nil
		}
		if err := c.CheckOK(resp); err != nil {
			return hits, errors.Wrapf(err, "urlscan %s", d)
		}

		page, err := parsePage(resp.Body)
		if err != nil {
			return hits, errors.Wrapf(err, "urlscan %s", d)
		}

		for _, r := range page.results {
			if hit, ok := c.ExtractHit(pattern, r.pageURL, r.time); ok {
				hits = append(hits, hit)
			}
			if r.taskURL == r.pageURL {
				continue
			}
			if hit, ok := c.ExtractHit(pattern, r.taskURL, r.time); ok {
				hits = append(hits, hit)
			}
		}

		fetched += len(page.results)
		if len(page.results) < pageSize || page.cursor == "" {
			break
		}
		cursor = page.cursor
	}

	c.Logger().Debug("urlscan domain completed", "engine", pattern.Name(), "domain", d, "results", fetched, "hits", len(hits))
	return hits, nil
}

func (c *Connector) searchURL(d, cursor string) string {
	q := url.Values{}
	q.Set("q", "domain:"+d)
	q.Set("size", "100")
	if cursor != "" {
		q.Set("search_after", cursor)
	}
	return c.BaseURL() + "/api/v1/search/?" + q.Encode()
}
