// internal/sources/virustotal/virustotal.go

// Package virustotal lista las URLs que VirusTotal vio bajo cada dominio del engine.
package virustotal

import (
	"context"
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
	defaultBaseURL   = "https://www.virustotal.com"
	pageLimit        = 40
	defaultMaxPages  = 50
	defaultRetryWait = 60 * time.Second
	maxAttempts      = 3
)

// Options ajusta la paginación y la espera ante 429.
type Options struct {
	MaxPages  int
	RetryWait time.Duration
}

// Connector implementa ports.Connector para VirusTotal.
type Connector struct {
	*common.BaseConnector
	maxPages int
	policy   resilience.Policy
}

// New crea el conector de VirusTotal. Sin API key Fetch no hace nada.
func New(cfg ports.ConnectorConfig, logger logx.Logger, opts Options) *Connector {
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}

	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:           domain.SourceVirusTotal,
			DefaultBaseURL: defaultBaseURL,
			// La cuota pública es de 4 peticiones por minuto.
			DefaultPageDelay: 15 * time.Second,
		}, logger),
		maxPages: opts.MaxPages,
		policy: resilience.Policy{
			MaxAttempts: maxAttempts,
			BaseDelay:   opts.RetryWait,
			Scope:       resilience.ScopeDomain,
		},
	}
}

// Fetch sigue links.next en cada dominio.
func (c *Connector) Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	if c.SkipWithoutKey() {
		return nil, nil
	}
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
	headers := map[string]string{"x-apikey": c.APIKey()}
	next := fmt.Sprintf("%s/api/v3/domains/%s/urls?limit=%d", c.BaseURL(), url.PathEscape(d), pageLimit)

	var hits []domain.DiscoveredSlug
	for page := 1; next != "" && page <= c.maxPages; page++ {
		if err := c.Pace(ctx); err != nil {
			return hits, err
		}

		resp, throttled, err := c.GetWithPolicy(ctx, next, headers, c.policy)
		if err != nil {
			return hits, errors.Wrapf(err, "virustotal %s page %d", d, page)
		}
		if throttled {
			c.Logger().Warn("virustotal quota exhausted, abandoning domain", "domain", d, "page", page)
			return hits, nil
		}
		if err := c.CheckOK(resp); err != nil {
			return hits, errors.Wrapf(err, "virustotal %s page %d", d, page)
		}

		entries, cursor, err := parsePage(resp.Body)
		if err != nil {
			return hits, errors.Wrapf(err, "virustotal %s page %d", d, page)
		}
		for _, e := range entries {
			if hit, ok := c.ExtractHit(pattern, e.url, e.timestamp); ok {
				hits = append(hits, hit)
			}
		}

		if len(entries) == 0 {
			break
		}
		next = cursor
	}

	c.Logger().Debug("virustotal domain completed", "engine", pattern.Name(), "domain", d, "hits", len(hits))
	return hits, nil
}
