// internal/sources/github/github.go

// Package github busca en código público URLs de reserva embebidas en
// configuración y markup.
package github

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v30/github"
	"golang.org/x/oauth2"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/resilience"
	"slugscout/internal/sources/common"
)

const (
	defaultBaseURL  = "https://api.github.com"
	perPage         = 100
	defaultMaxPages = 10
)

// errStop indica que GitHub limitó el token; se omite el resto de la llamada.
var errStop = errors.New("github rate limited")

// Connector implementa ports.Connector sobre la búsqueda de código de GitHub.
type Connector struct {
	*common.BaseConnector
	client   *gh.Client
	maxPages int
}

// New crea el conector de GitHub. La búsqueda de código requiere token;
// sin él Fetch no hace nada.
func New(cfg ports.ConnectorConfig, logger logx.Logger, maxPages int) (*Connector, error) {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	c := &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:             domain.SourceGitHub,
			DefaultBaseURL:   defaultBaseURL,
			DefaultPageDelay: 2 * time.Second,
		}, logger),
		maxPages: maxPages,
	}

	httpClient := c.Client().HTTPClient()
	if token := c.APIKey(); token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	c.client = gh.NewClient(httpClient)
	base, err := url.Parse(c.BaseURL() + "/")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "github base url: %v", err)
	}
	c.client.BaseURL = base
	return c, nil
}

// Fetch ejecuta una búsqueda de código por dominio.
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
		domainHits, err := c.searchDomain(ctx, pattern, d)
		hits = append(hits, domainHits...)
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return hits, errors.Join(errs...)
}

func (c *Connector) searchDomain(ctx context.Context, pattern domain.EnginePattern, d string) ([]domain.DiscoveredSlug, error) {
	query := strconv.Quote(d)
	opts := &gh.SearchOptions{
		TextMatch:   true,
		ListOptions: gh.ListOptions{PerPage: perPage, Page: 1},
	}

	var hits []domain.DiscoveredSlug
	for page := 1; page <= c.maxPages; page++ {
		if err := c.Pace(ctx); err != nil {
			return hits, err
		}

		result, resp, err := c.client.Search.Code(ctx, query, opts)
		if err != nil {
			if c.rateLimited(err) {
				return hits, errStop
			}
			return hits, errors.Wrapf(errors.ErrConnectionFailed, "github search %s page %d: %v", d, page, err)
		}

		for _, item := range result.CodeResults {
			hits = append(hits, c.fromCodeResult(pattern, item)...)
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.Logger().Debug("github domain completed", "engine", pattern.Name(), "domain", d, "hits", len(hits))
	return hits, nil
}

func (c *Connector) fromCodeResult(pattern domain.EnginePattern, item *gh.CodeResult) []domain.DiscoveredSlug {
	if item == nil {
		return nil
	}
	var hits []domain.DiscoveredSlug
	for _, tm := range item.TextMatches {
		for _, line := range strings.Split(tm.GetFragment(), "\n") {
			hit, ok := c.ExtractHit(pattern, strings.TrimSpace(line), "")
			if !ok {
				continue
			}
			hit.SourceURL = item.GetHTMLURL()
			hits = append(hits, hit)
		}
	}
	return hits
}

// rateLimited loguea y reporta si err significa que el token está agotado.
func (c *Connector) rateLimited(err error) bool {
	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		c.Logger().Warn("github rate limit reached, stopping", "reset", rle.Rate.Reset.Time.Format(time.RFC3339))
		return true
	}
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) {
		var wait time.Duration
		if abuse.RetryAfter != nil {
			wait = *abuse.RetryAfter
		}
		c.Logger().Warn("github secondary rate limit reached, stopping", "retry_after", wait.String())
		return true
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusForbidden {
		kv := []any{"status", er.Response.StatusCode}
		if reset := resilience.ResetAt(er.Response.Header, "X-RateLimit-Reset"); !reset.IsZero() {
			kv = append(kv, "reset", reset.UTC().Format(time.RFC3339))
		}
		c.Logger().Warn("github returned 403, stopping", kv...)
		return true
	}
	return false
}
