// internal/sources/commoncrawl/commoncrawl.go

// Package commoncrawl consulta los índices CDX de cada crawl de Common Crawl.
package commoncrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/sources/common"
)

const (
	defaultBaseURL = "https://index.commoncrawl.org"
	collInfoPath   = "/collinfo.json"
	defaultLimit   = 10000

	// DefaultIndexCount cubre unos dos años de crawls mensuales.
	DefaultIndexCount = 40
)

// Mode elige qué índices consulta Fetch.
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeLatest     Mode = "latest"
)

// Options configura un Connector.
type Options struct {
	Mode       Mode
	IndexCount int
	Limit      int
}

// Index es el endpoint CDX de un crawl tal como aparece en collinfo.json.
type Index struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	CDXAPI string `json:"cdx-api"`
}

// Connector implementa ports.Connector para Common Crawl.
type Connector struct {
	*common.BaseConnector
	opts Options
}

// New crea el conector de Common Crawl.
func New(cfg ports.ConnectorConfig, logger logx.Logger, opts Options) *Connector {
	if opts.Mode == "" {
		opts.Mode = ModeHistorical
	}
	if opts.IndexCount <= 0 {
		opts.IndexCount = DefaultIndexCount
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}
	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:             domain.SourceCommonCrawl,
			DefaultBaseURL:   defaultBaseURL,
			DefaultPageDelay: defaultIndexDelay,
		}, logger),
		opts: opts,
	}
}

// Fetch despacha según el modo configurado.
func (c *Connector) Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	if pattern.IndexURLTemplate() == "" {
		c.Logger().Debug("no index template, skipping", "engine", pattern.Name())
		return nil, nil
	}
	if c.opts.Mode == ModeLatest {
		return c.QueryLatest(ctx, pattern)
	}
	return c.QueryHistorical(ctx, pattern, c.opts.IndexCount)
}

// ListIndexes retorna los índices disponibles, el más reciente primero.
// Cualquier fallo retorna una lista vacía.
func (c *Connector) ListIndexes(ctx context.Context) []Index {
	resp, err := c.Get(ctx, c.BaseURL()+collInfoPath, nil)
	if err != nil {
		c.Logger().Warn("collinfo request failed", "error", err.Error())
		return nil
	}
	if err := c.CheckOK(resp); err != nil {
		c.Logger().Warn("collinfo returned error status", "status", resp.Status)
		return nil
	}

	var indexes []Index
	if err := json.Unmarshal(resp.Body, &indexes); err != nil {
		c.Logger().Warn("collinfo malformed", "error", err.Error())
		return nil
	}

	out := indexes[:0]
	for _, idx := range indexes {
		if idx.CDXAPI != "" {
			out = append(out, idx)
		}
	}
	return out
}

// QueryLatest consulta solo el índice más reciente.
func (c *Connector) QueryLatest(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	return c.QueryHistorical(ctx, pattern, 1)
}

// QueryHistorical recorre los n índices más recientes. Un slug ya emitido
// por un índice más nuevo no se repite. Un índice que falla se loguea y
// se salta; su error se retorna unido a los demás al terminar el barrido.
func (c *Connector) QueryHistorical(ctx context.Context, pattern domain.EnginePattern, n int) ([]domain.DiscoveredSlug, error) {
	indexes := c.ListIndexes(ctx)
	if len(indexes) == 0 {
		c.Logger().Warn("no common crawl indexes available", "engine", pattern.Name())
		return nil, nil
	}
	if n <= 0 {
		n = DefaultIndexCount
	}
	if n > len(indexes) {
		n = len(indexes)
	}

	sweep := &sweep{seen: make(map[string]struct{})}
	var errs []error

	for _, idx := range indexes[:n] {
		if err := c.Pace(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		added, err := c.queryIndex(ctx, idx, pattern, sweep)
		if err != nil {
			c.Logger().Warn("index query failed, continuing",
				"engine", pattern.Name(),
				"index", idx.ID,
				"error", err.Error(),
			)
			errs = append(errs, errors.Wrapf(err, "index %s", idx.ID))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		c.Logger().Debug("index queried", "engine", pattern.Name(), "index", idx.ID, "new_hits", added)
	}

	c.Logger().Info("common crawl sweep completed",
		"engine", pattern.Name(),
		"indexes", n,
		"hits", len(sweep.hits),
		"failed_indexes", len(errs),
	)
	return sweep.hits, errors.Join(errs...)
}

// sweep lleva el estado de una llamada a QueryHistorical.
type sweep struct {
	seen map[string]struct{}
	hits []domain.DiscoveredSlug
}

func (s *sweep) add(hit domain.DiscoveredSlug) bool {
	key := hit.Key()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.hits = append(s.hits, hit)
	return true
}

func (c *Connector) queryIndex(ctx context.Context, idx Index, pattern domain.EnginePattern, s *sweep) (int, error) {
	q := url.Values{}
	q.Set("url", pattern.IndexURLTemplate())
	q.Set("output", "json")
	q.Set("limit", strconv.Itoa(c.opts.Limit))

	sep := "?"
	if strings.Contains(idx.CDXAPI, "?") {
		sep = "&"
	}

	resp, err := c.Get(ctx, idx.CDXAPI+sep+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	// El servidor CDX responde 404 cuando el índice no tiene capturas del patrón.
	if resp.Status == http.StatusNotFound {
		return 0, nil
	}
	if err := c.CheckOK(resp); err != nil {
		return 0, err
	}

	added := 0
	err = parseRecords(resp.Body, func(rec record) {
		if hit, ok := c.ExtractHit(pattern, rec.url, rec.timestamp); ok && s.add(hit) {
			added++
		}
	})
	return added, err
}
