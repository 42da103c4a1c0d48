// internal/sources/crtsh/crtsh.go

// Package crtsh convierte nombres de certificate transparency en slugs para
// los engines que dan a cada propiedad su propio subdominio.
package crtsh

import (
	"context"
	"fmt"
	"net/url"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/extract"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/resilience"
	"slugscout/internal/sources/common"
)

const defaultBaseURL = "https://crt.sh"

var throttlePolicy = resilience.GiveUp(resilience.ScopeDomain)

// Connector implementa ports.Connector para crt.sh.
type Connector struct {
	*common.BaseConnector
	lookup NameLookup
}

// New crea el conector de crt.sh. Con lookup nil va directo a HTTP.
func New(cfg ports.ConnectorConfig, logger logx.Logger, lookup NameLookup) *Connector {
	return &Connector{
		BaseConnector: common.NewBaseConnector(cfg, common.BaseConfig{
			Name:           domain.SourceCrtSh,
			DefaultBaseURL: defaultBaseURL,
		}, logger),
		lookup: lookup,
	}
}

// Fetch resuelve los nombres de certificado por dominio y extrae slugs con la
// regex de subdominio del patrón.
func (c *Connector) Fetch(ctx context.Context, pattern domain.EnginePattern) ([]domain.DiscoveredSlug, error) {
	subRe, ok := pattern.SubdomainRegex()
	if !ok {
		c.Logger().Debug("no subdomain regex, skipping", "engine", pattern.Name())
		return nil, nil
	}
	if c.SkipWithoutDomains(pattern) {
		return nil, nil
	}

	var hits []domain.DiscoveredSlug
	var errs []error
	for _, d := range pattern.Domains() {
		names, err := c.names(ctx, d)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}

		before := len(hits)
		for _, name := range candidates(names, d) {
			slug, ok := extract.Slug(name, subRe)
			if !ok {
				continue
			}
			hits = append(hits, c.NewHit(pattern, slug, "https://"+name, ""))
		}
		c.Logger().Debug("crtsh domain completed", "engine", pattern.Name(), "domain", d, "names", len(names), "hits", len(hits)-before)
	}
	return hits, errors.Join(errs...)
}

func (c *Connector) names(ctx context.Context, d string) ([]string, error) {
	if c.lookup != nil {
		names, err := c.lookup.Names(ctx, d)
		if err == nil {
			return names, nil
		}
		c.Logger().Info("postgres lookup failed, falling back to HTTP", "domain", d, "error", err.Error())
	}
	return c.httpNames(ctx, d)
}

func (c *Connector) httpNames(ctx context.Context, d string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&output=json", c.BaseURL(), url.QueryEscape("%."+d))

	resp, throttled, err := c.GetWithPolicy(ctx, endpoint, nil, throttlePolicy)
	if err != nil {
		return nil, errors.Wrapf(err, "crtsh %s", d)
	}
	if throttled {
		return nil, nil
	}
	if err := c.CheckOK(resp); err != nil {
		return nil, errors.Wrapf(err, "crtsh %s", d)
	}

	names, err := parseNames(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "crtsh %s", d)
	}
	return names, nil
}
