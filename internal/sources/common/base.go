// internal/sources/common/base.go

// Package common contiene la infraestructura compartida por los conectores.
package common

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/extract"
	"slugscout/internal/platform/httpclient"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/rate"
	"slugscout/internal/platform/resilience"
)

// BaseConnector provee la funcionalidad común de los conectores HTTP:
// peticiones, espaciado de páginas, políticas de rate limit y construcción de hits.
//
// Uso:
//  1. Embeber *BaseConnector en el struct del conector
//  2. Construirlo con NewBaseConnector desde el ConnectorConfig
//  3. Llamar GetWithPolicy / Pace / NewHit desde Fetch
type BaseConnector struct {
	name    domain.ArchiveSource
	client  *httpclient.Client
	logger  logx.Logger
	pacer   *rate.Limiter
	sleep   resilience.SleepFunc
	baseURL string
	apiKey  string
	custom  map[string]interface{}

	credOnce sync.Once
}

// BaseConfig contiene los defaults del conector para los campos que
// ConnectorConfig deja en cero.
type BaseConfig struct {
	Name             domain.ArchiveSource
	DefaultBaseURL   string
	DefaultPageDelay time.Duration
	UserAgent        string
}

// Response es una respuesta HTTP leída por completo.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewBaseConnector construye el estado compartido desde cfg y los defaults.
func NewBaseConnector(cfg ports.ConnectorConfig, def BaseConfig, logger logx.Logger) *BaseConnector {
	if logger == nil {
		logger = logx.NewSilent()
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	httpCfg.MaxRetries = cfg.Retries
	httpCfg.RateLimit = cfg.RateLimit
	if def.UserAgent != "" {
		httpCfg.UserAgent = def.UserAgent
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = def.DefaultBaseURL
	}

	// PageDelay < 0 desactiva el espaciado; 0 toma el default de la fuente.
	pageDelay := cfg.PageDelay
	switch {
	case pageDelay < 0:
		pageDelay = 0
	case pageDelay == 0:
		pageDelay = def.DefaultPageDelay
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = resilience.Sleep
	}

	scoped := logger.With("source", def.Name.String())

	return &BaseConnector{
		name:    def.Name,
		client:  httpclient.New(httpCfg, scoped),
		logger:  scoped,
		pacer:   rate.NewEvery(pageDelay),
		sleep:   sleep,
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		custom:  cfg.Custom,
	}
}

// Name retorna la fuente del conector.
func (b *BaseConnector) Name() domain.ArchiveSource { return b.name }

// Logger retorna el logger con el campo source.
func (b *BaseConnector) Logger() logx.Logger { return b.logger }

// Client retorna el cliente HTTP del conector.
func (b *BaseConnector) Client() *httpclient.Client { return b.client }

// BaseURL retorna la raíz del endpoint sin barra final.
func (b *BaseConnector) BaseURL() string { return b.baseURL }

// APIKey retorna la credencial configurada, posiblemente vacía.
func (b *BaseConnector) APIKey() string { return b.apiKey }

// Custom retorna los ajustes específicos del conector.
func (b *BaseConnector) Custom() map[string]interface{} { return b.custom }

// Close libera las conexiones HTTP ociosas.
func (b *BaseConnector) Close() error {
	return b.client.Close()
}

// Pace bloquea hasta que se pueda pedir la siguiente página.
// La primera llamada retorna inmediatamente.
func (b *BaseConnector) Pace(ctx context.Context) error {
	return b.pacer.Wait(ctx)
}

// Sleep espera con la función inyectada.
func (b *BaseConnector) Sleep(ctx context.Context, d time.Duration) error {
	return b.sleep(ctx, d)
}

// Get hace un GET y lee el body completo. Un status no-2xx no es error;
// el llamador revisa Response.Status. err indica fallos de transporte o lectura.
func (b *BaseConnector) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := b.client.GetJSON(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// GetWithPolicy hace un GET y aplica policy a las respuestas 429, esperando y
// repitiendo la misma URL mientras la política lo permita. throttled es true
// cuando la política se rinde; resp es nil y el llamador abandona policy.Scope.
func (b *BaseConnector) GetWithPolicy(ctx context.Context, url string, headers map[string]string, policy resilience.Policy) (resp *Response, throttled bool, err error) {
	for attempt := 1; ; attempt++ {
		resp, err = b.Get(ctx, url, headers)
		if err != nil {
			return nil, false, err
		}
		if resp.Status != http.StatusTooManyRequests {
			return resp, false, nil
		}

		decision := policy.Next(attempt, resp.Header)
		if !decision.Retry {
			b.logger.Warn("rate limited, giving up",
				"url", url,
				"attempts", attempt,
				"scope", policy.Scope.String(),
			)
			return nil, true, nil
		}

		b.logger.Info("rate limited, waiting before retry",
			"url", url,
			"attempt", attempt,
			"wait", decision.Wait,
		)
		if err := b.Sleep(ctx, decision.Wait); err != nil {
			return nil, false, err
		}
	}
}

// CheckOK convierte una respuesta no-2xx en un error de status con la fuente.
func (b *BaseConnector) CheckOK(resp *Response) error {
	if err := errors.FromStatus(resp.Status); err != nil {
		return errors.Wrapf(err, "%s returned HTTP %d", b.name, resp.Status)
	}
	return nil
}

// NewHit construye un DiscoveredSlug de esta fuente.
func (b *BaseConnector) NewHit(pattern domain.EnginePattern, slug, sourceURL, timestamp string) domain.DiscoveredSlug {
	return domain.DiscoveredSlug{
		Engine:        pattern.Name(),
		Slug:          slug,
		SourceURL:     sourceURL,
		ArchiveSource: b.name,
		Timestamp:     timestamp,
	}
}

// ExtractHit aplica la regex del patrón sobre rawURL y construye el hit si hay match.
func (b *BaseConnector) ExtractHit(pattern domain.EnginePattern, rawURL, timestamp string) (domain.DiscoveredSlug, bool) {
	slug, ok := extract.Slug(rawURL, pattern.SlugRegex())
	if !ok {
		return domain.DiscoveredSlug{}, false
	}
	return b.NewHit(pattern, slug, rawURL, timestamp), true
}

// SkipWithoutDomains reporta (y loguea) si un conector por dominio no tiene nada que consultar.
func (b *BaseConnector) SkipWithoutDomains(pattern domain.EnginePattern) bool {
	if pattern.HasDomains() {
		return false
	}
	b.logger.Debug("no domains for engine, skipping", "engine", pattern.Name())
	return true
}

// SkipWithoutKey reporta si el conector no tiene credencial. El aviso con
// errors.ErrMissingCredential se emite una sola vez por conector.
func (b *BaseConnector) SkipWithoutKey() bool {
	if b.apiKey != "" {
		return false
	}
	b.credOnce.Do(func() {
		b.logger.Warn("no api key configured, skipping source", "error", errors.ErrMissingCredential)
	})
	return true
}

// LineHandler procesa una línea de un body delimitado por saltos de línea.
// Retornar error detiene el escaneo.
type LineHandler func(line []byte) error

// ScanLines pasa cada línea no vacía de r a handler. Acepta líneas de hasta 10MB.
func ScanLines(r io.Reader, handler LineHandler) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := handler(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(errors.ErrInvalidResponse, fmt.Sprintf("scan lines: %v", err))
	}
	return nil
}
