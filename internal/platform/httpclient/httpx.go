// internal/platform/httpclient/httpx.go

// Package httpclient provee el cliente HTTP compartido por los conectores:
// timeouts, rate limiting opcional y reintentos ante fallos de transporte y 5xx de gateway.
//
// Las respuestas de rate limit (429, 403) nunca se reintentan aquí. Cada conector
// aplica su propia resilience.Policy, así que el cliente las devuelve intactas.
package httpclient

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/rate"
)

// Client es un cliente HTTP con reintentos, rate limiting y timeout.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      logx.Logger
	config      Config
}

// Config contiene la configuración del cliente HTTP.
type Config struct {
	// Timeout por petición.
	// Default: 60 segundos
	Timeout time.Duration

	// MaxRetries son los intentos extra tras un error de transporte o 502/503/504.
	// Default: 2
	MaxRetries int

	// RetryBackoff es la espera inicial; se duplica en cada reintento.
	// Default: 1 segundo
	RetryBackoff time.Duration

	// MaxRetryBackoff acota la espera entre reintentos.
	// Default: 30 segundos
	MaxRetryBackoff time.Duration

	// UserAgent es el valor del header User-Agent.
	// Default: "slugscout/1.0"
	UserAgent string

	// RateLimit es el máximo de peticiones por segundo. 0 = sin límite.
	RateLimit float64

	// RateLimitBurst es el tamaño del burst.
	// Default: 1
	RateLimitBurst int

	// Transport reemplaza el round tripper subyacente (tests, proxies).
	Transport http.RoundTripper
}

const (
	defaultTimeout    = 60 * time.Second
	defaultBackoff    = 1 * time.Second
	defaultMaxBackoff = 30 * time.Second
	defaultUserAgent  = "slugscout/1.0"
)

// DefaultConfig retorna la configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Timeout:         defaultTimeout,
		MaxRetries:      2,
		RetryBackoff:    defaultBackoff,
		MaxRetryBackoff: defaultMaxBackoff,
		UserAgent:       defaultUserAgent,
		RateLimit:       0,
		RateLimitBurst:  1,
	}
}

// New crea un cliente HTTP con la configuración dada.
func New(config Config, logger logx.Logger) *Client {
	// Defaults para valores cero
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = defaultBackoff
	}
	if config.MaxRetryBackoff <= 0 {
		config.MaxRetryBackoff = defaultMaxBackoff
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.RateLimitBurst <= 0 {
		config.RateLimitBurst = 1
	}
	if logger == nil {
		logger = logx.NewSilent()
	}

	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	var rateLimiter *rate.Limiter
	if config.RateLimit > 0 {
		rateLimiter = rate.New(config.RateLimit, config.RateLimitBurst)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout, Transport: transport},
		rateLimiter: rateLimiter,
		logger:      logger.With("component", "httpclient"),
		config:      config,
	}
}

// Request ejecuta una petición con reintentos y rate limiting.
// Un body no se puede releer entre intentos, así que las peticiones con
// body se intentan una sola vez.
func (c *Client) Request(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	maxRetries := c.config.MaxRetries
	if body != nil {
		maxRetries = 0
	}

	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "rate limit wait failed")
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "build request %s %s: %v", method, url, err)
		}

		req.Header.Set("User-Agent", c.config.UserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		c.logger.Debug("HTTP request",
			"method", method,
			"url", url,
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
		)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Warn("HTTP request failed",
				"method", method,
				"url", url,
				"attempt", attempt+1,
				"error", err.Error(),
				"duration_ms", duration.Milliseconds(),
			)
			lastErr = classifyTransport(ctx, err)

			if ctx.Err() != nil || attempt >= maxRetries {
				return nil, errors.Wrapf(lastErr, "request failed after %d attempts", attempt+1)
			}
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, errors.Wrap(err, "backoff interrupted")
			}
			continue
		}

		c.logger.Debug("HTTP response received",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)

		if !isRetryableStatus(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		drain(resp)
		lastErr = errors.FromStatus(resp.StatusCode)
		c.logger.Warn("HTTP request returned retryable status",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)

		if err := c.backoff(ctx, attempt); err != nil {
			return nil, errors.Wrap(err, "backoff interrupted")
		}
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d attempts", maxRetries+1)
}

// Get ejecuta una petición GET.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, url, nil, headers)
}

// GetJSON es un GET que espera JSON. Los headers extra pisan el Accept.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	merged := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	return c.Get(ctx, url, merged)
}

// HTTPClient expone el *http.Client subyacente para SDKs que lo necesitan.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Close libera las conexiones ociosas.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// ReadBody lee el body de la respuesta y lo cierra.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidResponse, "read response body: "+err.Error())
	}

	return body, nil
}

// isRetryableStatus: fallos de gateway que se reintentan en silencio. 429 no está.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// backoff implementa backoff exponencial.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempt)))
	if backoff > c.config.MaxRetryBackoff {
		backoff = c.config.MaxRetryBackoff
	}

	c.logger.Debug("Backing off before retry",
		"attempt", attempt+1,
		"backoff_ms", backoff.Milliseconds(),
	)

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func classifyTransport(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrTimeout, err.Error())
	}
	if ctx.Err() != nil {
		return err
	}
	type timeout interface{ Timeout() bool }
	var te timeout
	if errors.As(err, &te) && te.Timeout() {
		return errors.Wrap(errors.ErrTimeout, err.Error())
	}
	return errors.Wrap(errors.ErrConnectionFailed, err.Error())
}

// drain descarta y cierra el body para reutilizar la conexión.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
