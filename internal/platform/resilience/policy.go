// internal/platform/resilience/policy.go

// Package resilience contiene las políticas de backoff ante rate limit de los conectores.
//
// Cada archivo señala el throttling a su manera (429 con o sin Retry-After,
// 403 con header de reset) y cada conector reacciona distinto: abandonar el
// dominio actual, esperar y repetir la misma página, o detener toda la fuente.
// Una Policy captura una de esas reacciones para compartir la mecánica sin
// compartir la semántica.
package resilience

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Scope es lo que un conector abandona cuando la Policy agota sus intentos.
type Scope int

const (
	// ScopeDomain descarta las páginas restantes del dominio actual.
	ScopeDomain Scope = iota
	// ScopeSource detiene el conector durante el resto de la llamada.
	ScopeSource
)

func (s Scope) String() string {
	switch s {
	case ScopeDomain:
		return "domain"
	case ScopeSource:
		return "source"
	default:
		return "unknown"
	}
}

// Policy describe cómo reacciona un conector ante una respuesta de rate limit.
type Policy struct {
	// MaxAttempts incluye el primer intento. Valores <= 1 = nunca reintentar.
	MaxAttempts int

	// BaseDelay es la espera antes de cada reintento, y el fallback cuando
	// se espera un Retry-After que falta o no se puede parsear.
	BaseDelay time.Duration

	// HonorRetryAfter usa el header Retry-After para la espera.
	HonorRetryAfter bool

	// MaxDelay acota las esperas del header. Cero = sin tope.
	MaxDelay time.Duration

	Scope Scope
}

// Decision es el resultado de consultar la Policy tras un intento limitado.
type Decision struct {
	Retry bool
	Wait  time.Duration
}

// GiveUp nunca reintenta y abandona el scope indicado.
func GiveUp(scope Scope) Policy {
	return Policy{MaxAttempts: 1, Scope: scope}
}

// Next decide si reintentar tras la respuesta limitada número attempt
// (empieza en 1) y cuánto esperar antes.
func (p Policy) Next(attempt int, header http.Header) Decision {
	if p.MaxAttempts <= 1 || attempt >= p.MaxAttempts {
		return Decision{Retry: false}
	}

	wait := p.BaseDelay
	if p.HonorRetryAfter {
		wait = RetryAfter(header, p.BaseDelay)
	}
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		wait = p.MaxDelay
	}
	return Decision{Retry: true, Wait: wait}
}

// RetryAfter parsea Retry-After en segundos o como fecha HTTP.
// Ausente, negativo o inválido retorna fallback.
func RetryAfter(header http.Header, fallback time.Duration) time.Duration {
	if header == nil {
		return fallback
	}
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return fallback
}

// ResetAt parsea un header de reset en segundos epoch (X-RateLimit-Reset).
// Retorna el tiempo cero si falta o es inválido.
func ResetAt(header http.Header, key string) time.Time {
	if header == nil {
		return time.Time{}
	}
	v := strings.TrimSpace(header.Get(key))
	if v == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
