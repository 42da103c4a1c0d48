// internal/platform/rate/rate.go

// Package rate espacia las peticiones salientes hacia archivos y fuentes OSINT.
// Es una capa fina sobre golang.org/x/time/rate.
package rate

import (
	"context"
	"time"

	xrate "golang.org/x/time/rate"
)

// Limiter es un token bucket.
type Limiter struct {
	lim *xrate.Limiter
}

// New crea un limitador de rps peticiones por segundo con el burst indicado.
// Los valores no positivos se fijan en 1.
//
// Ejemplo:
//
//	limiter := rate.New(10, 5) // 10 req/s, burst de 5
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{lim: xrate.NewLimiter(xrate.Limit(rps), burst)}
}

// NewEvery deja pasar una petición por intervalo. El primer Wait retorna
// inmediatamente. Un intervalo no positivo desactiva el espaciado.
func NewEvery(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{lim: xrate.NewLimiter(xrate.Inf, 1)}
	}
	return &Limiter{lim: xrate.NewLimiter(xrate.Every(interval), 1)}
}

// Wait bloquea hasta que haya un token disponible o ctx termine.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
