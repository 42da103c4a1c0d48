// internal/testutil/sleep.go
package testutil

import (
	"context"
	"sync"
	"time"
)

// SleepRecorder reemplaza las esperas reales de los conectores en tests.
// Registra cada duración solicitada y retorna inmediatamente.
type SleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

// Sleep satisface resilience.SleepFunc.
func (s *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Calls retorna una copia de las duraciones registradas.
func (s *SleepRecorder) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.calls))
	copy(out, s.calls)
	return out
}
