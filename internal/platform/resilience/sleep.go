// internal/platform/resilience/sleep.go
package resilience

import (
	"context"
	"time"
)

// SleepFunc espera d o hasta que ctx termine. Los conectores reciben una para
// que los tests observen las esperas sin dormir.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep es la SleepFunc real.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
