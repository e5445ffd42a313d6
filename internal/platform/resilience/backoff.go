package resilience

import (
	"context"
	"time"
)

// LinearBackoff returns step*(attempt+1), capped at max when max > 0.
func LinearBackoff(attempt int, step, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := step * time.Duration(attempt+1)
	if max > 0 && d > max {
		return max
	}
	return d
}

// Sleep waits for d or until ctx is done.
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
