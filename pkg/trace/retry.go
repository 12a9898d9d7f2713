package trace

import (
	"context"
	"time"

	"github.com/ptroute/ptroute/pkg/errors"
)

// RetryRunner wraps a Runner with exponential backoff. Only probe failures
// (a traceroute that started and exited non-zero) are retried; a missing
// binary or an invalid target fails immediately. The delay doubles after
// each failed attempt.
type RetryRunner struct {
	Inner    Runner
	Attempts int           // total attempts; values below 1 mean 1
	Delay    time.Duration // initial backoff
}

// Run executes the wrapped runner up to Attempts times. It returns the last
// error if all attempts fail, or ctx.Err() if cancelled while backing off.
func (r RetryRunner) Run(ctx context.Context, target string, settings Settings) (string, error) {
	attempts := max(r.Attempts, 1)
	delay := r.Delay

	var lastErr error
	for i := 0; i < attempts; i++ {
		out, err := r.Inner.Run(ctx, target, settings)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, errors.ErrCodeProbeFailed) {
			return "", err
		}
		lastErr = err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return "", lastErr
}
