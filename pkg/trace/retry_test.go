package trace

import (
	"context"
	"testing"
	"time"

	"github.com/ptroute/ptroute/pkg/errors"
)

// flakyRunner fails with a probe error until the given attempt succeeds.
type flakyRunner struct {
	failUntil int
	calls     int
}

func (r *flakyRunner) Run(ctx context.Context, target string, settings Settings) (string, error) {
	r.calls++
	if r.calls < r.failUntil {
		return "", errors.New(errors.ErrCodeProbeFailed, "transient failure")
	}
	return "ok", nil
}

func TestRetryRunnerRecovers(t *testing.T) {
	inner := &flakyRunner{failUntil: 3}
	r := RetryRunner{Inner: inner, Attempts: 3, Delay: time.Millisecond}

	out, err := r.Run(context.Background(), "host", DefaultSettings())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out != "ok" {
		t.Errorf("Run() = %q, want %q", out, "ok")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryRunnerExhausted(t *testing.T) {
	inner := &flakyRunner{failUntil: 10}
	r := RetryRunner{Inner: inner, Attempts: 2, Delay: time.Millisecond}

	if _, err := r.Run(context.Background(), "host", DefaultSettings()); err == nil {
		t.Fatal("Run() succeeded, want error")
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}

// permanentRunner fails with an uncoded error that must not be retried.
type permanentRunner struct {
	calls int
}

func (r *permanentRunner) Run(ctx context.Context, target string, settings Settings) (string, error) {
	r.calls++
	return "", context.DeadlineExceeded
}

func TestRetryRunnerDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &permanentRunner{}
	r := RetryRunner{Inner: inner, Attempts: 5, Delay: time.Millisecond}

	if _, err := r.Run(context.Background(), "host", DefaultSettings()); err == nil {
		t.Fatal("Run() succeeded, want error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryRunnerCancelledDuringBackoff(t *testing.T) {
	inner := &flakyRunner{failUntil: 10}
	r := RetryRunner{Inner: inner, Attempts: 5, Delay: 200 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := r.Run(ctx, "host", DefaultSettings()); err != context.DeadlineExceeded {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}
