package trace

import (
	"context"
	"testing"
	"time"

	"github.com/ptroute/ptroute/pkg/cache"
)

// countingRunner records how often it was invoked.
type countingRunner struct {
	calls int
	out   string
}

func (r *countingRunner) Run(ctx context.Context, target string, settings Settings) (string, error) {
	r.calls++
	return r.out, nil
}

// memCache is a map-backed cache for tests.
type memCache struct {
	entries map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.entries[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestCachedRunnerHit(t *testing.T) {
	inner := &countingRunner{out: "raw output"}
	r := CachedRunner{Inner: inner, Cache: &memCache{entries: map[string][]byte{}}, TTL: time.Minute}

	ctx := context.Background()
	settings := DefaultSettings()

	out1, err := r.Run(ctx, "host", settings)
	if err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	out2, err := r.Run(ctx, "host", settings)
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}

	if out1 != "raw output" || out2 != "raw output" {
		t.Errorf("outputs = %q, %q, want raw output", out1, out2)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (second run cached)", inner.calls)
	}
}

func TestCachedRunnerKeyIncludesSettings(t *testing.T) {
	inner := &countingRunner{out: "raw output"}
	r := CachedRunner{Inner: inner, Cache: &memCache{entries: map[string][]byte{}}, TTL: time.Minute}

	ctx := context.Background()
	r.Run(ctx, "host", Settings{MaxHops: 30, Probes: 3, TimeoutMs: 2000})
	r.Run(ctx, "host", Settings{MaxHops: 10, Probes: 3, TimeoutMs: 2000})

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (different settings, different key)", inner.calls)
	}
}

func TestCachedRunnerNullCache(t *testing.T) {
	inner := &countingRunner{out: "raw output"}
	r := CachedRunner{Inner: inner, Cache: cache.Null{}, TTL: time.Minute}

	ctx := context.Background()
	r.Run(ctx, "host", DefaultSettings())
	r.Run(ctx, "host", DefaultSettings())

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (null cache never hits)", inner.calls)
	}
}
