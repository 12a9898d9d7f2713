package trace

import (
	"context"
	"time"

	"github.com/ptroute/ptroute/pkg/cache"
)

// CachedRunner wraps a Runner with a byte cache keyed by (target, settings),
// so repeated pipeline runs against the same targets skip live probing while
// the entry is fresh.
type CachedRunner struct {
	Inner Runner
	Cache cache.Cache
	TTL   time.Duration
}

// Run returns cached traceroute output when available, otherwise probes and
// stores the result. Cache failures fall through to live probing; a cache is
// never a reason to fail a trace.
func (r CachedRunner) Run(ctx context.Context, target string, settings Settings) (string, error) {
	key := cache.Key("trace", target, settings)

	if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
		return string(data), nil
	}

	out, err := r.Inner.Run(ctx, target, settings)
	if err != nil {
		return "", err
	}

	_ = r.Cache.Set(ctx, key, []byte(out), r.TTL)
	return out, nil
}
