// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about pipeline stages, probe
// execution, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Probe().OnProbeStart(ctx, target)
//	// ... run traceroute ...
//	observability.Probe().OnProbeComplete(ctx, target, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events about pipeline stage execution.
type PipelineHooks interface {
	// OnStageStart is called when a pipeline stage (trace, build, layout,
	// render) begins.
	OnStageStart(ctx context.Context, stage string)

	// OnStageComplete is called when a pipeline stage finishes. skipped
	// marks output reused from a previous run.
	OnStageComplete(ctx context.Context, stage string, skipped bool, duration time.Duration, err error)
}

// ProbeHooks receives events about individual probe runs.
type ProbeHooks interface {
	// OnProbeStart is called before a traceroute is launched.
	OnProbeStart(ctx context.Context, target string)

	// OnProbeComplete is called after a traceroute exits or fails.
	OnProbeComplete(ctx context.Context, target string, duration time.Duration, err error)
}

// CacheHooks receives events about probe cache operations.
type CacheHooks interface {
	// OnHit is called when a fresh cached entry satisfied a lookup.
	OnHit(ctx context.Context, key string)

	// OnMiss is called when no usable entry existed for a lookup.
	OnMiss(ctx context.Context, key string)

	// OnSet is called after an entry was stored.
	OnSet(ctx context.Context, key string)
}

// NoopPipelineHooks is a PipelineHooks implementation that does nothing.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string) {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, bool, time.Duration, error) {
}

// NoopProbeHooks is a ProbeHooks implementation that does nothing.
type NoopProbeHooks struct{}

func (NoopProbeHooks) OnProbeStart(context.Context, string)                        {}
func (NoopProbeHooks) OnProbeComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a CacheHooks implementation that does nothing.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnHit(context.Context, string)  {}
func (NoopCacheHooks) OnMiss(context.Context, string) {}
func (NoopCacheHooks) OnSet(context.Context, string)  {}

var (
	mu            sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	probeHooks    ProbeHooks    = NoopProbeHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
)

// SetPipelineHooks registers pipeline hook callbacks. Pass nil to restore
// the no-op implementation.
func SetPipelineHooks(h PipelineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopPipelineHooks{}
	}
	pipelineHooks = h
}

// SetProbeHooks registers probe hook callbacks. Pass nil to restore the
// no-op implementation.
func SetProbeHooks(h ProbeHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopProbeHooks{}
	}
	probeHooks = h
}

// SetCacheHooks registers cache hook callbacks. Pass nil to restore the
// no-op implementation.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopCacheHooks{}
	}
	cacheHooks = h
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}

// Probe returns the registered probe hooks.
func Probe() ProbeHooks {
	mu.RLock()
	defer mu.RUnlock()
	return probeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
