package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ptroute/ptroute/pkg/observability"
)

// logHooks emits observability events as debug log lines, so --verbose
// shows stage timings, probe durations and cache behavior.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnStageStart(_ context.Context, stage string) {
	h.logger.Debugf("stage %s started", stage)
}

func (h logHooks) OnStageComplete(_ context.Context, stage string, skipped bool, duration time.Duration, err error) {
	switch {
	case err != nil:
		h.logger.Debugf("stage %s failed after %s: %v", stage, duration.Round(time.Millisecond), err)
	case skipped:
		h.logger.Debugf("stage %s skipped", stage)
	default:
		h.logger.Debugf("stage %s finished in %s", stage, duration.Round(time.Millisecond))
	}
}

func (h logHooks) OnProbeStart(_ context.Context, target string) {
	h.logger.Debugf("probing %s", target)
}

func (h logHooks) OnProbeComplete(_ context.Context, target string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debugf("probe %s failed after %s: %v", target, duration.Round(time.Millisecond), err)
		return
	}
	h.logger.Debugf("probe %s finished in %s", target, duration.Round(time.Millisecond))
}

func (h logHooks) OnHit(_ context.Context, key string)  { h.logger.Debugf("cache hit %s", key) }
func (h logHooks) OnMiss(_ context.Context, key string) { h.logger.Debugf("cache miss %s", key) }
func (h logHooks) OnSet(_ context.Context, key string)  { h.logger.Debugf("cache store %s", key) }

// registerHooks points all observability hooks at the CLI logger.
func (c *CLI) registerHooks() {
	hooks := logHooks{logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetProbeHooks(hooks)
	observability.SetCacheHooks(hooks)
}
