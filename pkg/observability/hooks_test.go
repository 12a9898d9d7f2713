package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "trace")
	p.OnStageComplete(ctx, "trace", false, time.Second, nil)

	pr := NoopProbeHooks{}
	pr.OnProbeStart(ctx, "example.com")
	pr.OnProbeComplete(ctx, "example.com", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnHit(ctx, "key")
	c.OnMiss(ctx, "key")
	c.OnSet(ctx, "key")
}

type recordingHooks struct {
	stages []string
	hits   int
	probes int
}

func (h *recordingHooks) OnStageStart(_ context.Context, stage string) {
	h.stages = append(h.stages, stage)
}
func (h *recordingHooks) OnStageComplete(context.Context, string, bool, time.Duration, error) {}
func (h *recordingHooks) OnProbeStart(context.Context, string)                                {}
func (h *recordingHooks) OnProbeComplete(_ context.Context, _ string, _ time.Duration, _ error) {
	h.probes++
}
func (h *recordingHooks) OnHit(context.Context, string)  { h.hits++ }
func (h *recordingHooks) OnMiss(context.Context, string) {}
func (h *recordingHooks) OnSet(context.Context, string)  {}

func TestSetAndRestoreHooks(t *testing.T) {
	rec := &recordingHooks{}

	SetPipelineHooks(rec)
	defer SetPipelineHooks(nil)

	Pipeline().OnStageStart(context.Background(), "layout")
	if len(rec.stages) != 1 || rec.stages[0] != "layout" {
		t.Errorf("stages = %v, want [layout]", rec.stages)
	}

	SetPipelineHooks(nil)
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("nil registration did not restore the noop hooks: %T", Pipeline())
	}
}

func TestSetCacheHooks(t *testing.T) {
	rec := &recordingHooks{}
	SetCacheHooks(rec)
	defer SetCacheHooks(nil)

	Cache().OnHit(context.Background(), "key")
	if rec.hits != 1 {
		t.Errorf("hits = %d, want 1", rec.hits)
	}
}

func TestSetProbeHooks(t *testing.T) {
	rec := &recordingHooks{}
	SetProbeHooks(rec)
	defer SetProbeHooks(nil)

	Probe().OnProbeComplete(context.Background(), "host", time.Second, nil)
	if rec.probes != 1 {
		t.Errorf("probes = %d, want 1", rec.probes)
	}
}
