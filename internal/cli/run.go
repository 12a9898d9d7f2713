package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/graph"
	"github.com/ptroute/ptroute/pkg/model"
	"github.com/ptroute/ptroute/pkg/observability"
	"github.com/ptroute/ptroute/pkg/render"
	"github.com/ptroute/ptroute/pkg/trace"
)

// Pipeline output file names inside the run directory.
const (
	fileTraces  = "traces.json"
	fileGraph   = "graph.json"
	fileScene   = "scene.json"
	fileImage   = "render.png"
	fileReceipt = "run.json"
)

// runOpts holds the command-line flags for the run command. Trace and
// render parameters are shared with the stage commands.
type runOpts struct {
	dir    string // output directory
	force  bool   // recompute outputs that already exist
	trace  traceOpts
	render renderOpts
}

// runReceipt records what a pipeline run did, written as run.json next to
// the outputs.
type runReceipt struct {
	ID           string        `json:"id"`
	TimestampUTC string        `json:"timestampUtc"`
	Host         receiptHost   `json:"host"`
	Targets      []string      `json:"targets"`
	Seed         uint64        `json:"seed"`
	Steps        []receiptStep `json:"steps"`
}

type receiptHost struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
}

type receiptStep struct {
	Name       string `json:"name"`
	Output     string `json:"output"`
	Skipped    bool   `json:"skipped"`
	DurationMs int64  `json:"durationMs"`
}

// runCommand creates the run command, which executes the whole pipeline
// (trace, build, layout, render) into one output directory.
func (c *CLI) runCommand() *cobra.Command {
	traceDefaults := DefaultConfig().Trace
	renderDefaults := DefaultConfig().Render
	opts := runOpts{
		dir: "ptroute-out",
		trace: traceOpts{
			maxHops:     traceDefaults.MaxHops,
			probes:      traceDefaults.Probes,
			timeoutMs:   traceDefaults.TimeoutMs,
			concurrency: traceDefaults.Concurrency,
			repeat:      traceDefaults.Repeat,
		},
		render: renderOpts{
			width:           renderDefaults.Width,
			height:          renderDefaults.Height,
			samplesPerPixel: renderDefaults.SamplesPerPixel,
			bounces:         renderDefaults.Bounces,
			seed:            renderDefaults.Seed,
			progressEvery:   renderDefaults.ProgressEvery,
		},
	}

	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run the whole pipeline into one output directory",
		Long: `Probe, aggregate, lay out and render in one invocation. Each stage
writes its document into the output directory and a run receipt records
what happened. Stages whose output already exists are skipped unless
--force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyTraceConfig(cmd, &opts.trace)
			c.applyRenderConfig(cmd, &opts.render)
			return c.runPipeline(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "output", "o", opts.dir, "output directory")
	cmd.Flags().BoolVar(&opts.force, "force", false, "recompute outputs that already exist")
	cmd.Flags().StringVar(&opts.trace.targetsFile, "targets", "", "file with one target per line")
	cmd.Flags().IntVar(&opts.trace.maxHops, "max-hops", opts.trace.maxHops, "maximum TTL to probe")
	cmd.Flags().IntVar(&opts.trace.probes, "probes", opts.trace.probes, "probes per hop")
	cmd.Flags().IntVar(&opts.trace.timeoutMs, "timeout-ms", opts.trace.timeoutMs, "per-probe timeout in milliseconds")
	cmd.Flags().IntVar(&opts.trace.concurrency, "concurrency", opts.trace.concurrency, "targets probed in parallel")
	cmd.Flags().IntVar(&opts.trace.repeat, "repeat", opts.trace.repeat, "runs per target")
	cmd.Flags().IntVar(&opts.trace.intervalMs, "interval-ms", opts.trace.intervalMs, "pause between repeats in milliseconds")
	cmd.Flags().BoolVar(&opts.trace.noCache, "no-cache", false, "always probe live, never reuse cached output")
	cmd.Flags().IntVar(&opts.render.width, "width", opts.render.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.render.height, "height", opts.render.height, "image height in pixels")
	cmd.Flags().IntVar(&opts.render.samplesPerPixel, "spp", opts.render.samplesPerPixel, "samples per pixel")
	cmd.Flags().IntVar(&opts.render.bounces, "bounces", opts.render.bounces, "maximum path depth")
	cmd.Flags().Uint64Var(&opts.render.seed, "seed", opts.render.seed, "layout and sampling seed")
	cmd.Flags().IntVar(&opts.render.threads, "threads", 0, "render workers (0 = all CPUs)")
	cmd.Flags().IntVar(&opts.render.progressEvery, "progress-every", opts.render.progressEvery, "log progress every N rows (0 disables)")

	return cmd
}

// runPipeline drives the four stages in order. Every stage reads the
// previous stage's file rather than passing values in memory, so a resumed
// run and a fresh run go through identical code.
func (c *CLI) runPipeline(ctx context.Context, args []string, opts *runOpts) error {
	targets, err := resolveTargets(args, opts.trace.targetsFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	receipt := runReceipt{
		ID:           uuid.NewString(),
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		Host:         hostInfo(),
		Targets:      targets,
		Seed:         opts.render.seed,
	}

	step := func(name, output string, fn func() error) error {
		path := filepath.Join(opts.dir, output)
		start := time.Now()
		if !opts.force {
			if _, err := os.Stat(path); err == nil {
				printInfo("%-7s %s", name, styleSkipped.Render(iconSkipped))
				receipt.Steps = append(receipt.Steps, receiptStep{Name: name, Output: output, Skipped: true})
				observability.Pipeline().OnStageComplete(ctx, name, true, 0, nil)
				return nil
			}
		}
		observability.Pipeline().OnStageStart(ctx, name)
		err := fn()
		observability.Pipeline().OnStageComplete(ctx, name, false, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		printSuccess("%-7s %s (%s)", name, output, time.Since(start).Round(time.Millisecond))
		receipt.Steps = append(receipt.Steps, receiptStep{
			Name:       name,
			Output:     output,
			DurationMs: time.Since(start).Milliseconds(),
		})
		return nil
	}

	tracesPath := filepath.Join(opts.dir, fileTraces)
	graphPath := filepath.Join(opts.dir, fileGraph)
	scenePath := filepath.Join(opts.dir, fileScene)
	imagePath := filepath.Join(opts.dir, fileImage)

	err = step("trace", fileTraces, func() error {
		return c.pipelineTrace(ctx, targets, &opts.trace, tracesPath)
	})
	if err != nil {
		return err
	}

	err = step("build", fileGraph, func() error {
		traces, err := model.ImportTraces(tracesPath)
		if err != nil {
			return err
		}
		return model.ExportJSON(graphPath, graph.Build(traces))
	})
	if err != nil {
		return err
	}

	err = step("layout", fileScene, func() error {
		g, err := model.ImportGraph(graphPath)
		if err != nil {
			return err
		}
		return model.ExportJSON(scenePath, graph.Layout(g, opts.render.seed))
	})
	if err != nil {
		return err
	}

	err = step("render", fileImage, func() error {
		scene, err := model.ImportScene(scenePath)
		if err != nil {
			return err
		}
		renderer, err := render.NewRenderer(scene, render.Settings{
			Width:           opts.render.width,
			Height:          opts.render.height,
			SamplesPerPixel: opts.render.samplesPerPixel,
			Bounces:         opts.render.bounces,
			Seed:            opts.render.seed,
			ProgressEvery:   opts.render.progressEvery,
			Threads:         opts.render.threads,
		}, c.Logger)
		if err != nil {
			return err
		}
		return render.WritePNG(imagePath, renderer.Render())
	})
	if err != nil {
		return err
	}

	if err := model.ExportJSON(filepath.Join(opts.dir, fileReceipt), &receipt); err != nil {
		return err
	}

	printSuccess("pipeline complete")
	printFile(imagePath)
	return nil
}

// pipelineTrace is the probe stage of run: like the trace command, but
// without per-command output chatter.
func (c *CLI) pipelineTrace(ctx context.Context, targets []string, opts *traceOpts, output string) error {
	settings := trace.Settings{
		MaxHops:   opts.maxHops,
		Probes:    opts.probes,
		TimeoutMs: opts.timeoutMs,
	}

	runner := trace.CachedRunner{
		Inner: trace.SystemRunner{},
		Cache: newCache(opts.noCache),
		TTL:   defaultCacheTTL,
	}

	scheduler := trace.NewScheduler(runner, opts.concurrency, time.Duration(opts.intervalMs)*time.Millisecond)
	results := scheduler.Run(ctx, targets, settings, opts.repeat)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	traces := &model.TraceFile{Version: model.SchemaVersion}
	now := time.Now().UTC().Format(time.RFC3339)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			c.Logger.Warnf("%s run %d: %v", res.Job.Target, res.Job.Repeat+1, res.Err)
			continue
		}
		traces.Runs = append(traces.Runs, model.TraceRun{
			Target:       res.Run.Target,
			TimestampUTC: now,
			Hops:         res.Run.Hops,
		})
	}
	if len(traces.Runs) == 0 {
		return fmt.Errorf("all %d probe runs failed", failed)
	}

	return model.ExportJSON(output, traces)
}

func hostInfo() receiptHost {
	hostname, _ := os.Hostname()
	return receiptHost{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}
