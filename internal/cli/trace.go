package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/model"
	"github.com/ptroute/ptroute/pkg/trace"
)

// defaultCacheTTL keeps probe output fresh enough for iterative rendering
// sessions without hiding real topology changes for long.
const defaultCacheTTL = 15 * time.Minute

// traceOpts holds the command-line flags for the trace command.
type traceOpts struct {
	output      string // output trace file path
	targetsFile string // file with one target per line
	maxHops     int    // traceroute -m
	probes      int    // traceroute -q
	timeoutMs   int    // traceroute -w, in milliseconds
	concurrency int    // parallel probes
	repeat      int    // runs per target
	intervalMs  int    // pause between repeats of one target
	retries     int    // attempts per probe before giving up
	noCache     bool   // disable the probe cache
}

// traceCommand creates the trace command, which probes targets with the
// system traceroute and writes the parsed runs as a trace file.
func (c *CLI) traceCommand() *cobra.Command {
	defaults := DefaultConfig().Trace
	opts := traceOpts{
		output:      "traces.json",
		maxHops:     defaults.MaxHops,
		probes:      defaults.Probes,
		timeoutMs:   defaults.TimeoutMs,
		concurrency: defaults.Concurrency,
		repeat:      defaults.Repeat,
	}

	cmd := &cobra.Command{
		Use:   "trace [targets...]",
		Short: "Probe targets with traceroute and record the runs",
		Long: `Probe each target with the system traceroute tool and write the parsed
runs to a trace file. Targets come from arguments, from --targets, or both.
Only probe networks you own or have permission to test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyTraceConfig(cmd, &opts)
			return c.runTrace(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output trace file")
	cmd.Flags().StringVar(&opts.targetsFile, "targets", "", "file with one target per line")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops", opts.maxHops, "maximum TTL to probe")
	cmd.Flags().IntVar(&opts.probes, "probes", opts.probes, "probes per hop")
	cmd.Flags().IntVar(&opts.timeoutMs, "timeout-ms", opts.timeoutMs, "per-probe timeout in milliseconds")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "targets probed in parallel")
	cmd.Flags().IntVar(&opts.repeat, "repeat", opts.repeat, "runs per target")
	cmd.Flags().IntVar(&opts.intervalMs, "interval-ms", opts.intervalMs, "pause between repeats in milliseconds")
	cmd.Flags().IntVar(&opts.retries, "retries", 1, "attempts per probe before giving up")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always probe live, never reuse cached output")

	return cmd
}

// applyTraceConfig folds config-file values into flags that were left at
// their defaults.
func (c *CLI) applyTraceConfig(cmd *cobra.Command, opts *traceOpts) {
	cfg := c.config.Trace
	opts.maxHops = pickInt(cmd, "max-hops", opts.maxHops, cfg.MaxHops)
	opts.probes = pickInt(cmd, "probes", opts.probes, cfg.Probes)
	opts.timeoutMs = pickInt(cmd, "timeout-ms", opts.timeoutMs, cfg.TimeoutMs)
	opts.concurrency = pickInt(cmd, "concurrency", opts.concurrency, cfg.Concurrency)
	opts.repeat = pickInt(cmd, "repeat", opts.repeat, cfg.Repeat)
	opts.intervalMs = pickInt(cmd, "interval-ms", opts.intervalMs, cfg.IntervalMs)
}

// runTrace executes the probe schedule and writes the trace file. Failed
// jobs are reported and skipped; the command fails only when every job
// failed or the context was cancelled.
func (c *CLI) runTrace(ctx context.Context, args []string, opts *traceOpts) error {
	targets, err := resolveTargets(args, opts.targetsFile)
	if err != nil {
		return err
	}

	settings := trace.Settings{
		MaxHops:   opts.maxHops,
		Probes:    opts.probes,
		TimeoutMs: opts.timeoutMs,
	}

	var runner trace.Runner = trace.SystemRunner{}
	if opts.retries > 1 {
		runner = trace.RetryRunner{Inner: runner, Attempts: opts.retries, Delay: time.Second}
	}
	runner = trace.CachedRunner{
		Inner: runner,
		Cache: newCache(opts.noCache),
		TTL:   defaultCacheTTL,
	}

	jobs := len(targets) * max(opts.repeat, 1)
	spinner := newSpinner(ctx, fmt.Sprintf("probing %d targets (%d runs)", len(targets), jobs))
	spinner.Start()

	scheduler := trace.NewScheduler(runner, opts.concurrency, time.Duration(opts.intervalMs)*time.Millisecond)
	results := scheduler.Run(ctx, targets, settings, opts.repeat)

	if spinner.Cancelled() {
		spinner.Stop()
		return ctx.Err()
	}
	spinner.Stop()

	traces := &model.TraceFile{Version: model.SchemaVersion}
	now := time.Now().UTC().Format(time.RFC3339)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			printWarning("%s run %d: %v", res.Job.Target, res.Job.Repeat+1, res.Err)
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
	if failed > 0 {
		printWarning("%d of %d runs failed", failed, len(results))
	}

	if err := model.ExportJSON(opts.output, traces); err != nil {
		return err
	}

	printSuccess("recorded %d runs across %d targets", len(traces.Runs), len(targets))
	printFile(opts.output)
	printNextStep("aggregate into a graph", fmt.Sprintf("%s build %s", appName, opts.output))
	return nil
}
