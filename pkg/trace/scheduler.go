package trace

import (
	"context"
	"sync"
	"time"

	"github.com/ptroute/ptroute/pkg/observability"
)

// Job identifies one scheduled probe: a target and its repeat index.
type Job struct {
	Target string
	Repeat int
}

// Result pairs a job with its parsed run or failure. Results always come
// back in job order regardless of which worker finished first.
type Result struct {
	Job Job
	Run *ParsedRun
	Err error
}

// Scheduler fans trace jobs out over a fixed worker pool.
type Scheduler struct {
	runner      Runner
	concurrency int
	interval    time.Duration // pause between repeats of the same target
}

// NewScheduler creates a scheduler running at most concurrency probes at
// once (minimum 1). interval is the pause a worker takes after any repeat
// beyond the first of a target.
func NewScheduler(runner Runner, concurrency int, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:      runner,
		concurrency: max(concurrency, 1),
		interval:    interval,
	}
}

// Run probes every target `repeat` times and returns one result per job in
// (target, repeat) order. Workers write into pre-assigned slots, so
// completion order never changes output order. Context cancellation stops
// dispatch; jobs never started report the context error.
func (s *Scheduler) Run(ctx context.Context, targets []string, settings Settings, repeat int) []Result {
	repeat = max(repeat, 1)

	results := make([]Result, 0, len(targets)*repeat)
	for _, target := range targets {
		for r := 0; r < repeat; r++ {
			results = append(results, Result{Job: Job{Target: target, Repeat: r}})
		}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = s.runJob(ctx, results[idx].Job, settings)
			}
		}()
	}

dispatch:
	for idx := range results {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			for i := idx; i < len(results); i++ {
				if results[i].Run == nil && results[i].Err == nil {
					results[i].Err = ctx.Err()
				}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Scheduler) runJob(ctx context.Context, job Job, settings Settings) Result {
	if job.Repeat > 0 && s.interval > 0 {
		select {
		case <-time.After(s.interval):
		case <-ctx.Done():
			return Result{Job: job, Err: ctx.Err()}
		}
	}

	observability.Probe().OnProbeStart(ctx, job.Target)
	start := time.Now()
	raw, err := s.runner.Run(ctx, job.Target, settings)
	observability.Probe().OnProbeComplete(ctx, job.Target, time.Since(start), err)
	if err != nil {
		return Result{Job: job, Err: err}
	}

	run, err := Parse(raw)
	if err != nil {
		return Result{Job: job, Err: err}
	}
	return Result{Job: job, Run: run}
}
