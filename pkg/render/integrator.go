package render

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ptroute/ptroute/pkg/model"
)

// selfIntersectEpsilon offsets bounce origins along the surface normal so a
// ray never re-hits the surface it just left.
const selfIntersectEpsilon = 1e-3

// Settings configures a render call.
type Settings struct {
	Width           int
	Height          int
	SamplesPerPixel int
	Bounces         int
	Seed            uint64
	ProgressEvery   int // log a progress line every N completed rows; 0 disables
	Threads         int // worker count; 0 means runtime.NumCPU()
}

// Renderer owns the per-invocation render state: a BVH and camera built
// fresh from the scene, and the accumulation buffer the passes add into.
// A Renderer is not safe for concurrent use; it parallelizes internally.
type Renderer struct {
	settings Settings
	bvh      *BVH
	camera   Camera
	logger   *log.Logger

	accum       []Vec3 // per-pixel running radiance sum, row-major
	samplesDone int    // cumulative samples per pixel across passes
}

// NewRenderer builds the BVH and auto-framed camera for the scene. The
// logger is the injected progress sink; nil disables progress output.
func NewRenderer(scene *model.SceneFile, settings Settings, logger *log.Logger) (*Renderer, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", settings.Width, settings.Height)
	}
	if settings.Threads < 0 {
		return nil, fmt.Errorf("invalid thread count %d", settings.Threads)
	}

	return &Renderer{
		settings: settings,
		bvh:      NewBVH(BuildSpheres(scene)),
		camera:   FrameCamera(scene, settings.Width, settings.Height),
		logger:   logger,
		accum:    make([]Vec3, settings.Width*settings.Height),
	}, nil
}

// Render runs all requested samples in a single pass and returns the
// tone-mapped image.
func (r *Renderer) Render() *image.RGBA {
	spp := max(r.settings.SamplesPerPixel, 1)
	r.renderPass(r.samplesDone, spp)
	r.samplesDone += spp
	return toImage(r.accum, r.settings.Width, r.settings.Height, r.samplesDone)
}

// RenderProgressive renders in chunks of chunkSize samples, invoking onPass
// with a normalized snapshot and the cumulative sample count after each
// chunk. Accumulation is strictly additive: each chunk continues from the
// sample offset the previous one ended at, so N samples in one pass and N
// samples across K chunks produce the same image. A non-nil error from
// onPass stops further passes; samples accumulated so far stay valid.
func (r *Renderer) RenderProgressive(chunkSize int, onPass func(img *image.RGBA, samples int) error) error {
	target := max(r.settings.SamplesPerPixel, 1)
	step := max(chunkSize, 1)

	for r.samplesDone < target {
		pass := min(step, target-r.samplesDone)
		r.renderPass(r.samplesDone, pass)
		r.samplesDone += pass

		img := toImage(r.accum, r.settings.Width, r.settings.Height, r.samplesDone)
		if err := onPass(img, r.samplesDone); err != nil {
			return err
		}
	}
	return nil
}

// renderPass adds `samples` new samples for every pixel into the
// accumulation buffer, starting at sampleOffset. Rows are distributed over a
// fixed worker pool; a row is written only by the worker that claimed it, so
// the buffer needs no locking, and per-pixel determinism makes the result
// independent of scheduling.
func (r *Renderer) renderPass(sampleOffset, samples int) {
	width := r.settings.Width
	height := r.settings.Height
	bounces := max(r.settings.Bounces, 1)

	workers := r.settings.Threads
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	rows := make(chan int)
	var done atomic.Int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				row := r.accum[y*width : (y+1)*width]
				for x := 0; x < width; x++ {
					var color Vec3
					for s := 0; s < samples; s++ {
						sampleIndex := sampleOffset + s
						rnd := newRNG(sampleSeed(r.settings.Seed, x, y, sampleIndex))
						u := (float64(x) + rnd.float64()) / float64(width)
						v := (float64(y) + rnd.float64()) / float64(height)
						ray := r.camera.Ray(u, 1-v)
						color = color.Add(r.trace(ray, bounces, &rnd))
					}
					row[x] = row[x].Add(color)
				}
				r.logRowProgress(int(done.Add(1)), height, start)
			}
		}()
	}

	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()
}

func (r *Renderer) logRowProgress(done, height int, start time.Time) {
	every := r.settings.ProgressEvery
	if r.logger == nil || every <= 0 {
		return
	}
	if done != height && done%every != 0 {
		return
	}

	elapsed := time.Since(start).Seconds()
	percent := float64(done) / float64(height) * 100
	total := elapsed * float64(height) / float64(done)
	remaining := max(total-elapsed, 0)
	r.logger.Infof("render %d/%d rows (%.1f%%) elapsed %.1fs eta %.1fs",
		done, height, percent, elapsed, remaining)
}

// trace walks a path for up to `bounces` segments. Emission weighted by the
// current throughput is collected at every hit; a miss collects the
// background and ends the path. Exhausting the bounce budget simply stops
// with whatever was collected. The walk is deliberately a biased
// hemispherical estimator: no importance sampling, no PDF weighting, no
// Russian roulette.
func (r *Renderer) trace(ray Ray, bounces int, rnd *rng) Vec3 {
	throughput := NewVec3(1, 1, 1)
	var color Vec3

	for i := 0; i < bounces; i++ {
		hit, ok := r.bvh.Intersect(ray, 1e-3, infinity)
		if !ok {
			return color.Add(throughput.Mul(background(ray)))
		}

		color = color.Add(throughput.Mul(hit.Emission))
		dir := randomInHemisphere(hit.Normal, rnd)
		ray = Ray{
			Origin:    hit.Point.Add(hit.Normal.Scale(selfIntersectEpsilon)),
			Direction: dir,
		}
		throughput = throughput.Mul(hit.Albedo)
	}

	return color
}

// randomInHemisphere rejection-samples a unit vector and flips it into the
// hemisphere about the normal, biased toward the normal by the final sum.
func randomInHemisphere(normal Vec3, rnd *rng) Vec3 {
	dir := randomUnitVector(rnd)
	if dir.Dot(normal) < 0 {
		dir = dir.Scale(-1)
	}
	return normal.Add(dir).Normalize()
}

func randomUnitVector(rnd *rng) Vec3 {
	for {
		p := NewVec3(
			rnd.float64()*2-1,
			rnd.float64()*2-1,
			rnd.float64()*2-1,
		)
		if p.Dot(p) < 1 {
			return p.Normalize()
		}
	}
}

// background is the vertical sky/ground gradient paths fall into when they
// escape the scene.
func background(r Ray) Vec3 {
	t := 0.5 * (r.Direction.Y + 1)
	sky := NewVec3(0.6, 0.8, 1.0)
	ground := NewVec3(0.05, 0.05, 0.07)
	return ground.Scale(1 - t).Add(sky.Scale(t))
}
