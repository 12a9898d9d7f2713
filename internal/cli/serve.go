package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/model"
	"github.com/ptroute/ptroute/pkg/render"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr   string // listen address
	render renderOpts
}

// renderSnapshot is the latest progressive pass, shared between the render
// goroutine and HTTP handlers.
type renderSnapshot struct {
	mu      sync.RWMutex
	png     []byte
	samples int
	total   int
	done    bool
	err     error
}

func (s *renderSnapshot) update(data []byte, samples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.png = data
	s.samples = samples
}

func (s *renderSnapshot) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.err = err
}

// serveCommand creates the serve command, which renders a scene
// progressively and serves the refining image over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	defaults := DefaultConfig().Render
	opts := serveOpts{
		addr: ":8080",
		render: renderOpts{
			width:            defaults.Width,
			height:           defaults.Height,
			samplesPerPixel:  defaults.SamplesPerPixel,
			bounces:          defaults.Bounces,
			seed:             defaults.Seed,
			progressEvery:    defaults.ProgressEvery,
			progressiveEvery: 8,
		},
	}

	cmd := &cobra.Command{
		Use:   "serve <scene.json>",
		Short: "Render a scene progressively and serve it over HTTP",
		Long: `Start a local HTTP server that renders the scene in progressive passes
and serves the refining image. Open the listen address in a browser to
watch samples accumulate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyRenderConfig(cmd, &opts.render)
			return c.runServe(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().IntVar(&opts.render.width, "width", opts.render.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.render.height, "height", opts.render.height, "image height in pixels")
	cmd.Flags().IntVar(&opts.render.samplesPerPixel, "spp", opts.render.samplesPerPixel, "samples per pixel")
	cmd.Flags().IntVar(&opts.render.bounces, "bounces", opts.render.bounces, "maximum path depth")
	cmd.Flags().Uint64Var(&opts.render.seed, "seed", opts.render.seed, "sampling seed")
	cmd.Flags().IntVar(&opts.render.threads, "threads", 0, "render workers (0 = all CPUs)")
	cmd.Flags().IntVar(&opts.render.progressiveEvery, "progressive-every", opts.render.progressiveEvery, "samples per progressive pass")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts *serveOpts) error {
	scene, err := model.ImportScene(input)
	if err != nil {
		return err
	}

	renderer, err := render.NewRenderer(scene, render.Settings{
		Width:           opts.render.width,
		Height:          opts.render.height,
		SamplesPerPixel: opts.render.samplesPerPixel,
		Bounces:         opts.render.bounces,
		Seed:            opts.render.seed,
		Threads:         opts.render.threads,
	}, c.Logger)
	if err != nil {
		return err
	}

	snapshot := &renderSnapshot{total: opts.render.samplesPerPixel}

	go func() {
		err := renderer.RenderProgressive(opts.render.progressiveEvery, func(img *image.RGBA, samples int) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			data, err := encodePNG(img)
			if err != nil {
				return err
			}
			snapshot.update(data, samples)
			c.Logger.Infof("pass complete: %d/%d samples", samples, opts.render.samplesPerPixel)
			return nil
		})
		snapshot.finish(err)
	}()

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, serveIndexHTML, len(scene.Nodes), len(scene.Edges))
	})
	router.Get("/image.png", func(w http.ResponseWriter, r *http.Request) {
		snapshot.mu.RLock()
		data := snapshot.png
		snapshot.mu.RUnlock()
		if data == nil {
			http.Error(w, "no pass finished yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(data)
	})
	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		snapshot.mu.RLock()
		status := map[string]any{
			"samplesDone":  snapshot.samples,
			"samplesTotal": snapshot.total,
			"done":         snapshot.done,
		}
		if snapshot.err != nil {
			status["error"] = snapshot.err.Error()
		}
		snapshot.mu.RUnlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})

	server := &http.Server{Addr: opts.addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	c.Logger.Infof("serving on http://localhost%s", opts.addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// encodePNG renders an image to PNG bytes in memory.
func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// serveIndexHTML is the viewer page. It polls /status and reloads the
// image after each pass until the render completes.
const serveIndexHTML = `<!doctype html>
<html>
<head>
<title>ptroute</title>
<style>
body { background: #111; color: #ccc; font-family: monospace; text-align: center; }
img { max-width: 95vw; margin-top: 1em; image-rendering: auto; }
</style>
</head>
<body>
<div id="status">waiting for first pass</div>
<div>%d nodes, %d edges</div>
<img id="view" alt="render">
<script>
async function tick() {
  const res = await fetch("/status");
  const s = await res.json();
  const el = document.getElementById("status");
  if (s.error) { el.textContent = "error: " + s.error; return; }
  el.textContent = s.samplesDone + "/" + s.samplesTotal + " samples" + (s.done ? " (done)" : "");
  if (s.samplesDone > 0) {
    document.getElementById("view").src = "/image.png?t=" + Date.now();
  }
  if (!s.done) setTimeout(tick, 1000);
}
tick();
</script>
</body>
</html>`
