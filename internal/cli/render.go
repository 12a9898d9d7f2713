package cli

import (
	"image"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/model"
	"github.com/ptroute/ptroute/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output           string // output PNG path
	width            int    // image width in pixels
	height           int    // image height in pixels
	samplesPerPixel  int    // samples per pixel
	bounces          int    // maximum path depth
	seed             uint64 // per-pixel sampling seed
	threads          int    // render workers; 0 means all CPUs
	progressEvery    int    // log every N finished rows; 0 disables
	progressiveEvery int    // rewrite the PNG every N samples; 0 renders in one pass
}

// renderCommand creates the render command, which path-traces a scene file
// into a PNG.
func (c *CLI) renderCommand() *cobra.Command {
	defaults := DefaultConfig().Render
	opts := renderOpts{
		output:          "out.png",
		width:           defaults.Width,
		height:          defaults.Height,
		samplesPerPixel: defaults.SamplesPerPixel,
		bounces:         defaults.Bounces,
		seed:            defaults.Seed,
		progressEvery:   defaults.ProgressEvery,
	}

	cmd := &cobra.Command{
		Use:   "render <scene.json>",
		Short: "Path-trace a scene into a PNG image",
		Long: `Render the positioned scene with the CPU path tracer. With
--progressive-every the output file is rewritten as samples accumulate, so
a viewer can watch the image refine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyRenderConfig(cmd, &opts)
			return c.runRender(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output PNG file")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "image height in pixels")
	cmd.Flags().IntVar(&opts.samplesPerPixel, "spp", opts.samplesPerPixel, "samples per pixel")
	cmd.Flags().IntVar(&opts.bounces, "bounces", opts.bounces, "maximum path depth")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "sampling seed")
	cmd.Flags().IntVar(&opts.threads, "threads", 0, "render workers (0 = all CPUs)")
	cmd.Flags().IntVar(&opts.progressEvery, "progress-every", opts.progressEvery, "log progress every N rows (0 disables)")
	cmd.Flags().IntVar(&opts.progressiveEvery, "progressive-every", 0, "rewrite the PNG every N samples (0 = single pass)")

	return cmd
}

// applyRenderConfig folds config-file values into flags that were left at
// their defaults.
func (c *CLI) applyRenderConfig(cmd *cobra.Command, opts *renderOpts) {
	cfg := c.config.Render
	opts.width = pickInt(cmd, "width", opts.width, cfg.Width)
	opts.height = pickInt(cmd, "height", opts.height, cfg.Height)
	opts.samplesPerPixel = pickInt(cmd, "spp", opts.samplesPerPixel, cfg.SamplesPerPixel)
	opts.bounces = pickInt(cmd, "bounces", opts.bounces, cfg.Bounces)
	opts.seed = pickUint64(cmd, "seed", opts.seed, cfg.Seed)
	opts.threads = pickInt(cmd, "threads", opts.threads, cfg.Threads)
	opts.progressEvery = pickInt(cmd, "progress-every", opts.progressEvery, cfg.ProgressEvery)
	opts.progressiveEvery = pickInt(cmd, "progressive-every", opts.progressiveEvery, cfg.ProgressiveEvery)
}

func (c *CLI) runRender(input string, opts *renderOpts) error {
	scene, err := model.ImportScene(input)
	if err != nil {
		return err
	}

	renderer, err := render.NewRenderer(scene, render.Settings{
		Width:           opts.width,
		Height:          opts.height,
		SamplesPerPixel: opts.samplesPerPixel,
		Bounces:         opts.bounces,
		Seed:            opts.seed,
		ProgressEvery:   opts.progressEvery,
		Threads:         opts.threads,
	}, c.Logger)
	if err != nil {
		return err
	}

	start := time.Now()
	if opts.progressiveEvery > 0 {
		err = renderer.RenderProgressive(opts.progressiveEvery, func(pass *image.RGBA, samples int) error {
			c.Logger.Infof("pass complete: %d/%d samples", samples, opts.samplesPerPixel)
			return render.WritePNG(opts.output, pass)
		})
		if err != nil {
			return err
		}
	} else {
		img := renderer.Render()
		if err := render.WritePNG(opts.output, img); err != nil {
			return err
		}
	}

	printSuccess("rendered %dx%d at %d spp in %s",
		opts.width, opts.height, opts.samplesPerPixel, time.Since(start).Round(time.Millisecond))
	printDetail("%d nodes, %d edges, seed %d", len(scene.Nodes), len(scene.Edges), opts.seed)
	printFile(opts.output)
	return nil
}
