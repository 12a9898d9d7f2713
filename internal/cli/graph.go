package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pterrors "github.com/ptroute/ptroute/pkg/errors"
	"github.com/ptroute/ptroute/pkg/model"
	"github.com/ptroute/ptroute/pkg/render/nodelink"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output file path
	format   string // dot, svg or png; inferred from output when empty
	detailed bool   // include counts and RTT deltas in labels
}

// graphCommand creates the graph command, which exports the statistics
// graph as a 2D node-link diagram.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{output: "graph.svg"}

	cmd := &cobra.Command{
		Use:   "graph <graph.json>",
		Short: "Export the graph as a 2D node-link diagram",
		Long: `Export the statistics graph as Graphviz DOT, or render it to SVG or
PNG. The flat view is a companion to the 3D render for reading exact
addresses and hop counts off the topology.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png (default: from output extension)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include seen/loss counts and RTT deltas in labels")

	return cmd
}

func (c *CLI) runGraph(input string, opts *graphOpts) error {
	g, err := model.ImportGraph(input)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(opts.output), ".")
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed})

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = nodelink.RenderSVG(dot)
	case "png":
		data, err = nodelink.RenderPNG(dot)
	default:
		return pterrors.New(pterrors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot', 'svg', or 'png')", format)
	}
	if err != nil {
		return err
	}

	if err := model.WriteAtomic(opts.output, data); err != nil {
		return err
	}

	printSuccess("exported %s diagram", format)
	printStats(len(g.Nodes), len(g.Edges), false)
	printFile(opts.output)
	return nil
}
