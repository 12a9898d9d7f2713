package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptroute/ptroute/pkg/graph"
	"github.com/ptroute/ptroute/pkg/model"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output string // output graph file path
}

// buildCommand creates the build command, which aggregates recorded trace
// runs into the statistics graph.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{output: "graph.json"}

	cmd := &cobra.Command{
		Use:   "build <traces.json>",
		Short: "Aggregate trace runs into a statistics graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output graph file")

	return cmd
}

func (c *CLI) runBuild(input string, opts *buildOpts) error {
	traces, err := model.ImportTraces(input)
	if err != nil {
		return err
	}

	g := graph.Build(traces)
	if err := model.ExportJSON(opts.output, g); err != nil {
		return err
	}

	printSuccess("built graph from %d runs", len(traces.Runs))
	printStats(len(g.Nodes), len(g.Edges), false)
	printFile(opts.output)
	printNextStep("lay the graph out in 3D", fmt.Sprintf("%s layout %s", appName, opts.output))
	return nil
}
