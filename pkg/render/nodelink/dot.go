// Package nodelink renders the statistics graph as a 2D node-link diagram
// via Graphviz: a flat companion view to the 3D render, useful for reading
// exact addresses and hop counts off the topology.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ptroute/ptroute/pkg/model"
)

// Options configures node-link diagram generation.
type Options struct {
	// Detailed includes seen/loss counts in node labels and RTT deltas on
	// edges. When false, only addresses are shown.
	Detailed bool
}

// ToDOT converts a statistics graph to Graphviz DOT. Left-to-right layout
// matches the 3D scene, where BFS depth grows along x. Nodes referenced
// only by edges are declared too, drawn dashed, so no edge dangles.
func ToDOT(g *model.GraphFile, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(n, opts.Detailed))
	}

	var phantom []string
	for _, e := range g.Edges {
		if !known[e.From] {
			phantom = append(phantom, e.From)
		}
		if !known[e.To] {
			phantom = append(phantom, e.To)
		}
	}
	sort.Strings(phantom)
	seen := ""
	for _, id := range phantom {
		if id == seen {
			continue
		}
		seen = id
		fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", id)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, edgeLabel(e))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n model.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{n.ID, fmt.Sprintf("seen: %d", n.Seen)}
	if n.LossProbes > 0 {
		parts = append(parts, fmt.Sprintf("loss: %d", n.LossProbes))
	}
	return strings.Join(parts, "\n")
}

func edgeLabel(e model.Edge) string {
	return fmt.Sprintf("x%d %+.1fms", e.Seen, e.RTTDeltaMsAvg)
}

// RenderSVG renders DOT source to SVG using the in-process Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders DOT source to PNG using the in-process Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
