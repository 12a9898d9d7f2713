package nodelink

import (
	"strings"
	"testing"

	"github.com/ptroute/ptroute/pkg/model"
)

func dotFixture() *model.GraphFile {
	return &model.GraphFile{
		Version: model.SchemaVersion,
		Nodes: []model.Node{
			{ID: "10.0.0.1", Seen: 3, LossProbes: 1},
			{ID: "10.0.0.2", Seen: 2},
		},
		Edges: []model.Edge{
			{From: "10.0.0.1", To: "10.0.0.2", Seen: 2, RTTDeltaMsAvg: 4.5},
			{From: "10.0.0.2", To: "ghost", Seen: 1},
		},
	}
}

func TestToDOTBasic(t *testing.T) {
	dot := ToDOT(dotFixture(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"10.0.0.1" [label="10.0.0.1"];`,
		`"10.0.0.1" -> "10.0.0.2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	if strings.Contains(dot, "seen:") {
		t.Error("plain mode leaked detailed labels")
	}
}

func TestToDOTPhantomNodes(t *testing.T) {
	dot := ToDOT(dotFixture(), Options{})

	// The edge-only id gets a dashed grey declaration so the edge has both
	// endpoints.
	if !strings.Contains(dot, `"ghost" [style="rounded,filled,dashed", fillcolor=lightgrey];`) {
		t.Errorf("phantom node not declared:\n%s", dot)
	}

	// Declared once even when referenced by multiple edges.
	g := dotFixture()
	g.Edges = append(g.Edges, model.Edge{From: "10.0.0.1", To: "ghost", Seen: 1})
	dot = ToDOT(g, Options{})
	if strings.Count(dot, `"ghost" [style=`) != 1 {
		t.Errorf("phantom node declared more than once:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(dotFixture(), Options{Detailed: true})

	for _, want := range []string{
		"seen: 3",
		"loss: 1",
		"x2 +4.5ms",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTEmptyGraph(t *testing.T) {
	dot := ToDOT(&model.GraphFile{Version: model.SchemaVersion}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty graph DOT malformed:\n%s", dot)
	}
}
