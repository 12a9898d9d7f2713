package graph

import (
	"math"
	"sort"

	"github.com/ptroute/ptroute/pkg/model"
)

// Layout constants: x is the BFS depth, y spreads nodes into connectivity
// lanes, z is a small seed-dependent jitter so chains do not render coplanar.
const (
	laneSpacing = 2.0
	jitterScale = 0.5
)

// Layout maps a statistics graph to 3D positions. The result is a pure
// function of (graph, seed): running it twice yields byte-identical scenes,
// and changing only the seed changes only the z coordinate.
func Layout(graph *model.GraphFile, seed uint64) *model.SceneFile {
	scene := &model.SceneFile{Version: model.SchemaVersion}
	if len(graph.Nodes) == 0 {
		return scene
	}

	indegree := make(map[string]int)
	outdegree := make(map[string]int)
	adjacency := make(map[string][]string)

	// Ids referenced only by edges still get degree entries; incomplete
	// probe data routinely produces edges into unlisted nodes.
	for _, node := range graph.Nodes {
		indegree[node.ID] = 0
		outdegree[node.ID] = 0
	}
	for _, edge := range graph.Edges {
		outdegree[edge.From]++
		indegree[edge.To]++
		adjacency[edge.From] = append(adjacency[edge.From], edge.To)
	}
	for _, neighbors := range adjacency {
		sort.Strings(neighbors)
	}

	depth := bfsDepths(indegree, adjacency)

	maxDepth := 0
	for _, d := range depth {
		maxDepth = max(maxDepth, d)
	}
	fallbackDepth := maxDepth + 1

	ordered := make([]model.Node, len(graph.Nodes))
	copy(ordered, graph.Nodes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	scene.Nodes = make([]model.SceneNode, len(ordered))
	for i, node := range ordered {
		d, reached := depth[node.ID]
		if !reached {
			d = fallbackDepth
		}
		degree := indegree[node.ID] + outdegree[node.ID]

		scene.Nodes[i] = model.SceneNode{
			ID: node.ID,
			Position: [3]float64{
				float64(d),
				float64(degreeBucket(degree)) * laneSpacing,
				jitter(seed, node.ID) * jitterScale,
			},
			Seen:       node.Seen,
			LossProbes: node.LossProbes,
		}
	}

	scene.Edges = make([]model.SceneEdge, len(graph.Edges))
	for i, edge := range graph.Edges {
		scene.Edges[i] = model.SceneEdge{
			From:          edge.From,
			To:            edge.To,
			Seen:          edge.Seen,
			RTTDeltaMsAvg: edge.RTTDeltaMsAvg,
		}
	}

	return scene
}

// bfsDepths runs a multi-source BFS from the start set and returns the
// integer depth per reached id. First visit wins.
func bfsDepths(indegree map[string]int, adjacency map[string][]string) map[string]int {
	starts := startSet(indegree)

	depth := make(map[string]int, len(indegree))
	queue := make([]string, 0, len(starts))
	for _, id := range starts {
		depth[id] = 0
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		next := depth[id] + 1
		for _, neighbor := range adjacency[id] {
			if _, visited := depth[neighbor]; !visited {
				depth[neighbor] = next
				queue = append(queue, neighbor)
			}
		}
	}

	return depth
}

// startSet returns the ids with in-degree zero. When every id has incoming
// edges, it falls back to the ids sharing the minimum in-degree. Sorted by
// id so ties break the same way every run.
func startSet(indegree map[string]int) []string {
	var starts []string
	for id, deg := range indegree {
		if deg == 0 {
			starts = append(starts, id)
		}
	}

	if len(starts) == 0 {
		minIn := math.MaxInt
		for _, deg := range indegree {
			minIn = min(minIn, deg)
		}
		for id, deg := range indegree {
			if deg == minIn {
				starts = append(starts, id)
			}
		}
	}

	sort.Strings(starts)
	return starts
}

// degreeBucket groups a total degree into a logarithmic lane index.
func degreeBucket(degree int) int {
	if degree == 0 {
		return 0
	}
	return max(int(math.Floor(math.Log2(float64(degree)))), 0)
}

// jitter derives a value in [-1, 1] from a 64-bit FNV-1a mix of the seed and
// the raw id bytes. It depends only on (seed, id), never on traversal order.
func jitter(seed uint64, id string) float64 {
	h := uint64(0xcbf29ce484222325) ^ seed
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 0x100000001b3
	}
	unit := float64(h) / float64(^uint64(0))
	return unit*2 - 1
}
