// Package graph turns probe runs into a statistics graph and lays that
// graph out in 3D deterministically.
package graph

import (
	"sort"

	"github.com/ptroute/ptroute/pkg/model"
)

type nodeStats struct {
	seen       int
	lossProbes int
}

type edgeStats struct {
	seen       int
	sumDelta   float64
	deltaCount int
}

type edgeKey struct {
	from string
	to   string
}

// Build aggregates trace runs into a statistics graph. A node is "seen" once
// per run it appears in; loss probes count every nil RTT. Consecutive hops
// form edges, with the mean delta of their first answered RTTs when both
// hops answered at least once.
func Build(traces *model.TraceFile) *model.GraphFile {
	nodes := make(map[string]*nodeStats)
	edges := make(map[edgeKey]*edgeStats)

	for _, run := range traces.Runs {
		seenThisRun := make(map[string]bool)

		for _, hop := range run.Hops {
			id := hop.ID()
			stats := nodes[id]
			if stats == nil {
				stats = &nodeStats{}
				nodes[id] = stats
			}
			if !seenThisRun[id] {
				seenThisRun[id] = true
				stats.seen++
			}
			for _, rtt := range hop.RTTMs {
				if rtt == nil {
					stats.lossProbes++
				}
			}
		}

		for i := 0; i+1 < len(run.Hops); i++ {
			from, to := run.Hops[i], run.Hops[i+1]
			key := edgeKey{from: from.ID(), to: to.ID()}
			stats := edges[key]
			if stats == nil {
				stats = &edgeStats{}
				edges[key] = stats
			}
			stats.seen++

			if a, b := firstRTT(from), firstRTT(to); a != nil && b != nil {
				stats.sumDelta += *b - *a
				stats.deltaCount++
			}
		}
	}

	out := &model.GraphFile{Version: model.SchemaVersion}
	for id, stats := range nodes {
		out.Nodes = append(out.Nodes, model.Node{
			ID:         id,
			Seen:       stats.seen,
			LossProbes: stats.lossProbes,
		})
	}
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })

	for key, stats := range edges {
		avg := 0.0
		if stats.deltaCount > 0 {
			avg = stats.sumDelta / float64(stats.deltaCount)
		}
		out.Edges = append(out.Edges, model.Edge{
			From:          key.from,
			To:            key.to,
			Seen:          stats.seen,
			RTTDeltaMsAvg: avg,
		})
	}
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].From != out.Edges[j].From {
			return out.Edges[i].From < out.Edges[j].From
		}
		return out.Edges[i].To < out.Edges[j].To
	})

	return out
}

// firstRTT returns the first answered probe of a hop, or nil.
func firstRTT(h model.Hop) *float64 {
	for _, rtt := range h.RTTMs {
		if rtt != nil {
			return rtt
		}
	}
	return nil
}
