// Package model defines the versioned JSON documents exchanged between the
// ptroute pipeline stages: raw probe runs (TraceFile), the aggregated
// statistics graph (GraphFile), and the positioned 3D scene (SceneFile).
//
// All three documents are plain values: stages never mutate a document they
// received, they produce a new one. Every document carries a schema version
// so readers can fail fast on input written by an incompatible build.
package model

// SchemaVersion is the document version written and accepted by this build.
const SchemaVersion = 1

// UnknownHopID is the sentinel node id used for hops that never answered,
// so unresolved hops still participate in the graph.
const UnknownHopID = "unknown"

// TraceFile is a collection of probe runs, one entry per (target, repeat).
type TraceFile struct {
	Version int        `json:"version"`
	Runs    []TraceRun `json:"runs"`
}

// TraceRun is the parsed output of a single traceroute invocation.
type TraceRun struct {
	Target       string `json:"target"`
	TimestampUTC string `json:"timestampUtc"`
	Hops         []Hop  `json:"hops"`
}

// Hop is one TTL step of a run. IP is nil when the hop never answered.
// RTTMs holds one entry per probe; nil entries are lost probes.
type Hop struct {
	TTL   int        `json:"ttl"`
	IP    *string    `json:"ip"`
	RTTMs []*float64 `json:"rttMs"`
}

// ID returns the node id for the hop: its address, or UnknownHopID.
func (h Hop) ID() string {
	if h.IP != nil {
		return *h.IP
	}
	return UnknownHopID
}

// GraphFile is the aggregated statistics graph built from one or more runs.
//
// Edges may reference ids that are absent from Nodes: probe data is
// inherently incomplete, and consumers must tolerate the dangling reference
// rather than reject the document.
type GraphFile struct {
	Version int    `json:"version"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// Node aggregates what was observed about a single hop address.
type Node struct {
	ID         string `json:"id"`
	Seen       int    `json:"seen"`
	LossProbes int    `json:"lossProbes"`
}

// Edge aggregates observations of two addresses appearing as consecutive hops.
type Edge struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Seen          int     `json:"seen"`
	RTTDeltaMsAvg float64 `json:"rttDeltaMsAvg"`
}

// SceneFile is a GraphFile whose nodes have been assigned 3D positions.
// It is a pure function of (graph, seed); see the graph package.
type SceneFile struct {
	Version int         `json:"version"`
	Nodes   []SceneNode `json:"nodes"`
	Edges   []SceneEdge `json:"edges"`
}

// SceneNode is a graph node with a deterministic position.
type SceneNode struct {
	ID         string     `json:"id"`
	Position   [3]float64 `json:"position"`
	Seen       int        `json:"seen"`
	LossProbes int        `json:"lossProbes"`
}

// SceneEdge mirrors the graph edge unchanged; layout never rewrites edges.
type SceneEdge struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Seen          int     `json:"seen"`
	RTTDeltaMsAvg float64 `json:"rttDeltaMsAvg"`
}
