package render

import (
	"math"

	"github.com/ptroute/ptroute/pkg/model"
)

// Scene-building constants. Radii grow logarithmically with observation
// counts so a busy backbone hop reads bigger without dwarfing the frame.
const (
	nodeRadiusBase  = 0.15
	nodeRadiusScale = 0.05
	linkRadiusBase  = 0.04
	linkRadiusScale = 0.01
	linkAlbedo      = 0.08
	linkSpacingMin  = 0.05
	minSegment      = 1e-4
)

// BuildSpheres turns a positioned scene into the renderable primitive set:
// one solid sphere per node, plus an emissive chain of small spheres along
// every edge whose endpoints both resolve to known nodes. Edges with an
// unresolved endpoint are dropped; probe data is lossy and this is expected.
func BuildSpheres(scene *model.SceneFile) []Sphere {
	var spheres []Sphere
	positions := make(map[string]Vec3, len(scene.Nodes))

	for _, node := range scene.Nodes {
		pos := NewVec3(node.Position[0], node.Position[1], node.Position[2])
		positions[node.ID] = pos
		spheres = append(spheres, Sphere{
			Center: pos,
			Radius: nodeRadius(node.Seen),
			Albedo: colorFromID(node.ID),
		})
	}

	for _, edge := range scene.Edges {
		from, okFrom := positions[edge.From]
		to, okTo := positions[edge.To]
		if !okFrom || !okTo {
			continue
		}

		delta := to.Sub(from)
		dist := delta.Length()
		if dist <= minSegment {
			continue
		}

		radius := linkRadius(edge.Seen)
		spacing := math.Max(radius*3, linkSpacingMin)
		steps := int(math.Ceil(dist / spacing))
		if steps < 2 {
			steps = 2
		}

		emission := colorFromID(edge.From + "->" + edge.To).Scale(linkIntensity(edge.Seen, edge.RTTDeltaMsAvg))
		albedo := NewVec3(linkAlbedo, linkAlbedo, linkAlbedo)

		// Interior samples only; the endpoint spheres already mark the nodes.
		for i := 1; i < steps; i++ {
			t := float64(i) / float64(steps)
			spheres = append(spheres, Sphere{
				Center:   from.Add(delta.Scale(t)),
				Radius:   radius,
				Albedo:   albedo,
				Emission: emission,
			})
		}
	}

	return spheres
}

// FrameCamera positions the camera automatically: offset from the scene
// bounding-box center, scaled by the diagonal extent, so any scene size is
// framed without manual placement.
func FrameCamera(scene *model.SceneFile, width, height int) Camera {
	min := NewVec3(math.Inf(1), math.Inf(1), math.Inf(1))
	max := NewVec3(math.Inf(-1), math.Inf(-1), math.Inf(-1))

	for _, node := range scene.Nodes {
		pos := NewVec3(node.Position[0], node.Position[1], node.Position[2])
		min = min.Min(pos)
		max = max.Max(pos)
	}
	if len(scene.Nodes) == 0 {
		// An empty scene still frames the origin, so the background renders.
		min, max = Vec3{}, Vec3{}
	}

	center := min.Add(max).Scale(0.5)
	extent := math.Max(max.Sub(min).Length(), 1)
	distance := extent * 1.6

	lookFrom := center.Add(NewVec3(distance, distance*0.6, distance))
	aspect := float64(width) / float64(height)
	return NewCamera(lookFrom, center, NewVec3(0, 1, 0), aspect)
}

func nodeRadius(seen int) float64 {
	return nodeRadiusBase + math.Log(float64(max(seen, 1)))*nodeRadiusScale
}

func linkRadius(seen int) float64 {
	return linkRadiusBase + math.Log(float64(max(seen, 1)))*linkRadiusScale
}

// linkIntensity makes well-traveled, stable links glow and unstable or slow
// links dim: logarithmic in seen count, damped by the mean RTT delta.
func linkIntensity(seen int, rttDelta float64) float64 {
	freq := math.Log(float64(max(seen, 1))) + 1
	rtt := 1 / (1 + math.Abs(rttDelta)/50)
	return 3 * freq * rtt
}

// colorFromID maps raw id bytes into a stable pastel color. It depends only
// on the id, never the seed, so colors survive re-layouts.
func colorFromID(id string) Vec3 {
	h := fnv1a(0, id)
	r := float64(h&0xFF) / 255
	g := float64((h>>8)&0xFF) / 255
	b := float64((h>>16)&0xFF) / 255
	return NewVec3(0.2+0.8*r, 0.2+0.8*g, 0.2+0.8*b)
}

// fnv1a hashes id bytes with the 64-bit FNV-1a offset basis xor'd with seed.
func fnv1a(seed uint64, id string) uint64 {
	h := uint64(0xcbf29ce484222325) ^ seed
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 0x100000001b3
	}
	return h
}
