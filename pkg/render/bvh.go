package render

import (
	"math"
	"sort"
)

// leafSize is the maximum number of primitives stored in a BVH leaf.
const leafSize = 4

// BVH is a bounding volume hierarchy over spheres built with a median split
// along the largest box extent. The tree is immutable after construction and
// safe for concurrent queries.
type BVH struct {
	spheres []Sphere
	indices []int
	root    *bvhNode
}

// bvhNode is either a leaf holding the index range [start, end) into the
// BVH's index slice, or an internal node with two children.
type bvhNode struct {
	bounds AABB
	left   *bvhNode
	right  *bvhNode
	start  int
	end    int
}

func (n *bvhNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// NewBVH builds a BVH over the given spheres. The slice is retained; callers
// must not mutate it afterwards. An empty slice yields a BVH whose queries
// always miss.
func NewBVH(spheres []Sphere) *BVH {
	b := &BVH{spheres: spheres}
	if len(spheres) == 0 {
		return b
	}

	b.indices = make([]int, len(spheres))
	for i := range b.indices {
		b.indices[i] = i
	}
	b.root = b.build(b.indices, 0)
	return b
}

// build partitions the index range recursively. offset is the position of
// indices[0] within the BVH's full index slice, so leaves can record
// absolute ranges.
func (b *BVH) build(indices []int, offset int) *bvhNode {
	bounds := EmptyAABB()
	for _, idx := range indices {
		bounds = bounds.Union(b.spheres[idx].Bounds())
	}

	if len(indices) <= leafSize {
		return &bvhNode{bounds: bounds, start: offset, end: offset + len(indices)}
	}

	axis := bounds.LongestAxis()
	sort.Slice(indices, func(i, j int) bool {
		return centerAxis(b.spheres[indices[i]], axis) < centerAxis(b.spheres[indices[j]], axis)
	})

	mid := len(indices) / 2
	left := b.build(indices[:mid], offset)
	right := b.build(indices[mid:], offset+mid)

	return &bvhNode{
		bounds: left.bounds.Union(right.bounds),
		left:   left,
		right:  right,
	}
}

func centerAxis(s Sphere, axis int) float64 {
	switch axis {
	case 0:
		return s.Center.X
	case 1:
		return s.Center.Y
	default:
		return s.Center.Z
	}
}

// Intersect returns the nearest hit with t in [tMin, tMax], if any.
func (b *BVH) Intersect(r Ray, tMin, tMax float64) (Hit, bool) {
	if b.root == nil {
		return Hit{}, false
	}
	return b.intersectNode(b.root, r, tMin, tMax)
}

func (b *BVH) intersectNode(n *bvhNode, r Ray, tMin, tMax float64) (Hit, bool) {
	if !n.bounds.Hit(r, tMin, tMax) {
		return Hit{}, false
	}

	if n.isLeaf() {
		var closest Hit
		found := false
		closestT := tMax
		for _, idx := range b.indices[n.start:n.end] {
			if hit, ok := b.spheres[idx].Intersect(r, tMin, closestT); ok {
				closest = hit
				closestT = hit.T
				found = true
			}
		}
		return closest, found
	}

	// Visit order does not matter for correctness; the right child searches
	// within the bound narrowed by the left child's hit.
	closestT := tMax
	leftHit, leftOK := b.intersectNode(n.left, r, tMin, closestT)
	if leftOK {
		closestT = leftHit.T
	}
	rightHit, rightOK := b.intersectNode(n.right, r, tMin, closestT)
	if rightOK {
		return rightHit, true
	}
	return leftHit, leftOK
}

// Spheres exposes the primitive set, primarily for tests and brute-force
// comparison.
func (b *BVH) Spheres() []Sphere {
	return b.spheres
}

// infinity is a convenient tMax for unbounded queries.
var infinity = math.Inf(1)
