package render

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns the identity box for Union: it contains nothing and
// unioning it with any box yields that box.
func EmptyAABB() AABB {
	return AABB{
		Min: NewVec3(math.Inf(1), math.Inf(1), math.Inf(1)),
		Max: NewVec3(math.Inf(-1), math.Inf(-1), math.Inf(-1)),
	}
}

// Union returns the smallest box containing both a and o.
func (a AABB) Union(o AABB) AABB {
	return AABB{Min: a.Min.Min(o.Min), Max: a.Max.Max(o.Max)}
}

// Extent returns the box size per axis.
func (a AABB) Extent() Vec3 {
	return a.Max.Sub(a.Min)
}

// LongestAxis returns 0, 1 or 2 for the axis with the largest extent.
func (a AABB) LongestAxis() int {
	e := a.Extent()
	switch {
	case e.X >= e.Y && e.X >= e.Z:
		return 0
	case e.Y >= e.Z:
		return 1
	default:
		return 2
	}
}

// Hit runs the slab test and reports whether the ray passes through the box
// within [tMin, tMax].
func (a AABB) Hit(r Ray, tMin, tMax float64) bool {
	if !hitSlab(a.Min.X, a.Max.X, r.Origin.X, r.Direction.X, &tMin, &tMax) {
		return false
	}
	if !hitSlab(a.Min.Y, a.Max.Y, r.Origin.Y, r.Direction.Y, &tMin, &tMax) {
		return false
	}
	return hitSlab(a.Min.Z, a.Max.Z, r.Origin.Z, r.Direction.Z, &tMin, &tMax)
}

func hitSlab(min, max, origin, direction float64, tMin, tMax *float64) bool {
	if direction == 0 {
		// Parallel ray: inside the slab or never.
		return origin >= min && origin <= max
	}

	invD := 1 / direction
	t0 := (min - origin) * invD
	t1 := (max - origin) * invD
	if invD < 0 {
		t0, t1 = t1, t0
	}

	*tMin = math.Max(t0, *tMin)
	*tMax = math.Min(t1, *tMax)
	return *tMax > *tMin
}
