package render

import "math"

// Sphere is the only primitive the renderer knows. Node spheres are solid
// and non-emissive; link-chain spheres are near-black emitters.
type Sphere struct {
	Center   Vec3
	Radius   float64
	Albedo   Vec3
	Emission Vec3
}

// Hit describes the nearest intersection of a ray with a sphere.
type Hit struct {
	T        float64
	Point    Vec3
	Normal   Vec3
	Albedo   Vec3
	Emission Vec3
}

// Intersect reports the nearest intersection with t in [tMin, tMax].
func (s Sphere) Intersect(r Ray, tMin, tMax float64) (Hit, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Direction.Dot(r.Direction)
	halfB := oc.Dot(r.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(disc)

	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return Hit{}, false
		}
	}

	p := r.At(root)
	return Hit{
		T:        root,
		Point:    p,
		Normal:   p.Sub(s.Center).Scale(1 / s.Radius),
		Albedo:   s.Albedo,
		Emission: s.Emission,
	}, true
}

// Bounds returns the axis-aligned bounding box of the sphere.
func (s Sphere) Bounds() AABB {
	r := NewVec3(s.Radius, s.Radius, s.Radius)
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}
