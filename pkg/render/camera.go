package render

import "math"

// vfovDegrees is the fixed vertical field of view of the pinhole camera.
const vfovDegrees = 35.0

// Camera is a pinhole camera producing rays for normalized image
// coordinates in [0,1]².
type Camera struct {
	origin     Vec3
	lowerLeft  Vec3
	horizontal Vec3
	vertical   Vec3
}

// NewCamera builds a camera from a look-from/look-at pair, an up hint, and
// the image aspect ratio. The orthonormal basis comes from cross products of
// the gaze direction with the up hint.
func NewCamera(lookFrom, lookAt, vup Vec3, aspect float64) Camera {
	theta := vfovDegrees * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h
	viewportWidth := aspect * viewportHeight

	w := lookFrom.Sub(lookAt).Normalize()
	u := vup.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Scale(viewportWidth)
	vertical := v.Scale(viewportHeight)
	lowerLeft := lookFrom.Sub(horizontal.Scale(0.5)).Sub(vertical.Scale(0.5)).Sub(w)

	return Camera{
		origin:     lookFrom,
		lowerLeft:  lowerLeft,
		horizontal: horizontal,
		vertical:   vertical,
	}
}

// Ray returns the camera ray through normalized image coordinates (u, v).
func (c Camera) Ray(u, v float64) Ray {
	dir := c.lowerLeft.
		Add(c.horizontal.Scale(u)).
		Add(c.vertical.Scale(v)).
		Sub(c.origin).
		Normalize()
	return Ray{Origin: c.origin, Direction: dir}
}
