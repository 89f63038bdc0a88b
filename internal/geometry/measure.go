package geometry

import "math"

// roundedRectDistance returns the signed distance from (x, y) to the
// boundary of a w x l rectangle at the origin with corners rounded by r.
// Negative inside.
func roundedRectDistance(x, y, w, l, r float64) float64 {
	qx := math.Abs(x-w/2) - (w/2 - r)
	qy := math.Abs(y-l/2) - (l/2 - r)
	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - r
}

// ExteriorDistance returns the distance from a point inside the case plan
// to the exterior outline.
func (m Metrics) ExteriorDistance(x, y float64) float64 {
	return -roundedRectDistance(x, y, m.ExteriorWidth, m.ExteriorLength, m.OuterRadius)
}

// CavityCornerPoint returns the point of the cavity outline at angle theta
// (radians, measured from the corner centre) around the corner nearest the
// origin. Meaningful angles run from π to 3π/2.
func (m Metrics) CavityCornerPoint(theta float64) (x, y float64) {
	o := m.InteriorOrigin
	ri := m.InnerRadius
	return o.X + ri + ri*math.Cos(theta), o.Y + ri + ri*math.Sin(theta)
}

// WallThicknessAt returns the wall thickness measured from the cavity
// outline at angle theta around the corner to the exterior outline.
func (m Metrics) WallThicknessAt(theta float64) float64 {
	return m.ExteriorDistance(m.CavityCornerPoint(theta))
}
