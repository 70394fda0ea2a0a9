package spatialmath

import "github.com/golang/geo/r3"

const floatEpsilon = 1e-9

// PlaneNormal returns the unit normal of the plane through the three points.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}
