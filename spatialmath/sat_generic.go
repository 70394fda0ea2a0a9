package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// triangleBoxOverlap runs the separating axis test between a triangle and an axis-aligned box given by its center
// and half size (Akenine-Moller, "Fast 3D Triangle-Box Overlap Testing"). The 13 candidate axes are the 3 box face
// normals, the 9 cross products of box axes with triangle edges, and the triangle normal. Touching counts as
// overlapping.
func triangleBoxOverlap(center, halfSize, p0, p1, p2 r3.Vector) bool {
	// Move the triangle into the box frame.
	v0 := p0.Sub(center)
	v1 := p1.Sub(center)
	v2 := p2.Sub(center)

	// --- 3 box face axes ---
	if math.Min(v0.X, math.Min(v1.X, v2.X)) > halfSize.X || math.Max(v0.X, math.Max(v1.X, v2.X)) < -halfSize.X {
		return false
	}
	if math.Min(v0.Y, math.Min(v1.Y, v2.Y)) > halfSize.Y || math.Max(v0.Y, math.Max(v1.Y, v2.Y)) < -halfSize.Y {
		return false
	}
	if math.Min(v0.Z, math.Min(v1.Z, v2.Z)) > halfSize.Z || math.Max(v0.Z, math.Max(v1.Z, v2.Z)) < -halfSize.Z {
		return false
	}

	// --- 9 edge cross products ---
	edges := [3]r3.Vector{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}
	for _, e := range edges {
		axes := [3]r3.Vector{
			{X: 0, Y: -e.Z, Z: e.Y},
			{X: e.Z, Y: 0, Z: -e.X},
			{X: -e.Y, Y: e.X, Z: 0},
		}
		for _, axis := range axes {
			if separatedOnAxis(axis, v0, v1, v2, halfSize) {
				return false
			}
		}
	}

	// --- triangle normal ---
	return !separatedOnAxis(edges[0].Cross(edges[1]), v0, v1, v2, halfSize)
}

// separatedOnAxis reports whether the projections of the triangle and the box onto axis are disjoint.
// A zero axis never separates.
func separatedOnAxis(axis, v0, v1, v2, halfSize r3.Vector) bool {
	d0 := axis.Dot(v0)
	d1 := axis.Dot(v1)
	d2 := axis.Dot(v2)
	r := halfSize.X*math.Abs(axis.X) + halfSize.Y*math.Abs(axis.Y) + halfSize.Z*math.Abs(axis.Z)
	return math.Min(d0, math.Min(d1, d2)) > r || math.Max(d0, math.Max(d1, d2)) < -r
}
