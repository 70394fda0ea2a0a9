package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Ordered list of box vertices, as signs of the half size.
var boxVertices = [8]r3.Vector{
	{1, 1, 1},
	{1, 1, -1},
	{1, -1, 1},
	{1, -1, -1},
	{-1, 1, 1},
	{-1, 1, -1},
	{-1, -1, 1},
	{-1, -1, -1},
}

// The sets of indices of the box vertices that tile the box exterior.
var boxTriangles = [12][3]uint32{
	{0, 1, 3},
	{0, 2, 3},
	{0, 1, 5},
	{0, 4, 5},
	{0, 2, 6},
	{0, 4, 6},
	{7, 1, 3},
	{7, 2, 3},
	{7, 1, 5},
	{7, 4, 5},
	{7, 2, 6},
	{7, 4, 6},
}

// BoundingBox is an axis-aligned box defined by its minimum and maximum corners.
type BoundingBox struct {
	Min r3.Vector
	Max r3.Vector
}

// NewBoundingBox returns the box spanned by the two corners, which may be given in any order.
func NewBoundingBox(a, b r3.Vector) BoundingBox {
	return BoundingBox{
		Min: r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// NewBoundingBoxFromPoints returns the smallest box enclosing every given point. No points yields the zero box.
func NewBoundingBoxFromPoints(pts ...r3.Vector) BoundingBox {
	if len(pts) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb = bb.ExpandBy(p)
	}
	return bb
}

// ExpandBy returns a copy of the box grown to include p.
func (bb BoundingBox) ExpandBy(p r3.Vector) BoundingBox {
	return BoundingBox{
		Min: r3.Vector{X: math.Min(bb.Min.X, p.X), Y: math.Min(bb.Min.Y, p.Y), Z: math.Min(bb.Min.Z, p.Z)},
		Max: r3.Vector{X: math.Max(bb.Max.X, p.X), Y: math.Max(bb.Max.Y, p.Y), Z: math.Max(bb.Max.Z, p.Z)},
	}
}

// Extents returns the side lengths of the box.
func (bb BoundingBox) Extents() r3.Vector {
	return bb.Max.Sub(bb.Min)
}

// Volume returns the volume of the box.
func (bb BoundingBox) Volume() float64 {
	e := bb.Extents()
	return e.X * e.Y * e.Z
}

// Center returns the midpoint of the box.
func (bb BoundingBox) Center() r3.Vector {
	return bb.Min.Add(bb.Extents().Mul(0.5))
}

// Contains reports whether p lies inside the box. Both faces are inclusive, so a point on a plane shared by two
// neighbouring boxes is inside both of them.
func (bb BoundingBox) Contains(p r3.Vector) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y &&
		p.Z >= bb.Min.Z && p.Z <= bb.Max.Z
}

// ContainsBox reports whether other lies entirely inside the box.
func (bb BoundingBox) ContainsBox(other BoundingBox) bool {
	return bb.Contains(other.Min) && bb.Contains(other.Max)
}

// Octants splits the box at its center into eight boxes. Index bit 0 selects the high half along x, bit 1 along y
// and bit 2 along z, so index 0 is the low corner octant and index 7 the high corner octant.
func (bb BoundingBox) Octants() [8]BoundingBox {
	mid := bb.Center()
	var out [8]BoundingBox
	for i := range out {
		lo, hi := bb.Min, mid
		if i&1 != 0 {
			lo.X, hi.X = mid.X, bb.Max.X
		}
		if i&2 != 0 {
			lo.Y, hi.Y = mid.Y, bb.Max.Y
		}
		if i&4 != 0 {
			lo.Z, hi.Z = mid.Z, bb.Max.Z
		}
		out[i] = BoundingBox{Min: lo, Max: hi}
	}
	return out
}

// RayIntersect reports whether the ray enters the box anywhere inside its [MinT, MaxT] interval.
func (bb BoundingBox) RayIntersect(ray Ray) bool {
	_, _, ok := bb.RayIntersectT(ray)
	return ok
}

// RayIntersectT is RayIntersect that also returns the parametric distances at which the ray's line enters and
// leaves the box. The distances are not clamped to the ray interval.
func (bb BoundingBox) RayIntersectT(ray Ray) (float64, float64, bool) {
	nearT := math.Inf(-1)
	farT := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		origin := component(ray.Origin, axis)
		minVal := component(bb.Min, axis)
		maxVal := component(bb.Max, axis)

		if component(ray.Dir, axis) == 0 {
			// parallel to this slab
			if origin < minVal || origin > maxVal {
				return 0, 0, false
			}
			continue
		}

		rcp := 1 / component(ray.Dir, axis)
		t1 := (minVal - origin) * rcp
		t2 := (maxVal - origin) * rcp
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		nearT = math.Max(t1, nearT)
		farT = math.Min(t2, farT)

		if !(nearT <= farT) {
			return 0, 0, false
		}
	}

	return nearT, farT, ray.MinT <= farT && nearT <= ray.MaxT
}

// OverlapsTriangle reports whether any part of the triangle's surface touches the box.
func (bb BoundingBox) OverlapsTriangle(tri *Triangle) bool {
	return triangleBoxOverlap(bb.Center(), bb.Extents().Mul(0.5), tri.p0, tri.p1, tri.p2)
}

// ToMesh returns the surface of the box as 12 triangles over 8 shared vertices.
func (bb BoundingBox) ToMesh(label string) *Mesh {
	center := bb.Center()
	half := bb.Extents().Mul(0.5)
	vertices := make([]r3.Vector, 0, len(boxVertices))
	for _, v := range boxVertices {
		vertices = append(vertices, r3.Vector{X: center.X + v.X*half.X, Y: center.Y + v.Y*half.Y, Z: center.Z + v.Z*half.Z})
	}
	faces := make([][3]uint32, len(boxTriangles))
	copy(faces, boxTriangles[:])
	return NewMesh(vertices, faces, label)
}

// String returns a human readable string that represents the box.
func (bb BoundingBox) String() string {
	return fmt.Sprintf("Min: X:%.3f, Y:%.3f, Z:%.3f | Max: X:%.3f, Y:%.3f, Z:%.3f",
		bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z)
}

func component(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
