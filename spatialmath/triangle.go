package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Triangle is three points in space with a precomputed unit normal.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a triangle from three points. The normal follows the right hand rule over p0, p1, p2.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// Points returns the vertices of the triangle.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit normal of the triangle.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Area returns the surface area of the triangle.
func (t *Triangle) Area() float64 {
	return 0.5 * t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm()
}

// Centroid returns the average of the three vertices.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3.)
}

// RayIntersect runs the Moller-Trumbore test. On a hit it returns the ray parameter t and the barycentric
// coordinates u, v of the hit point relative to p1 and p2. Hits outside the ray's [MinT, MaxT] are misses.
func (t *Triangle) RayIntersect(ray Ray) (float64, float64, float64, bool) {
	e1 := t.p1.Sub(t.p0)
	e2 := t.p2.Sub(t.p0)

	pvec := ray.Dir.Cross(e2)
	det := e1.Dot(pvec)
	// ray parallel to the triangle plane
	if det > -floatEpsilon && det < floatEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1. / det

	tvec := ray.Origin.Sub(t.p0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(e1)
	v := ray.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	dist := e2.Dot(qvec) * invDet
	if dist < ray.MinT || dist > ray.MaxT {
		return 0, 0, 0, false
	}
	return dist, u, v, true
}
