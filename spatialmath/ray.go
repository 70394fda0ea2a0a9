package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// RayEpsilon is the default start of a ray's parametric interval. It keeps secondary rays from immediately hitting
// the surface they were spawned on.
const RayEpsilon = 1e-4

// Ray is a half-line Origin + t*Dir restricted to t in [MinT, MaxT].
type Ray struct {
	Origin r3.Vector
	Dir    r3.Vector
	MinT   float64
	MaxT   float64
}

// NewRay returns a ray covering [RayEpsilon, +Inf).
func NewRay(origin, dir r3.Vector) Ray {
	return NewRaySegment(origin, dir, RayEpsilon, math.Inf(1))
}

// NewRaySegment returns a ray restricted to [minT, maxT].
func NewRaySegment(origin, dir r3.Vector, minT, maxT float64) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		MinT:   minT,
		MaxT:   maxT,
	}
}

// At returns the point at parametric distance t along the ray.
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Dir.Mul(t))
}

// String returns a human readable string that represents the ray.
func (r Ray) String() string {
	return fmt.Sprintf("Origin: %v | Dir: %v | T: [%g, %g]", r.Origin, r.Dir, r.MinT, r.MaxT)
}
