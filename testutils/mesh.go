// Package testutils provides procedural meshes for tests and demos.
package testutils

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/meshoctree/spatialmath"
)

// NewSphereMesh returns a UV sphere with the given number of latitude rings and longitude segments. The poles are
// single vertices, so the mesh has segments*(2*rings-2) faces.
func NewSphereMesh(center r3.Vector, radius float64, rings, segments int) *spatialmath.Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	vertices := []r3.Vector{center.Add(r3.Vector{Z: radius})}
	for ring := 1; ring < rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)
		for seg := 0; seg < segments; seg++ {
			phi := 2 * math.Pi * float64(seg) / float64(segments)
			vertices = append(vertices, center.Add(r3.Vector{
				X: radius * math.Sin(theta) * math.Cos(phi),
				Y: radius * math.Sin(theta) * math.Sin(phi),
				Z: radius * math.Cos(theta),
			}))
		}
	}
	south := uint32(len(vertices))
	vertices = append(vertices, center.Add(r3.Vector{Z: -radius}))

	ringStart := func(ring int) uint32 {
		return uint32(1 + (ring-1)*segments)
	}

	var faces [][3]uint32
	for seg := 0; seg < segments; seg++ {
		next := (seg + 1) % segments
		faces = append(faces, [3]uint32{0, ringStart(1) + uint32(seg), ringStart(1) + uint32(next)})
	}
	for ring := 1; ring < rings-1; ring++ {
		top, bottom := ringStart(ring), ringStart(ring+1)
		for seg := 0; seg < segments; seg++ {
			next := (seg + 1) % segments
			faces = append(faces,
				[3]uint32{top + uint32(seg), bottom + uint32(seg), bottom + uint32(next)},
				[3]uint32{top + uint32(seg), bottom + uint32(next), top + uint32(next)},
			)
		}
	}
	last := ringStart(rings - 1)
	for seg := 0; seg < segments; seg++ {
		next := (seg + 1) % segments
		faces = append(faces, [3]uint32{south, last + uint32(next), last + uint32(seg)})
	}

	return spatialmath.NewMesh(vertices, faces, "sphere")
}

// NewGridMesh returns a cells x cells grid of unit squares scaled by cellSize, lying in the z = origin.Z plane with
// its low corner at origin. Every square is split into two triangles.
func NewGridMesh(origin r3.Vector, cells int, cellSize float64) *spatialmath.Mesh {
	stride := cells + 1
	vertices := make([]r3.Vector, 0, stride*stride)
	for y := 0; y <= cells; y++ {
		for x := 0; x <= cells; x++ {
			vertices = append(vertices, origin.Add(r3.Vector{X: float64(x) * cellSize, Y: float64(y) * cellSize}))
		}
	}

	faces := make([][3]uint32, 0, 2*cells*cells)
	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			i := uint32(y*stride + x)
			faces = append(faces,
				[3]uint32{i, i + 1, i + uint32(stride) + 1},
				[3]uint32{i, i + uint32(stride) + 1, i + uint32(stride)},
			)
		}
	}
	return spatialmath.NewMesh(vertices, faces, "grid")
}
