package spatialmath

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Mesh is an indexed triangle mesh: a vertex position buffer and a face buffer holding three vertex indices per
// triangle.
type Mesh struct {
	vertices []r3.Vector
	faces    [][3]uint32
	label    string
}

// Hit describes a narrow-phase ray/triangle intersection.
type Hit struct {
	Face  uint32
	T     float64
	U     float64
	V     float64
	Point r3.Vector
}

// NewMesh creates a mesh over the given buffers. The buffers are not copied.
func NewMesh(vertices []r3.Vector, faces [][3]uint32, label string) *Mesh {
	return &Mesh{
		vertices: vertices,
		faces:    faces,
		label:    label,
	}
}

// NewMeshFromTriangles creates a mesh with three unshared vertices per triangle.
func NewMeshFromTriangles(triangles []*Triangle, label string) *Mesh {
	vertices := make([]r3.Vector, 0, 3*len(triangles))
	faces := make([][3]uint32, 0, len(triangles))
	for _, tri := range triangles {
		base := uint32(len(vertices))
		vertices = append(vertices, tri.p0, tri.p1, tri.p2)
		faces = append(faces, [3]uint32{base, base + 1, base + 2})
	}
	return NewMesh(vertices, faces, label)
}

// NewMeshFromPLYFile is a helper function to create a Mesh from a PLY file.
func NewMeshFromPLYFile(path string) (*Mesh, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newMeshFromBytes(data, filepath.Base(path))
}

// NewMeshFromPLYReader creates a Mesh from PLY data read from r.
func NewMeshFromPLYReader(r io.Reader, label string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return newMeshFromBytes(data, label)
}

func newMeshFromBytes(data []byte, label string) (mesh *Mesh, err error) {
	// the ply parser panics on malformed input
	defer func() {
		if r := recover(); r != nil {
			mesh = nil
			err = errors.Errorf("could not create mesh from ply data: %v", r)
		}
	}()

	ply := goply.New(bytes.NewReader(data))
	plyVertices := ply.Elements("vertex")
	plyFaces := ply.Elements("face")
	if len(plyVertices) == 0 {
		return nil, errors.New("ply data has no vertices")
	}

	vertices := make([]r3.Vector, 0, len(plyVertices))
	for i, v := range plyVertices {
		var pt [3]float64
		for axis, name := range [3]string{"x", "y", "z"} {
			f, err := plyFloat(v[name])
			if err != nil {
				return nil, errors.Wrapf(err, "vertex %d property %q", i, name)
			}
			pt[axis] = f
		}
		vertices = append(vertices, r3.Vector{X: pt[0], Y: pt[1], Z: pt[2]})
	}

	faces := make([][3]uint32, 0, len(plyFaces))
	for i, f := range plyFaces {
		idxs, err := plyIndices(f["vertex_indices"])
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", i)
		}
		if len(idxs) != 3 {
			return nil, errors.Errorf("face %d has %d vertices, only triangles are supported", i, len(idxs))
		}
		for _, idx := range idxs {
			if int(idx) >= len(vertices) {
				return nil, errors.Errorf("face %d references vertex %d but there are only %d", i, idx, len(vertices))
			}
		}
		faces = append(faces, [3]uint32{idxs[0], idxs[1], idxs[2]})
	}

	return NewMesh(vertices, faces, label), nil
}

func plyFloat(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, errors.Errorf("unsupported type %T", v)
	}
}

// plyIndices converts a vertex_indices list, which the ply parser stores as a []interface{} of its integer scalar
// types, to vertex indices.
func plyIndices(v interface{}) ([]uint32, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("unsupported vertex_indices type %T", v)
	}
	out := make([]uint32, 0, len(list))
	for _, elem := range list {
		idx, err := plyIndex(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

func plyIndex(v interface{}) (uint32, error) {
	var idx int64
	switch i := v.(type) {
	case uint32:
		return i, nil
	case int32:
		idx = int64(i)
	case uint16:
		idx = int64(i)
	case int16:
		idx = int64(i)
	case uint8:
		idx = int64(i)
	case int8:
		idx = int64(i)
	default:
		return 0, errors.Errorf("unsupported vertex index type %T", v)
	}
	if idx < 0 {
		return 0, errors.Errorf("negative vertex index %d", idx)
	}
	return uint32(idx), nil
}

// Label returns the label of this mesh.
func (m *Mesh) Label() string {
	return m.label
}

// Vertices returns the vertex position buffer.
func (m *Mesh) Vertices() []r3.Vector {
	return m.vertices
}

// Faces returns the face buffer.
func (m *Mesh) Faces() [][3]uint32 {
	return m.faces
}

// NumVertices returns the number of vertices in the mesh. A nil mesh has none.
func (m *Mesh) NumVertices() int {
	if m == nil {
		return 0
	}
	return len(m.vertices)
}

// NumFaces returns the number of triangles in the mesh.
func (m *Mesh) NumFaces() int {
	if m == nil {
		return 0
	}
	return len(m.faces)
}

// Face returns the vertex indices of triangle i.
func (m *Mesh) Face(i uint32) [3]uint32 {
	return m.faces[i]
}

// FaceVertices returns the three vertex positions of triangle i.
func (m *Mesh) FaceVertices(i uint32) [3]r3.Vector {
	f := m.faces[i]
	return [3]r3.Vector{m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]]}
}

// Triangle returns triangle i as a standalone Triangle.
func (m *Mesh) Triangle(i uint32) *Triangle {
	v := m.FaceVertices(i)
	return NewTriangle(v[0], v[1], v[2])
}

// Bounds returns the smallest box enclosing every vertex of the mesh.
func (m *Mesh) Bounds() BoundingBox {
	return NewBoundingBoxFromPoints(m.vertices...)
}

// ClosestHit tests the ray against each listed face and returns the nearest hit.
func (m *Mesh) ClosestHit(ray Ray, faceIndices []uint32) (Hit, bool) {
	best := Hit{T: math.Inf(1)}
	found := false
	for _, f := range faceIndices {
		dist, u, v, ok := m.Triangle(f).RayIntersect(ray)
		if !ok || dist >= best.T {
			continue
		}
		best = Hit{Face: f, T: dist, U: u, V: v, Point: ray.At(dist)}
		found = true
	}
	return best, found
}

// String returns a human readable string that represents the mesh.
func (m *Mesh) String() string {
	return fmt.Sprintf("Type: Mesh | Label: %s | Vertices: %d | Faces: %d", m.label, len(m.vertices), len(m.faces))
}
