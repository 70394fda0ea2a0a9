package octree

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/meshoctree/spatialmath"
)

// CoverageReport lists which faces of a mesh can be found through a tree.
type CoverageReport struct {
	Faces   int
	Covered []uint32
	// Dropped faces are listed by no leaf that actually touches them. Under ContainmentStrict these are faces
	// with no vertex inside any octant they were offered to, typically faces reaching outside the build box.
	Dropped []uint32
}

// Complete reports whether every face is covered.
func (r CoverageReport) Complete() bool {
	return len(r.Dropped) == 0
}

// CheckCoverage finds, for every face of the mesh, a leaf that lists it and whose box touches it. Under
// ContainmentStrict touching means containing one of the face's vertices; under ContainmentLenient it means
// overlapping the face's surface.
func CheckCoverage(tree *Tree, mesh *spatialmath.Mesh) CoverageReport {
	covered := map[uint32]struct{}{}
	lenient := tree.Config().Containment == ContainmentLenient

	tree.Walk(func(id NodeID, n *Node, depth int) bool {
		if !n.IsLeaf() {
			return true
		}
		for _, face := range n.FaceIndices {
			if _, ok := covered[face]; ok {
				continue
			}
			if touches(n.BoundingBox, mesh, face, lenient) {
				covered[face] = struct{}{}
			}
		}
		return true
	})

	all := lo.Map(lo.Range(mesh.NumFaces()), func(i, _ int) uint32 { return uint32(i) })
	isCovered := func(face uint32, _ int) bool {
		_, ok := covered[face]
		return ok
	}
	return CoverageReport{
		Faces:   mesh.NumFaces(),
		Covered: lo.Filter(all, isCovered),
		Dropped: lo.Reject(all, isCovered),
	}
}

func touches(box spatialmath.BoundingBox, mesh *spatialmath.Mesh, face uint32, lenient bool) bool {
	if lenient {
		return box.OverlapsTriangle(mesh.Triangle(face))
	}
	for _, v := range mesh.FaceVertices(face) {
		if box.Contains(v) {
			return true
		}
	}
	return false
}

// LeafAssignments maps every face to the sorted ids of the leaves listing it.
func (t *Tree) LeafAssignments() map[uint32][]NodeID {
	out := map[uint32][]NodeID{}
	for _, id := range t.Leaves() {
		for _, face := range t.nodes[id].FaceIndices {
			out[face] = append(out[face], id)
		}
	}
	for face := range out {
		ids := lo.Uniq(out[face])
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[face] = ids
	}
	return out
}

// CheckInvariants verifies the structure of the tree: no node has both children and faces, children lie inside
// their parent's box, and child ids point forward within the arena.
func (t *Tree) CheckInvariants() error {
	var err error
	for i := 0; i < t.Len(); i++ {
		id := NodeID(i)
		n := &t.nodes[i]
		if !n.IsLeaf() && len(n.FaceIndices) > 0 {
			err = multierr.Append(err, errors.Errorf("node %d has children and %d faces", id, len(n.FaceIndices)))
		}
		for slot, child := range n.Children {
			if child == NoNode {
				continue
			}
			if child <= id || int(child) >= t.Len() {
				err = multierr.Append(err, errors.Errorf("node %d slot %d points to invalid node %d", id, slot, child))
				continue
			}
			if !n.BoundingBox.ContainsBox(t.nodes[child].BoundingBox) {
				err = multierr.Append(err, errors.Errorf("node %d slot %d box %v escapes parent box %v",
					id, slot, t.nodes[child].BoundingBox, n.BoundingBox))
			}
		}
	}
	return err
}
