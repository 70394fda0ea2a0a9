package octree

import (
	"go.viam.com/meshoctree/spatialmath"
)

// RayIntersect returns the candidate node for the ray, or nil if the ray misses the tree. See RayIntersectFrom.
func (t *Tree) RayIntersect(ray spatialmath.Ray) *Node {
	if t.Len() == 0 {
		return nil
	}
	return t.Node(t.RayIntersectFrom(RootID, ray))
}

// RayIntersectFrom walks the subtree rooted at id. If the ray misses the node's box it returns NoNode. Otherwise
// the children are tried in slot order and the first one to return a node wins; if none does, the node itself is
// returned whether or not it lists any faces. The result is the first depth first candidate, not necessarily the
// one holding the nearest triangle. An id outside the tree returns NoNode.
func (t *Tree) RayIntersectFrom(id NodeID, ray spatialmath.Ray) NodeID {
	n := t.Node(id)
	if n == nil || !n.BoundingBox.RayIntersect(ray) {
		return NoNode
	}
	for _, child := range n.Children {
		if child == NoNode {
			continue
		}
		if hit := t.RayIntersectFrom(child, ray); hit != NoNode {
			return hit
		}
	}
	return id
}
