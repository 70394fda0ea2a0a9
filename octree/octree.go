// Package octree implements an octree over a triangle mesh used as the broad phase of ray/mesh intersection.
// Building recursively splits a box into octants and lists each triangle in the leaves it touches; traversal walks
// the tree depth first and returns the first node whose box the ray hits and which has no hit-producing child.
// The returned node is only a candidate: callers test its FaceIndices against the ray themselves and compare hit
// distances if they need the nearest triangle.
//
// Nodes live in a single arena owned by the Tree and reference their children by NodeID. A built tree is
// immutable and safe for concurrent traversal.
package octree

import (
	"time"

	"go.viam.com/meshoctree/spatialmath"
)

// NodeID is the index of a node in its tree's arena.
type NodeID int32

const (
	// NoNode marks an empty child slot, or no result.
	NoNode = NodeID(-1)
	// RootID is the arena index of the root of every non-empty tree.
	RootID = NodeID(0)
)

var noChildren = [8]NodeID{NoNode, NoNode, NoNode, NoNode, NoNode, NoNode, NoNode, NoNode}

// Node is a single octree cell. Slot i of Children covers octant i of BoundingBox as laid out by
// spatialmath.BoundingBox.Octants. Only nodes without children carry FaceIndices.
type Node struct {
	// BoundingBox is the region offered to this node when it was built; it is not shrunk to fit its triangles.
	BoundingBox spatialmath.BoundingBox
	Children    [8]NodeID
	// FaceIndices index into the mesh's face buffer. A triangle may be listed by several leaves.
	FaceIndices []uint32
}

// IsLeaf reports whether every child slot is empty.
func (n *Node) IsLeaf() bool {
	return n.Children == noChildren
}

// Child returns the node in the given octant slot, or NoNode.
func (n *Node) Child(slot int) NodeID {
	return n.Children[slot]
}

// Tree is a built octree. A nil *Tree is the empty result of a build and all of its methods are safe to call.
type Tree struct {
	nodes     []Node
	cfg       Config
	buildTime time.Duration
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	return t.Node(RootID)
}

// Node returns the node with the given id, or nil if the id is not in the tree.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= t.Len() {
		return nil
	}
	return &t.nodes[id]
}

// Config returns the configuration the tree was built with.
func (t *Tree) Config() Config {
	if t == nil {
		return Config{}
	}
	return t.cfg
}

// Release drops the node arena. Nodes previously returned by the tree must not be used afterwards, and the tree
// behaves as empty.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	t.nodes = nil
}

// Walk visits the tree depth first in slot order starting at the root. Returning false from fn skips the
// children of the visited node.
func (t *Tree) Walk(fn func(id NodeID, n *Node, depth int) bool) {
	if t.Len() == 0 {
		return
	}
	t.walk(RootID, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(id NodeID, n *Node, depth int) bool) {
	n := &t.nodes[id]
	if !fn(id, n, depth) {
		return
	}
	for _, child := range n.Children {
		if child != NoNode {
			t.walk(child, depth+1, fn)
		}
	}
}

// Leaves returns the ids of all nodes without children, in depth first order.
func (t *Tree) Leaves() []NodeID {
	var leaves []NodeID
	t.Walk(func(id NodeID, n *Node, depth int) bool {
		if n.IsLeaf() {
			leaves = append(leaves, id)
		}
		return true
	})
	return leaves
}
