package octree

import (
	"time"
	"unsafe"

	"github.com/montanaflynn/stats"
)

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes         int
	Leaves        int
	InternalNodes int
	MaxDepth      int
	// FaceRefs counts face listings over all leaves, so replicated triangles count once per leaf.
	FaceRefs        int
	MeanLeafFaces   float64
	MedianLeafFaces float64
	MaxLeafFaces    int
	// ArenaBytes approximates the memory held by the node arena and the leaves' face lists.
	ArenaBytes int
	BuildTime  time.Duration
}

// Stats computes statistics over the tree. An empty tree has zero stats.
func (t *Tree) Stats() Stats {
	var s Stats
	if t.Len() == 0 {
		return s
	}
	s.BuildTime = t.buildTime

	t.Walk(func(id NodeID, n *Node, depth int) bool {
		s.Nodes++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if !n.IsLeaf() {
			s.InternalNodes++
			return true
		}
		s.Leaves++
		s.FaceRefs += len(n.FaceIndices)
		if len(n.FaceIndices) > s.MaxLeafFaces {
			s.MaxLeafFaces = len(n.FaceIndices)
		}
		return true
	})
	s.ArenaBytes = cap(t.nodes)*int(unsafe.Sizeof(Node{})) + s.FaceRefs*int(unsafe.Sizeof(uint32(0)))

	data := stats.Float64Data(t.LeafFaceCounts())
	if mean, err := data.Mean(); err == nil {
		s.MeanLeafFaces = mean
	}
	if median, err := data.Median(); err == nil {
		s.MedianLeafFaces = median
	}
	return s
}

// LeafFaceCounts returns the number of faces listed by each leaf, in depth first order.
func (t *Tree) LeafFaceCounts() []float64 {
	var counts []float64
	for _, id := range t.Leaves() {
		counts = append(counts, float64(len(t.nodes[id].FaceIndices)))
	}
	return counts
}
