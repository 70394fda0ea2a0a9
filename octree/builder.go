package octree

import (
	"slices"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.viam.com/meshoctree/spatialmath"
)

// Builder constructs octrees over triangle meshes according to a Config.
type Builder struct {
	cfg    Config
	logger golog.Logger
	clock  clock.Clock
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock sets the clock used to time builds.
func WithClock(c clock.Clock) BuilderOption {
	return func(b *Builder) {
		b.clock = c
	}
}

// NewBuilder returns a builder for the given config after validating it.
func NewBuilder(cfg Config, logger golog.Logger, opts ...BuilderOption) (*Builder, error) {
	if err := cfg.Validate("octree"); err != nil {
		return nil, err
	}
	b := &Builder{
		cfg:    cfg,
		logger: logger,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build builds an octree with the default config and no logging. See Builder.Build.
func Build(box spatialmath.BoundingBox, mesh *spatialmath.Mesh, faceIndices []uint32) *Tree {
	b, err := NewBuilder(DefaultConfig(), zap.NewNop().Sugar())
	if err != nil {
		// the default config always validates
		panic(err)
	}
	return b.Build(box, mesh, faceIndices)
}

// Build subdivides box and distributes the mesh's triangles over the resulting leaves. faceIndices restricts the
// build to a subset of the mesh's faces; an empty list means every face. It returns nil if the mesh has no
// vertices or if nothing was left to store.
//
// A box stops subdividing once its volume is below MinVolume or it was handed between 1 and MaxLeafFaces
// triangles; it then becomes a leaf holding those triangles, or nothing at all if it was handed none. Otherwise
// each triangle is listed in every octant it touches and the octants with a non-empty list are built in turn. A
// node that ends up with no children keeps the full list it was handed; a node with children keeps none.
func (b *Builder) Build(box spatialmath.BoundingBox, mesh *spatialmath.Mesh, faceIndices []uint32) *Tree {
	if mesh.NumVertices() == 0 {
		b.logger.Debug("no vertices given, skipping octree build")
		return nil
	}

	// a leaf keeps the list it is handed, so the tree must not share the caller's
	faceIndices = slices.Clone(faceIndices)

	start := b.clock.Now()
	nb := &nodeBuilder{cfg: b.cfg, mesh: mesh}
	var root NodeID
	if b.cfg.Parallel {
		root = nb.buildParallel(box, faceIndices)
	} else {
		root = nb.build(box, faceIndices)
	}
	elapsed := b.clock.Since(start)

	if root == NoNode {
		b.logger.Debugw("octree build produced no nodes", "box", box.String(), "faces", len(faceIndices))
		return nil
	}

	tree := &Tree{nodes: nb.nodes, cfg: b.cfg, buildTime: elapsed}
	if b.logger.Desugar().Core().Enabled(zap.DebugLevel) {
		stats := tree.Stats()
		b.logger.Debugw("octree built",
			"duration", elapsed,
			"nodes", stats.Nodes,
			"leaves", stats.Leaves,
			"max_depth", stats.MaxDepth,
			"face_refs", stats.FaceRefs,
		)
	}
	return tree
}

// nodeBuilder appends nodes to an arena in pre-order.
type nodeBuilder struct {
	cfg   Config
	mesh  *spatialmath.Mesh
	nodes []Node
}

func (nb *nodeBuilder) push(n Node) NodeID {
	nb.nodes = append(nb.nodes, n)
	return NodeID(len(nb.nodes) - 1)
}

func (nb *nodeBuilder) terminal(box spatialmath.BoundingBox, faceIndices []uint32) bool {
	return box.Volume() < nb.cfg.MinVolume || (len(faceIndices) > 0 && len(faceIndices) <= nb.cfg.MaxLeafFaces)
}

func (nb *nodeBuilder) build(box spatialmath.BoundingBox, faceIndices []uint32) NodeID {
	if nb.terminal(box, faceIndices) {
		if len(faceIndices) == 0 {
			return NoNode
		}
		return nb.push(Node{BoundingBox: box, Children: noChildren, FaceIndices: faceIndices})
	}

	octants := box.Octants()
	lists := nb.assign(octants, faceIndices)

	id := nb.push(Node{BoundingBox: box, Children: noChildren})
	for i := range octants {
		if len(lists[i]) == 0 {
			continue
		}
		// nb.nodes may be reallocated by the recursive call
		child := nb.build(octants[i], lists[i])
		nb.nodes[id].Children[i] = child
	}
	if nb.nodes[id].IsLeaf() {
		nb.nodes[id].FaceIndices = faceIndices
	}
	return id
}

// buildParallel builds the root serially and its octant subtrees concurrently, each into its own arena. The
// arenas are then appended in slot order, which reproduces the pre-order layout of a serial build.
func (nb *nodeBuilder) buildParallel(box spatialmath.BoundingBox, faceIndices []uint32) NodeID {
	if nb.terminal(box, faceIndices) {
		return nb.build(box, faceIndices)
	}

	octants := box.Octants()
	lists := nb.assign(octants, faceIndices)

	var subs [8]*nodeBuilder
	var roots [8]NodeID
	var g errgroup.Group
	for i := range octants {
		roots[i] = NoNode
		if len(lists[i]) == 0 {
			continue
		}
		sub := &nodeBuilder{cfg: nb.cfg, mesh: nb.mesh}
		subs[i] = sub
		i := i
		g.Go(func() error {
			roots[i] = sub.build(octants[i], lists[i])
			return nil
		})
	}
	//nolint:errcheck
	g.Wait()

	id := nb.push(Node{BoundingBox: box, Children: noChildren})
	for i, sub := range subs {
		if sub == nil || roots[i] == NoNode {
			continue
		}
		offset := NodeID(len(nb.nodes))
		for _, n := range sub.nodes {
			for slot, child := range n.Children {
				if child != NoNode {
					n.Children[slot] = child + offset
				}
			}
			nb.nodes = append(nb.nodes, n)
		}
		nb.nodes[id].Children[i] = roots[i] + offset
	}
	if nb.nodes[id].IsLeaf() {
		nb.nodes[id].FaceIndices = faceIndices
	}
	return id
}

// assign lists, for every octant, the candidate faces it should hold. An empty faceIndices means every face of
// the mesh is a candidate.
func (nb *nodeBuilder) assign(octants [8]spatialmath.BoundingBox, faceIndices []uint32) [8][]uint32 {
	var lists [8][]uint32

	count := len(faceIndices)
	if count == 0 {
		count = nb.mesh.NumFaces()
	}

	for i := 0; i < count; i++ {
		face := uint32(i)
		if len(faceIndices) > 0 {
			face = faceIndices[i]
		}

		switch nb.cfg.Containment {
		case ContainmentLenient:
			tri := nb.mesh.Triangle(face)
			for j := range octants {
				if octants[j].OverlapsTriangle(tri) {
					lists[j] = append(lists[j], face)
				}
			}
		default:
			verts := nb.mesh.FaceVertices(face)
			for j := range octants {
				if octants[j].Contains(verts[0]) || octants[j].Contains(verts[1]) || octants[j].Contains(verts[2]) {
					lists[j] = append(lists[j], face)
				}
			}
		}
	}
	return lists
}
