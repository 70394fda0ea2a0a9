package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/meshoctree/octree"
	"go.viam.com/meshoctree/spatialmath"
)

// statsTable renders the statistics and coverage of a tree as a two column table.
func statsTable(mesh *spatialmath.Mesh, s octree.Stats, report octree.CoverageReport) string {
	t := table.NewWriter()
	t.SetTitle(mesh.String())
	t.AppendHeader(table.Row{"Statistic", "Value"})
	t.AppendRows([]table.Row{
		{"nodes", s.Nodes},
		{"leaves", s.Leaves},
		{"internal nodes", s.InternalNodes},
		{"max depth", s.MaxDepth},
		{"face references", s.FaceRefs},
		{"mean faces per leaf", fmt.Sprintf("%.2f", s.MeanLeafFaces)},
		{"median faces per leaf", fmt.Sprintf("%.2f", s.MedianLeafFaces)},
		{"max faces per leaf", s.MaxLeafFaces},
		{"arena size", units.BytesSize(float64(s.ArenaBytes))},
		{"build time", s.BuildTime},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"faces", report.Faces},
		{"covered faces", len(report.Covered)},
		{"dropped faces", len(report.Dropped)},
	})
	return t.Render()
}

// castTable renders the broad phase candidate of a ray and its narrow phase hit, if any.
func castTable(ray spatialmath.Ray, node *octree.Node, hit spatialmath.Hit, ok bool) string {
	t := table.NewWriter()
	t.SetTitle(ray.String())
	t.AppendHeader(table.Row{"Result", "Value"})
	t.AppendRows([]table.Row{
		{"candidate box", node.BoundingBox.String()},
		{"candidate leaf", node.IsLeaf()},
		{"candidate faces", len(node.FaceIndices)},
	})
	t.AppendSeparator()
	if !ok {
		t.AppendRow(table.Row{"hit", "none"})
		return t.Render()
	}
	t.AppendRows([]table.Row{
		{"hit face", hit.Face},
		{"hit distance", fmt.Sprintf("%.6f", hit.T)},
		{"hit point", fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", hit.Point.X, hit.Point.Y, hit.Point.Z)},
		{"barycentric", fmt.Sprintf("u:%.3f, v:%.3f", hit.U, hit.V)},
	})
	return t.Render()
}

// leafHistogram prints the distribution of faces per leaf, one bucket per face count up to 16 buckets.
func leafHistogram(w io.Writer, counts []float64) error {
	if len(counts) == 0 {
		return nil
	}
	maxCount := 0.0
	for _, c := range counts {
		maxCount = math.Max(maxCount, c)
	}
	bins := int(math.Min(maxCount+1, 16))
	return histogram.Fprintf(w, histogram.Hist(bins, counts), histogram.Linear(40), func(v float64) string {
		return fmt.Sprintf("%.0f", v)
	})
}
