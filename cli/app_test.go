package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/meshoctree/spatialmath"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewApp(&out).Run(append([]string{"octree"}, args...))
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	t.Run("generated sphere", func(t *testing.T) {
		out, err := runApp(t, "stats", "--generate", "sphere")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "Label: sphere")
		test.That(t, out, test.ShouldContainSubstring, "max depth")
		test.That(t, out, test.ShouldContainSubstring, "dropped faces")
	})

	t.Run("histogram", func(t *testing.T) {
		out, err := runApp(t, "stats", "--generate", "sphere", "--histogram")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "arena size")
		test.That(t, out, test.ShouldContainSubstring, "%")
		test.That(t, out, test.ShouldContainSubstring, "█")
	})

	t.Run("generated grid", func(t *testing.T) {
		out, err := runApp(t, "stats", "--generate", "grid")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "Faces: 2048")
	})

	t.Run("ply file smaller than the default min volume", func(t *testing.T) {
		_, err := runApp(t, "--debug", "stats", "--mesh", filepath.Join("..", "spatialmath", "data", "tetra.ply"))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "no octree could be built")
		test.That(t, err.Error(), test.ShouldContainSubstring, "Label: tetra.ply")
	})

	t.Run("mesh from config", func(t *testing.T) {
		dir := t.TempDir()
		tetra, err := os.ReadFile(filepath.Join("..", "spatialmath", "data", "tetra.ply"))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, os.WriteFile(filepath.Join(dir, "tetra.ply"), tetra, 0o600), test.ShouldBeNil)
		cfgPath := filepath.Join(dir, "octree.json")
		cfgJSON := `{"octree": {"min_volume": 0.01, "max_leaf_faces": 1, "containment": "lenient"}, "mesh": "tetra.ply"}`
		test.That(t, os.WriteFile(cfgPath, []byte(cfgJSON), 0o600), test.ShouldBeNil)

		out, err := runApp(t, "--config", cfgPath, "stats")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "Label: tetra.ply")
	})

	t.Run("errors", func(t *testing.T) {
		_, err := runApp(t, "stats")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "a mesh is required")

		_, err = runApp(t, "stats", "--generate", "torus")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `unknown mesh to generate "torus"`)

		_, err = runApp(t, "stats", "--generate", "grid", "--mesh", "a.ply")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot use both")

		_, err = runApp(t, "stats", "--mesh", "does_not_exist.ply")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "failed to load mesh")

		_, err = runApp(t, "--config", "does_not_exist.json", "stats", "--generate", "grid")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestCastCommand(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		out, err := runApp(t, "cast", "--generate", "grid", "--origin=0.25,0.75,5", "--dir=0,0,-1")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "hit face")
		test.That(t, out, test.ShouldContainSubstring, "5.000000")
		test.That(t, out, test.ShouldContainSubstring, "X:0.250, Y:0.750, Z:0.000")
	})

	t.Run("miss", func(t *testing.T) {
		out, err := runApp(t, "cast", "--generate", "sphere", "--origin=100,100,100", "--dir=1,0,0")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "misses the octree")
	})

	t.Run("too short", func(t *testing.T) {
		out, err := runApp(t, "cast", "--generate", "grid", "--origin=0.25,0.75,5", "--dir=0,0,-1", "--max-t=1")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, strings.Contains(out, "hit face"), test.ShouldBeFalse)
	})

	t.Run("bad vectors", func(t *testing.T) {
		_, err := runApp(t, "cast", "--generate", "grid", "--origin=1,2", "--dir=0,0,-1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "needs exactly 3 values")

		_, err = runApp(t, "cast", "--generate", "grid", "--origin=1,2,3", "--dir=0,0,0")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "zero vector")

		_, err = runApp(t, "cast", "--generate", "grid", "--origin=1,2,3")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestCubeAround(t *testing.T) {
	flat := spatialmath.NewBoundingBox(r3.Vector{}, r3.Vector{X: 4, Y: 2})
	cube := cubeAround(flat)
	test.That(t, cube.Extents(), test.ShouldResemble, r3.Vector{X: 4, Y: 4, Z: 4})
	test.That(t, cube.Center(), test.ShouldResemble, flat.Center())
	test.That(t, cube.ContainsBox(flat), test.ShouldBeTrue)

	point := spatialmath.NewBoundingBoxFromPoints(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, cubeAround(point).Volume(), test.ShouldAlmostEqual, 1)
}

func TestSchemaCommand(t *testing.T) {
	out, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"min_volume"`)
	test.That(t, out, test.ShouldContainSubstring, `"max_leaf_faces"`)
	test.That(t, out, test.ShouldContainSubstring, `"containment"`)
	test.That(t, out, test.ShouldContainSubstring, `"parallel"`)
	test.That(t, out, test.ShouldContainSubstring, `"log_level"`)
	test.That(t, out, test.ShouldNotContainSubstring, "ConfigFilePath")
	test.That(t, out, test.ShouldNotContainSubstring, `"$ref"`)

	var schema map[string]interface{}
	test.That(t, json.Unmarshal([]byte(out), &schema), test.ShouldBeNil)
	props, ok := schema["properties"].(map[string]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	octreeSchema, ok := props["octree"].(map[string]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, octreeSchema["type"], test.ShouldEqual, "object")
	octreeProps, ok := octreeSchema["properties"].(map[string]interface{})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, octreeProps["min_volume"], test.ShouldResemble, map[string]interface{}{"type": "number"})
}

func TestLeafHistogram(t *testing.T) {
	var out bytes.Buffer
	test.That(t, leafHistogram(&out, nil), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldBeEmpty)

	test.That(t, leafHistogram(&out, []float64{1, 1, 2, 4}), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "50%")
	test.That(t, strings.Count(out.String(), "\n"), test.ShouldEqual, 5)
}
