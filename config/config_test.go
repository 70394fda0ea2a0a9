package config

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"go.viam.com/meshoctree/octree"
)

func TestRead(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		cfg, err := Read("data/octree.json")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "data/octree.json")
		test.That(t, cfg.Octree, test.ShouldResemble, octree.Config{
			MinVolume:    0.5,
			MaxLeafFaces: 8,
			Containment:  octree.ContainmentLenient,
			Parallel:     true,
		})
		test.That(t, cfg.Level(), test.ShouldEqual, zapcore.DebugLevel)
		test.That(t, cfg.MeshPath(), test.ShouldEqual, filepath.Join("..", "spatialmath", "data", "tetra.ply"))
	})

	t.Run("missing fields keep their defaults", func(t *testing.T) {
		cfg, err := Read("data/partial.json")
		test.That(t, err, test.ShouldBeNil)
		expected := octree.DefaultConfig()
		expected.MaxLeafFaces = 4
		test.That(t, cfg.Octree, test.ShouldResemble, expected)
		test.That(t, cfg.Mesh, test.ShouldBeEmpty)
		test.That(t, cfg.MeshPath(), test.ShouldBeEmpty)
		test.That(t, cfg.Level(), test.ShouldEqual, zapcore.InfoLevel)
	})

	t.Run("environment substitution", func(t *testing.T) {
		t.Setenv("OCTREE_CONTAINMENT", "lenient")
		t.Setenv("OCTREE_MESH", "/meshes/bunny.ply")
		cfg, err := Read("data/env.json")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.Octree.Containment, test.ShouldEqual, octree.ContainmentLenient)
		test.That(t, cfg.MeshPath(), test.ShouldEqual, "/meshes/bunny.ply")
	})

	t.Run("unknown keys", func(t *testing.T) {
		_, err := Read("data/unknown_key.json")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "failed to process Config")
		test.That(t, err.Error(), test.ShouldContainSubstring, "octree.max_faces")
		test.That(t, err.Error(), test.ShouldContainSubstring, "meshes")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Read("data/invalid.json")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "min_volume must be positive")
		test.That(t, err.Error(), test.ShouldContainSubstring, `unknown containment mode "loose"`)
		test.That(t, err.Error(), test.ShouldContainSubstring, "log_level")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Read("data/does_not_exist.json")
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"octree": `))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode Config from json")
	})

	t.Run("fractional integer", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"octree": {"max_leaf_faces": 16.7}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "max_leaf_faces")
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot use 16.7 as an integer")

		cfg, err := FromReader("", strings.NewReader(`{"octree": {"max_leaf_faces": 8.0}}`))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.Octree.MaxLeafFaces, test.ShouldEqual, 8)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := FromReader("", strings.NewReader(`{"octree": {"parallel": "yes"}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "parallel")
	})
}

func TestMeshPath(t *testing.T) {
	cfg := &Config{Mesh: "bunny.ply"}
	test.That(t, cfg.MeshPath(), test.ShouldEqual, "bunny.ply")

	cfg.ConfigFilePath = "/etc/octree/config.json"
	test.That(t, cfg.MeshPath(), test.ShouldEqual, "/etc/octree/bunny.ply")

	cfg.Mesh = "/abs/bunny.ply"
	test.That(t, cfg.MeshPath(), test.ShouldEqual, "/abs/bunny.ply")
}

func TestDecodeAttributes(t *testing.T) {
	cfg := octree.DefaultConfig()
	err := DecodeAttributes(map[string]interface{}{
		"min_volume":     2,
		"max_leaf_faces": 32.0,
	}, &cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MinVolume, test.ShouldEqual, 2.0)
	test.That(t, cfg.MaxLeafFaces, test.ShouldEqual, 32)
	test.That(t, cfg.Containment, test.ShouldEqual, octree.ContainmentStrict)

	err = DecodeAttributes(map[string]interface{}{"depth": 3, "bucket": 1}, &cfg)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown attributes ["bucket" "depth"]`)

	err = DecodeAttributes(map[string]interface{}{"max_leaf_faces": 16.7}, &cfg)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot use 16.7 as an integer")
	test.That(t, cfg.MaxLeafFaces, test.ShouldEqual, 32)

	err = DecodeAttributes(map[string]interface{}{"min_volume": 0.5}, &cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MinVolume, test.ShouldEqual, 0.5)

	err = DecodeAttributes(map[string]interface{}{}, cfg)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected a pointer")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Level(), test.ShouldEqual, zapcore.InfoLevel)

	cfg.LogLevel = ""
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	cfg.LogLevel = "warn"
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Level(), test.ShouldEqual, zapcore.WarnLevel)

	cfg.LogLevel = "loud"
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
	test.That(t, cfg.Level(), test.ShouldEqual, zapcore.InfoLevel)

	cfg = Default()
	cfg.Octree.Containment = ""
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "containment")
}
