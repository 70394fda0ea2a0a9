// Package cli contains the octree command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.viam.com/meshoctree/config"
	"go.viam.com/meshoctree/octree"
	"go.viam.com/meshoctree/spatialmath"
	"go.viam.com/meshoctree/testutils"
)

const (
	// Flags.
	flagConfig    = "config"
	flagDebug     = "debug"
	flagMesh      = "mesh"
	flagGenerate  = "generate"
	flagOrigin    = "origin"
	flagDir       = "dir"
	flagMaxT      = "max-t"
	flagHistogram = "histogram"

	generateSphere = "sphere"
	generateGrid   = "grid"
)

// octreeContext carries what the Before hook sets up to every command.
type octreeContext struct {
	cfg    *config.Config
	logger golog.Logger
}

// NewApp returns the octree command line app writing its output to out.
func NewApp(out io.Writer) *cli.App {
	var octx octreeContext

	meshFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  flagMesh,
			Usage: "build over the PLY mesh in `FILE`, overriding the config",
		},
		&cli.StringFlag{
			Name:  flagGenerate,
			Usage: "build over a generated mesh, either sphere or grid",
		},
	}

	return &cli.App{
		Name:      "octree",
		Usage:     "build and query triangle mesh octrees",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Default()
			if path := c.String(flagConfig); path != "" {
				var err error
				if cfg, err = config.Read(path); err != nil {
					return err
				}
			}
			octx.cfg = cfg

			if c.Bool(flagDebug) || cfg.Level() == zapcore.DebugLevel {
				octx.logger = golog.NewDebugLogger("octree")
			} else {
				octx.logger = zap.NewNop().Sugar()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "stats",
				Usage:     "build an octree and print its statistics",
				UsageText: fmt.Sprintf("octree stats [--%s FILE | --%s sphere|grid]", flagMesh, flagGenerate),
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  flagHistogram,
						Usage: "also print a histogram of faces per leaf",
					},
				}, meshFlags...),
				Action: func(c *cli.Context) error {
					return statsAction(c, &octx)
				},
			},
			{
				Name:  "cast",
				Usage: "build an octree and cast a ray through it",
				UsageText: fmt.Sprintf("octree cast --%s x,y,z --%s x,y,z [--%s FILE | --%s sphere|grid]",
					flagOrigin, flagDir, flagMesh, flagGenerate),
				Flags: append([]cli.Flag{
					&cli.Float64SliceFlag{
						Name:     flagOrigin,
						Required: true,
						Usage:    "ray origin as x,y,z",
					},
					&cli.Float64SliceFlag{
						Name:     flagDir,
						Required: true,
						Usage:    "ray direction as x,y,z",
					},
					&cli.Float64Flag{
						Name:  flagMaxT,
						Value: math.Inf(1),
						Usage: "maximum ray distance",
					},
				}, meshFlags...),
				Action: func(c *cli.Context) error {
					return castAction(c, &octx)
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the config file",
				Action: func(c *cli.Context) error {
					return schemaAction(c)
				},
			},
		},
	}
}

func statsAction(c *cli.Context, octx *octreeContext) error {
	mesh, err := loadMesh(c, octx.cfg)
	if err != nil {
		return err
	}
	tree, err := buildTree(octx, mesh)
	if err != nil {
		return err
	}
	defer tree.Release()

	printf(c.App.Writer, "%s", statsTable(mesh, tree.Stats(), octree.CheckCoverage(tree, mesh)))
	if c.Bool(flagHistogram) {
		return leafHistogram(c.App.Writer, tree.LeafFaceCounts())
	}
	return nil
}

func schemaAction(c *cli.Context) error {
	// both the file and its octree section are named Config, so nested types are inlined rather than referenced
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema, err := json.MarshalIndent(reflector.Reflect(&config.Config{}), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", schema)
	return nil
}

func castAction(c *cli.Context, octx *octreeContext) error {
	origin, err := vectorFlag(c, flagOrigin)
	if err != nil {
		return err
	}
	dir, err := vectorFlag(c, flagDir)
	if err != nil {
		return err
	}
	if dir.Norm2() == 0 {
		return errors.Errorf("--%s cannot be the zero vector", flagDir)
	}

	mesh, err := loadMesh(c, octx.cfg)
	if err != nil {
		return err
	}
	tree, err := buildTree(octx, mesh)
	if err != nil {
		return err
	}
	defer tree.Release()

	ray := spatialmath.NewRaySegment(origin, dir, spatialmath.RayEpsilon, c.Float64(flagMaxT))
	node := tree.RayIntersect(ray)
	if node == nil {
		printf(c.App.Writer, "ray %s misses the octree", ray)
		return nil
	}
	hit, ok := mesh.ClosestHit(ray, node.FaceIndices)
	printf(c.App.Writer, "%s", castTable(ray, node, hit, ok))
	return nil
}

func loadMesh(c *cli.Context, cfg *config.Config) (*spatialmath.Mesh, error) {
	meshPath := cfg.MeshPath()
	if c.IsSet(flagMesh) {
		meshPath = c.String(flagMesh)
	}
	generate := c.String(flagGenerate)

	switch {
	case meshPath != "" && generate != "":
		return nil, errors.Errorf("cannot use both a mesh file and --%s", flagGenerate)
	case meshPath != "":
		mesh, err := spatialmath.NewMeshFromPLYFile(meshPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load mesh %q", meshPath)
		}
		return mesh, nil
	case generate == generateSphere:
		return testutils.NewSphereMesh(r3.Vector{}, 10, 16, 32), nil
	case generate == generateGrid:
		return testutils.NewGridMesh(r3.Vector{}, 32, 1), nil
	case generate != "":
		return nil, errors.Errorf("unknown mesh to generate %q, expected %s or %s", generate, generateSphere, generateGrid)
	default:
		return nil, errors.Errorf("a mesh is required, use --%s or --%s", flagMesh, flagGenerate)
	}
}

func buildTree(octx *octreeContext, mesh *spatialmath.Mesh) (*octree.Tree, error) {
	builder, err := octree.NewBuilder(octx.cfg.Octree, octx.logger)
	if err != nil {
		return nil, err
	}
	tree := builder.Build(cubeAround(mesh.Bounds()), mesh, nil)
	if tree == nil {
		return nil, errors.Errorf("no octree could be built over %s", mesh)
	}
	return tree, nil
}

// cubeAround returns the cube sharing bb's center whose side is bb's longest extent, so that flat meshes still get
// a box with volume. A degenerate box becomes a unit cube.
func cubeAround(bb spatialmath.BoundingBox) spatialmath.BoundingBox {
	e := bb.Extents()
	half := math.Max(e.X, math.Max(e.Y, e.Z)) / 2
	if half == 0 {
		half = 0.5
	}
	c := bb.Center()
	offset := r3.Vector{X: half, Y: half, Z: half}
	return spatialmath.NewBoundingBox(c.Sub(offset), c.Add(offset))
}

func vectorFlag(c *cli.Context, name string) (r3.Vector, error) {
	vals := c.Float64Slice(name)
	if len(vals) != 3 {
		return r3.Vector{}, errors.Errorf("--%s needs exactly 3 values x,y,z but got %d", name, len(vals))
	}
	return r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// printf prints a message with a newline at the end.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
