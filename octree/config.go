package octree

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ContainmentMode selects how triangles are assigned to the octants of a node being split.
type ContainmentMode string

const (
	// ContainmentStrict assigns a triangle to an octant only when one of its vertices lies inside the octant.
	// A triangle that crosses an octant without a vertex in it is not listed there, and a triangle with no vertex
	// in any octant is dropped from the tree.
	ContainmentStrict = ContainmentMode("strict")
	// ContainmentLenient assigns a triangle to every octant its surface overlaps.
	ContainmentLenient = ContainmentMode("lenient")
)

const (
	defaultMinVolume    = 4.0
	defaultMaxLeafFaces = 16
)

// Config holds the subdivision policy of the builder.
type Config struct {
	// MinVolume stops subdivision once a box's volume falls below it. It is an absolute value in scene units.
	MinVolume float64 `json:"min_volume"`
	// MaxLeafFaces stops subdivision once a node holds between 1 and MaxLeafFaces triangles.
	MaxLeafFaces int             `json:"max_leaf_faces"`
	Containment  ContainmentMode `json:"containment"`
	// Parallel builds the root's octants concurrently. The resulting tree is identical to a serial build.
	Parallel bool `json:"parallel"`
}

// DefaultConfig returns the default subdivision policy.
func DefaultConfig() Config {
	return Config{
		MinVolume:    defaultMinVolume,
		MaxLeafFaces: defaultMaxLeafFaces,
		Containment:  ContainmentStrict,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	var err error
	if cfg.MinVolume <= 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.Errorf("min_volume must be positive, got %v", cfg.MinVolume)))
	}
	if cfg.MaxLeafFaces < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.Errorf("max_leaf_faces cannot be negative, got %d", cfg.MaxLeafFaces)))
	}
	switch cfg.Containment {
	case ContainmentStrict, ContainmentLenient:
	case "":
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "containment"))
	default:
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.Errorf("unknown containment mode %q", cfg.Containment)))
	}
	return err
}
