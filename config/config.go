// Package config defines the configuration file of the octree tool.
package config

import (
	"math"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"go.viam.com/utils"

	"go.viam.com/meshoctree/octree"
)

// Config describes an octree build: the subdivision policy, the mesh to build over and how much to log.
type Config struct {
	ConfigFilePath string `json:"-"`

	Octree   octree.Config `json:"octree"`
	Mesh     string        `json:"mesh,omitempty"`
	LogLevel string        `json:"log_level,omitempty"`
}

// Default returns a config with the default octree policy and info logging.
func Default() *Config {
	return &Config{
		Octree:   octree.DefaultConfig(),
		LogLevel: zapcore.InfoLevel.String(),
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	err := c.Octree.Validate("octree")
	if _, levelErr := zapcore.ParseLevel(c.LogLevel); levelErr != nil {
		err = multierr.Append(err, utils.NewConfigValidationError("log_level", levelErr))
	}
	return err
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// MeshPath returns the mesh path, resolved against the directory of the config file when relative.
func (c *Config) MeshPath() string {
	if c.Mesh == "" || filepath.IsAbs(c.Mesh) || c.ConfigFilePath == "" {
		return c.Mesh
	}
	return filepath.Join(filepath.Dir(c.ConfigFilePath), c.Mesh)
}

// DecodeAttributes decodes a map of attributes, as found in JSON, into out using its json tags. Keys that do not
// map to any field are reported as an error. Fields of out that have no corresponding key keep their values.
func DecodeAttributes(attributes map[string]interface{}, out interface{}) error {
	if reflect.ValueOf(out).Kind() != reflect.Ptr {
		return errors.Errorf("expected a pointer to decode into but got %T", out)
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		Metadata:   &md,
		DecodeHook: mapstructure.DecodeHookFuncType(integralHook),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(attributes); err != nil {
		return err
	}
	if len(md.Unused) != 0 {
		sort.Strings(md.Unused)
		return errors.Errorf("unknown attributes %q", md.Unused)
	}
	return nil
}

// integralHook rejects numbers with a fractional part bound for integer fields, which would otherwise be truncated.
func integralHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	if f := reflect.ValueOf(data).Float(); f != math.Trunc(f) {
		return nil, errors.Errorf("cannot use %v as an integer", f)
	}
	return data, nil
}
