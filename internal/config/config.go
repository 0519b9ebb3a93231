// Package config loads rcmconv settings from YAML and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/rcmconv/pkg/rcm"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig controls how meshes are written.
type ConvertConfig struct {
	Optimize        bool   `yaml:"optimize"`         // weld duplicate vertices
	StructOfArrays  bool   `yaml:"struct_of_arrays"` // SoA instead of AoS objects
	OutputExtension string `yaml:"output_extension"`
	Workers         int    `yaml:"workers"` // parallel conversions
}

// ImportConfig controls how source models are read.
type ImportConfig struct {
	FlipV           bool     `yaml:"flip_v"`           // v = 1 - v for OpenGL
	GenerateNormals bool     `yaml:"generate_normals"` // face normals when the source has none
	GRFPaths        []string `yaml:"grf_paths"`        // archives searched for bare inner paths
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the converter defaults.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Optimize:        true,
			StructOfArrays:  false,
			OutputExtension: ".rcm",
			Workers:         4,
		},
		Import: ImportConfig{
			FlipV:           true,
			GenerateNormals: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// WriteOptions returns the container writer options.
func (c ConvertConfig) WriteOptions() rcm.WriteOptions {
	return rcm.WriteOptions{
		Optimize:       c.Optimize,
		StructOfArrays: c.StructOfArrays,
	}
}

// Validate checks values a YAML file or flag could have broken.
func (c *Config) Validate() error {
	if c.Convert.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Convert.Workers)
	}
	if !strings.HasPrefix(c.Convert.OutputExtension, ".") {
		return fmt.Errorf("%w: output_extension %q must start with a dot", ErrInvalidConfig, c.Convert.OutputExtension)
	}
	return nil
}
