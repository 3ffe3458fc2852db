// Package config holds the console's tunable settings with yaml loading
// over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "200ms" decode
// directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root console configuration.
type Config struct {
	Graph     GraphConfig     `yaml:"graph"`
	Visualize VisualizeConfig `yaml:"visualize"`
	Precision PrecisionConfig `yaml:"precision"`
}

// GraphConfig tunes the graph explorer.
type GraphConfig struct {
	// NeighborLimit caps neighbors per seed or expansion query.
	NeighborLimit int `yaml:"neighbor_limit"`

	// SampleSize is the default pairwise-sample point count.
	SampleSize int `yaml:"sample_size"`

	// SampleEdgeLimit caps edges returned by a pairwise sample.
	SampleEdgeLimit int `yaml:"sample_edge_limit"`
}

// VisualizeConfig tunes the visualization pipeline.
type VisualizeConfig struct {
	// MaxPoints caps the sampled point set handed to reduction.
	MaxPoints int `yaml:"max_points"`

	// CanvasWidth and CanvasHeight define the normalization rectangle.
	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`

	// SnapshotInterval bounds intermediate snapshot cadence.
	SnapshotInterval Duration `yaml:"snapshot_interval"`
}

// PrecisionConfig tunes the precision evaluator.
type PrecisionConfig struct {
	// SampleSize is how many points each evaluation samples.
	SampleSize int `yaml:"sample_size"`

	// Limit is the top-k depth of the paired queries.
	Limit int `yaml:"limit"`

	// HnswEf is the default approximate candidate-list size under test.
	HnswEf int `yaml:"hnsw_ef"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			NeighborLimit:   5,
			SampleSize:      100,
			SampleEdgeLimit: 1000,
		},
		Visualize: VisualizeConfig{
			MaxPoints:        500,
			CanvasWidth:      800,
			CanvasHeight:     600,
			SnapshotInterval: Duration(200 * time.Millisecond),
		},
		Precision: PrecisionConfig{
			SampleSize: 25,
			Limit:      10,
			HnswEf:     64,
		},
	}
}

// Load reads a yaml file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
