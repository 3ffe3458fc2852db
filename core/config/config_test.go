package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5, cfg.Graph.NeighborLimit)
	assert.Equal(t, 500, cfg.Visualize.MaxPoints)
	assert.Equal(t, 200*time.Millisecond, cfg.Visualize.SnapshotInterval.Std())
	assert.Equal(t, 10, cfg.Precision.Limit)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
graph:
  neighbor_limit: 12
visualize:
  snapshot_interval: 500ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Graph.NeighborLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Visualize.SnapshotInterval.Std())
	// Untouched sections keep their defaults.
	assert.Equal(t, 25, cfg.Precision.SampleSize)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
