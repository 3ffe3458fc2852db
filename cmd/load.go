package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adalundhe/lens/core/config"
	"github.com/adalundhe/lens/core/points"
	"github.com/adalundhe/lens/core/provider"
	"github.com/adalundhe/lens/core/query"
)

// loadSession assembles the shared command inputs: config, an in-memory
// provider indexed from the points file, and the compiled predicate.
func loadSession() (*config.Config, *provider.Memory, *query.Predicate, error) {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if rootPointsPath == "" {
		return nil, nil, nil, fmt.Errorf("--points is required")
	}
	pts, err := loadPoints(rootPointsPath)
	if err != nil {
		return nil, nil, nil, err
	}

	backend := provider.NewMemory()
	backend.Index(rootCollection, pts)

	filters := query.Parse(rootFilter, nil)
	return cfg, backend, query.Build(filters, nil), nil
}

func loadPoints(path string) ([]points.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read points file: %w", err)
	}
	var pts []points.Point
	if err := json.Unmarshal(data, &pts); err != nil {
		return nil, fmt.Errorf("parse points file: %w", err)
	}
	return pts, nil
}
