// Package batch reads task catalogs and station registries from files. It
// is a thin input shim: the records are assumed to come pre-validated from
// the upstream ingestion pipeline, and the engine re-checks them eagerly.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/satops/gsched/core/model"
)

// Batch is one scheduling input: a task catalog and the stations it may
// use.
type Batch struct {
	Tasks    []model.Task    `json:"tasks" yaml:"tasks"`
	Stations []model.Station `json:"stations" yaml:"stations"`
}

// Load reads a batch from a YAML or JSON file.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	var b Batch
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse batch: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse batch: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported batch format: %s", ext)
	}
	if len(b.Tasks) == 0 {
		return nil, fmt.Errorf("batch %s holds no tasks", path)
	}
	if len(b.Stations) == 0 {
		return nil, fmt.Errorf("batch %s holds no stations", path)
	}
	return &b, nil
}
