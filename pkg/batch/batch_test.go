package batch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/satops/gsched/core/model"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	data := `tasks:
  - id: "t1"
    satellite_id: "sat-1"
    band: "X"
    class: "climb"
    windows:
      - station_id: "gs-1"
        start: 2026-03-01T00:00:00Z
        end: 2026-03-01T00:15:00Z
stations:
  - id: "gs-1"
    max_antennas: 4
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Tasks) != 1 || len(b.Stations) != 1 {
		t.Fatalf("batch = %d tasks / %d stations, want 1/1", len(b.Tasks), len(b.Stations))
	}
	task := b.Tasks[0]
	if task.Class != model.ClassClimb {
		t.Errorf("class = %v, want climb", task.Class)
	}
	if got := task.Windows[0].Duration(); got != 15*time.Minute {
		t.Errorf("window duration = %v, want 15m", got)
	}
	if b.Stations[0].MaxAntennas != 4 {
		t.Errorf("max antennas = %d, want 4", b.Stations[0].MaxAntennas)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	data := `{
  "tasks": [
    {
      "id": "t1",
      "satellite_id": "sat-1",
      "band": "S",
      "class": "operation",
      "windows": [
        {"station_id": "gs-1", "start": "2026-03-01T00:00:00Z", "end": "2026-03-01T00:10:00Z"}
      ]
    }
  ],
  "stations": [{"id": "gs-1", "max_antennas": 2}]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Tasks[0].Class != model.ClassOperation {
		t.Errorf("class = %v, want operation", b.Tasks[0].Class)
	}
}

func TestLoadRejectsEmptyAndUnknown(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("tasks: []\nstations: []\n"), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Error("empty batch should fail")
	}
	if _, err := Load("batch.toml"); err == nil {
		t.Error("unknown extension should fail")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
