package model

import (
	"fmt"
	"sort"
)

// DefaultAntennaCeiling bounds how many antennas a single station may
// declare. The original ground segment never fields more than this.
const DefaultAntennaCeiling = 20

// Station is a ground facility with a fixed pool of identical antennas.
// MaxAntennas limits how many contacts the station can serve concurrently.
type Station struct {
	ID          string `json:"id" yaml:"id"`
	MaxAntennas int    `json:"max_antennas" yaml:"max_antennas"`
}

// Validate checks the station configuration against the antenna ceiling.
func (s Station) Validate(ceiling int) error {
	if s.ID == "" {
		return fmt.Errorf("station id is required")
	}
	if s.MaxAntennas <= 0 {
		return fmt.Errorf("station %s: max_antennas must be positive", s.ID)
	}
	if ceiling > 0 && s.MaxAntennas > ceiling {
		return fmt.Errorf("station %s: max_antennas %d exceeds ceiling %d", s.ID, s.MaxAntennas, ceiling)
	}
	return nil
}

// Registry is the read-only set of stations available to one scheduling run.
type Registry struct {
	stations map[string]Station
	ids      []string
}

// NewRegistry builds a registry from the given stations. Duplicate ids and
// invalid capacities fail construction.
func NewRegistry(stations []Station, ceiling int) (*Registry, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("at least one station is required")
	}
	r := &Registry{stations: make(map[string]Station, len(stations))}
	for _, s := range stations {
		if err := s.Validate(ceiling); err != nil {
			return nil, err
		}
		if _, ok := r.stations[s.ID]; ok {
			return nil, fmt.Errorf("duplicate station id %s", s.ID)
		}
		r.stations[s.ID] = s
		r.ids = append(r.ids, s.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Get returns the station with the given id.
func (r *Registry) Get(id string) (Station, bool) {
	s, ok := r.stations[id]
	return s, ok
}

// Capacity returns the antenna count for the given station, zero if unknown.
func (r *Registry) Capacity(id string) int {
	return r.stations[id].MaxAntennas
}

// IDs returns all station ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered stations.
func (r *Registry) Len() int {
	return len(r.ids)
}
