// Package balancer evens station load after optimization by migrating
// marginal tasks from the busiest station to the idlest one.
package balancer

import (
	"fmt"
	"sort"
	"time"

	"github.com/satops/gsched/core/logger"
	"github.com/satops/gsched/core/model"
)

// Config controls the rebalancing stage.
type Config struct {
	Enabled       bool `json:"enabled"`
	MaxMigrations int  `json:"max_migrations"`
}

// SetDefaults applies the migration cap.
func (c *Config) SetDefaults() {
	if c.MaxMigrations == 0 {
		c.MaxMigrations = 100
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.MaxMigrations <= 0 {
		return fmt.Errorf("balancer: migration cap must be positive, got %d", c.MaxMigrations)
	}
	return nil
}

// Balancer migrates assignments between the extremes of the load
// distribution. It never drops an assignment: every migration keeps the
// task assigned and the destination within capacity, so the successful
// count is preserved by construction.
type Balancer struct {
	cfg Config
	reg *model.Registry
	min time.Duration
	log logger.Logger
}

// New builds a balancer.
func New(cfg Config, reg *model.Registry, minWindow time.Duration, log logger.Logger) (*Balancer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Balancer{cfg: cfg, reg: reg, min: minWindow, log: log}, nil
}

// Balance mutates sched in place and returns the number of migrations. It
// stops when no migration lowers the load standard deviation or the cap is
// reached.
func (b *Balancer) Balance(tasks []model.Task, sched *model.Schedule) int {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	migrations := 0
	for migrations < b.cfg.MaxMigrations {
		if !b.migrateOnce(tasks, byID, sched) {
			break
		}
		migrations++
	}
	if migrations > 0 {
		std, gap := model.LoadStats(model.Utilization(tasks, sched))
		b.log.Infof("balancer moved %d tasks: stddev=%.4f gap=%.4f", migrations, std, gap)
	}
	return migrations
}

// migrateOnce tries to move one task from the most loaded station to the
// least loaded one, keeping the move only when the standard deviation
// strictly drops.
func (b *Balancer) migrateOnce(tasks []model.Task, byID map[string]model.Task, sched *model.Schedule) bool {
	loads := model.Utilization(tasks, sched)
	if len(loads) < 2 {
		return false
	}
	beforeStd, _ := model.LoadStats(loads)
	src, dst := extremes(loads)
	if src == dst {
		return false
	}

	// Shortest assignments move first: they are the marginal load on the
	// hot station and the cheapest to relocate.
	asn := sched.StationAssignments(src)
	sort.SliceStable(asn, func(i, j int) bool {
		di, dj := asn[i].Duration(), asn[j].Duration()
		if di != dj {
			return di < dj
		}
		return asn[i].TaskID < asn[j].TaskID
	})

	for _, a := range asn {
		t, ok := byID[a.TaskID]
		if !ok {
			continue
		}
		w, ok := t.Window(dst)
		if !ok {
			continue
		}
		sp, ok := t.Allocation(w, b.min)
		if !ok {
			continue
		}
		if !sched.Fits(dst, sp, b.reg.Capacity(dst)) {
			continue
		}
		moved := model.Assignment{TaskID: t.ID, StationID: dst, Start: sp.Start, End: sp.End}
		sched.Assign(moved)
		afterStd, _ := model.LoadStats(model.Utilization(tasks, sched))
		if afterStd < beforeStd {
			b.log.Debugf("migrated %s from %s to %s", t.ID, src, dst)
			return true
		}
		// The move did not help; put the assignment back.
		sched.Assign(a)
	}
	return false
}

// extremes returns the stations with the highest and lowest load, breaking
// ties by id so the scan order is stable.
func extremes(loads map[string]float64) (src, dst string) {
	ids := make([]string, 0, len(loads))
	for id := range loads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	src, dst = ids[0], ids[0]
	for _, id := range ids {
		if loads[id] > loads[src] {
			src = id
		}
		if loads[id] < loads[dst] {
			dst = id
		}
	}
	return src, dst
}
