package config

import (
	"fmt"
	"sort"
	"strings"
)

// Known enumerations for item fields.
var (
	itemKinds     = []string{"structure", "ground", "infantry", "air", "worm"}
	movementKinds = []string{"", "wheeled", "tracked", "infantry", "flying", "worm"}
	bulletKinds   = []string{"", "bullet", "shell", "rocket", "sonic", "deviator", "deathhand", "sandworm"}
)

// ValidationError collects every problem found in a rule set.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config: invalid rules: " + strings.Join(e.Problems, "; ")
}

// Validate checks that the rules are internally consistent.
func (r Rules) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(r.Items) == 0 {
		add("no items defined")
	}
	if r.Game.HarvesterCapacity <= 0 {
		add("harvester_capacity must be positive")
	}
	if r.Game.HarvestSpeed <= 0 {
		add("harvest_speed must be positive")
	}
	if r.Game.MaxPathNodes <= 0 {
		add("max_path_nodes must be positive")
	}
	if r.Game.SyncHistory <= 0 {
		add("sync_history must be positive")
	}
	if r.Game.InfantryPerCell <= 0 {
		add("infantry_per_cell must be positive")
	}

	names := make([]string, 0, len(r.Items))
	for name := range r.Items {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		it := r.Items[name]
		if !contains(itemKinds, it.Kind) {
			add("%s: unknown kind %q", name, it.Kind)
		}
		if !contains(movementKinds, it.Movement) {
			add("%s: unknown movement %q", name, it.Movement)
		}
		if !contains(bulletKinds, it.Bullet) {
			add("%s: unknown bullet %q", name, it.Bullet)
		}
		if it.HitPoints <= 0 {
			add("%s: hit_points must be positive", name)
		}
		if it.Kind == "structure" && (it.Size[0] <= 0 || it.Size[1] <= 0) {
			add("%s: structure needs a size", name)
		}
		if it.Kind != "structure" && it.Movement != "" {
			if _, ok := r.Terrain[it.Movement]; !ok && it.Movement != "flying" {
				add("%s: no terrain table for movement %q", name, it.Movement)
			}
		}
		for _, b := range it.Builds {
			if _, ok := r.Items[b]; !ok {
				add("%s: builds unknown item %q", name, b)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
