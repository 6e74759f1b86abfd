package sim

import "github.com/vovakirdan/dunesim/internal/core"

// PlayerStats are counters kept for the end-of-game summary.
type PlayerStats struct {
	UnitsBuilt      int
	UnitsLost       int
	StructuresBuilt int
	StructuresLost  int
	Kills           int
	SpiceHarvested  core.Fixed
}

// Player is one participant slot.
type Player struct {
	ID      PlayerID
	Team    int
	Credits core.Fixed
	Stats   PlayerStats

	lastAttackWarning uint32
}

// IsAlly reports whether q is on the same team.
func (p *Player) IsAlly(q *Player) bool {
	return q != nil && p.Team == q.Team
}
