package sim

import (
	"math"
	"testing"

	"github.com/vovakirdan/dunesim/internal/core"
)

func TestSearchRange(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	trike := mustCreate(t, w, ItemTrike, 0, core.C(1, 1))
	harvester := mustCreate(t, w, ItemHarvester, 0, core.C(5, 5))

	tests := []struct {
		name     string
		mode     AttackMode
		expected int
	}{
		{"guard uses weapon range", ModeGuard, 3},
		{"area guard doubles weapon range", ModeAreaGuard, 6},
		{"ambush uses view range", ModeAmbush, 4},
		{"hunt is map-wide", ModeHunt, math.MaxInt32},
		{"stop never searches", ModeStop, -1},
		{"capture never searches", ModeCapture, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trike.Mode = tc.mode
			if got := w.searchRange(trike); got != tc.expected {
				t.Errorf("searchRange(%s) = %d, expected %d", tc.mode, got, tc.expected)
			}
		})
	}

	w.tun.maxAreaGuardRange = 5
	trike.Mode = ModeAreaGuard
	if got := w.searchRange(trike); got != 5 {
		t.Errorf("capped area guard range = %d, expected 5", got)
	}

	harvester.Mode = ModeHunt
	if got := w.searchRange(harvester); got != -1 {
		t.Errorf("unarmed searchRange = %d, expected -1", got)
	}
}

func TestFindTargetPerMode(t *testing.T) {
	w := newTestWorld(t, 30, 20)
	fill(w, TerrainRock)
	trike := mustCreate(t, w, ItemTrike, 0, core.C(2, 10))
	enemy := mustCreate(t, w, ItemTank, 1, core.C(7, 10))
	enemy.visible = 0xff

	tests := []struct {
		mode  AttackMode
		found bool
	}{
		{ModeGuard, false},
		{ModeAmbush, false},
		{ModeAreaGuard, true},
		{ModeHunt, true},
		{ModeStop, false},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			trike.Mode = tc.mode
			got := w.findTarget(trike)
			if (got == enemy) != tc.found {
				t.Errorf("findTarget() = %v, expected found=%v for a tank 5 tiles away", got, tc.found)
			}
		})
	}

	// a closer enemy is inside every searching radius
	near := mustCreate(t, w, ItemTrike, 1, core.C(4, 10))
	near.visible = 0xff
	for _, mode := range []AttackMode{ModeGuard, ModeAmbush, ModeAreaGuard} {
		trike.Mode = mode
		if got := w.findTarget(trike); got != near {
			t.Errorf("findTarget() in %s = %v, expected the trike 2 tiles away", mode, got)
		}
	}

	// fogged targets are not picked
	near.visible = 0
	trike.Mode = ModeGuard
	if got := w.findTarget(trike); got != nil {
		t.Errorf("findTarget() = %v, expected nil for a hidden enemy", got)
	}
}

func TestAreaGuardReturnsToPost(t *testing.T) {
	w := newTestWorld(t, 30, 20)
	fill(w, TerrainRock)
	trike := mustCreate(t, w, ItemTrike, 0, core.C(12, 10))
	trike.Mode = ModeAreaGuard
	trike.Mobile.GuardPoint = core.C(2, 10)

	w.engage(trike)
	if trike.Destination != core.C(2, 10) {
		t.Errorf("destination = %v, expected the guard point (2,10)", trike.Destination)
	}

	// inside the guard radius it stays put
	w2 := newTestWorld(t, 30, 20)
	fill(w2, TerrainRock)
	posted := mustCreate(t, w2, ItemTrike, 0, core.C(6, 10))
	posted.Mode = ModeAreaGuard
	posted.Mobile.GuardPoint = core.C(2, 10)
	w2.engage(posted)
	if posted.Destination != posted.Location {
		t.Errorf("destination = %v, expected to hold at %v", posted.Destination, posted.Location)
	}
}

func TestGuardHoldsGround(t *testing.T) {
	w := newTestWorld(t, 30, 20)
	fill(w, TerrainRock)
	trike := mustCreate(t, w, ItemTrike, 0, core.C(2, 10))
	trike.Mode = ModeGuard
	enemy := mustCreate(t, w, ItemTank, 1, core.C(7, 10))
	enemy.visible = 0xff
	trike.Target = enemy.ID

	w.engage(trike)
	if trike.Target != NoObject {
		t.Errorf("target = %v, expected guard to drop an out-of-range target", trike.Target)
	}
	if trike.Destination != trike.Location {
		t.Errorf("destination = %v, expected guard to stay at %v", trike.Destination, trike.Location)
	}
}

func TestHuntPrefersStructures(t *testing.T) {
	w := newTestWorld(t, 40, 12)
	fill(w, TerrainRock)
	hunter := mustCreate(t, w, ItemTank, 0, core.C(2, 5))
	hunter.Mode = ModeHunt
	trike := mustCreate(t, w, ItemTrike, 1, core.C(5, 5))
	yard := mustCreate(t, w, ItemConstructionYard, 1, core.C(30, 4))
	trike.visible = 0xff
	yard.visible = 0xff

	if got := w.findTarget(hunter); got != yard {
		t.Errorf("hunt target = %v, expected the distant construction yard", got)
	}

	nearYard := mustCreate(t, w, ItemWindTrap, 1, core.C(20, 4))
	nearYard.visible = 0xff
	if got := w.findTarget(hunter); got != nearYard {
		t.Errorf("hunt target = %v, expected the nearest structure", got)
	}

	w.Destroy(yard.ID)
	w.Destroy(nearYard.ID)
	if got := w.findTarget(hunter); got != trike {
		t.Errorf("hunt target = %v, expected the trike once no structure is left", got)
	}
}
