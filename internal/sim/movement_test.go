package sim

import (
	"testing"

	"github.com/vovakirdan/dunesim/internal/core"
)

func TestTurnTowards(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	tank := mustCreate(t, w, ItemTank, 0, core.C(3, 3))
	step := tank.Stats().TurnSpeed

	tests := []struct {
		name     string
		from     int
		dir      int
		expected core.Fixed
	}{
		{"clockwise", 0, 1, step},
		{"counter-clockwise across zero", 0, 7, fullTurn - step},
		{"clockwise across zero", 7, 1, core.FromInt(7) + step},
		{"counter-clockwise", 1, 7, core.One - step},
		{"already facing", 5, 5, core.FromInt(5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tank.Angle = core.FromInt(tc.from)
			facing := w.turnTowards(tank, tc.dir)
			if tank.Angle != tc.expected {
				t.Errorf("angle = %v, expected %v", tank.Angle, tc.expected)
			}
			if facing != (tc.from == tc.dir) {
				t.Errorf("turnTowards() = %v after one step from %d to %d", facing, tc.from, tc.dir)
			}
		})
	}
}

func TestTurnTowardsTakesOneStepPerCall(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	tank := mustCreate(t, w, ItemTank, 0, core.C(3, 3))
	tank.Angle = 0

	// one direction is eight turn steps; the last one reports facing
	steps := 0
	for !w.turnTowards(tank, 7) {
		steps++
		if steps > 100 {
			t.Fatal("turnTowards() never reached the direction")
		}
	}
	if steps != 7 {
		t.Errorf("took %d steps before facing, expected 7", steps)
	}
	if tank.Angle != core.FromInt(7) {
		t.Errorf("angle = %v, expected 7", tank.Angle)
	}
}

func TestCurrentSpeed(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	fill(w, TerrainRock)
	w.Map().Tile(core.C(5, 5)).Terrain = TerrainSand
	tank := mustCreate(t, w, ItemTank, 0, core.C(2, 2))
	full := tank.Mobile.Speed
	damaged := full.Mul(w.tun.damagedSpeedFactor)

	tests := []struct {
		name     string
		at       core.Coord
		health   core.Fixed
		expected core.Fixed
	}{
		{"healthy on rock", core.C(2, 2), tank.MaxHealth, full},
		{"at the damage threshold", core.C(2, 2), tank.MaxHealth.Div(core.FromInt(4)), full},
		{"heavily damaged", core.C(2, 2), tank.MaxHealth.Div(core.FromInt(5)), damaged},
		{"healthy on sand", core.C(5, 5), tank.MaxHealth, full.Div(core.FromFloat(1.125))},
		{"damaged on sand", core.C(5, 5), core.One, full.Div(core.FromFloat(1.125)).Mul(w.tun.damagedSpeedFactor)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tank.Location = tc.at
			tank.Health = tc.health
			if got := w.currentSpeed(tank); got != tc.expected {
				t.Errorf("currentSpeed() = %v, expected %v", got, tc.expected)
			}
		})
	}
	if damaged >= full {
		t.Errorf("damaged speed %v not below full speed %v", damaged, full)
	}
}
