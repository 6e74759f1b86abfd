package tui

import (
	"testing"

	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/sim"
)

func newTestWorld(t *testing.T) *sim.World {
	t.Helper()
	w, err := sim.New(sim.Options{Seed: 7, Width: 20, Height: 10, Rules: config.DefaultRules()})
	if err != nil {
		t.Fatalf("sim.New() error = %v", err)
	}
	for p := sim.PlayerID(0); p < 2; p++ {
		if _, err := w.AddPlayer(p, int(p), 1000); err != nil {
			t.Fatalf("AddPlayer(%d) error = %v", p, err)
		}
	}
	if _, err := w.CreateObject(sim.ItemTank, 0, core.C(2, 2)); err != nil {
		t.Fatalf("CreateObject(tank) error = %v", err)
	}
	if _, err := w.CreateObject(sim.ItemTrike, 1, core.C(18, 8)); err != nil {
		t.Fatalf("CreateObject(trike) error = %v", err)
	}
	return w
}

func TestItemGlyph(t *testing.T) {
	tests := []struct {
		item     sim.ItemID
		expected rune
	}{
		{sim.ItemTank, 'k'},
		{sim.ItemConstructionYard, 'C'},
		{sim.ItemSandworm, 'S'},
		{sim.ItemID(200), '?'},
	}

	for _, tt := range tests {
		if got := ItemGlyph(tt.item); got != tt.expected {
			t.Errorf("ItemGlyph(%d) = %q, expected %q", tt.item, got, tt.expected)
		}
	}
}

func TestDrawWorldShowsEverything(t *testing.T) {
	w := newTestWorld(t)
	s := core.NewScreen(24, 10)
	DrawWorld(s, core.NewRect(0, 0, 24, 10), w, core.C(0, 0), AllPlayers)

	tests := []struct {
		x, y     int
		expected rune
		color    core.Color
	}{
		{0, 0, '.', core.ColorYellow},
		{2, 2, 'k', core.HouseColor(0)},
		{18, 8, 't', core.HouseColor(1)},
		{22, 0, ' ', core.ColorDefault}, // past the map edge
	}

	for _, tt := range tests {
		cell := s.GetCell(tt.x, tt.y)
		if cell.Rune != tt.expected {
			t.Errorf("cell (%d,%d) = %q, expected %q", tt.x, tt.y, cell.Rune, tt.expected)
		}
		if cell.Color != tt.color {
			t.Errorf("cell (%d,%d) color = %v, expected %v", tt.x, tt.y, cell.Color, tt.color)
		}
	}
}

func TestDrawWorldFog(t *testing.T) {
	w := newTestWorld(t)
	w.Tick()

	s := core.NewScreen(20, 10)
	DrawWorld(s, core.NewRect(0, 0, 20, 10), w, core.C(0, 0), 0)

	if got := s.Get(2, 2); got != 'k' {
		t.Errorf("own tank drawn as %q, expected 'k'", got)
	}
	if got := s.Get(3, 3); got != '.' {
		t.Errorf("tile next to the tank = %q, expected explored sand", got)
	}
	if got := s.Get(18, 8); got != '░' {
		t.Errorf("unexplored enemy tile = %q, expected fog", got)
	}
}

func TestDrawWorldOrigin(t *testing.T) {
	w := newTestWorld(t)
	s := core.NewScreen(5, 5)
	DrawWorld(s, core.NewRect(0, 0, 5, 5), w, core.C(2, 2), AllPlayers)

	if got := s.Get(0, 0); got != 'k' {
		t.Errorf("scrolled view top-left = %q, expected 'k'", got)
	}
}
