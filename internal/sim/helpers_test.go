package sim

import (
	"testing"

	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/core"
)

func newTestWorld(t *testing.T, width, height int) *World {
	t.Helper()
	w, err := New(Options{Seed: 42, Width: width, Height: height, Rules: config.DefaultRules()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := w.AddPlayer(0, 0, 1000); err != nil {
		t.Fatalf("AddPlayer(0) error = %v", err)
	}
	if _, err := w.AddPlayer(1, 1, 1000); err != nil {
		t.Fatalf("AddPlayer(1) error = %v", err)
	}
	return w
}

func fill(w *World, terrain Terrain) {
	for y := 0; y < w.Map().Height(); y++ {
		for x := 0; x < w.Map().Width(); x++ {
			w.Map().Tile(core.C(x, y)).Terrain = terrain
		}
	}
	w.Map().CreateSandRegions()
}

func mustCreate(t *testing.T, w *World, item ItemID, owner PlayerID, c core.Coord) *Object {
	t.Helper()
	o, err := w.CreateObject(item, owner, c)
	if err != nil {
		t.Fatalf("CreateObject(%s) error = %v", item, err)
	}
	return o
}

// checkGrid verifies that every live object is listed exactly once on each
// tile it covers and nowhere else.
func checkGrid(t *testing.T, w *World) {
	t.Helper()
	counts := make(map[ObjectID]int)
	for y := 0; y < w.Map().Height(); y++ {
		for x := 0; x < w.Map().Width(); x++ {
			c := core.C(x, y)
			tile := w.Map().Tile(c)
			for l := LayerGround; l < layerCount; l++ {
				for _, id := range tile.Objects(l) {
					o := w.Object(id)
					if o == nil {
						t.Fatalf("tile %v lists stale id %v", c, id)
					}
					if !o.Footprint().Contains(c) {
						t.Fatalf("tile %v lists %v located at %v", c, id, o.Location)
					}
					counts[id]++
				}
			}
		}
	}
	for _, o := range w.Objects() {
		expected := o.Footprint().W * o.Footprint().H
		if o.InTransport() {
			expected = 0
		}
		if counts[o.ID] != expected {
			t.Fatalf("%v (%s) listed %d times, expected %d", o.ID, o.Item, counts[o.ID], expected)
		}
	}
}
