package sim

import "github.com/vovakirdan/dunesim/internal/core"

// FindSpice searches rings of growing radius around origin for a spice
// tile without a ground object. Ring tiles are drawn at random; after 100
// draws the ring grows, up to radius 9.
func (w *World) FindSpice(origin core.Coord) core.Coord {
	depth, counter := 1, 0
	for depth < 10 {
		var dx, dy int
		for {
			dx = w.rng.Intn(-depth, depth)
			dy = w.rng.Intn(-depth, depth)
			if core.Abs(dx) == depth || core.Abs(dy) == depth {
				break
			}
		}
		c := origin.Add(core.C(dx, dy))
		if w.m.Contains(c) {
			t := w.m.Tile(c)
			if t.Terrain.IsSpice() && !t.HasGroundObject() {
				return c
			}
		}
		counter++
		if counter >= 100 {
			counter = 0
			depth++
		}
	}
	return core.Invalid()
}

// HarvestSpice removes up to amount spice from c and returns what was
// actually taken. Thick spice thins out below the threshold and an empty
// tile turns to sand.
func (w *World) HarvestSpice(c core.Coord, amount core.Fixed) core.Fixed {
	t := w.m.Tile(c)
	if !t.Terrain.IsSpice() || amount <= 0 {
		return 0
	}
	taken := core.MinF(amount, t.Spice)
	t.Spice -= taken
	if t.Spice <= 0 {
		w.RemoveSpice(c)
	} else if t.Terrain == TerrainThickSpice && t.Spice < w.tun.thickThreshold {
		t.Terrain = TerrainSpice
	}
	return taken
}

// RemoveSpice turns c into sand and downgrades neighbouring thick spice so
// that thick spice never borders sand.
func (w *World) RemoveSpice(c core.Coord) {
	t := w.m.Tile(c)
	t.Terrain = TerrainSand
	t.Spice = 0
	for _, d := range core.Neighbors8 {
		n := c.Add(d)
		if w.m.Contains(n) && w.m.Tile(n).Terrain == TerrainThickSpice {
			w.m.Tile(n).Terrain = TerrainSpice
		}
	}
}

// CreateSpiceField spreads spice over the sand within radius of center.
// The center becomes thick spice; other tiles get spice, or thick spice
// when they already carried some.
func (w *World) CreateSpiceField(center core.Coord, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := center.Add(core.C(dx, dy))
			if !w.m.Contains(c) || dx*dx+dy*dy > radius*radius {
				continue
			}
			t := w.m.Tile(c)
			switch t.Terrain {
			case TerrainSand, TerrainDunes, TerrainSpice:
			default:
				continue
			}
			if (dx == 0 && dy == 0) || t.Terrain == TerrainSpice {
				t.Terrain = TerrainThickSpice
				t.Spice = core.FromInt(w.rng.Intn(w.tun.thickMin, w.tun.thickMax))
				continue
			}
			t.Terrain = TerrainSpice
			t.Spice = core.FromInt(w.rng.Intn(w.tun.spiceMin, w.tun.spiceMax))
		}
	}
}

// SetSpice puts terrain and an amount of spice on c. Used by map setup.
func (w *World) SetSpice(c core.Coord, thick bool, amount int) {
	t := w.m.Tile(c)
	t.Terrain = TerrainSpice
	if thick {
		t.Terrain = TerrainThickSpice
	}
	t.Spice = core.FromInt(amount)
}

// SetTerrain changes the terrain of c. Sand regions must be rebuilt with
// Map.CreateSandRegions after rock tiles change.
func (w *World) SetTerrain(c core.Coord, terrain Terrain) {
	t := w.m.Tile(c)
	t.Terrain = terrain
	switch terrain {
	case TerrainSpice:
		t.Spice = core.FromInt(w.rng.Intn(w.tun.spiceMin, w.tun.spiceMax))
	case TerrainThickSpice:
		t.Spice = core.FromInt(w.rng.Intn(w.tun.thickMin, w.tun.thickMax))
	default:
		t.Spice = 0
	}
}

func (w *World) igniteBloom(c core.Coord) {
	t := w.m.Tile(c)
	radius := w.tun.spiceFieldRadius
	if t.Terrain == TerrainSpecialBloom {
		radius++
	}
	t.Terrain = TerrainSand
	w.CreateSpiceField(c, radius)
	w.notify(NoteSpiceBloomIgnited, NoPlayer, nil)
}

// TotalSpice sums the spice left on the map.
func (w *World) TotalSpice() core.Fixed {
	var total core.Fixed
	for i := range w.m.tiles {
		total += w.m.tiles[i].Spice
	}
	return total
}
