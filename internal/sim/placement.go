package sim

import "github.com/vovakirdan/dunesim/internal/core"

// IsWithinBuildRange reports whether player owns a tile within the build
// range of (x, y).
func (w *World) IsWithinBuildRange(x, y int, player PlayerID) bool {
	return w.m.OwnsTileNear(player, core.C(x, y), w.tun.buildRange)
}

// OkayToPlaceStructure checks a w*h footprint at (x, y): every tile must
// exist and be rock or slab and be free, and at least one tile must be
// within build range of the player's territory. With ignoreUnits only
// structures count as obstacles.
func (w *World) OkayToPlaceStructure(x, y, width, height int, player PlayerID, ignoreUnits bool) bool {
	inRange := false
	for _, c := range core.NewRect(x, y, width, height).Cells() {
		if !w.m.Contains(c) {
			return false
		}
		t := w.m.Tile(c)
		if !t.Terrain.Buildable() {
			return false
		}
		if ignoreUnits {
			for _, id := range t.Objects(LayerGround) {
				if o := w.reg.Get(id); o != nil && o.IsStructure() {
					return false
				}
			}
		} else if t.HasGroundObject() {
			return false
		}
		if !inRange && w.IsWithinBuildRange(c.X, c.Y, player) {
			inRange = true
		}
	}
	return inRange
}

// deployable reports whether a new unit of item could appear on c.
func (w *World) deployable(st *ItemStats, c core.Coord) bool {
	if !w.m.Contains(c) {
		return false
	}
	t := w.m.Tile(c)
	if w.items.difficulty[st.Movement][t.Terrain] == 0 {
		return false
	}
	if len(t.Objects(LayerGround)) > 0 {
		return false
	}
	if st.Kind == KindInfantry {
		return t.InfantryCount() < w.tun.infantryPerCell
	}
	return t.InfantryCount() == 0
}

// FindDeploySpot looks for a free tile around a w*h block at origin for a
// new unit of item. Tiles on a random edge are drawn; every 100 draws the
// search ring grows by one. Without a valid gather point the first free
// tile wins; with one, the tile closest to it found within the ring is
// returned. Flying units deploy at origin. Invalid is returned once the
// ring outgrows the map.
func (w *World) FindDeploySpot(item ItemID, origin, gather, size core.Coord) core.Coord {
	st := w.items.get(item)
	if st == nil {
		return core.Invalid()
	}
	if st.Kind == KindAir {
		return origin
	}

	limit := core.Max(w.m.Width(), w.m.Height())
	closest := core.Invalid()
	closestDist := core.Fixed(-1)
	x, y := origin.X, origin.Y
	offX, offY := 0, 0
	if size.X > 0 {
		offX = 1
	}
	if size.Y > 0 {
		offY = 1
	}

	counter, depth := 0, 0
	for {
		var c core.Coord
		switch w.rng.Intn(0, 3) {
		case 0: // right
			c = core.C(x+size.X+depth, w.rng.Intn(y-depth, y+size.Y+depth))
		case 1: // top
			c = core.C(w.rng.Intn(x-depth, x+size.X+depth), y-depth-offY)
		case 2: // left
			c = core.C(x-depth-offX, w.rng.Intn(y-depth, y+size.Y+depth))
		default: // bottom
			c = core.C(w.rng.Intn(x-depth, x+size.X+depth), y+size.Y+depth)
		}

		if w.deployable(st, c) {
			if !gather.IsValid() {
				return c
			}
			if d := blockDistance(c, gather); closestDist < 0 || d < closestDist {
				closest, closestDist = c, d
			}
		}

		counter++
		if counter >= 100 {
			counter = 0
			if closest.IsValid() {
				return closest
			}
			depth++
			if depth > limit {
				return core.Invalid()
			}
		}
	}
}
