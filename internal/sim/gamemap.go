package sim

import (
	"github.com/vovakirdan/dunesim/internal/core"
)

// MaxMapSize bounds both map dimensions. At this size the squared distance
// between any two world points fits a Fixed.
const MaxMapSize = 256

// Map owns the terrain grid. Callers check CellExists before touching a
// tile; out-of-bounds access is a programming error.
type Map struct {
	width  int
	height int
	tiles  []Tile
}

// NewMap creates a map of sand tiles.
func NewMap(width, height int) *Map {
	m := &Map{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
	}
	for i := range m.tiles {
		m.tiles[i].Owner = NoPlayer
		m.tiles[i].Region = NoRegion
	}
	return m
}

// Width returns the map width in tiles.
func (m *Map) Width() int {
	return m.width
}

// Height returns the map height in tiles.
func (m *Map) Height() int {
	return m.height
}

// CellExists is the bounds check.
func (m *Map) CellExists(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// Contains is CellExists for a Coord.
func (m *Map) Contains(c core.Coord) bool {
	return m.CellExists(c.X, c.Y)
}

// Tile returns the tile at c.
func (m *Map) Tile(c core.Coord) *Tile {
	return &m.tiles[c.Y*m.width+c.X]
}

// Assign adds id to a layer of the tile at c.
func (m *Map) Assign(c core.Coord, l Layer, id ObjectID) {
	m.Tile(c).assign(l, id)
}

// Unassign removes id from a layer of the tile at c.
func (m *Map) Unassign(c core.Coord, l Layer, id ObjectID) {
	m.Tile(c).unassign(l, id)
}

// CreateSandRegions labels every 4-connected component of non-rock tiles
// with its own region number. Rock tiles get NoRegion.
func (m *Map) CreateSandRegions() {
	for i := range m.tiles {
		m.tiles[i].Region = NoRegion
	}

	region := 0
	queue := make([]core.Coord, 0, 64)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			start := m.Tile(core.C(x, y))
			if start.Terrain.IsRock() || start.Region != NoRegion {
				continue
			}
			start.Region = region
			queue = append(queue[:0], core.C(x, y))
			for len(queue) > 0 {
				c := queue[0]
				queue = queue[1:]
				for _, d := range core.Neighbors4 {
					n := c.Add(d)
					if !m.Contains(n) {
						continue
					}
					t := m.Tile(n)
					if t.Terrain.IsRock() || t.Region != NoRegion {
						continue
					}
					t.Region = region
					queue = append(queue, n)
				}
			}
			region++
		}
	}
}

// Explore marks the tile as seen by player at tick.
func (m *Map) Explore(p PlayerID, c core.Coord, tick uint32) {
	t := m.Tile(c)
	t.explored[p] = true
	t.lastSeen[p] = tick
}

// IsExplored reports whether player has seen c at least once.
func (m *Map) IsExplored(p PlayerID, c core.Coord) bool {
	return m.Tile(c).IsExplored(p)
}

// IsFogged reports whether c is unexplored or has not been in sight of
// player for at least timeout ticks.
func (m *Map) IsFogged(p PlayerID, c core.Coord, tick uint32, timeout int) bool {
	t := m.Tile(c)
	if !t.IsExplored(p) {
		return true
	}
	return tick-t.lastSeen[p] >= uint32(timeout)
}

// OwnsTileNear reports whether player owns a tile within Chebyshev radius r of c.
func (m *Map) OwnsTileNear(p PlayerID, c core.Coord, r int) bool {
	for y := c.Y - r; y <= c.Y+r; y++ {
		for x := c.X - r; x <= c.X+r; x++ {
			if m.CellExists(x, y) && m.Tile(core.C(x, y)).Owner == p {
				return true
			}
		}
	}
	return false
}
