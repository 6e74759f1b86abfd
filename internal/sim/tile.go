package sim

import "github.com/vovakirdan/dunesim/internal/core"

// Layer partitions the occupants of a tile.
type Layer uint8

const (
	LayerGround Layer = iota // structures and non-infantry ground units
	LayerInfantry
	LayerAir
	LayerUnderground

	layerCount
)

// NoRegion is the sand region label of rock tiles.
const NoRegion = -1

// Tile is one grid cell.
type Tile struct {
	Terrain Terrain
	Owner   PlayerID
	Spice   core.Fixed
	Region  int

	explored [MaxPlayers]bool
	lastSeen [MaxPlayers]uint32

	occupants [layerCount][]ObjectID
}

// Objects returns the occupants of one layer. The slice must not be modified.
func (t *Tile) Objects(l Layer) []ObjectID {
	return t.occupants[l]
}

// HasGroundObject reports whether a structure, ground unit or infantry stands here.
func (t *Tile) HasGroundObject() bool {
	return len(t.occupants[LayerGround]) > 0 || len(t.occupants[LayerInfantry]) > 0
}

// HasAnObject reports whether any layer is occupied.
func (t *Tile) HasAnObject() bool {
	for l := range t.occupants {
		if len(t.occupants[l]) > 0 {
			return true
		}
	}
	return false
}

// InfantryCount returns the number of infantry on the tile.
func (t *Tile) InfantryCount() int {
	return len(t.occupants[LayerInfantry])
}

// TopObject returns the object an attacker sees first: ground, then
// infantry, then air, then underground.
func (t *Tile) TopObject() ObjectID {
	for l := LayerGround; l < layerCount; l++ {
		if len(t.occupants[l]) > 0 {
			return t.occupants[l][0]
		}
	}
	return NoObject
}

// IsExplored reports whether player has ever seen the tile.
func (t *Tile) IsExplored(p PlayerID) bool {
	return p.Valid() && t.explored[p]
}

// LastSeen returns the tick player last had sight of the tile.
func (t *Tile) LastSeen(p PlayerID) uint32 {
	if !p.Valid() {
		return 0
	}
	return t.lastSeen[p]
}

func (t *Tile) assign(l Layer, id ObjectID) {
	for _, o := range t.occupants[l] {
		if o == id {
			return
		}
	}
	t.occupants[l] = append(t.occupants[l], id)
}

func (t *Tile) unassign(l Layer, id ObjectID) {
	list := t.occupants[l]
	for i, o := range list {
		if o == id {
			t.occupants[l] = append(list[:i], list[i+1:]...)
			return
		}
	}
}
