package sim

import (
	"sort"

	"github.com/vovakirdan/dunesim/internal/core"
)

// ObjectState is a read-only copy of the observable state of an object.
type ObjectState struct {
	ID       ObjectID
	Item     ItemID
	Owner    PlayerID
	Location core.Coord
	Real     Point
	Health   core.Fixed
	Target   ObjectID
	Mode     AttackMode
}

// Snapshot is a copy of the world state used by viewers and tests.
type Snapshot struct {
	Tick    uint32
	Seed    uint32
	Objects []ObjectState
	Credits [MaxPlayers]core.Fixed
}

// Snapshot copies the observable state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{Tick: w.tick, Seed: w.rng.Seed()}
	w.reg.Each(func(o *Object) {
		s.Objects = append(s.Objects, ObjectState{
			ID:       o.ID,
			Item:     o.Item,
			Owner:    o.Owner,
			Location: o.Location,
			Real:     o.Real,
			Health:   o.Health,
			Target:   o.Target,
			Mode:     o.Mode,
		})
	})
	for i, p := range w.players {
		if p != nil {
			s.Credits[i] = p.Credits
		}
	}
	return s
}

// ObjectsAt returns every object on c, layer by layer.
func (w *World) ObjectsAt(c core.Coord) []*Object {
	if !w.m.Contains(c) {
		return nil
	}
	var out []*Object
	t := w.m.Tile(c)
	for l := LayerGround; l < layerCount; l++ {
		for _, id := range t.Objects(l) {
			if o := w.reg.Get(id); o != nil {
				out = append(out, o)
			}
		}
	}
	return out
}

// GroundObject returns the structure, ground unit or infantry on c.
func (w *World) GroundObject(c core.Coord) *Object {
	if !w.m.Contains(c) {
		return nil
	}
	t := w.m.Tile(c)
	for _, l := range []Layer{LayerGround, LayerInfantry} {
		if ids := t.Objects(l); len(ids) > 0 {
			return w.reg.Get(ids[0])
		}
	}
	return nil
}

// AirObject returns the first flying unit over c.
func (w *World) AirObject(c core.Coord) *Object {
	if !w.m.Contains(c) {
		return nil
	}
	if ids := w.m.Tile(c).Objects(LayerAir); len(ids) > 0 {
		return w.reg.Get(ids[0])
	}
	return nil
}

// Select replaces the selection of player.
func (w *World) Select(player PlayerID, ids ...ObjectID) {
	set := make(map[ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if o := w.reg.Get(id); o != nil && o.Owner == player {
			set[id] = struct{}{}
		}
	}
	w.selected[player] = set
}

// Selection returns the still-living selected objects of player in ID
// order. Destroyed objects are pruned.
func (w *World) Selection(player PlayerID) []ObjectID {
	set := w.selected[player]
	out := make([]ObjectID, 0, len(set))
	for id := range set {
		if w.reg.Get(id) == nil {
			delete(set, id)
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
