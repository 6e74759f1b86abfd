package sim

import "github.com/vovakirdan/dunesim/internal/core"

// adjacent reports whether tile c touches the footprint of o.
func adjacent(o *Object, c core.Coord) bool {
	return o.ClosestPoint(c).Chebyshev(c) <= 1
}

func (w *World) updateHarvester(o *Object) {
	h := o.Harvest
	m := o.Mobile

	switch h.State {
	case HarvestSeek:
		if h.Spice >= w.tun.harvesterCapacity {
			h.State = HarvestReturn
			return
		}
		if m.Moving || m.AwaitingPickup {
			return
		}
		if w.m.Tile(o.Location).Terrain.IsSpice() {
			o.stop()
			h.State = HarvestCollect
			return
		}
		if o.Destination != o.Location {
			if m.RepathTimer == 0 || len(m.Path) > 0 {
				return
			}
		}
		if h.Idle > 0 {
			h.Idle--
			return
		}
		c := w.FindSpice(o.Location)
		if !c.IsValid() {
			if h.Spice > 0 {
				h.State = HarvestReturn
				return
			}
			h.Idle = w.tun.repathDelay
			return
		}
		o.setDestination(c)

	case HarvestCollect:
		if !w.m.Tile(o.Location).Terrain.IsSpice() {
			h.State = HarvestSeek
			return
		}
		room := w.tun.harvesterCapacity - h.Spice
		take := w.HarvestSpice(o.Location, core.MinF(w.tun.harvestSpeed, room))
		h.Spice += take
		if h.Spice >= w.tun.harvesterCapacity {
			h.State = HarvestReturn
		}

	case HarvestReturn:
		if m.Moving || m.AwaitingPickup {
			return
		}
		ref := w.refineryFor(o)
		if ref == nil {
			return
		}
		if adjacent(ref, o.Location) {
			o.stop()
			h.State = HarvestUnload
			return
		}
		dest := ref.ClosestPoint(o.Location)
		if o.Destination != dest {
			o.setDestination(dest)
		}
		if blockDistance(o.Location, dest) > core.FromInt(w.tun.carryallDropDistance) {
			w.requestCarryall(o, dest)
		}

	case HarvestUnload:
		ref := w.reg.Get(h.Refinery)
		if ref == nil || ref.Owner != o.Owner || !adjacent(ref, o.Location) {
			h.State = HarvestReturn
			return
		}
		take := core.MinF(w.tun.unloadSpeed, h.Spice)
		h.Spice -= take
		if p := w.Player(o.Owner); p != nil {
			p.Credits += take
			p.Stats.SpiceHarvested += take
		}
		if h.Spice <= 0 {
			h.Spice = 0
			h.State = HarvestSeek
		}
	}
}

// refineryFor returns the harvester's refinery, picking the nearest owned
// one when the remembered refinery is gone or was lost.
func (w *World) refineryFor(o *Object) *Object {
	h := o.Harvest
	if ref := w.reg.Get(h.Refinery); ref != nil && ref.Owner == o.Owner {
		return ref
	}
	var best *Object
	var bestDist core.Fixed
	w.reg.Each(func(s *Object) {
		if s.Item != ItemRefinery || s.Owner != o.Owner {
			return
		}
		d := blockDistance(o.Location, s.ClosestPoint(o.Location))
		if best == nil || d < bestDist {
			best, bestDist = s, d
		}
	})
	if best != nil {
		h.Refinery = best.ID
	} else {
		h.Refinery = NoObject
	}
	return best
}

// ReturnHarvester sends a harvester with cargo back to its refinery.
func (w *World) ReturnHarvester(o *Object) bool {
	if o == nil || o.Harvest == nil || o.Harvest.Spice <= 0 {
		return false
	}
	o.Harvest.State = HarvestReturn
	return true
}
