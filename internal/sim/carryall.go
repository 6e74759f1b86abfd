package sim

import "github.com/vovakirdan/dunesim/internal/core"

// patrolRadius bounds the idle circling of a carryall around its home.
const patrolRadius = 3

// requestCarryall assigns the nearest idle carryall of o's owner to fly o
// to dest. It reports whether one was found.
func (w *World) requestCarryall(o *Object, dest core.Coord) bool {
	if o.Mobile == nil || o.IsFlying() || o.Mobile.AwaitingPickup || !w.m.Contains(dest) {
		return false
	}
	var best *Object
	var bestDist core.Fixed
	w.reg.Each(func(c *Object) {
		if c.Carrier == nil || c.Owner != o.Owner || c.Carrier.Job != JobIdle {
			return
		}
		d := blockDistance(c.Location, o.Location)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	})
	if best == nil {
		return false
	}
	best.Carrier.Job = JobPickup
	best.Carrier.Client = o.ID
	best.Carrier.DropAt = dest
	best.setDestination(o.Location)
	o.Mobile.AwaitingPickup = true
	return true
}

func (w *World) updateCarrier(o *Object) {
	cr := o.Carrier
	switch cr.Job {
	case JobIdle:
		w.patrol(o)

	case JobPickup:
		client := w.reg.Get(cr.Client)
		if client == nil || client.InTransport() || client.Owner != o.Owner {
			w.releaseClient(o)
			return
		}
		if o.Destination != client.Location {
			o.setDestination(client.Location)
		}
		if o.Mobile.Moving || o.Location != client.Location || client.Mobile.Moving {
			return
		}
		w.unplace(client)
		client.Mobile.InTransport = true
		client.Mobile.AwaitingPickup = false
		client.Mobile.Path = nil
		cr.Carried = client.ID
		cr.Job = JobDeliver
		o.setDestination(cr.DropAt)

	case JobDeliver:
		if o.Mobile.Moving || o.Location != cr.DropAt {
			return
		}
		if w.dropCargo(o) {
			w.notify(NoteCarryallDelivered, o.Owner, o)
		}
	}
}

// dropCargo sets the carried unit down near the carryall. It reports
// whether the unit was placed.
func (w *World) dropCargo(o *Object) bool {
	cr := o.Carrier
	client := w.reg.Get(cr.Carried)
	if client == nil {
		w.releaseClient(o)
		return false
	}
	spot := w.FindDeploySpot(client.Item, o.Location, core.Invalid(), core.Coord{})
	if !spot.IsValid() {
		return false
	}
	client.Location = spot
	client.Real = TileCenter(spot)
	client.Mobile.InTransport = false
	client.Mobile.Moving = false
	client.setDestination(spot)
	w.place(client)
	w.releaseClient(o)
	return true
}

// pickupAssigned reports whether a carryall is still on its way to o.
func (w *World) pickupAssigned(o *Object) bool {
	found := false
	w.reg.Each(func(c *Object) {
		if c.Carrier != nil && c.Carrier.Job == JobPickup && c.Carrier.Client == o.ID {
			found = true
		}
	})
	return found
}

func (w *World) releaseClient(o *Object) {
	cr := o.Carrier
	if client := w.reg.Get(cr.Client); client != nil && client.Mobile != nil {
		client.Mobile.AwaitingPickup = false
	}
	cr.Job = JobIdle
	cr.Client = NoObject
	cr.Carried = NoObject
	cr.DropAt = core.Invalid()
}

// patrol circles an idle carryall around its home structure.
func (w *World) patrol(o *Object) {
	cr := o.Carrier
	home := w.reg.Get(cr.Home)
	if home == nil || home.Owner != o.Owner {
		cr.Home = NoObject
		return
	}
	if o.Mobile.Moving || o.Destination != o.Location {
		return
	}
	if cr.Patrol > 0 {
		cr.Patrol--
		return
	}
	cr.Patrol = w.tun.repathDelay
	c := w.viewCenter(home).Add(core.C(
		w.rng.Intn(-patrolRadius, patrolRadius),
		w.rng.Intn(-patrolRadius, patrolRadius),
	))
	if w.m.Contains(c) {
		o.setDestination(c)
	}
}
