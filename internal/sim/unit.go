package sim

import "github.com/vovakirdan/dunesim/internal/core"

// targetScanInterval is how often idle units look for targets.
const targetScanInterval = 8

// update runs one tick of o's behavior. It returns false when o must be
// destroyed.
func (w *World) update(o *Object) bool {
	if o.IsDead() {
		return false
	}
	w.updateDeviation(o)
	if o.InTransport() {
		return true
	}

	alive := true
	switch o.Kind {
	case KindStructure:
		w.updateStructure(o)
	case KindSandworm:
		alive = w.updateWorm(o)
	default:
		alive = w.updateUnit(o)
	}
	if !alive || w.reg.Get(o.ID) != o {
		return false
	}

	if st := o.Stats(); st.ViewRange > 0 && !o.InTransport() {
		w.ViewMap(w.team(o.Owner), w.viewCenter(o), st.ViewRange)
	}
	w.refreshVisibility(o)
	return !o.IsDead()
}

func (w *World) viewCenter(o *Object) core.Coord {
	if o.Structure == nil {
		return o.Location
	}
	fp := o.Footprint()
	return core.C(fp.X+fp.W/2, fp.Y+fp.H/2)
}

// updateUnit is the per-tick loop shared by ground, infantry and air units:
// target acquisition, engagement, then movement.
func (w *World) updateUnit(o *Object) bool {
	if o.Mobile.AwaitingPickup && !w.pickupAssigned(o) {
		o.Mobile.AwaitingPickup = false
	}
	if o.Weapon != nil && o.Weapon.Counter > 0 {
		o.Weapon.Counter--
	}

	switch {
	case o.Harvest != nil:
		w.updateHarvester(o)
	case o.Carrier != nil:
		w.updateCarrier(o)
	case o.Mode == ModeCapture:
		if !w.updateCapture(o) {
			return false
		}
	case o.Weapon != nil:
		w.engage(o)
	}

	if w.reg.Get(o.ID) != o || o.InTransport() {
		return w.reg.Get(o.ID) == o
	}
	w.advance(o)
	return true
}

// engage handles targeting and firing for an armed unit.
func (w *World) engage(o *Object) {
	m := o.Mobile

	// a forced move ignores enemies until the destination is reached
	if m.Forced && o.Destination != o.Location {
		return
	}
	if o.Mode == ModeStop && !o.ForcedTarget {
		o.Target = NoObject
		return
	}

	if o.Target != NoObject && !o.ForcedTarget {
		t := w.reg.Get(o.Target)
		if t == nil || !w.canAttack(o, t) || !w.inSearchRange(o, t) {
			o.Target = NoObject
		}
	}
	if o.Target == NoObject && !o.AttackPos.IsValid() {
		if m.TargetTimer > 0 {
			m.TargetTimer--
		} else {
			m.TargetTimer = targetScanInterval
			if t := w.findTarget(o); t != nil {
				o.Target = t.ID
			}
		}
	}

	c, t := w.targetPoint(o)
	if !c.IsValid() {
		// nothing to do: area guards drift back to their post
		if o.Mode == ModeAreaGuard && !m.Moving && o.Destination == o.Location &&
			o.Location.Chebyshev(m.GuardPoint) > w.searchRange(o) {
			o.setDestination(m.GuardPoint)
		}
		return
	}

	if blockDistance(o.Location, c) <= core.FromInt(o.Weapon.Range) {
		if m.Moving {
			return
		}
		if o.Destination != o.Location {
			o.stop()
		}
		if o.Location == c || w.turnTowards(o, direction(o.Location, c)) {
			if o.Weapon.Counter == 0 {
				w.fire(o, c, t)
			}
		}
		return
	}

	// out of range: guards and stopped units hold their ground
	if o.Mode == ModeGuard && !o.ForcedTarget {
		o.Target = NoObject
		return
	}
	if o.Destination != c {
		o.setDestination(c)
	}
}

// inSearchRange reports whether t is still within the mode's search radius.
func (w *World) inSearchRange(o, t *Object) bool {
	r := w.searchRange(o)
	if r < 0 {
		return false
	}
	if o.Mode == ModeHunt {
		return true
	}
	if o.Mode == ModeAreaGuard {
		return o.Mobile == nil || t.ClosestPoint(o.Mobile.GuardPoint).Chebyshev(o.Mobile.GuardPoint) <= r
	}
	return blockDistance(o.Location, t.ClosestPoint(o.Location)) <= core.FromInt(r+lookDist[0])
}
