package sim

import "github.com/vovakirdan/dunesim/internal/core"

// wormWanderRadius bounds the random roaming of a worm without prey.
const wormWanderRadius = 5

// updateWorm moves a sandworm under the sand towards ground units in its
// sand region and swallows them on contact. It returns false once the
// worm has eaten its fill.
func (w *World) updateWorm(o *Object) bool {
	wm := o.Worm
	if wm.Kills >= w.tun.wormKillLimit {
		return false
	}
	if o.Weapon != nil && o.Weapon.Counter > 0 {
		o.Weapon.Counter--
	}

	prey := w.reg.Get(o.Target)
	if prey != nil && !w.wormCanEat(o, prey) {
		prey = nil
		o.Target = NoObject
	}
	if prey == nil {
		if m := o.Mobile; m.TargetTimer > 0 {
			m.TargetTimer--
		} else {
			m.TargetTimer = targetScanInterval
			prey = w.findPrey(o)
			if prey != nil {
				o.Target = prey.ID
			}
		}
	}

	if prey != nil {
		if o.Location == prey.Location && !o.Mobile.Moving {
			if o.Weapon == nil || o.Weapon.Counter == 0 {
				if o.Weapon != nil {
					o.Weapon.Counter = o.Weapon.Reload
				}
				w.handleDamage(prey, prey.Health, o.ID, o.Owner, BulletSandworm)
				wm.Kills++
				o.Target = NoObject
			}
		} else if o.Destination != prey.Location && !o.Mobile.Moving {
			o.setDestination(prey.Location)
		}
	} else {
		w.wander(o)
	}

	w.advance(o)
	return true
}

func (w *World) wormCanEat(o, t *Object) bool {
	if t.IsDead() || t.InTransport() || t.IsStructure() || t.IsFlying() || t.Worm != nil {
		return false
	}
	if !w.isEnemy(o.Owner, t.Owner) {
		return false
	}
	region := w.m.Tile(o.Location).Region
	return region != NoRegion && w.m.Tile(t.Location).Region == region
}

// findPrey returns the nearest edible unit within the worm's view range.
func (w *World) findPrey(o *Object) *Object {
	var best *Object
	var bestDist core.Fixed
	view := core.FromInt(o.Stats().ViewRange)
	w.reg.Each(func(t *Object) {
		if !t.IsUnit() || !w.wormCanEat(o, t) {
			return
		}
		d := blockDistance(o.Location, t.Location)
		if d > view {
			return
		}
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	})
	return best
}

func (w *World) wander(o *Object) {
	wm := o.Worm
	if o.Mobile.Moving || o.Destination != o.Location {
		return
	}
	if wm.Wander > 0 {
		wm.Wander--
		return
	}
	wm.Wander = w.tun.repathDelay
	region := w.m.Tile(o.Location).Region
	c := o.Location.Add(core.C(
		w.rng.Intn(-wormWanderRadius, wormWanderRadius),
		w.rng.Intn(-wormWanderRadius, wormWanderRadius),
	))
	if w.m.Contains(c) && region != NoRegion && w.m.Tile(c).Region == region {
		o.setDestination(c)
	}
}
